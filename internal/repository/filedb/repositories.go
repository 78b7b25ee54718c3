package filedb

import (
	"context"

	"otrabotki-service/internal/model"
)

// Репозитории над одним Store; каждый метод читает или перезаписывает
// коллекцию целиком, как того требует контракт repository.

type ScheduleRepo struct{ store *Store }

func NewScheduleRepo(store *Store) *ScheduleRepo { return &ScheduleRepo{store: store} }

func (r *ScheduleRepo) List(ctx context.Context) ([]model.RecurringSchedule, error) {
	schedules := []model.RecurringSchedule{}
	if err := r.store.read(schedulesFile, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepo) SaveAll(ctx context.Context, schedules []model.RecurringSchedule) error {
	return r.store.write(schedulesFile, schedules)
}

type SlotRepo struct{ store *Store }

func NewSlotRepo(store *Store) *SlotRepo { return &SlotRepo{store: store} }

func (r *SlotRepo) List(ctx context.Context) ([]model.Slot, error) {
	slots := []model.Slot{}
	if err := r.store.read(slotsFile, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SlotRepo) SaveAll(ctx context.Context, slots []model.Slot) error {
	return r.store.write(slotsFile, slots)
}

type UserRepo struct{ store *Store }

func NewUserRepo(store *Store) *UserRepo { return &UserRepo{store: store} }

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.store.read(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) SaveAll(ctx context.Context, users []model.User) error {
	return r.store.write(usersFile, users)
}

type CourseRepo struct{ store *Store }

func NewCourseRepo(store *Store) *CourseRepo { return &CourseRepo{store: store} }

func (r *CourseRepo) List(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	if err := r.store.read(coursesFile, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepo) SaveAll(ctx context.Context, courses []model.Course) error {
	return r.store.write(coursesFile, courses)
}

type SubjectRepo struct{ store *Store }

func NewSubjectRepo(store *Store) *SubjectRepo { return &SubjectRepo{store: store} }

func (r *SubjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	subjects := []model.Subject{}
	if err := r.store.read(subjectsFile, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *SubjectRepo) SaveAll(ctx context.Context, subjects []model.Subject) error {
	return r.store.write(subjectsFile, subjects)
}

type AttendanceRepo struct{ store *Store }

func NewAttendanceRepo(store *Store) *AttendanceRepo { return &AttendanceRepo{store: store} }

func (r *AttendanceRepo) List(ctx context.Context) ([]model.AttendanceRecord, error) {
	records := []model.AttendanceRecord{}
	if err := r.store.read(attendanceFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *AttendanceRepo) SaveAll(ctx context.Context, records []model.AttendanceRecord) error {
	return r.store.write(attendanceFile, records)
}

type LimitsRepo struct{ store *Store }

func NewLimitsRepo(store *Store) *LimitsRepo { return &LimitsRepo{store: store} }

// Get возвращает дефолтные лимиты, если файл ещё не создавался.
func (r *LimitsRepo) Get(ctx context.Context) (model.Limits, error) {
	limits := model.DefaultLimits()
	if err := r.store.read(limitsFile, &limits); err != nil {
		return model.Limits{}, err
	}
	return limits, nil
}

func (r *LimitsRepo) Save(ctx context.Context, limits model.Limits) error {
	return r.store.write(limitsFile, limits)
}
