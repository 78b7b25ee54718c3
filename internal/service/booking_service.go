package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/dateutil"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

const (
	// Запись открыта не дальше чем на 7 дней вперёд
	bookingWindowDays = 7
	// Отмена разрешена не позднее чем за 5 минут до начала
	cancelCutoff = 5 * time.Minute
)

// BookingService решает, может ли студент записаться на слот или отменить
// запись, и изменяет ростер слота.
type BookingService struct {
	slots   repository.SlotRepository
	users   repository.UserRepository
	courses repository.CourseRepository
	limits  LimitChecker
	logger  *zap.Logger
	now     func() time.Time
}

func NewBookingService(
	slots repository.SlotRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	limits LimitChecker,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		slots:   slots,
		users:   users,
		courses: courses,
		limits:  limits,
		logger:  logger,
		now:     time.Now,
	}
}

// Book записывает студента на слот. Проверки выполняются по порядку, первая
// неудача завершает операцию; запись в хранилище происходит только после
// того, как пройдены все проверки.
func (s *BookingService) Book(ctx context.Context, studentID, slotID string) (*model.Slot, error) {
	if studentID == "" || slotID == "" {
		return nil, apperror.Validation("student id and slot id are required")
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	idx := findSlot(slots, slotID)
	if idx < 0 {
		return nil, apperror.NotFound("slot %s not found", slotID)
	}
	slot := &slots[idx]

	if slot.HasStudent(studentID) {
		return nil, apperror.Conflict("student is already booked for this slot")
	}
	if slot.IsFull() {
		return nil, apperror.Conflict("slot is full")
	}

	slotDate, err := dateutil.ParseDate(slot.Date)
	if err != nil {
		return nil, fmt.Errorf("slot %s has malformed date: %w", slot.ID, err)
	}
	days := dateutil.DaysUntil(s.now(), slotDate)
	if days < 0 {
		return nil, apperror.Policy("cannot book a slot in the past")
	}
	if days > bookingWindowDays {
		return nil, apperror.Policy("slots can be booked at most %d days ahead", bookingWindowDays)
	}

	// Эксклюзивность: у одного преподавателя в один день — только одна отработка
	for i := range slots {
		other := &slots[i]
		if other.ID == slot.ID || !other.HasStudent(studentID) {
			continue
		}
		if other.TeacherID == slot.TeacherID && other.Date == slot.Date {
			return nil, apperror.Policy("only one booking per teacher per day")
		}
	}

	if err := s.limits.CheckBookingLimits(ctx, studentID, slot.Date); err != nil {
		return nil, err
	}

	slot.Students = append(slot.Students, studentID)
	if err := s.slots.SaveAll(ctx, slots); err != nil {
		return nil, fmt.Errorf("save slots: %w", err)
	}

	s.logger.Info("Slot booked",
		zap.String("slot_id", slot.ID),
		zap.String("student_id", studentID),
		zap.String("date", slot.Date),
		zap.Int("roster_size", len(slot.Students)),
	)

	booked := *slot
	return &booked, nil
}

// Cancel снимает студента со слота. Отказ, если до начала осталось меньше
// пяти минут или слот уже начался.
func (s *BookingService) Cancel(ctx context.Context, studentID, slotID string) error {
	if studentID == "" || slotID == "" {
		return apperror.Validation("student id and slot id are required")
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}

	idx := findSlot(slots, slotID)
	if idx < 0 {
		return apperror.NotFound("slot %s not found", slotID)
	}
	slot := &slots[idx]

	if !slot.HasStudent(studentID) {
		return apperror.Conflict("student is not booked for this slot")
	}

	start, err := dateutil.SlotStart(slot.Date, slot.TimeFrom)
	if err != nil {
		return fmt.Errorf("slot %s has malformed start: %w", slot.ID, err)
	}
	if start.Sub(s.now()) < cancelCutoff {
		return apperror.Policy("cancellation is allowed no later than %d minutes before the slot starts", int(cancelCutoff.Minutes()))
	}

	slot.RemoveStudent(studentID)
	if err := s.slots.SaveAll(ctx, slots); err != nil {
		return fmt.Errorf("save slots: %w", err)
	}

	s.logger.Info("Booking canceled",
		zap.String("slot_id", slot.ID),
		zap.String("student_id", studentID),
		zap.String("date", slot.Date),
	)
	return nil
}

// SlotView — слот, обогащённый данными для выдачи студенту.
type SlotView struct {
	model.Slot
	Teacher        *UserRef   `json:"teacher"`
	Course         *CourseRef `json:"course"`
	BookedCount    int        `json:"bookedCount"`
	IsBooked       bool       `json:"isBooked"`
	AvailableSpots int        `json:"availableSpots"`
}

type UserRef struct {
	ID  string `json:"id"`
	FIO string `json:"fio"`
}

type CourseRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AvailableFilter — необязательные фильтры списка доступных слотов.
type AvailableFilter struct {
	Subject string
	Date    string
}

// AvailableSlots возвращает слоты курса студента в пределах окна записи,
// отсортированные по дате и времени начала.
func (s *BookingService) AvailableSlots(ctx context.Context, studentID string, filter AvailableFilter) ([]SlotView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	student := findUser(users, studentID)
	if student == nil || student.Role != model.RoleStudent {
		return nil, apperror.Forbidden("only students can browse bookable slots")
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	today := s.now()
	views := []SlotView{}
	for i := range slots {
		slot := &slots[i]
		if !slot.HasCourse(student.Course) {
			continue
		}
		if filter.Subject != "" && slot.Subject != filter.Subject {
			continue
		}
		if filter.Date != "" && slot.Date != filter.Date {
			continue
		}
		slotDate, err := dateutil.ParseDate(slot.Date)
		if err != nil {
			continue
		}
		days := dateutil.DaysUntil(today, slotDate)
		if days < 0 || days > bookingWindowDays {
			continue
		}
		views = append(views, s.slotView(slot, studentID, users, courses))
	}
	sortSlotViews(views)
	return views, nil
}

// MyBookings возвращает все слоты, где студент есть в ростере.
func (s *BookingService) MyBookings(ctx context.Context, studentID string) ([]SlotView, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	views := []SlotView{}
	for i := range slots {
		if slots[i].HasStudent(studentID) {
			views = append(views, s.slotView(&slots[i], studentID, users, courses))
		}
	}
	sortSlotViews(views)
	return views, nil
}

func (s *BookingService) slotView(slot *model.Slot, studentID string, users []model.User, courses []model.Course) SlotView {
	view := SlotView{
		Slot:           *slot,
		BookedCount:    len(slot.Students),
		IsBooked:       slot.HasStudent(studentID),
		AvailableSpots: slot.FreeSpots(),
	}
	if teacher := findUser(users, slot.TeacherID); teacher != nil {
		view.Teacher = &UserRef{ID: teacher.ID, FIO: teacher.FIO}
	}
	if len(slot.CourseIDs) > 0 {
		for i := range courses {
			if courses[i].ID == slot.CourseIDs[0] {
				view.Course = &CourseRef{ID: courses[i].ID, Name: courses[i].Name}
				break
			}
		}
	}
	return view
}

func sortSlotViews(views []SlotView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Date != views[j].Date {
			return views[i].Date < views[j].Date
		}
		return views[i].TimeFrom < views[j].TimeFrom
	})
}

func sortSlots(slots []model.Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].TimeFrom < slots[j].TimeFrom
	})
}

func findSlot(slots []model.Slot, id string) int {
	for i := range slots {
		if slots[i].ID == id {
			return i
		}
	}
	return -1
}

func findUser(users []model.User, id string) *model.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
