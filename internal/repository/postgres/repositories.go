package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"otrabotki-service/internal/model"
)

type ScheduleRepo struct{ store *Store }

func NewScheduleRepo(store *Store) *ScheduleRepo { return &ScheduleRepo{store: store} }

func (r *ScheduleRepo) List(ctx context.Context) ([]model.RecurringSchedule, error) {
	rows, err := r.store.pool.Query(ctx, `
		SELECT id, teacher_id, subject, course_ids, day_of_week, time_from, time_to, capacity
		FROM teacher_schedules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	schedules := []model.RecurringSchedule{}
	for rows.Next() {
		var s model.RecurringSchedule
		if err := rows.Scan(&s.ID, &s.TeacherID, &s.Subject, &s.CourseIDs, &s.DayOfWeek, &s.TimeFrom, &s.TimeTo, &s.Capacity); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepo) SaveAll(ctx context.Context, schedules []model.RecurringSchedule) error {
	return r.store.replaceAll(ctx, "teacher_schedules", func(tx pgx.Tx) error {
		for i := range schedules {
			s := &schedules[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO teacher_schedules (id, teacher_id, subject, course_ids, day_of_week, time_from, time_to, capacity)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				s.ID, s.TeacherID, s.Subject, s.CourseIDs, s.DayOfWeek, s.TimeFrom, s.TimeTo, s.Capacity)
			if err != nil {
				return fmt.Errorf("insert schedule %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

type SlotRepo struct{ store *Store }

func NewSlotRepo(store *Store) *SlotRepo { return &SlotRepo{store: store} }

func (r *SlotRepo) List(ctx context.Context) ([]model.Slot, error) {
	rows, err := r.store.pool.Query(ctx, `
		SELECT id, schedule_id, teacher_id, subject, course_ids, date, time_from, time_to, capacity, students
		FROM slots ORDER BY date, time_from, id`)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	slots := []model.Slot{}
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.ScheduleID, &s.TeacherID, &s.Subject, &s.CourseIDs, &s.Date, &s.TimeFrom, &s.TimeTo, &s.Capacity, &s.Students); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if s.Students == nil {
			s.Students = []string{}
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *SlotRepo) SaveAll(ctx context.Context, slots []model.Slot) error {
	return r.store.replaceAll(ctx, "slots", func(tx pgx.Tx) error {
		for i := range slots {
			s := &slots[i]
			students := s.Students
			if students == nil {
				students = []string{}
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO slots (id, schedule_id, teacher_id, subject, course_ids, date, time_from, time_to, capacity, students)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				s.ID, s.ScheduleID, s.TeacherID, s.Subject, s.CourseIDs, s.Date, s.TimeFrom, s.TimeTo, s.Capacity, students)
			if err != nil {
				return fmt.Errorf("insert slot %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

type UserRepo struct{ store *Store }

func NewUserRepo(store *Store) *UserRepo { return &UserRepo{store: store} }

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.store.pool.Query(ctx, `
		SELECT id, login, password, role, fio, "group", course, student_card, subjects
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Password, &u.Role, &u.FIO, &u.Group, &u.Course, &u.StudentCard, &u.Subjects); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) SaveAll(ctx context.Context, users []model.User) error {
	return r.store.replaceAll(ctx, "users", func(tx pgx.Tx) error {
		for i := range users {
			u := &users[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO users (id, login, password, role, fio, "group", course, student_card, subjects)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				u.ID, u.Login, u.Password, u.Role, u.FIO, u.Group, u.Course, u.StudentCard, u.Subjects)
			if err != nil {
				return fmt.Errorf("insert user %s: %w", u.ID, err)
			}
		}
		return nil
	})
}

type CourseRepo struct{ store *Store }

func NewCourseRepo(store *Store) *CourseRepo { return &CourseRepo{store: store} }

func (r *CourseRepo) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.store.pool.Query(ctx, `SELECT id, name, subject_ids FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.SubjectIDs); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepo) SaveAll(ctx context.Context, courses []model.Course) error {
	return r.store.replaceAll(ctx, "courses", func(tx pgx.Tx) error {
		for i := range courses {
			c := &courses[i]
			if _, err := tx.Exec(ctx, `INSERT INTO courses (id, name, subject_ids) VALUES ($1, $2, $3)`,
				c.ID, c.Name, c.SubjectIDs); err != nil {
				return fmt.Errorf("insert course %d: %w", c.ID, err)
			}
		}
		return nil
	})
}

type SubjectRepo struct{ store *Store }

func NewSubjectRepo(store *Store) *SubjectRepo { return &SubjectRepo{store: store} }

func (r *SubjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.store.pool.Query(ctx, `SELECT id, name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepo) SaveAll(ctx context.Context, subjects []model.Subject) error {
	return r.store.replaceAll(ctx, "subjects", func(tx pgx.Tx) error {
		for i := range subjects {
			s := &subjects[i]
			if _, err := tx.Exec(ctx, `INSERT INTO subjects (id, name) VALUES ($1, $2)`, s.ID, s.Name); err != nil {
				return fmt.Errorf("insert subject %d: %w", s.ID, err)
			}
		}
		return nil
	})
}

type AttendanceRepo struct{ store *Store }

func NewAttendanceRepo(store *Store) *AttendanceRepo { return &AttendanceRepo{store: store} }

func (r *AttendanceRepo) List(ctx context.Context) ([]model.AttendanceRecord, error) {
	rows, err := r.store.pool.Query(ctx, `
		SELECT slot_id, student_id, attended, completed FROM attendance ORDER BY slot_id, student_id`)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	records := []model.AttendanceRecord{}
	for rows.Next() {
		var a model.AttendanceRecord
		if err := rows.Scan(&a.SlotID, &a.StudentID, &a.Attended, &a.Completed); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func (r *AttendanceRepo) SaveAll(ctx context.Context, records []model.AttendanceRecord) error {
	return r.store.replaceAll(ctx, "attendance", func(tx pgx.Tx) error {
		for i := range records {
			a := &records[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO attendance (slot_id, student_id, attended, completed)
				VALUES ($1, $2, $3, $4)`,
				a.SlotID, a.StudentID, a.Attended, a.Completed)
			if err != nil {
				return fmt.Errorf("insert attendance %s/%s: %w", a.SlotID, a.StudentID, err)
			}
		}
		return nil
	})
}

type LimitsRepo struct{ store *Store }

func NewLimitsRepo(store *Store) *LimitsRepo { return &LimitsRepo{store: store} }

// Get возвращает дефолтные лимиты, если строка ещё не записана.
func (r *LimitsRepo) Get(ctx context.Context) (model.Limits, error) {
	limits := model.DefaultLimits()
	err := r.store.pool.QueryRow(ctx,
		`SELECT max_per_day, max_per_week FROM limits WHERE id = 1`).
		Scan(&limits.MaxPerDay, &limits.MaxPerWeek)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return limits, nil
		}
		return model.Limits{}, fmt.Errorf("query limits: %w", err)
	}
	return limits, nil
}

func (r *LimitsRepo) Save(ctx context.Context, limits model.Limits) error {
	_, err := r.store.pool.Exec(ctx, `
		INSERT INTO limits (id, max_per_day, max_per_week) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET max_per_day = $1, max_per_week = $2`,
		limits.MaxPerDay, limits.MaxPerWeek)
	if err != nil {
		return fmt.Errorf("save limits: %w", err)
	}
	return nil
}
