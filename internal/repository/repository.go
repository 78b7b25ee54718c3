// Package repository declares the persistence contracts the services depend
// on. Every collection is read and rewritten as a whole; there is no
// per-record update, locking or versioning in the contract, so a
// read-modify-write sequence spanning List and SaveAll is not atomic.
// Backends live in subpackages (filedb, postgres).
package repository

import (
	"context"

	"otrabotki-service/internal/model"
)

type ScheduleRepository interface {
	List(ctx context.Context) ([]model.RecurringSchedule, error)
	SaveAll(ctx context.Context, schedules []model.RecurringSchedule) error
}

type SlotRepository interface {
	List(ctx context.Context) ([]model.Slot, error)
	SaveAll(ctx context.Context, slots []model.Slot) error
}

type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	SaveAll(ctx context.Context, users []model.User) error
}

type CourseRepository interface {
	List(ctx context.Context) ([]model.Course, error)
	SaveAll(ctx context.Context, courses []model.Course) error
}

type SubjectRepository interface {
	List(ctx context.Context) ([]model.Subject, error)
	SaveAll(ctx context.Context, subjects []model.Subject) error
}

type AttendanceRepository interface {
	List(ctx context.Context) ([]model.AttendanceRecord, error)
	SaveAll(ctx context.Context, records []model.AttendanceRecord) error
}

// LimitsRepository holds the single current limits configuration.
type LimitsRepository interface {
	Get(ctx context.Context) (model.Limits, error)
	Save(ctx context.Context, limits model.Limits) error
}
