package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/dateutil"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

// LimitChecker — стратегия проверки лимитов записи. Контроллер записи
// вызывает её последней, после структурных проверок; реализация может быть
// выключена целиком (NoLimits), не меняя логику контроллера.
type LimitChecker interface {
	CheckBookingLimits(ctx context.Context, studentID, date string) error
}

// NoLimits отключает лимиты: любая запись проходит.
type NoLimits struct{}

func (NoLimits) CheckBookingLimits(ctx context.Context, studentID, date string) error {
	return nil
}

// LimitService проверяет дневной и недельный лимиты записей студента.
type LimitService struct {
	limits repository.LimitsRepository
	slots  repository.SlotRepository
	logger *zap.Logger
}

func NewLimitService(
	limits repository.LimitsRepository,
	slots repository.SlotRepository,
	logger *zap.Logger,
) *LimitService {
	return &LimitService{
		limits: limits,
		slots:  slots,
		logger: logger,
	}
}

// CheckBookingLimits проверяет, не исчерпал ли студент лимиты на дату date.
// Чистый предикат: ничего не изменяет.
func (s *LimitService) CheckBookingLimits(ctx context.Context, studentID, date string) error {
	limits, err := s.limits.Get(ctx)
	if err != nil {
		return fmt.Errorf("get limits: %w", err)
	}

	day, err := dateutil.ParseDate(date)
	if err != nil {
		return apperror.Validation("invalid slot date %q", date)
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}

	var dayCount, weekCount int
	weekStart := dateutil.WeekStart(day)
	weekEnd := dateutil.WeekEnd(day)

	for i := range slots {
		slot := &slots[i]
		if !slot.HasStudent(studentID) {
			continue
		}
		if slot.Date == date {
			dayCount++
		}
		slotDay, err := dateutil.ParseDate(slot.Date)
		if err != nil {
			continue
		}
		if dateutil.InWeek(slotDay, weekStart, weekEnd) {
			weekCount++
		}
	}

	if dayCount >= limits.MaxPerDay {
		return apperror.Policy("daily booking limit of %d reached", limits.MaxPerDay)
	}
	if weekCount >= limits.MaxPerWeek {
		return apperror.Policy("weekly booking limit of %d reached", limits.MaxPerWeek)
	}
	return nil
}

// LimitsUsage — текущее использование лимитов студентом.
type LimitsUsage struct {
	Limits model.Limits `json:"limits"`
	Today  int          `json:"today"`
	Week   int          `json:"week"`
}

// Usage возвращает лимиты и сколько записей студент уже занял на дату today
// и на содержащей её неделе.
func (s *LimitService) Usage(ctx context.Context, studentID string, today time.Time) (LimitsUsage, error) {
	limits, err := s.limits.Get(ctx)
	if err != nil {
		return LimitsUsage{}, fmt.Errorf("get limits: %w", err)
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return LimitsUsage{}, fmt.Errorf("list slots: %w", err)
	}

	usage := LimitsUsage{Limits: limits}
	todayStr := dateutil.FormatDate(today)
	weekStart := dateutil.WeekStart(today)
	weekEnd := dateutil.WeekEnd(today)

	for i := range slots {
		slot := &slots[i]
		if !slot.HasStudent(studentID) {
			continue
		}
		if slot.Date == todayStr {
			usage.Today++
		}
		slotDay, err := dateutil.ParseDate(slot.Date)
		if err != nil {
			continue
		}
		if dateutil.InWeek(slotDay, weekStart, weekEnd) {
			usage.Week++
		}
	}
	return usage, nil
}
