package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/model"
)

func TestCheckBookingLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults allow one per day and three per week", func(t *testing.T) {
		e := newEnv(t)
		svc := NewLimitService(e.limits, e.slots, zap.NewNop())

		// Пустое состояние — лимиты не достигнуты
		require.NoError(t, svc.CheckBookingLimits(ctx, "st1", "2026-03-04"))

		// Одна запись в этот день — дневной лимит исчерпан
		e.seedSlots(t, slotOn("slot_1", "t1", "2026-03-04", "10:00", 3, "st1"))
		err := svc.CheckBookingLimits(ctx, "st1", "2026-03-04")
		require.Error(t, err)
		assert.Equal(t, apperror.KindPolicy, apperror.KindOf(err))
		assert.Contains(t, err.Error(), "daily booking limit of 1")

		// Другой день той же недели — проходит
		require.NoError(t, svc.CheckBookingLimits(ctx, "st1", "2026-03-05"))
	})

	t.Run("weekly limit counts the sunday to saturday bucket", func(t *testing.T) {
		e := newEnv(t)
		svc := NewLimitService(e.limits, e.slots, zap.NewNop())

		// Три записи на неделе 01.03–07.03
		e.seedSlots(t,
			slotOn("a", "t1", "2026-03-02", "10:00", 3, "st1"),
			slotOn("b", "t2", "2026-03-03", "10:00", 3, "st1"),
			slotOn("c", "t3", "2026-03-05", "10:00", 3, "st1"),
		)

		err := svc.CheckBookingLimits(ctx, "st1", "2026-03-06")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weekly booking limit of 3")

		// Следующая неделя начинается в воскресенье 08.03
		require.NoError(t, svc.CheckBookingLimits(ctx, "st1", "2026-03-08"))
	})

	t.Run("custom limits from storage are honored", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.limits.Save(ctx, model.Limits{MaxPerDay: 2, MaxPerWeek: 5}))
		svc := NewLimitService(e.limits, e.slots, zap.NewNop())

		e.seedSlots(t, slotOn("a", "t1", "2026-03-04", "10:00", 3, "st1"))
		require.NoError(t, svc.CheckBookingLimits(ctx, "st1", "2026-03-04"))
	})

	t.Run("other students do not count", func(t *testing.T) {
		e := newEnv(t)
		svc := NewLimitService(e.limits, e.slots, zap.NewNop())

		e.seedSlots(t, slotOn("a", "t1", "2026-03-04", "10:00", 3, "st2", "st3"))
		require.NoError(t, svc.CheckBookingLimits(ctx, "st1", "2026-03-04"))
	})

	t.Run("malformed date", func(t *testing.T) {
		e := newEnv(t)
		svc := NewLimitService(e.limits, e.slots, zap.NewNop())

		err := svc.CheckBookingLimits(ctx, "st1", "06.03.2026")
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestNoLimits(t *testing.T) {
	assert.NoError(t, NoLimits{}.CheckBookingLimits(context.Background(), "st1", "2026-03-04"))
}

func TestLimitsUsage(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := NewLimitService(e.limits, e.slots, zap.NewNop())

	e.seedSlots(t,
		slotOn("a", "t1", "2026-03-04", "10:00", 3, "st1"),
		slotOn("b", "t2", "2026-03-05", "10:00", 3, "st1"),
		slotOn("c", "t3", "2026-03-10", "10:00", 3, "st1"), // следующая неделя
	)

	usage, err := svc.Usage(ctx, "st1", testNow)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLimits(), usage.Limits)
	assert.Equal(t, 1, usage.Today)
	assert.Equal(t, 2, usage.Week)
}
