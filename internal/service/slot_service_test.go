package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/model"
)

func scheduleFor(id, teacherID string, dayOfWeek int) model.RecurringSchedule {
	return model.RecurringSchedule{
		ID:        id,
		TeacherID: teacherID,
		Subject:   "Физика",
		CourseIDs: []int{1},
		DayOfWeek: dayOfWeek,
		TimeFrom:  "10:00",
		TimeTo:    "11:30",
		Capacity:  5,
	}
}

func TestGenerateForAllSchedules(t *testing.T) {
	ctx := context.Background()

	t.Run("expands each schedule into weekly dated slots", func(t *testing.T) {
		e := newEnv(t)
		// Часы теста — среда 04.03; пятница (индекс 4) впервые выпадает 06.03
		e.seedSchedules(t, scheduleFor("ts_1", "t1", 4))
		svc := e.slotService(t)

		created, err := svc.GenerateForAllSchedules(ctx, 0)
		require.NoError(t, err)
		require.Len(t, created, DefaultWeeksAhead)

		dates := make([]string, len(created))
		for i, slot := range created {
			dates[i] = slot.Date
			assert.Equal(t, "ts_1", slot.ScheduleID)
			assert.Equal(t, "t1", slot.TeacherID)
			assert.Equal(t, 5, slot.Capacity)
			assert.Empty(t, slot.Students)
		}
		assert.Equal(t, []string{"2026-03-06", "2026-03-13", "2026-03-20", "2026-03-27"}, dates)
	})

	t.Run("repeated run creates nothing new", func(t *testing.T) {
		e := newEnv(t)
		e.seedSchedules(t, scheduleFor("ts_1", "t1", 4), scheduleFor("ts_2", "t2", 6))
		svc := e.slotService(t)

		first, err := svc.GenerateForAllSchedules(ctx, 2)
		require.NoError(t, err)
		require.Len(t, first, 4)

		second, err := svc.GenerateForAllSchedules(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, second)

		all, err := e.slots.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("existing booked slot survives and is not duplicated", func(t *testing.T) {
		e := newEnv(t)
		e.seedSchedules(t, scheduleFor("ts_1", "t1", 4))

		existing := slotOn("slot_manual", "t1", "2026-03-06", "10:00", 5, "st1")
		existing.ScheduleID = "ts_1"
		e.seedSlots(t, existing)

		svc := e.slotService(t)
		created, err := svc.GenerateForAllSchedules(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, created, 1) // только 13.03

		all, err := e.slots.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []string{"st1"}, all[0].Students)
	})

	t.Run("identical schedules of different teachers both expand", func(t *testing.T) {
		e := newEnv(t)
		e.seedSchedules(t, scheduleFor("ts_1", "t1", 4), scheduleFor("ts_2", "t2", 4))
		svc := e.slotService(t)

		created, err := svc.GenerateForAllSchedules(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, created, 2)
	})

	t.Run("weeksAhead bounds", func(t *testing.T) {
		e := newEnv(t)
		svc := e.slotService(t)

		_, err := svc.GenerateForAllSchedules(ctx, -1)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		_, err = svc.GenerateForAllSchedules(ctx, 53)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		_, err = svc.GenerateForAllSchedules(ctx, 52)
		assert.NoError(t, err)
	})
}

func TestGenerateForSchedule(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	svc := e.slotService(t)

	schedule := scheduleFor("ts_1", "t1", 4)
	created, err := svc.GenerateForSchedule(ctx, schedule, "2026-03-06", 3)
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "2026-03-06", created[0].Date)
	assert.Equal(t, "2026-03-20", created[2].Date)
	for _, slot := range created {
		assert.Equal(t, "ts_1", slot.ScheduleID)
	}

	// Повтор с той же датой ничего не добавляет
	again, err := svc.GenerateForSchedule(ctx, schedule, "2026-03-06", 3)
	require.NoError(t, err)
	assert.Empty(t, again)

	t.Run("malformed first date", func(t *testing.T) {
		_, err := svc.GenerateForSchedule(ctx, schedule, "06.03.2026", 1)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

func TestCreateSchedule(t *testing.T) {
	ctx := context.Background()

	valid := CreateScheduleInput{
		TeacherID: "t1",
		Subject:   "Физика",
		CourseIDs: []int{2, 1, 2},
		DayOfWeek: 4,
		TimeFrom:  "10:00",
		TimeTo:    "11:30",
		Capacity:  5,
	}

	t.Run("course list is deduplicated at construction", func(t *testing.T) {
		e := newEnv(t)
		e.seedUsers(t, teacher("t1", "Физика"))
		svc := e.slotService(t)

		schedule, err := svc.CreateSchedule(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, schedule.CourseIDs)
		assert.NotEmpty(t, schedule.ID)
	})

	t.Run("teacher must exist and teach the subject", func(t *testing.T) {
		e := newEnv(t)
		e.seedUsers(t, teacher("t1", "Математика"), student("st1", 1))
		svc := e.slotService(t)

		_, err := svc.CreateSchedule(ctx, valid)
		assert.Equal(t, apperror.KindPolicy, apperror.KindOf(err))

		input := valid
		input.TeacherID = "missing"
		_, err = svc.CreateSchedule(ctx, input)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

		// Студент с подходящим id — не преподаватель
		input.TeacherID = "st1"
		_, err = svc.CreateSchedule(ctx, input)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("field validation", func(t *testing.T) {
		e := newEnv(t)
		e.seedUsers(t, teacher("t1", "Физика"))
		svc := e.slotService(t)

		for name, mutate := range map[string]func(*CreateScheduleInput){
			"day out of range":       func(in *CreateScheduleInput) { in.DayOfWeek = 7 },
			"no courses":             func(in *CreateScheduleInput) { in.CourseIDs = nil },
			"zero capacity":          func(in *CreateScheduleInput) { in.Capacity = 0 },
			"capacity over maximum":  func(in *CreateScheduleInput) { in.Capacity = model.MaxCapacity + 1 },
			"end not after start":    func(in *CreateScheduleInput) { in.TimeTo = "10:00" },
			"malformed time":         func(in *CreateScheduleInput) { in.TimeFrom = "25:00" },
		} {
			t.Run(name, func(t *testing.T) {
				input := valid
				mutate(&input)
				_, err := svc.CreateSchedule(ctx, input)
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			})
		}
	})
}

func TestDeleteSchedule(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seedUsers(t, teacher("t1", "Физика"))
	e.seedSchedules(t, scheduleFor("ts_1", "t1", 4), scheduleFor("ts_2", "t1", 5))
	svc := e.slotService(t)

	_, err := svc.GenerateForAllSchedules(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSchedule(ctx, "ts_1"))

	schedules, err := e.schedules.List(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "ts_2", schedules[0].ID)

	// Каскад: остались только слоты второго расписания
	slots, err := e.slots.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, slot := range slots {
		assert.Equal(t, "ts_2", slot.ScheduleID)
	}

	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(svc.DeleteSchedule(ctx, "ts_1")))
}

func TestEditSlot(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }
	intPtr := func(n int) *int { return &n }

	t.Run("plain field edits", func(t *testing.T) {
		e := newEnv(t)
		e.seedSlots(t, slotOn("slot_1", "t1", "2026-03-06", "10:00", 5, "st1"))
		svc := e.slotService(t)

		edited, err := svc.EditSlot(ctx, "slot_1", SlotPatch{
			Date:     strPtr("2026-03-07"),
			TimeFrom: strPtr("12:00"),
			Capacity: intPtr(8),
		})
		require.NoError(t, err)
		assert.Equal(t, "slot_1", edited.ID)
		assert.Equal(t, "2026-03-07", edited.Date)
		assert.Equal(t, "12:00", edited.TimeFrom)
		assert.Equal(t, 8, edited.Capacity)
		assert.Equal(t, []string{"st1"}, edited.Students)
	})

	t.Run("past slot cannot be edited", func(t *testing.T) {
		e := newEnv(t)
		e.seedSlots(t, slotOn("slot_1", "t1", "2026-03-03", "10:00", 5))
		svc := e.slotService(t)

		_, err := svc.EditSlot(ctx, "slot_1", SlotPatch{Capacity: intPtr(8)})
		assert.Equal(t, apperror.KindPolicy, apperror.KindOf(err))
	})

	t.Run("capacity cannot shrink below the roster", func(t *testing.T) {
		e := newEnv(t)
		e.seedSlots(t, slotOn("slot_1", "t1", "2026-03-06", "10:00", 5, "st1", "st2", "st3"))
		svc := e.slotService(t)

		_, err := svc.EditSlot(ctx, "slot_1", SlotPatch{Capacity: intPtr(2)})
		require.Error(t, err)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.Contains(t, err.Error(), "3 students")

		// Слот не изменён
		slots, err := e.slots.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, slots[0].Capacity)
	})

	t.Run("edit cannot invert the time window", func(t *testing.T) {
		e := newEnv(t)
		e.seedSlots(t, slotOn("slot_1", "t1", "2026-03-06", "10:00", 5))
		svc := e.slotService(t)

		// TimeTo слота — 23:00: начало, сдвинутое на конец, выворачивает окно
		_, err := svc.EditSlot(ctx, "slot_1", SlotPatch{TimeFrom: strPtr("23:00")})
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

		_, err = svc.EditSlot(ctx, "slot_1", SlotPatch{TimeTo: strPtr("09:00")})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

		_, err = svc.EditSlot(ctx, "slot_1", SlotPatch{
			TimeFrom: strPtr("12:00"),
			TimeTo:   strPtr("11:00"),
		})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

		// Слот не изменён
		slots, err := e.slots.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "10:00", slots[0].TimeFrom)
		assert.Equal(t, "23:00", slots[0].TimeTo)

		// Согласованная правка обоих краёв проходит
		edited, err := svc.EditSlot(ctx, "slot_1", SlotPatch{
			TimeFrom: strPtr("12:00"),
			TimeTo:   strPtr("13:30"),
		})
		require.NoError(t, err)
		assert.Equal(t, "12:00", edited.TimeFrom)
		assert.Equal(t, "13:30", edited.TimeTo)
	})

	t.Run("malformed patch is rejected before state checks", func(t *testing.T) {
		e := newEnv(t)
		svc := e.slotService(t)

		_, err := svc.EditSlot(ctx, "missing", SlotPatch{Date: strPtr("bad")})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("teacher reassignment replaces the slot", func(t *testing.T) {
		e := newEnv(t)
		e.seedUsers(t, teacher("t1", "Физика"), teacher("t2", "Физика"))
		e.seedSchedules(t, scheduleFor("ts_1", "t1", 4))

		original := slotOn("slot_1", "t1", "2026-03-06", "10:00", 5, "st1", "st2")
		original.ScheduleID = "ts_1"
		e.seedSlots(t, original)
		svc := e.slotService(t)

		replacement, err := svc.EditSlot(ctx, "slot_1", SlotPatch{TeacherID: strPtr("t2")})
		require.NoError(t, err)

		assert.NotEqual(t, "slot_1", replacement.ID)
		assert.Equal(t, "t2", replacement.TeacherID)
		assert.Equal(t, []string{"st1", "st2"}, replacement.Students)
		assert.Equal(t, "2026-03-06", replacement.Date)

		// Старый слот удалён
		slots, err := e.slots.List(ctx)
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, replacement.ID, slots[0].ID)

		// Для нового преподавателя синтезировано расписание с тем же днём недели
		schedules, err := e.schedules.List(ctx)
		require.NoError(t, err)
		require.Len(t, schedules, 2)
		synthesized := schedules[1]
		assert.Equal(t, "t2", synthesized.TeacherID)
		assert.Equal(t, 4, synthesized.DayOfWeek)
		assert.Equal(t, synthesized.ID, replacement.ScheduleID)
	})

	t.Run("reassignment target must teach the subject", func(t *testing.T) {
		e := newEnv(t)
		e.seedUsers(t, teacher("t1", "Физика"), teacher("t2", "Математика"))
		e.seedSlots(t, slotOn("slot_1", "t1", "2026-03-06", "10:00", 5))
		svc := e.slotService(t)

		_, err := svc.EditSlot(ctx, "slot_1", SlotPatch{TeacherID: strPtr("t2")})
		assert.Equal(t, apperror.KindPolicy, apperror.KindOf(err))

		_, err = svc.EditSlot(ctx, "slot_1", SlotPatch{TeacherID: strPtr("missing")})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("orphan slot derives the weekday from its date", func(t *testing.T) {
		e := newEnv(t)
		e.seedUsers(t, teacher("t2", "Физика"))
		// Слот без scheduleId: 2026-03-08 — воскресенье, домашний индекс 6
		e.seedSlots(t, slotOn("slot_1", "t1", "2026-03-08", "10:00", 5))
		svc := e.slotService(t)

		replacement, err := svc.EditSlot(ctx, "slot_1", SlotPatch{TeacherID: strPtr("t2")})
		require.NoError(t, err)

		schedules, err := e.schedules.List(ctx)
		require.NoError(t, err)
		require.Len(t, schedules, 1)
		assert.Equal(t, 6, schedules[0].DayOfWeek)
		assert.Equal(t, schedules[0].ID, replacement.ScheduleID)
	})
}
