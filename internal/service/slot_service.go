package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/dateutil"
	"otrabotki-service/internal/idgen"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

const (
	// DefaultWeeksAhead — горизонт генерации слотов по умолчанию
	DefaultWeeksAhead = 4
	maxWeeksAhead     = 52
)

// SlotService генерирует датированные слоты из еженедельных расписаний и
// выполняет операторские правки слотов.
type SlotService struct {
	schedules repository.ScheduleRepository
	slots     repository.SlotRepository
	users     repository.UserRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewSlotService(
	schedules repository.ScheduleRepository,
	slots repository.SlotRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *SlotService {
	return &SlotService{
		schedules: schedules,
		slots:     slots,
		users:     users,
		logger:    logger,
		now:       time.Now,
	}
}

// slotKey — тождество слота для идемпотентной генерации:
// (дата, преподаватель, время начала, предмет, набор курсов).
type slotKey struct {
	date      string
	teacherID string
	timeFrom  string
	subject   string
	courseSet string
}

func keyOf(slot *model.Slot) slotKey {
	return slotKey{
		date:      slot.Date,
		teacherID: slot.TeacherID,
		timeFrom:  slot.TimeFrom,
		subject:   slot.Subject,
		courseSet: model.CourseSetKey(slot.CourseIDs),
	}
}

// GenerateForAllSchedules раскрывает все расписания в датированные слоты на
// weeksAhead недель вперёд (0 — взять значение по умолчанию). Повторный
// вызов без изменения состояния не создаёт ни одного нового слота.
// Хранилище перезаписывается один раз в конце.
func (s *SlotService) GenerateForAllSchedules(ctx context.Context, weeksAhead int) ([]model.Slot, error) {
	if weeksAhead == 0 {
		weeksAhead = DefaultWeeksAhead
	}
	if weeksAhead < 1 || weeksAhead > maxWeeksAhead {
		return nil, apperror.Validation("weeksAhead must be between 1 and %d", maxWeeksAhead)
	}

	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	existing := make(map[slotKey]struct{}, len(slots))
	for i := range slots {
		existing[keyOf(&slots[i])] = struct{}{}
	}

	today := dateutil.Midnight(s.now())
	created := []model.Slot{}

	for i := range schedules {
		schedule := &schedules[i]
		first := dateutil.NextWeekday(schedule.DayOfWeek, today)

		for week := 0; week < weeksAhead; week++ {
			date := first.AddDate(0, 0, week*7)
			// Защита от сдвига часов: прошлые даты не материализуем
			if date.Before(today) {
				continue
			}
			slot := newSlotFromSchedule(schedule, dateutil.FormatDate(date), schedule.ID)
			key := keyOf(&slot)
			if _, ok := existing[key]; ok {
				continue
			}
			existing[key] = struct{}{}
			created = append(created, slot)
		}
	}

	if len(created) > 0 {
		if err := s.slots.SaveAll(ctx, append(slots, created...)); err != nil {
			return nil, fmt.Errorf("save slots: %w", err)
		}
	}

	s.logger.Info("Generated slots for all schedules",
		zap.Int("schedules", len(schedules)),
		zap.Int("weeks_ahead", weeksAhead),
		zap.Int("created", len(created)),
	)
	return created, nil
}

// GenerateForSchedule раскрывает одно расписание, начиная с явно заданной
// даты первого слота. Дата не проверяется на "прошлое" — за её корректность
// отвечает вызывающий; каждый созданный слот несёт scheduleId источника.
func (s *SlotService) GenerateForSchedule(ctx context.Context, schedule model.RecurringSchedule, firstSlotDate string, weeksAhead int) ([]model.Slot, error) {
	if weeksAhead == 0 {
		weeksAhead = DefaultWeeksAhead
	}
	if weeksAhead < 1 || weeksAhead > maxWeeksAhead {
		return nil, apperror.Validation("weeksAhead must be between 1 and %d", maxWeeksAhead)
	}
	first, err := dateutil.ParseDate(firstSlotDate)
	if err != nil {
		return nil, apperror.Validation("invalid first slot date %q", firstSlotDate)
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	existing := make(map[slotKey]struct{}, len(slots))
	for i := range slots {
		existing[keyOf(&slots[i])] = struct{}{}
	}

	created := []model.Slot{}
	for week := 0; week < weeksAhead; week++ {
		date := first.AddDate(0, 0, week*7)
		slot := newSlotFromSchedule(&schedule, dateutil.FormatDate(date), schedule.ID)
		key := keyOf(&slot)
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		created = append(created, slot)
	}

	if len(created) > 0 {
		if err := s.slots.SaveAll(ctx, append(slots, created...)); err != nil {
			return nil, fmt.Errorf("save slots: %w", err)
		}
	}

	s.logger.Info("Generated slots for schedule",
		zap.String("schedule_id", schedule.ID),
		zap.String("first_date", firstSlotDate),
		zap.Int("created", len(created)),
	)
	return created, nil
}

func newSlotFromSchedule(schedule *model.RecurringSchedule, date, scheduleID string) model.Slot {
	return model.Slot{
		ID:         idgen.New("slot"),
		ScheduleID: scheduleID,
		TeacherID:  schedule.TeacherID,
		Subject:    schedule.Subject,
		CourseIDs:  model.NormalizeCourseIDs(schedule.CourseIDs),
		Date:       date,
		TimeFrom:   schedule.TimeFrom,
		TimeTo:     schedule.TimeTo,
		Capacity:   schedule.Capacity,
		Students:   []string{},
	}
}

// CreateScheduleInput — данные нового еженедельного расписания.
type CreateScheduleInput struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	CourseIDs []int  `json:"courseIds" validate:"required,min=1"`
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	TimeFrom  string `json:"timeFrom" validate:"required"`
	TimeTo    string `json:"timeTo" validate:"required"`
	Capacity  int    `json:"capacity" validate:"required,min=1"`
}

// CreateSchedule создаёт расписание; список курсов дедуплицируется при
// конструировании, чтобы сравнение наборов курсов было однозначным.
func (s *SlotService) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*model.RecurringSchedule, error) {
	if input.TeacherID == "" || input.Subject == "" {
		return nil, apperror.Validation("teacher and subject are required")
	}
	if len(input.CourseIDs) == 0 {
		return nil, apperror.Validation("at least one course is required")
	}
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return nil, apperror.Validation("dayOfWeek must be between 0 (Monday) and 6 (Sunday)")
	}
	if input.Capacity < 1 || input.Capacity > model.MaxCapacity {
		return nil, apperror.Validation("capacity must be between 1 and %d", model.MaxCapacity)
	}
	fromH, fromM, err := dateutil.ParseClock(input.TimeFrom)
	if err != nil {
		return nil, apperror.Validation("timeFrom must be HH:MM")
	}
	toH, toM, err := dateutil.ParseClock(input.TimeTo)
	if err != nil {
		return nil, apperror.Validation("timeTo must be HH:MM")
	}
	if toH*60+toM <= fromH*60+fromM {
		return nil, apperror.Validation("timeTo must be after timeFrom")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	teacher := findUser(users, input.TeacherID)
	if teacher == nil || !teacher.IsTeacher() {
		return nil, apperror.NotFound("teacher %s not found", input.TeacherID)
	}
	if !teacher.Teaches(input.Subject) {
		return nil, apperror.Policy("teacher %s does not teach %s", teacher.FIO, input.Subject)
	}

	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	schedule := model.RecurringSchedule{
		ID:        idgen.New("ts"),
		TeacherID: input.TeacherID,
		Subject:   input.Subject,
		CourseIDs: model.NormalizeCourseIDs(input.CourseIDs),
		DayOfWeek: input.DayOfWeek,
		TimeFrom:  input.TimeFrom,
		TimeTo:    input.TimeTo,
		Capacity:  input.Capacity,
	}
	if err := s.schedules.SaveAll(ctx, append(schedules, schedule)); err != nil {
		return nil, fmt.Errorf("save schedules: %w", err)
	}

	s.logger.Info("Schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("teacher_id", schedule.TeacherID),
		zap.String("subject", schedule.Subject),
		zap.Int("day_of_week", schedule.DayOfWeek),
	)
	return &schedule, nil
}

// DeleteSchedule удаляет расписание и каскадно все слоты, сгенерированные
// из него.
func (s *SlotService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}

	kept := schedules[:0]
	found := false
	for _, schedule := range schedules {
		if schedule.ID == scheduleID {
			found = true
			continue
		}
		kept = append(kept, schedule)
	}
	if !found {
		return apperror.NotFound("schedule %s not found", scheduleID)
	}
	if err := s.schedules.SaveAll(ctx, kept); err != nil {
		return fmt.Errorf("save schedules: %w", err)
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}
	keptSlots := slots[:0]
	removed := 0
	for _, slot := range slots {
		if slot.ScheduleID == scheduleID {
			removed++
			continue
		}
		keptSlots = append(keptSlots, slot)
	}
	if err := s.slots.SaveAll(ctx, keptSlots); err != nil {
		return fmt.Errorf("save slots: %w", err)
	}

	s.logger.Info("Schedule deleted",
		zap.String("schedule_id", scheduleID),
		zap.Int("slots_removed", removed),
	)
	return nil
}

// ListSchedules возвращает все расписания.
func (s *SlotService) ListSchedules(ctx context.Context) ([]model.RecurringSchedule, error) {
	return s.schedules.List(ctx)
}

// GetSchedule возвращает расписание по id.
func (s *SlotService) GetSchedule(ctx context.Context, scheduleID string) (*model.RecurringSchedule, error) {
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	for i := range schedules {
		if schedules[i].ID == scheduleID {
			return &schedules[i], nil
		}
	}
	return nil, apperror.NotFound("schedule %s not found", scheduleID)
}

// ListSlots возвращает все слоты.
func (s *SlotService) ListSlots(ctx context.Context) ([]model.Slot, error) {
	return s.slots.List(ctx)
}

// SlotsForSchedule возвращает слоты, сгенерированные из данного расписания.
func (s *SlotService) SlotsForSchedule(ctx context.Context, scheduleID string) ([]model.Slot, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	out := []model.Slot{}
	for _, slot := range slots {
		if slot.ScheduleID == scheduleID {
			out = append(out, slot)
		}
	}
	return out, nil
}

// SlotPatch — операторская правка полей слота; nil-поле не меняется.
type SlotPatch struct {
	Date      *string `json:"date,omitempty"`
	TimeFrom  *string `json:"timeFrom,omitempty"`
	TimeTo    *string `json:"timeTo,omitempty"`
	Capacity  *int    `json:"capacity,omitempty"`
	TeacherID *string `json:"teacherId,omitempty"`
}

// EditSlot правит слот. Проверки по порядку: слот существует; слот не в
// прошлом; вместимость в допустимых пределах и не меньше занятых мест;
// итоговое окно времени не вывернуто; новый преподаватель существует,
// имеет роль teacher и ведёт предмет слота.
//
// Смена преподавателя не правит слот на месте: для нового преподавателя
// синтезируется расписание, старый слот удаляется и вместо него вставляется
// новый слот (новый id) с перенесённым ростером. Возвращённый id считается
// авторитетным.
func (s *SlotService) EditSlot(ctx context.Context, slotID string, patch SlotPatch) (*model.Slot, error) {
	// Формат входа проверяется до чтения разделяемого состояния
	if patch.Date != nil {
		if _, err := dateutil.ParseDate(*patch.Date); err != nil {
			return nil, apperror.Validation("date must be YYYY-MM-DD")
		}
	}
	if patch.TimeFrom != nil {
		if _, _, err := dateutil.ParseClock(*patch.TimeFrom); err != nil {
			return nil, apperror.Validation("timeFrom must be HH:MM")
		}
	}
	if patch.TimeTo != nil {
		if _, _, err := dateutil.ParseClock(*patch.TimeTo); err != nil {
			return nil, apperror.Validation("timeTo must be HH:MM")
		}
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

	slotDate, err := dateutil.ParseDate(slot.Date)
	if err != nil {
		return nil, fmt.Errorf("slot %s has malformed date: %w", slot.ID, err)
	}
	today := dateutil.Midnight(s.now())
	if slotDate.Before(today) {
		return nil, apperror.Policy("cannot edit a past slot")
	}

	if patch.Capacity != nil {
		capacity := *patch.Capacity
		if capacity < 1 || capacity > model.MaxCapacity {
			return nil, apperror.Validation("capacity must be between 1 and %d", model.MaxCapacity)
		}
		if capacity < len(slot.Students) {
			return nil, apperror.Conflict("capacity cannot be lower than the %d students already booked", len(slot.Students))
		}
	}

	// Окно времени проверяется в итоговом виде: правка одного края не должна
	// вывернуть его относительно другого
	if patch.TimeFrom != nil || patch.TimeTo != nil {
		timeFrom, timeTo := slot.TimeFrom, slot.TimeTo
		if patch.TimeFrom != nil {
			timeFrom = *patch.TimeFrom
		}
		if patch.TimeTo != nil {
			timeTo = *patch.TimeTo
		}
		fromH, fromM, err := dateutil.ParseClock(timeFrom)
		if err != nil {
			return nil, fmt.Errorf("slot %s has malformed timeFrom: %w", slot.ID, err)
		}
		toH, toM, err := dateutil.ParseClock(timeTo)
		if err != nil {
			return nil, fmt.Errorf("slot %s has malformed timeTo: %w", slot.ID, err)
		}
		if toH*60+toM <= fromH*60+fromM {
			return nil, apperror.Validation("timeTo must be after timeFrom")
		}
	}

	reassign := patch.TeacherID != nil && *patch.TeacherID != slot.TeacherID
	var newTeacher *model.User
	if reassign {
		users, err := s.users.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		newTeacher = findUser(users, *patch.TeacherID)
		if newTeacher == nil || !newTeacher.IsTeacher() {
			return nil, apperror.NotFound("teacher %s not found", *patch.TeacherID)
		}
		if !newTeacher.Teaches(slot.Subject) {
			return nil, apperror.Policy("teacher %s does not teach %s", newTeacher.FIO, slot.Subject)
		}
	}

	// Все проверки пройдены — применяем правки
	if patch.Date != nil {
		slot.Date = *patch.Date
	}
	if patch.TimeFrom != nil {
		slot.TimeFrom = *patch.TimeFrom
	}
	if patch.TimeTo != nil {
		slot.TimeTo = *patch.TimeTo
	}
	if patch.Capacity != nil {
		slot.Capacity = *patch.Capacity
	}

	if !reassign {
		if err := s.slots.SaveAll(ctx, slots); err != nil {
			return nil, fmt.Errorf("save slots: %w", err)
		}
		s.logger.Info("Slot edited",
			zap.String("slot_id", slot.ID),
			zap.String("date", slot.Date),
		)
		edited := *slot
		return &edited, nil
	}

	return s.reassignTeacher(ctx, slots, idx, newTeacher)
}

// reassignTeacher реализует замену вместо правки: новое расписание для
// нового преподавателя, новый слот с прежним ростером, старый слот удаляется.
func (s *SlotService) reassignTeacher(ctx context.Context, slots []model.Slot, idx int, teacher *model.User) (*model.Slot, error) {
	old := slots[idx]

	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	// День недели берём из исходного расписания, если оно ещё живо,
	// иначе выводим из даты самого слота
	dayOfWeek := -1
	for i := range schedules {
		if schedules[i].ID == old.ScheduleID && old.ScheduleID != "" {
			dayOfWeek = schedules[i].DayOfWeek
			break
		}
	}
	if dayOfWeek < 0 {
		date, err := dateutil.ParseDate(old.Date)
		if err != nil {
			return nil, fmt.Errorf("slot %s has malformed date: %w", old.ID, err)
		}
		dayOfWeek = dateutil.FromTimeWeekday(date.Weekday())
	}

	schedule := model.RecurringSchedule{
		ID:        idgen.New("ts"),
		TeacherID: teacher.ID,
		Subject:   old.Subject,
		CourseIDs: model.NormalizeCourseIDs(old.CourseIDs),
		DayOfWeek: dayOfWeek,
		TimeFrom:  old.TimeFrom,
		TimeTo:    old.TimeTo,
		Capacity:  old.Capacity,
	}
	if err := s.schedules.SaveAll(ctx, append(schedules, schedule)); err != nil {
		return nil, fmt.Errorf("save schedules: %w", err)
	}

	replacement := model.Slot{
		ID:         idgen.New("slot"),
		ScheduleID: schedule.ID,
		TeacherID:  teacher.ID,
		Subject:    old.Subject,
		CourseIDs:  model.NormalizeCourseIDs(old.CourseIDs),
		Date:       old.Date,
		TimeFrom:   old.TimeFrom,
		TimeTo:     old.TimeTo,
		Capacity:   old.Capacity,
		Students:   append([]string{}, old.Students...),
	}

	updated := append(append([]model.Slot{}, slots[:idx]...), slots[idx+1:]...)
	updated = append(updated, replacement)
	if err := s.slots.SaveAll(ctx, updated); err != nil {
		return nil, fmt.Errorf("save slots: %w", err)
	}

	s.logger.Info("Slot reassigned to another teacher",
		zap.String("old_slot_id", old.ID),
		zap.String("new_slot_id", replacement.ID),
		zap.String("teacher_id", teacher.ID),
		zap.String("schedule_id", schedule.ID),
		zap.Int("roster_size", len(replacement.Students)),
	)
	return &replacement, nil
}
