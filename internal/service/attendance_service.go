package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

// AttendanceService ведёт отметки посещения и сдачи отработок.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	slots      repository.SlotRepository
	users      repository.UserRepository
	logger     *zap.Logger
}

func NewAttendanceService(
	attendance repository.AttendanceRepository,
	slots repository.SlotRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		attendance: attendance,
		slots:      slots,
		users:      users,
		logger:     logger,
	}
}

// MarkInput — отметка одного студента на слоте.
type MarkInput struct {
	SlotID    string `json:"slotId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Attended  bool   `json:"attended"`
	Completed bool   `json:"completed"`
}

// Mark ставит или обновляет отметку. Преподаватель может отмечать только
// свои слоты и только записанных на них студентов.
func (s *AttendanceService) Mark(ctx context.Context, teacherID string, input MarkInput) (*model.AttendanceRecord, error) {
	if input.SlotID == "" || input.StudentID == "" {
		return nil, apperror.Validation("slot id and student id are required")
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	idx := findSlot(slots, input.SlotID)
	if idx < 0 {
		return nil, apperror.NotFound("slot %s not found", input.SlotID)
	}
	slot := &slots[idx]

	if slot.TeacherID != teacherID {
		return nil, apperror.Forbidden("slot belongs to another teacher")
	}
	if !slot.HasStudent(input.StudentID) {
		return nil, apperror.Conflict("student is not booked for this slot")
	}

	records, err := s.attendance.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	record := model.AttendanceRecord{
		SlotID:    input.SlotID,
		StudentID: input.StudentID,
		Attended:  input.Attended,
		Completed: input.Completed,
	}

	updated := false
	for i := range records {
		if records[i].SlotID == input.SlotID && records[i].StudentID == input.StudentID {
			records[i] = record
			updated = true
			break
		}
	}
	if !updated {
		records = append(records, record)
	}
	if err := s.attendance.SaveAll(ctx, records); err != nil {
		return nil, fmt.Errorf("save attendance: %w", err)
	}

	s.logger.Info("Attendance marked",
		zap.String("slot_id", input.SlotID),
		zap.String("student_id", input.StudentID),
		zap.Bool("attended", input.Attended),
		zap.Bool("completed", input.Completed),
	)
	return &record, nil
}

// RosterEntry — студент из ростера слота вместе с его отметкой (если есть).
type RosterEntry struct {
	Student model.User              `json:"student"`
	Record  *model.AttendanceRecord `json:"record"`
}

// Roster возвращает ростер слота в порядке записи; отметки подставляются,
// где они есть.
func (s *AttendanceService) Roster(ctx context.Context, teacherID, slotID string) ([]RosterEntry, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	idx := findSlot(slots, slotID)
	if idx < 0 {
		return nil, apperror.NotFound("slot %s not found", slotID)
	}
	slot := &slots[idx]
	if slot.TeacherID != teacherID {
		return nil, apperror.Forbidden("slot belongs to another teacher")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	records, err := s.attendance.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	entries := []RosterEntry{}
	for _, studentID := range slot.Students {
		entry := RosterEntry{}
		if u := findUser(users, studentID); u != nil {
			entry.Student = u.Public()
		} else {
			entry.Student = model.User{ID: studentID}
		}
		for i := range records {
			if records[i].SlotID == slotID && records[i].StudentID == studentID {
				entry.Record = &records[i]
				break
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// TeacherStats — сводка по слотам преподавателя.
type TeacherStats struct {
	Slots     int `json:"slots"`
	Booked    int `json:"booked"`
	Attended  int `json:"attended"`
	Completed int `json:"completed"`
}

// Stats агрегирует посещаемость по всем слотам преподавателя.
func (s *AttendanceService) Stats(ctx context.Context, teacherID string) (TeacherStats, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return TeacherStats{}, fmt.Errorf("list slots: %w", err)
	}
	records, err := s.attendance.List(ctx)
	if err != nil {
		return TeacherStats{}, fmt.Errorf("list attendance: %w", err)
	}

	own := make(map[string]struct{})
	stats := TeacherStats{}
	for i := range slots {
		if slots[i].TeacherID != teacherID {
			continue
		}
		own[slots[i].ID] = struct{}{}
		stats.Slots++
		stats.Booked += len(slots[i].Students)
	}
	for i := range records {
		if _, ok := own[records[i].SlotID]; !ok {
			continue
		}
		if records[i].Attended {
			stats.Attended++
		}
		if records[i].Completed {
			stats.Completed++
		}
	}
	return stats, nil
}

// TeacherSlots возвращает слоты преподавателя, отсортированные по дате и
// времени начала.
func (s *AttendanceService) TeacherSlots(ctx context.Context, teacherID string) ([]model.Slot, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	out := []model.Slot{}
	for i := range slots {
		if slots[i].TeacherID == teacherID {
			out = append(out, slots[i])
		}
	}
	sortSlots(out)
	return out, nil
}
