package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

// AnalyticsService собирает сводную статистику для администратора.
type AnalyticsService struct {
	users      repository.UserRepository
	slots      repository.SlotRepository
	attendance repository.AttendanceRepository
	logger     *zap.Logger
}

func NewAnalyticsService(
	users repository.UserRepository,
	slots repository.SlotRepository,
	attendance repository.AttendanceRepository,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		users:      users,
		slots:      slots,
		attendance: attendance,
		logger:     logger,
	}
}

// BookingRequest — одна запись "студент на слоте" в плоском виде.
type BookingRequest struct {
	SlotID     string `json:"slotId"`
	Date       string `json:"date"`
	TimeFrom   string `json:"timeFrom"`
	Subject    string `json:"subject"`
	TeacherID  string `json:"teacherId"`
	TeacherFIO string `json:"teacherFio"`
	StudentID  string `json:"studentId"`
	StudentFIO string `json:"studentFio"`
	Attended   bool   `json:"attended"`
	Completed  bool   `json:"completed"`
}

// BookingRequests разворачивает ростеры всех слотов в плоский список записей
// с отметками посещения, отсортированный по дате и времени начала.
func (s *AnalyticsService) BookingRequests(ctx context.Context) ([]BookingRequest, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	records, err := s.attendance.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	fio := make(map[string]string, len(users))
	for i := range users {
		fio[users[i].ID] = users[i].FIO
	}
	type markKey struct{ slotID, studentID string }
	marks := make(map[markKey]*model.AttendanceRecord, len(records))
	for i := range records {
		marks[markKey{records[i].SlotID, records[i].StudentID}] = &records[i]
	}

	requests := []BookingRequest{}
	for i := range slots {
		slot := &slots[i]
		for _, studentID := range slot.Students {
			req := BookingRequest{
				SlotID:     slot.ID,
				Date:       slot.Date,
				TimeFrom:   slot.TimeFrom,
				Subject:    slot.Subject,
				TeacherID:  slot.TeacherID,
				TeacherFIO: fio[slot.TeacherID],
				StudentID:  studentID,
				StudentFIO: fio[studentID],
			}
			if mark := marks[markKey{slot.ID, studentID}]; mark != nil {
				req.Attended = mark.Attended
				req.Completed = mark.Completed
			}
			requests = append(requests, req)
		}
	}
	sort.SliceStable(requests, func(i, j int) bool {
		if requests[i].Date != requests[j].Date {
			return requests[i].Date < requests[j].Date
		}
		return requests[i].TimeFrom < requests[j].TimeFrom
	})
	return requests, nil
}

// Overview — общая сводка по системе.
type Overview struct {
	Students       int     `json:"students"`
	Teachers       int     `json:"teachers"`
	Slots          int     `json:"slots"`
	Bookings       int     `json:"bookings"`
	Attended       int     `json:"attended"`
	Completed      int     `json:"completed"`
	AttendanceRate float64 `json:"attendanceRate"`
	CompletionRate float64 `json:"completionRate"`
}

// SubjectStat — статистика по одному предмету.
type SubjectStat struct {
	Subject  string `json:"subject"`
	Slots    int    `json:"slots"`
	Bookings int    `json:"bookings"`
}

// TeacherStat — статистика по одному преподавателю.
type TeacherStat struct {
	TeacherID string `json:"teacherId"`
	FIO       string `json:"fio"`
	Slots     int    `json:"slots"`
	Bookings  int    `json:"bookings"`
	Attended  int    `json:"attended"`
	Completed int    `json:"completed"`
}

// StudentStat — статистика по одному студенту.
type StudentStat struct {
	StudentID string `json:"studentId"`
	FIO       string `json:"fio"`
	Bookings  int    `json:"bookings"`
	Attended  int    `json:"attended"`
	Completed int    `json:"completed"`
}

// Report — полный аналитический отчёт.
type Report struct {
	Overview Overview      `json:"overview"`
	Subjects []SubjectStat `json:"subjects"`
	Teachers []TeacherStat `json:"teachers"`
	Students []StudentStat `json:"students"`
}

// BuildReport агрегирует всё состояние в один отчёт. Срезы отчёта
// отсортированы по убыванию числа записей.
func (s *AnalyticsService) BuildReport(ctx context.Context) (*Report, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	records, err := s.attendance.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	report := &Report{}
	subjectIdx := map[string]*SubjectStat{}
	teacherIdx := map[string]*TeacherStat{}
	studentIdx := map[string]*StudentStat{}
	slotTeacher := map[string]string{}

	for i := range users {
		switch users[i].Role {
		case model.RoleStudent:
			report.Overview.Students++
			studentIdx[users[i].ID] = &StudentStat{StudentID: users[i].ID, FIO: users[i].FIO}
		case model.RoleTeacher:
			report.Overview.Teachers++
			teacherIdx[users[i].ID] = &TeacherStat{TeacherID: users[i].ID, FIO: users[i].FIO}
		}
	}

	for i := range slots {
		slot := &slots[i]
		report.Overview.Slots++
		report.Overview.Bookings += len(slot.Students)
		slotTeacher[slot.ID] = slot.TeacherID

		sub := subjectIdx[slot.Subject]
		if sub == nil {
			sub = &SubjectStat{Subject: slot.Subject}
			subjectIdx[slot.Subject] = sub
		}
		sub.Slots++
		sub.Bookings += len(slot.Students)

		if t := teacherIdx[slot.TeacherID]; t != nil {
			t.Slots++
			t.Bookings += len(slot.Students)
		}
		for _, studentID := range slot.Students {
			if st := studentIdx[studentID]; st != nil {
				st.Bookings++
			}
		}
	}

	for i := range records {
		r := &records[i]
		if r.Attended {
			report.Overview.Attended++
		}
		if r.Completed {
			report.Overview.Completed++
		}
		if t := teacherIdx[slotTeacher[r.SlotID]]; t != nil {
			if r.Attended {
				t.Attended++
			}
			if r.Completed {
				t.Completed++
			}
		}
		if st := studentIdx[r.StudentID]; st != nil {
			if r.Attended {
				st.Attended++
			}
			if r.Completed {
				st.Completed++
			}
		}
	}

	if report.Overview.Bookings > 0 {
		report.Overview.AttendanceRate = float64(report.Overview.Attended) / float64(report.Overview.Bookings)
		report.Overview.CompletionRate = float64(report.Overview.Completed) / float64(report.Overview.Bookings)
	}

	for _, v := range subjectIdx {
		report.Subjects = append(report.Subjects, *v)
	}
	for _, v := range teacherIdx {
		report.Teachers = append(report.Teachers, *v)
	}
	for _, v := range studentIdx {
		report.Students = append(report.Students, *v)
	}
	sort.Slice(report.Subjects, func(i, j int) bool {
		if report.Subjects[i].Bookings != report.Subjects[j].Bookings {
			return report.Subjects[i].Bookings > report.Subjects[j].Bookings
		}
		return report.Subjects[i].Subject < report.Subjects[j].Subject
	})
	sort.Slice(report.Teachers, func(i, j int) bool {
		if report.Teachers[i].Bookings != report.Teachers[j].Bookings {
			return report.Teachers[i].Bookings > report.Teachers[j].Bookings
		}
		return report.Teachers[i].FIO < report.Teachers[j].FIO
	})
	sort.Slice(report.Students, func(i, j int) bool {
		if report.Students[i].Bookings != report.Students[j].Bookings {
			return report.Students[i].Bookings > report.Students[j].Bookings
		}
		return report.Students[i].FIO < report.Students[j].FIO
	})

	s.logger.Debug("Analytics report built",
		zap.Int("slots", report.Overview.Slots),
		zap.Int("bookings", report.Overview.Bookings),
	)
	return report, nil
}
