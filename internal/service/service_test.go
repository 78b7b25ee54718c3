package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository/filedb"
)

// Фиксированные часы всех сервисных тестов: среда 2026-03-04, полдень.
// Неделя квот для этой даты: 2026-03-01 (Вс) — 2026-03-07 (Сб).
var testNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)

func fixedNow() time.Time { return testNow }

type env struct {
	schedules  *filedb.ScheduleRepo
	slots      *filedb.SlotRepo
	users      *filedb.UserRepo
	courses    *filedb.CourseRepo
	subjects   *filedb.SubjectRepo
	attendance *filedb.AttendanceRepo
	limits     *filedb.LimitsRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := filedb.NewStore(t.TempDir())
	require.NoError(t, err)
	return &env{
		schedules:  filedb.NewScheduleRepo(store),
		slots:      filedb.NewSlotRepo(store),
		users:      filedb.NewUserRepo(store),
		courses:    filedb.NewCourseRepo(store),
		subjects:   filedb.NewSubjectRepo(store),
		attendance: filedb.NewAttendanceRepo(store),
		limits:     filedb.NewLimitsRepo(store),
	}
}

func (e *env) seedUsers(t *testing.T, users ...model.User) {
	t.Helper()
	require.NoError(t, e.users.SaveAll(context.Background(), users))
}

func (e *env) seedSlots(t *testing.T, slots ...model.Slot) {
	t.Helper()
	require.NoError(t, e.slots.SaveAll(context.Background(), slots))
}

func (e *env) seedSchedules(t *testing.T, schedules ...model.RecurringSchedule) {
	t.Helper()
	require.NoError(t, e.schedules.SaveAll(context.Background(), schedules))
}

func (e *env) seedCourses(t *testing.T, courses ...model.Course) {
	t.Helper()
	require.NoError(t, e.courses.SaveAll(context.Background(), courses))
}

func (e *env) bookingService(t *testing.T, limits LimitChecker) *BookingService {
	t.Helper()
	s := NewBookingService(e.slots, e.users, e.courses, limits, zap.NewNop())
	s.now = fixedNow
	return s
}

func (e *env) slotService(t *testing.T) *SlotService {
	t.Helper()
	s := NewSlotService(e.schedules, e.slots, e.users, zap.NewNop())
	s.now = fixedNow
	return s
}

func teacher(id string, subjects ...string) model.User {
	return model.User{ID: id, Login: id, Role: model.RoleTeacher, FIO: "Преподаватель " + id, Subjects: subjects}
}

func student(id string, course int) model.User {
	return model.User{ID: id, Login: id, Role: model.RoleStudent, FIO: "Студент " + id, Group: "А-11", Course: course}
}

func slotOn(id, teacherID, date, timeFrom string, capacity int, students ...string) model.Slot {
	if students == nil {
		students = []string{}
	}
	return model.Slot{
		ID:        id,
		TeacherID: teacherID,
		Subject:   "Физика",
		CourseIDs: []int{1},
		Date:      date,
		TimeFrom:  timeFrom,
		TimeTo:    "23:00",
		Capacity:  capacity,
		Students:  students,
	}
}
