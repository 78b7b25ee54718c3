// Package controller — HTTP-слой: маршрутизация, аутентификация и перевод
// доменных ошибок в статусы ответа.
package controller

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"otrabotki-service/internal/model"
	"otrabotki-service/internal/service"
)

// Controller держит сервисы и собирает из них HTTP-роутер.
type Controller struct {
	auth       *service.AuthService
	booking    *service.BookingService
	slots      *service.SlotService
	limits     *service.LimitService
	attendance *service.AttendanceService
	users      *service.UserService
	catalog    *service.CatalogService
	analytics  *service.AnalyticsService
	validate   *validator.Validate
	logger     *zap.Logger
}

func New(
	auth *service.AuthService,
	booking *service.BookingService,
	slots *service.SlotService,
	limits *service.LimitService,
	attendance *service.AttendanceService,
	users *service.UserService,
	catalog *service.CatalogService,
	analytics *service.AnalyticsService,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		auth:       auth,
		booking:    booking,
		slots:      slots,
		limits:     limits,
		attendance: attendance,
		users:      users,
		catalog:    catalog,
		analytics:  analytics,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Router собирает все маршруты с общими middleware.
func (c *Controller) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(100, time.Minute))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/auth/login", c.handleLogin)
	r.Post("/api/auth/register", c.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(c.Authenticate)

		r.Get("/api/auth/me", c.handleMe)
		r.Get("/api/courses", c.handleListCourses)
		r.Get("/api/subjects", c.handleListSubjects)

		r.Route("/api/student", func(r chi.Router) {
			r.Use(c.RequireRole(model.RoleStudent))
			r.Get("/slots", c.handleAvailableSlots)
			r.Get("/bookings", c.handleMyBookings)
			r.Post("/slots/{slotID}/book", c.handleBook)
			r.Delete("/slots/{slotID}/book", c.handleCancel)
			r.Get("/limits", c.handleMyLimits)
		})

		r.Route("/api/teacher", func(r chi.Router) {
			r.Use(c.RequireRole(model.RoleTeacher))
			r.Get("/slots", c.handleTeacherSlots)
			r.Get("/slots/{slotID}/roster", c.handleRoster)
			r.Post("/attendance", c.handleMarkAttendance)
			r.Get("/stats", c.handleTeacherStats)
			r.Get("/week-image", c.handleWeekImage)
		})

		r.Route("/api/operator", func(r chi.Router) {
			r.Use(c.RequireRole(model.RoleOperator, model.RoleAdmin))
			r.Post("/teachers", c.handleCreateTeacher)
			r.Get("/teachers", c.handleListTeachers)
			r.Get("/schedules", c.handleListSchedules)
			r.Post("/schedules", c.handleCreateSchedule)
			r.Delete("/schedules/{scheduleID}", c.handleDeleteSchedule)
			r.Post("/schedules/{scheduleID}/generate", c.handleGenerateForSchedule)
			r.Post("/slots/generate", c.handleGenerateAll)
			r.Get("/slots", c.handleAllSlots)
			r.Patch("/slots/{slotID}", c.handleEditSlot)
			r.Post("/courses", c.handleCreateCourse)
			r.Delete("/courses/{courseID}", c.handleDeleteCourse)
			r.Post("/subjects", c.handleCreateSubject)
			r.Delete("/subjects/{subjectID}", c.handleDeleteSubject)
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(c.RequireRole(model.RoleAdmin))
			r.Get("/users", c.handleListUsers)
			r.Post("/users", c.handleCreateUser)
			r.Get("/users/{userID}", c.handleGetUser)
			r.Patch("/users/{userID}", c.handleUpdateUser)
			r.Delete("/users/{userID}", c.handleDeleteUser)
			r.Get("/limits", c.handleGetLimits)
			r.Put("/limits", c.handleSetLimits)
			r.Get("/analytics", c.handleAnalytics)
			r.Get("/requests", c.handleBookingRequests)
		})
	})

	return r
}
