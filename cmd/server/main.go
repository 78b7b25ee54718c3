package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"otrabotki-service/internal/app"
	"otrabotki-service/internal/config"
	"otrabotki-service/internal/controller"
	"otrabotki-service/internal/repository"
	"otrabotki-service/internal/repository/filedb"
	"otrabotki-service/internal/repository/postgres"
	"otrabotki-service/internal/service"
)

type repos struct {
	schedules  repository.ScheduleRepository
	slots      repository.SlotRepository
	users      repository.UserRepository
	courses    repository.CourseRepository
	subjects   repository.SubjectRepository
	attendance repository.AttendanceRepository
	limits     repository.LimitsRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, cleanup, err := buildRepos(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to init storage", zap.Error(err))
	}
	defer cleanup()

	if err := service.Bootstrap(ctx, r.users,
		service.BootstrapAccount{Login: cfg.AdminLogin, Password: cfg.AdminPassword, FIO: "Администратор"},
		service.BootstrapAccount{Login: cfg.OperatorLogin, Password: cfg.OperatorPassword, FIO: "Оператор"},
		logger,
	); err != nil {
		logger.Fatal("Failed to seed service accounts", zap.Error(err))
	}

	limitService := service.NewLimitService(r.limits, r.slots, logger)
	var limitChecker service.LimitChecker = limitService
	if !cfg.LimitsEnabled {
		logger.Warn("Booking limits are disabled")
		limitChecker = service.NoLimits{}
	}

	authService := service.NewAuthService(r.users, cfg.JWTSecret, logger)
	bookingService := service.NewBookingService(r.slots, r.users, r.courses, limitChecker, logger)
	slotService := service.NewSlotService(r.schedules, r.slots, r.users, logger)
	attendanceService := service.NewAttendanceService(r.attendance, r.slots, r.users, logger)
	userService := service.NewUserService(r.users, r.schedules, r.slots, logger)
	catalogService := service.NewCatalogService(r.courses, r.subjects, r.limits, logger)
	analyticsService := service.NewAnalyticsService(r.users, r.slots, r.attendance, logger)

	scheduler := app.NewScheduler(slotService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	ctrl := controller.New(
		authService,
		bookingService,
		slotService,
		limitService,
		attendanceService,
		userService,
		catalogService,
		analyticsService,
		logger,
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           ctrl.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.StorageDriver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

func buildRepos(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repos, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := migrator.Run(ctx); err != nil {
			migrator.Close()
			pool.Close()
			return nil, nil, err
		}
		migrator.Close()

		store := postgres.NewStore(pool)
		return &repos{
			schedules:  postgres.NewScheduleRepo(store),
			slots:      postgres.NewSlotRepo(store),
			users:      postgres.NewUserRepo(store),
			courses:    postgres.NewCourseRepo(store),
			subjects:   postgres.NewSubjectRepo(store),
			attendance: postgres.NewAttendanceRepo(store),
			limits:     postgres.NewLimitsRepo(store),
		}, pool.Close, nil

	default:
		store, err := filedb.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return &repos{
			schedules:  filedb.NewScheduleRepo(store),
			slots:      filedb.NewSlotRepo(store),
			users:      filedb.NewUserRepo(store),
			courses:    filedb.NewCourseRepo(store),
			subjects:   filedb.NewSubjectRepo(store),
			attendance: filedb.NewAttendanceRepo(store),
			limits:     filedb.NewLimitsRepo(store),
		}, func() {}, nil
	}
}
