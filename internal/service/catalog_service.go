package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

// CatalogService — справочники курсов и предметов.
type CatalogService struct {
	courses  repository.CourseRepository
	subjects repository.SubjectRepository
	limits   repository.LimitsRepository
	logger   *zap.Logger
}

func NewCatalogService(
	courses repository.CourseRepository,
	subjects repository.SubjectRepository,
	limits repository.LimitsRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		courses:  courses,
		subjects: subjects,
		limits:   limits,
		logger:   logger,
	}
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.courses.List(ctx)
}

func (s *CatalogService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.subjects.List(ctx)
}

// CreateCourse заводит курс; id — следующий по порядку.
func (s *CatalogService) CreateCourse(ctx context.Context, name string, subjectIDs []int) (*model.Course, error) {
	if name == "" {
		return nil, apperror.Validation("course name is required")
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	maxID := 0
	for i := range courses {
		if courses[i].Name == name {
			return nil, apperror.Conflict("course %q already exists", name)
		}
		if courses[i].ID > maxID {
			maxID = courses[i].ID
		}
	}
	course := model.Course{ID: maxID + 1, Name: name, SubjectIDs: subjectIDs}
	if err := s.courses.SaveAll(ctx, append(courses, course)); err != nil {
		return nil, fmt.Errorf("save courses: %w", err)
	}
	s.logger.Info("Course created", zap.Int("course_id", course.ID), zap.String("name", name))
	return &course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, courseID int) error {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}
	kept := courses[:0]
	found := false
	for i := range courses {
		if courses[i].ID == courseID {
			found = true
			continue
		}
		kept = append(kept, courses[i])
	}
	if !found {
		return apperror.NotFound("course %d not found", courseID)
	}
	if err := s.courses.SaveAll(ctx, kept); err != nil {
		return fmt.Errorf("save courses: %w", err)
	}
	s.logger.Info("Course deleted", zap.Int("course_id", courseID))
	return nil
}

// CreateSubject заводит предмет; id — следующий по порядку.
func (s *CatalogService) CreateSubject(ctx context.Context, name string) (*model.Subject, error) {
	if name == "" {
		return nil, apperror.Validation("subject name is required")
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	maxID := 0
	for i := range subjects {
		if subjects[i].Name == name {
			return nil, apperror.Conflict("subject %q already exists", name)
		}
		if subjects[i].ID > maxID {
			maxID = subjects[i].ID
		}
	}
	subject := model.Subject{ID: maxID + 1, Name: name}
	if err := s.subjects.SaveAll(ctx, append(subjects, subject)); err != nil {
		return nil, fmt.Errorf("save subjects: %w", err)
	}
	s.logger.Info("Subject created", zap.Int("subject_id", subject.ID), zap.String("name", name))
	return &subject, nil
}

func (s *CatalogService) DeleteSubject(ctx context.Context, subjectID int) error {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return fmt.Errorf("list subjects: %w", err)
	}
	kept := subjects[:0]
	found := false
	for i := range subjects {
		if subjects[i].ID == subjectID {
			found = true
			continue
		}
		kept = append(kept, subjects[i])
	}
	if !found {
		return apperror.NotFound("subject %d not found", subjectID)
	}
	if err := s.subjects.SaveAll(ctx, kept); err != nil {
		return fmt.Errorf("save subjects: %w", err)
	}
	s.logger.Info("Subject deleted", zap.Int("subject_id", subjectID))
	return nil
}

// GetLimits возвращает действующие лимиты записи.
func (s *CatalogService) GetLimits(ctx context.Context) (model.Limits, error) {
	return s.limits.Get(ctx)
}

// SetLimits обновляет лимиты записи.
func (s *CatalogService) SetLimits(ctx context.Context, limits model.Limits) (model.Limits, error) {
	if limits.MaxPerDay < 1 || limits.MaxPerWeek < 1 {
		return model.Limits{}, apperror.Validation("limits must be at least 1")
	}
	if limits.MaxPerWeek < limits.MaxPerDay {
		return model.Limits{}, apperror.Validation("weekly limit cannot be lower than the daily one")
	}
	if err := s.limits.Save(ctx, limits); err != nil {
		return model.Limits{}, fmt.Errorf("save limits: %w", err)
	}
	s.logger.Info("Limits updated",
		zap.Int("max_per_day", limits.MaxPerDay),
		zap.Int("max_per_week", limits.MaxPerWeek),
	)
	return limits, nil
}
