package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/idgen"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

// defaultTeacherPassword выдаётся новым преподавателям; смена — через админа.
const defaultTeacherPassword = "123"

// UserService — управление учётными записями: админский CRUD и
// операторское заведение преподавателей.
type UserService struct {
	users     repository.UserRepository
	schedules repository.ScheduleRepository
	slots     repository.SlotRepository
	logger    *zap.Logger
}

func NewUserService(
	users repository.UserRepository,
	schedules repository.ScheduleRepository,
	slots repository.SlotRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:     users,
		schedules: schedules,
		slots:     slots,
		logger:    logger,
	}
}

// CreateUserInput — данные новой учётной записи.
type CreateUserInput struct {
	Login    string   `json:"login" validate:"required"`
	Password string   `json:"password" validate:"required,min=3"`
	Role     string   `json:"role" validate:"required,oneof=admin operator teacher student"`
	FIO      string   `json:"fio" validate:"required"`
	Group    string   `json:"group,omitempty"`
	Course   int      `json:"course,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

// Create заводит пользователя любой роли. Логин уникален.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if input.Login == "" || input.Password == "" || input.FIO == "" {
		return nil, apperror.Validation("login, password and fio are required")
	}
	switch input.Role {
	case model.RoleAdmin, model.RoleOperator, model.RoleTeacher, model.RoleStudent:
	default:
		return nil, apperror.Validation("unknown role %q", input.Role)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		if users[i].Login == input.Login {
			return nil, apperror.Conflict("login %s is already taken", input.Login)
		}
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := model.User{
		ID:       idgen.New("u"),
		Login:    input.Login,
		Password: hash,
		Role:     input.Role,
		FIO:      input.FIO,
		Group:    input.Group,
		Course:   input.Course,
		Subjects: input.Subjects,
	}
	if err := s.users.SaveAll(ctx, append(users, user)); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role),
	)
	public := user.Public()
	return &public, nil
}

// CreateTeacherInput — операторское заведение преподавателя: логин
// порождается транслитерацией ФИО, пароль — дефолтный.
type CreateTeacherInput struct {
	FIO      string   `json:"fio" validate:"required"`
	Subjects []string `json:"subjects" validate:"required,min=1"`
}

func (s *UserService) CreateTeacher(ctx context.Context, input CreateTeacherInput) (*model.User, error) {
	if input.FIO == "" {
		return nil, apperror.Validation("fio is required")
	}
	if len(input.Subjects) == 0 {
		return nil, apperror.Validation("at least one subject is required")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	login := uniqueLogin(translitLogin(input.FIO), users)
	hash, err := HashPassword(defaultTeacherPassword)
	if err != nil {
		return nil, err
	}
	teacher := model.User{
		ID:       idgen.New("u"),
		Login:    login,
		Password: hash,
		Role:     model.RoleTeacher,
		FIO:      input.FIO,
		Subjects: input.Subjects,
	}
	if err := s.users.SaveAll(ctx, append(users, teacher)); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}

	s.logger.Info("Teacher created",
		zap.String("user_id", teacher.ID),
		zap.String("login", teacher.Login),
	)
	public := teacher.Public()
	return &public, nil
}

// UpdateUserInput — правка учётной записи; nil-поле не меняется.
type UpdateUserInput struct {
	Password *string   `json:"password,omitempty"`
	FIO      *string   `json:"fio,omitempty"`
	Group    *string   `json:"group,omitempty"`
	Course   *int      `json:"course,omitempty"`
	Subjects *[]string `json:"subjects,omitempty"`
}

func (s *UserService) Update(ctx context.Context, userID string, input UpdateUserInput) (*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	user := findUser(users, userID)
	if user == nil {
		return nil, apperror.NotFound("user %s not found", userID)
	}

	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperror.Validation("password cannot be empty")
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if input.FIO != nil {
		user.FIO = *input.FIO
	}
	if input.Group != nil {
		user.Group = *input.Group
	}
	if input.Course != nil {
		user.Course = *input.Course
	}
	if input.Subjects != nil {
		user.Subjects = *input.Subjects
	}

	if err := s.users.SaveAll(ctx, users); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}

	s.logger.Info("User updated", zap.String("user_id", userID))
	public := user.Public()
	return &public, nil
}

// Delete удаляет учётную запись. Для преподавателя каскадно удаляются его
// расписания и слоты.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var deleted *model.User
	kept := users[:0]
	for i := range users {
		if users[i].ID == userID {
			u := users[i]
			deleted = &u
			continue
		}
		kept = append(kept, users[i])
	}
	if deleted == nil {
		return apperror.NotFound("user %s not found", userID)
	}
	if err := s.users.SaveAll(ctx, kept); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	if deleted.IsTeacher() {
		if err := s.cascadeTeacher(ctx, userID); err != nil {
			return err
		}
	}

	s.logger.Info("User deleted",
		zap.String("user_id", userID),
		zap.String("role", deleted.Role),
	)
	return nil
}

func (s *UserService) cascadeTeacher(ctx context.Context, teacherID string) error {
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}
	keptSchedules := schedules[:0]
	for i := range schedules {
		if schedules[i].TeacherID != teacherID {
			keptSchedules = append(keptSchedules, schedules[i])
		}
	}
	if err := s.schedules.SaveAll(ctx, keptSchedules); err != nil {
		return fmt.Errorf("save schedules: %w", err)
	}

	slots, err := s.slots.List(ctx)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}
	keptSlots := slots[:0]
	for i := range slots {
		if slots[i].TeacherID != teacherID {
			keptSlots = append(keptSlots, slots[i])
		}
	}
	if err := s.slots.SaveAll(ctx, keptSlots); err != nil {
		return fmt.Errorf("save slots: %w", err)
	}
	return nil
}

// List возвращает пользователей (опционально — одной роли) без хэшей паролей.
func (s *UserService) List(ctx context.Context, role string) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := []model.User{}
	for i := range users {
		if role != "" && users[i].Role != role {
			continue
		}
		out = append(out, users[i].Public())
	}
	return out, nil
}

// Get возвращает пользователя без хэша пароля.
func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	user := findUser(users, userID)
	if user == nil {
		return nil, apperror.NotFound("user %s not found", userID)
	}
	public := user.Public()
	return &public, nil
}

// translitMap — упрощённая транслитерация кириллицы для генерации логинов
var translitMap = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// translitLogin строит логин вида "ivanov.ii" из ФИО "Иванов Иван Иванович".
func translitLogin(fio string) string {
	parts := strings.Fields(strings.ToLower(fio))
	if len(parts) == 0 {
		return "teacher"
	}
	var b strings.Builder
	b.WriteString(translit(parts[0]))
	if len(parts) > 1 {
		b.WriteByte('.')
		for _, part := range parts[1:] {
			for _, r := range part {
				b.WriteString(translit(string(r)))
				break
			}
		}
	}
	return b.String()
}

func translit(s string) string {
	var b strings.Builder
	for _, r := range s {
		if t, ok := translitMap[r]; ok {
			b.WriteString(t)
			continue
		}
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// uniqueLogin добавляет числовой суффикс при коллизии логинов.
func uniqueLogin(base string, users []model.User) string {
	taken := make(map[string]struct{}, len(users))
	for i := range users {
		taken[users[i].Login] = struct{}{}
	}
	if _, ok := taken[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s%d", base, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
