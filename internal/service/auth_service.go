package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"otrabotki-service/internal/apperror"
	"otrabotki-service/internal/idgen"
	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository"
)

const tokenTTL = 24 * time.Hour

// Claims — полезная нагрузка токена доступа.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// AuthService проверяет учётные данные и выпускает JWT.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, secret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		logger: logger,
		now:    time.Now,
	}
}

// LoginResult — токен и публичный профиль вошедшего пользователя.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login сверяет логин и пароль и выпускает подписанный токен. Неверный логин
// и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	if login == "" || password == "" {
		return nil, apperror.Validation("login and password are required")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var user *model.User
	for i := range users {
		if users[i].Login == login {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return nil, apperror.Unauthorized("invalid login or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("invalid login or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("role", user.Role),
	)
	return &LoginResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Role: user.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// RegisterInput — данные самостоятельной регистрации студента.
// Email становится логином.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FIO         string `json:"fio" validate:"required"`
	Group       string `json:"group" validate:"required"`
	Course      int    `json:"course" validate:"required,min=1"`
	StudentCard string `json:"studentCardNumber" validate:"required"`
}

// Register заводит студента и сразу выпускает токен для автоматического
// входа. Email и номер зачётки уникальны.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	login := strings.ToLower(strings.TrimSpace(input.Email))
	card := strings.TrimSpace(input.StudentCard)

	if login == "" || !strings.Contains(login, "@") {
		return nil, apperror.Validation("a valid email is required")
	}
	if len(input.Password) < 6 {
		return nil, apperror.Validation("password must be at least 6 characters")
	}
	if input.FIO == "" || input.Group == "" || card == "" {
		return nil, apperror.Validation("fio, group and student card number are required")
	}
	if input.Course < 1 {
		return nil, apperror.Validation("course must be at least 1")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		if users[i].Login == login {
			return nil, apperror.Conflict("user with email %s is already registered", login)
		}
		if users[i].StudentCard != "" && users[i].StudentCard == card {
			return nil, apperror.Conflict("student card %s is already registered", card)
		}
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	student := model.User{
		ID:          idgen.New("s"),
		Login:       login,
		Password:    hash,
		Role:        model.RoleStudent,
		FIO:         strings.TrimSpace(input.FIO),
		Group:       strings.TrimSpace(input.Group),
		Course:      input.Course,
		StudentCard: card,
	}
	if err := s.users.SaveAll(ctx, append(users, student)); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}

	token, err := s.issueToken(&student)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Student registered",
		zap.String("user_id", student.ID),
		zap.String("group", student.Group),
	)
	return &LoginResult{Token: token, User: student.Public()}, nil
}

// ParseToken проверяет подпись и срок действия токена.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

// Me возвращает публичный профиль по id из токена.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
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

// HashPassword хэширует пароль bcrypt-ом со стандартной стоимостью.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
