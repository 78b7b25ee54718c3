package controller

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"otrabotki-service/internal/model"
	"otrabotki-service/internal/repository/filedb"
	"otrabotki-service/internal/service"
)

type testAPI struct {
	server *httptest.Server
	users  *filedb.UserRepo
	slots  *filedb.SlotRepo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := filedb.NewStore(t.TempDir())
	require.NoError(t, err)

	schedules := filedb.NewScheduleRepo(store)
	slots := filedb.NewSlotRepo(store)
	users := filedb.NewUserRepo(store)
	courses := filedb.NewCourseRepo(store)
	subjects := filedb.NewSubjectRepo(store)
	attendance := filedb.NewAttendanceRepo(store)
	limits := filedb.NewLimitsRepo(store)

	logger := zap.NewNop()
	limitService := service.NewLimitService(limits, slots, logger)
	ctrl := New(
		service.NewAuthService(users, "test-secret", logger),
		service.NewBookingService(slots, users, courses, limitService, logger),
		service.NewSlotService(schedules, slots, users, logger),
		limitService,
		service.NewAttendanceService(attendance, slots, users, logger),
		service.NewUserService(users, schedules, slots, logger),
		service.NewCatalogService(courses, subjects, limits, logger),
		service.NewAnalyticsService(users, slots, attendance, logger),
		logger,
	)

	server := httptest.NewServer(ctrl.Router())
	t.Cleanup(server.Close)
	return &testAPI{server: server, users: users, slots: slots}
}

func (a *testAPI) seedUser(t *testing.T, login, password, role string) model.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	existing, err := a.users.List(context.Background())
	require.NoError(t, err)
	user := model.User{ID: "u_" + login, Login: login, Password: hash, Role: role, FIO: login, Course: 1}
	require.NoError(t, a.users.SaveAll(context.Background(), append(existing, user)))
	return user
}

func (a *testAPI) login(t *testing.T, login, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"login": login, "password": password})
	resp, err := http.Post(a.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result.Token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "st1", "secret", model.RoleStudent)

	t.Run("wrong password", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"login": "st1", "password": "wrong"})
		resp, err := http.Post(api.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me requires a token", func(t *testing.T) {
		resp := api.do(t, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me returns the profile", func(t *testing.T) {
		token := api.login(t, "st1", "secret")
		resp := api.do(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var user model.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
		assert.Equal(t, "st1", user.Login)
		assert.Empty(t, user.Password)
	})

	t.Run("register creates a student and logs them in", func(t *testing.T) {
		input := map[string]any{
			"email":             "new@example.com",
			"password":          "secret1",
			"fio":               "Новый Студент",
			"group":             "ИУ5-31Б",
			"course":            2,
			"studentCardNumber": "19У777",
		}
		resp := api.do(t, http.MethodPost, "/api/auth/register", "", input)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var result struct {
			Token string     `json:"token"`
			User  model.User `json:"user"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, model.RoleStudent, result.User.Role)
		assert.Empty(t, result.User.Password)

		// Выданный токен сразу открывает студенческие маршруты
		me := api.do(t, http.MethodGet, "/api/auth/me", result.Token, nil)
		assert.Equal(t, http.StatusOK, me.StatusCode)

		// Повторная регистрация того же email — конфликт
		again := api.do(t, http.MethodPost, "/api/auth/register", "", input)
		assert.Equal(t, http.StatusConflict, again.StatusCode)
	})
}

func TestRoleGuards(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "st1", "secret", model.RoleStudent)
	api.seedUser(t, "op1", "secret", model.RoleOperator)
	api.seedUser(t, "adm", "secret", model.RoleAdmin)

	studentToken := api.login(t, "st1", "secret")
	operatorToken := api.login(t, "op1", "secret")
	adminToken := api.login(t, "adm", "secret")

	t.Run("student cannot reach operator routes", func(t *testing.T) {
		resp := api.do(t, http.MethodGet, "/api/operator/schedules", studentToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin is allowed on operator routes", func(t *testing.T) {
		resp := api.do(t, http.MethodGet, "/api/operator/schedules", adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("operator cannot reach admin routes", func(t *testing.T) {
		resp := api.do(t, http.MethodGet, "/api/admin/users", operatorToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestErrorStatusMapping(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser(t, "st1", "secret", model.RoleStudent)
	token := api.login(t, "st1", "secret")

	t.Run("unknown slot is 404", func(t *testing.T) {
		resp := api.do(t, http.MethodPost, "/api/student/slots/missing/book", token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("policy rejection is 400", func(t *testing.T) {
		slot := model.Slot{ID: "slot_1", TeacherID: "t1", Subject: "Физика", CourseIDs: []int{1},
			Date: "2020-01-01", TimeFrom: "10:00", TimeTo: "11:00", Capacity: 5, Students: []string{}}
		require.NoError(t, api.slots.SaveAll(context.Background(), []model.Slot{slot}))

		resp := api.do(t, http.MethodPost, "/api/student/slots/slot_1/book", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body["error"], "past")
	})

	t.Run("duplicate booking is 409", func(t *testing.T) {
		slot := model.Slot{ID: "slot_2", TeacherID: "t1", Subject: "Физика", CourseIDs: []int{1},
			Date: "2999-01-01", TimeFrom: "10:00", TimeTo: "11:00", Capacity: 5, Students: []string{"u_st1"}}
		require.NoError(t, api.slots.SaveAll(context.Background(), []model.Slot{slot}))

		resp := api.do(t, http.MethodPost, "/api/student/slots/slot_2/book", token, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	resp, err := http.Get(api.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
