package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"capstone/internal/config"
	"capstone/internal/middleware"
	"capstone/internal/models"
	"capstone/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"requestId", "request ID"},
		{"supervisorId", "supervisor ID"},
		{"partnerRequestId", "partner request ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 25)
		return c.JSON(fiber.Map{"limit": p.Limit, "offset": p.Offset})
	})

	tests := []struct {
		query  string
		limit  float64
		offset float64
	}{
		{"", 25, 0},
		{"?limit=10&offset=30", 10, 30},
		{"?limit=0&offset=-4", 25, 0},
		{"?limit=5000", maxPaginationLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]float64
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.limit, body["limit"])
			assert.Equal(t, tt.offset, body["offset"])
		})
	}
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/requests/:requestId", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "requestId")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/requests/42", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, raw := range []string{"abc", "0", "-3"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/requests/"+raw, nil))
		require.NoError(t, err)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, raw)
		assert.Equal(t, "Invalid request ID", body.Error)
		assert.Equal(t, models.CodeValidation, body.Code)
	}
}

func TestActorFrom(t *testing.T) {
	tests := []struct {
		role     middleware.Role
		expected service.Actor
	}{
		{middleware.RoleStudent, service.StudentActor(7)},
		{middleware.RoleSupervisor, service.SupervisorActor(7)},
		{middleware.RoleAdmin, service.AdminActor()},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			app := fiber.New()
			var got service.Actor
			app.Get("/", func(c *fiber.Ctx) error {
				c.Locals(middleware.LocalUserID, uint(7))
				c.Locals(middleware.LocalRole, tt.role)
				got = actorFrom(c)
				return nil
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewUnauthorizedError("no"), http.StatusForbidden},
		{models.NewNotFoundError("Student", 1), http.StatusNotFound},
		{models.NewApplicationNotFoundError(1), http.StatusNotFound},
		{models.NewAlreadyPartneredOrPendingError(), http.StatusConflict},
		{models.NewReciprocalRequestExistsError(3), http.StatusConflict},
		{models.NewInvalidTransitionError(models.ApplicationStatusPending, models.ApplicationStatusApproved), http.StatusConflict},
		{models.NewContentionError(errors.New("busy")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}

func TestRespondError_ContentionSetsRetryAfter(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, models.NewContentionError(errors.New("conflict")))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestRespondError_HidesInternalCause(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, errors.New("pq: relation does not exist"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, models.CodeInternal, body.Code)
	assert.Empty(t, body.Details)
}

func TestReadinessCheck(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	s := &Server{config: &config.Config{}, db: gormDB}

	app := fiber.New()
	app.Get("/health/ready", s.ReadinessCheck)

	mock.ExpectPing()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["checks"].(map[string]interface{})["redis"])

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
