package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"traveldesk/internal/models"
	"traveldesk/internal/repository"
	"traveldesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type travelTestEnv struct {
	app   *fiber.App
	db    *gorm.DB
	admin models.User
	owner models.User
	other models.User
}

// setupTravelTestEnv builds a full handler stack on sqlite. The fake auth
// middleware reads the acting user from the X-Test-User header.
func setupTravelTestEnv(t *testing.T) *travelTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.TravelRequest{}))

	env := &travelTestEnv{db: db}
	env.admin = models.User{Name: "Admin", Email: "admin@example.com", Password: "pw", Role: models.RoleAdmin}
	env.owner = models.User{Name: "Owner", Email: "owner@example.com", Password: "pw", Role: models.RoleUser}
	env.other = models.User{Name: "Other", Email: "other@example.com", Password: "pw", Role: models.RoleUser}
	require.NoError(t, db.Create(&env.admin).Error)
	require.NoError(t, db.Create(&env.owner).Error)
	require.NoError(t, db.Create(&env.other).Error)

	userRepo := repository.NewUserRepository(db)
	travelRepo := repository.NewTravelRequestRepository(db)

	s := &Server{
		config:        testConfig(),
		db:            db,
		userRepo:      userRepo,
		travelRepo:    travelRepo,
		travelService: service.NewTravelRequestService(travelRepo, nil),
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			var id uint
			_, _ = fmt.Sscanf(raw, "%d", &id)
			c.Locals("userID", id)
		}
		return c.Next()
	})

	travel := app.Group("/api/v1/travel-requests")
	travel.Get("/stats", s.GetTravelRequestStats)
	travel.Post("/", s.CreateTravelRequest)
	travel.Get("/", s.ListTravelRequests)
	travel.Patch("/:id/cancel", s.CancelTravelRequest)
	travel.Patch("/:id/status", s.UpdateTravelRequestStatus)
	travel.Get("/:id", s.GetTravelRequest)

	env.app = app
	return env
}

func (e *travelTestEnv) request(t *testing.T, method, path string, actor models.User, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", fmt.Sprintf("%d", actor.ID))
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (e *travelTestEnv) seed(t *testing.T, owner models.User, status models.TravelRequestStatus) models.TravelRequest {
	t.Helper()
	tr := models.TravelRequest{
		UserID:        owner.ID,
		RequesterName: owner.Name,
		Destination:   "Berlin, Germany",
		DepartureDate: time.Now().AddDate(0, 0, 10),
		ReturnDate:    time.Now().AddDate(0, 0, 14),
		Status:        status,
	}
	require.NoError(t, e.db.Create(&tr).Error)
	return tr
}

func validCreateBody() map[string]string {
	return map[string]string{
		"requester_name": "Owner",
		"destination":    "Berlin, Germany",
		"departure_date": time.Now().AddDate(0, 0, 10).Format(models.DateLayout),
		"return_date":    time.Now().AddDate(0, 0, 14).Format(models.DateLayout),
		"notes":          "Team offsite",
	}
}

func TestCreateTravelRequestEndpoint(t *testing.T) {
	env := setupTravelTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/v1/travel-requests/", env.owner, validCreateBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "Berlin, Germany", data["destination"])
	status := data["status"].(map[string]any)
	assert.Equal(t, "requested", status["value"])
	assert.Equal(t, "Requested", status["label"])
	assert.Equal(t, float64(5), data["duration_days"])
}

func TestCreateTravelRequestEndpoint_ValidationEnvelope(t *testing.T) {
	env := setupTravelTestEnv(t)

	body := validCreateBody()
	body["departure_date"] = time.Now().AddDate(0, 0, -5).Format(models.DateLayout)

	resp := env.request(t, http.MethodPost, "/api/v1/travel-requests/", env.owner, body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	parsed := decodeBody(t, resp)
	assert.Equal(t, false, parsed["success"])
	assert.Equal(t, "VALIDATION_ERROR", parsed["error_code"])
	errs := parsed["data"].(map[string]any)["errors"].(map[string]any)
	assert.Contains(t, errs, "departure_date")
}

func TestGetTravelRequestEndpoint(t *testing.T) {
	env := setupTravelTestEnv(t)
	tr := env.seed(t, env.owner, models.StatusRequested)

	t.Run("owner can view", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/travel-requests/%d", tr.ID), env.owner, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/travel-requests/%d", tr.ID), env.other, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("missing id is 404", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/9999", env.owner, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("garbage id is 404", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/abc", env.owner, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestListTravelRequestsEndpoint_Scoping(t *testing.T) {
	env := setupTravelTestEnv(t)
	env.seed(t, env.owner, models.StatusRequested)
	env.seed(t, env.owner, models.StatusApproved)
	env.seed(t, env.other, models.StatusRequested)

	t.Run("user sees only own", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/", env.owner, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		meta := body["data"].(map[string]any)["meta"].(map[string]any)
		assert.Equal(t, float64(2), meta["total"])
	})

	t.Run("admin sees all", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/", env.admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		meta := body["data"].(map[string]any)["meta"].(map[string]any)
		assert.Equal(t, float64(3), meta["total"])
	})

	t.Run("status filter", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/?status=approved", env.admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		meta := body["data"].(map[string]any)["meta"].(map[string]any)
		assert.Equal(t, float64(1), meta["total"])
	})

	t.Run("invalid status filter", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/?status=bogus", env.admin, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestUpdateStatusEndpoint(t *testing.T) {
	env := setupTravelTestEnv(t)

	t.Run("admin approves", func(t *testing.T) {
		tr := env.seed(t, env.owner, models.StatusRequested)
		resp := env.request(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/travel-requests/%d/status", tr.ID), env.admin,
			map[string]string{"status": "approved"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		status := body["data"].(map[string]any)["status"].(map[string]any)
		assert.Equal(t, "approved", status["value"])
	})

	t.Run("owner forbidden", func(t *testing.T) {
		tr := env.seed(t, env.owner, models.StatusRequested)
		resp := env.request(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/travel-requests/%d/status", tr.ID), env.owner,
			map[string]string{"status": "approved"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Only administrators can change the status of travel requests", body["message"])
	})

	t.Run("approved cannot revert", func(t *testing.T) {
		tr := env.seed(t, env.owner, models.StatusApproved)
		resp := env.request(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/travel-requests/%d/status", tr.ID), env.admin,
			map[string]string{"status": "requested"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestCancelEndpoint(t *testing.T) {
	env := setupTravelTestEnv(t)

	t.Run("owner cancels requested", func(t *testing.T) {
		tr := env.seed(t, env.owner, models.StatusRequested)
		resp := env.request(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/travel-requests/%d/cancel", tr.ID), env.owner, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Travel request cancelled successfully", body["message"])
	})

	t.Run("approved rejected with message", func(t *testing.T) {
		tr := env.seed(t, env.owner, models.StatusApproved)
		resp := env.request(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/travel-requests/%d/cancel", tr.ID), env.owner, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, "Approved requests cannot be cancelled", body["message"])
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		tr := env.seed(t, env.owner, models.StatusRequested)
		resp := env.request(t, http.MethodPatch,
			fmt.Sprintf("/api/v1/travel-requests/%d/cancel", tr.ID), env.other, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestStatsEndpoint(t *testing.T) {
	env := setupTravelTestEnv(t)
	env.seed(t, env.owner, models.StatusRequested)
	env.seed(t, env.owner, models.StatusApproved)
	env.seed(t, env.other, models.StatusCancelled)

	t.Run("user scoped", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/stats", env.owner, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(2), data["total"])
		assert.Equal(t, float64(1), data["pending"])
		assert.Equal(t, float64(1), data["approved"])
		assert.Equal(t, float64(0), data["cancelled"])
	})

	t.Run("admin global", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/v1/travel-requests/stats", env.admin, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(3), data["total"])
	})
}
