package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/auth"
	"github.com/civiceye/backend/internal/config"
	"github.com/civiceye/backend/internal/handlers"
	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/orchestration"
	"github.com/civiceye/backend/internal/repository"
	"github.com/civiceye/backend/internal/services"
	"github.com/civiceye/backend/internal/validation"
)

const testSecret = "router-test-secret"

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

// allowAll confirms every reference without a network call.
type allowAll struct{}

func (allowAll) Validate(_ context.Context, _ orchestration.EntityKind, id int64) orchestration.Result {
	return orchestration.Result{Outcome: orchestration.OutcomeExists, Snapshot: json.RawMessage(fmt.Sprintf(`{"id":%d}`, id))}
}

type nopNotifier struct{}

func (nopNotifier) DispatchNotification(context.Context, int64, *int64, string, string) {}

func testApp(t *testing.T, authRequired bool) *App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := zap.NewNop()
	return &App{
		Config: &config.Config{
			Service:        config.ComplaintService,
			JWTSecret:      testSecret,
			AuthRequired:   authRequired,
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimitRPM:   1000,
		},
		Logger: logger,
		Sugar:  logger.Sugar(),
		ctx:    ctx,
		cancel: cancel,
	}
}

func complaintRouter(t *testing.T, app *App, db handlers.Pinger) http.Handler {
	t.Helper()
	svc := services.NewComplaintService(repository.NewMemoryComplaintStore(), allowAll{}, nopNotifier{}, validation.New(), app.Sugar)
	h := handlers.NewComplaintHandler(svc, app.Sugar)
	health := handlers.NewHealthHandler(app.Config.Service, db, app.Sugar)
	return app.Router(health, ComplaintRoutes(h, app.Gate()))
}

const submission = `{"userId":1,"title":"Overflowing bins","description":"Bins on Elm Street have not been emptied in two weeks.","category":"SANITATION"}`

func TestRouter_GatesMutationsOnly(t *testing.T) {
	router := complaintRouter(t, testApp(t, true), pinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(submission)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/complaints", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := auth.NewTokenIssuer(testSecret, time.Hour).Issue(1, "CITIZEN")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(submission))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_OpenWhenAuthNotRequired(t *testing.T) {
	router := complaintRouter(t, testApp(t, false), pinger{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/complaints", strings.NewReader(submission)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         pinger
		wantReady  int
		wantStatus string
	}{
		{"ready", pinger{}, http.StatusOK, "ready"},
		{"database down", pinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := complaintRouter(t, testApp(t, false), tt.db)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil))
			assert.Equal(t, tt.wantReady, rec.Code)

			var status models.HealthStatus
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, config.ComplaintService, status.Service)
		})
	}
}

func TestNotificationRoutes_CreateIsNeverGated(t *testing.T) {
	app := testApp(t, true)
	app.Config.Service = config.NotificationService
	svc := services.NewNotificationService(repository.NewMemoryNotificationStore(), allowAll{}, validation.New(), app.Sugar)
	h := handlers.NewNotificationHandler(svc, app.Sugar)

	r := chi.NewRouter()
	r.Route("/api/v1", NotificationRoutes(h, app.Gate()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/notifications",
		strings.NewReader(`{"userId":1,"message":"Your complaint was received","type":"COMPLAINT_UPDATE"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/v1/notifications/1/read", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
