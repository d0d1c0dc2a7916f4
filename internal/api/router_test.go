package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mw "github.com/vishalcoc44/Ai-Battlefield/internal/api/middleware"
	"github.com/vishalcoc44/Ai-Battlefield/internal/llm"
	"github.com/vishalcoc44/Ai-Battlefield/internal/service"
)

func testApp(t *testing.T, ping func(context.Context) error) *App {
	t.Helper()
	logger := zap.NewNop()
	gen := llm.NewMockGenerator()
	profiles := service.NewProfileService(nil, nil, nil, nil, nil, logger)
	debates := service.NewDebateService(nil, nil, nil, gen, logger)
	predictions := service.NewPredictionService(nil, nil, nil, logger)
	rings := service.NewGroupDebateService(nil, nil, nil, nil, logger)
	svcs := &Services{
		Profiles:     profiles,
		Summary:      service.NewSummaryService(profiles, nil, nil, nil),
		Beliefs:      service.NewBeliefService(nil, nil, nil, nil, logger),
		Predictions:  predictions,
		DeEscalation: service.NewDeEscalationService(nil, nil, nil, gen, logger),
		Biases:       service.NewBiasService(nil),
		Debates:      debates,
		Rings:        rings,
		Communities:  service.NewCommunityService(nil, predictions, rings, nil, logger),
		Reconciler:   service.NewReconcilerService(nil, nil, nil, nil, logger),
	}
	return newApp(svcs, ping, logger)
}

func okPing(context.Context) error { return nil }

func TestRouter_Health(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		rec := httptest.NewRecorder()
		testApp(t, okPing).Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		app := testApp(t, func(context.Context) error { return errors.New("connection refused") })
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_VersionAndMetrics(t *testing.T) {
	app := testApp(t, okPing)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var version map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Contains(t, version, "version")

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Contains(t, metrics, "requests")
	assert.Contains(t, metrics, "goroutines")
}

func TestRouter_PublicRoutes(t *testing.T) {
	app := testApp(t, okPing)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/personas", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(mw.RequestIDHeader))
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	app := testApp(t, okPing)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/v1/profile/"},
		{http.MethodGet, "/v1/beliefs/"},
		{http.MethodPost, "/v1/predictions/"},
		{http.MethodPost, "/v1/factcheck"},
		{http.MethodGet, "/v1/rings/"},
		{http.MethodGet, "/v1/profile/skills"},
		{http.MethodGet, "/v1/achievements"},
		{http.MethodPost, "/v1/communities/"},
		{http.MethodGet, "/v1/feed/rings"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	t.Run("malformed key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/profile/", nil)
		req.Header.Set("Authorization", "Bearer not-a-key")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
