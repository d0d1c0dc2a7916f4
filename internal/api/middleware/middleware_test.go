package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
)

type stubAuth struct {
	key  string
	user *domain.User
}

func (s stubAuth) Authenticate(ctx context.Context, apiKey string) (*domain.User, error) {
	if apiKey != s.key {
		return nil, domain.ErrNotAuthenticated
	}
	return s.user, nil
}

func TestAPIKeyAuth(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Username: "ada"}
	auth := APIKeyAuth(stubAuth{key: "ak_good", user: user})

	var seen *domain.User
	h := auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic ak_good", http.StatusUnauthorized},
		{"unknown key", "Bearer ak_bad", http.StatusUnauthorized},
		{"valid key", "Bearer ak_good", http.StatusNoContent},
		{"case-insensitive scheme", "bearer ak_good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, user.ID, seen.ID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestLoggingRecordsUserAndRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	user := &domain.User{ID: uuid.New()}

	h := RequestID(Logging(zap.New(core))(APIKeyAuth(stubAuth{key: "k", user: user})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))))

	req := httptest.NewRequest(http.MethodGet, "/v1/beliefs", nil)
	req.Header.Set("Authorization", "Bearer k")
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, user.ID.String(), fields["user_id"])
	assert.Equal(t, "req-123", fields["request_id"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector()
	statuses := []int{200, 404, 409, 503}
	for _, status := range statuses {
		h := mc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	snap := mc.Snapshot()
	assert.EqualValues(t, 4, snap.Requests)
	assert.EqualValues(t, 2, snap.ClientErrors)
	assert.EqualValues(t, 1, snap.ServerErrors)
	assert.EqualValues(t, 0, snap.InFlight)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(10, 10)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	limiter.Allow("old")

	now = now.Add(20 * time.Minute)
	limiter.Allow("fresh")
	limiter.Cleanup(10 * time.Minute)

	assert.Equal(t, 1, limiter.Len())
}

func TestResponseWriterFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	var w http.ResponseWriter = rw
	f, ok := w.(http.Flusher)
	require.True(t, ok)
	f.Flush()
	assert.True(t, rec.Flushed)
}

func TestRequestIDReplacesUnusableValues(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, in := range []string{"", "has space", string(make([]byte, 200))} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, in)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
		assert.NoError(t, err, "input %q", in)
	}
}
