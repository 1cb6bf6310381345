package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctorportal-be/config"
	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	claims *utils.Claims
	err    error
	token  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*utils.Claims, error) {
	s.token = token
	return s.claims, s.err
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(&config.Config{FrontendURL: "http://portal.test"}))
	r.GET("/api/patients", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patients", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://portal.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/patients", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	claims := &utils.Claims{DoctorID: "demo-doctor-001", Email: "doctor@clinic.com", Name: "Dr. John Smith"}

	tests := []struct {
		name    string
		header  string
		auth    *stubAuthenticator
		status  int
		message string
	}{
		{"missing header", "", &stubAuthenticator{}, http.StatusUnauthorized, "Authorization header required"},
		{"not bearer", "Basic abc", &stubAuthenticator{}, http.StatusUnauthorized, "Authorization header required"},
		{"rejected token", "Bearer bad", &stubAuthenticator{err: apperrors.NewUnauthorizedError("Token has been revoked")}, http.StatusUnauthorized, "Token has been revoked"},
		{"store failure", "Bearer tok", &stubAuthenticator{err: apperrors.NewInternalError("redis down", nil)}, http.StatusInternalServerError, "Could not verify session"},
		{"valid", "Bearer tok", &stubAuthenticator{claims: claims}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.Session
			r := gin.New()
			r.Use(AuthMiddleware(tt.auth))
			r.GET("/me", func(c *gin.Context) {
				got, _ = SessionFrom(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				var resp models.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.message, resp.Message)
				return
			}
			assert.Equal(t, "tok", tt.auth.token)
			assert.Equal(t, models.Session{DoctorID: "demo-doctor-001", Email: "doctor@clinic.com", Name: "Dr. John Smith"}, got)
		})
	}
}

func TestSessionFrom_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := SessionFrom(c)
	assert.False(t, ok)
	_, ok = ClaimsFrom(c)
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	var ctxLogger *zerolog.Logger
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/api/health", func(c *gin.Context) {
		ctxLogger = zerolog.Ctx(c.Request.Context())
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	require.NotNil(t, ctxLogger)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-123", line["request_id"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, float64(http.StatusTeapot), line["status"])
	assert.Equal(t, "/api/health", line["path"])
}

func TestRequestLogger_GeneratesID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestTracing_NilMetrics(t *testing.T) {
	r := gin.New()
	r.Use(Tracing(nil))
	r.GET("/api/patients/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patients/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, 2).Limit())
	r.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are per client")
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(0, 0).Limit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}
