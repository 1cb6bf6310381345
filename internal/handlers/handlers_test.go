package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctorportal-be/config"
	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/middleware"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/repository"
	"doctorportal-be/internal/services"
)

var fixedNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type fakeSource struct {
	docs []models.RawDocument
	err  error
}

func (f *fakeSource) List(context.Context, models.Session) ([]models.RawDocument, error) {
	return f.docs, f.err
}

func (f *fakeSource) Get(_ context.Context, _ models.Session, id string) (*models.RawDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID() == id {
			return &f.docs[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("contact not found")
}

type slowSource struct{}

func (slowSource) List(ctx context.Context, _ models.Session) ([]models.RawDocument, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowSource) Get(ctx context.Context, _ models.Session, _ string) (*models.RawDocument, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func contactDoc(id, name, phone string, extra map[string]models.Value) models.RawDocument {
	fields := map[string]models.Value{
		"name":   models.StringValue(name),
		"number": models.StringValue(phone),
	}
	for k, v := range extra {
		fields[k] = v
	}
	return models.RawDocument{
		Name:       "projects/demo/databases/(default)/documents/contacts/" + id,
		Fields:     fields,
		CreateTime: fixedNow.Add(-2 * time.Hour),
	}
}

var liveDocs = []models.RawDocument{
	contactDoc("c1", "Ana Lima", "555-0101", map[string]models.Value{
		"type":                  models.StringValue("Emergency"),
		"requested_booked_time": models.StringValue("2025-01-20 at 09.30"),
	}),
	contactDoc("c2", "Ben Ode", "555-0202", map[string]models.Value{
		"requested_booked_time": models.StringValue("2025-01-16 at 14.00"),
	}),
	contactDoc("c3", "Cleo Park", "555-0303", nil),
}

func newContacts(source repository.ContactSource, mode string) *services.ContactService {
	return services.NewContactService(source, services.ContactServiceConfig{
		Mode:         mode,
		TypePolicy:   services.TypePolicyExplicit,
		FetchTimeout: 30 * time.Millisecond,
		Location:     time.UTC,
		Now:          func() time.Time { return fixedNow },
	}, nil)
}

var doctor = &models.Doctor{ID: "demo-doctor-001", Email: "doctor@clinic.com", Name: "Dr. John Smith"}

// withSession stands in for AuthMiddleware.
func withSession(c *gin.Context) {
	c.Set("session", models.Session{DoctorID: doctor.ID, Email: doctor.Email, Name: doctor.Name})
	c.Next()
}

func newRouter(contacts *services.ContactService, settings *services.SettingsService) *gin.Engine {
	r := gin.New()
	api := r.Group("/api", withSession)
	dashboard := NewDashboardHandler(contacts)
	api.GET("/dashboard", dashboard.GetDashboard)
	api.GET("/reports", dashboard.GetReports)
	patients := NewPatientHandler(contacts)
	api.GET("/patients", patients.ListPatients)
	api.GET("/patients/:id", patients.GetPatient)
	api.GET("/appointments", NewAppointmentHandler(contacts).ListAppointments)
	if settings != nil {
		h := NewSettingsHandler(settings)
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
	}
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func TestDashboard(t *testing.T) {
	r := newRouter(newContacts(&fakeSource{docs: liveDocs}, config.ModeLive), nil)

	var resp models.DashboardResponse
	w := do(t, r, http.MethodGet, "/api/dashboard?q=ana", "", &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, resp.Analytics.TotalPatients)
	assert.Equal(t, 1, resp.Analytics.Escalations)
	require.Len(t, resp.Patients, 1)
	assert.Equal(t, "Ana Lima", resp.Patients[0].Name)
	assert.Equal(t, "live", resp.Mode)
	assert.False(t, resp.Sample)
	assert.Empty(t, resp.Analytics.SampleSeries)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		source repository.ContactSource
		status int
		code   string
	}{
		{"store error", &fakeSource{err: errors.New("connection refused")}, http.StatusBadGateway, "upstream_error"},
		{"timeout", slowSource{}, http.StatusGatewayTimeout, "upstream_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(newContacts(tt.source, config.ModeLive), nil)

			for _, path := range []string{"/api/dashboard", "/api/reports", "/api/patients", "/api/appointments", "/api/patients/c1"} {
				var resp models.ErrorResponse
				w := do(t, r, http.MethodGet, path, "", &resp)
				assert.Equal(t, tt.status, w.Code, path)
				assert.Equal(t, tt.code, resp.Error, path)
				assert.Equal(t, fetchFailedMessage, resp.Message, path)
			}
		})
	}
}

func TestDemoFallback(t *testing.T) {
	r := newRouter(newContacts(&fakeSource{err: errors.New("boom")}, config.ModeDemo), nil)

	var list models.ContactListResponse
	w := do(t, r, http.MethodGet, "/api/patients", "", &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, list.Sample)
	assert.Equal(t, "demo", list.Mode)
	assert.NotZero(t, list.Total)

	var detail models.PatientDetailResponse
	w = do(t, r, http.MethodGet, "/api/patients/missing-42", "", &detail)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, detail.Sample)
	assert.Equal(t, "missing-42", detail.Patient.ID)
	assert.Equal(t, "John Smith", detail.Patient.Name)
}

func TestGetPatient(t *testing.T) {
	r := newRouter(newContacts(&fakeSource{docs: liveDocs}, config.ModeLive), nil)

	var detail models.PatientDetailResponse
	w := do(t, r, http.MethodGet, "/api/patients/c3", "", &detail)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cleo Park", detail.Patient.Name)
	assert.Equal(t, "Not scheduled", detail.Patient.AppointmentDisplay)
	assert.Equal(t, detail.Patient.CreatedAt, detail.Patient.LastInteractionDisplay)
	assert.Equal(t, 1, detail.Patient.TotalVisits)

	var errResp models.ErrorResponse
	w = do(t, r, http.MethodGet, "/api/patients/nope", "", &errResp)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errResp.Error)
}

func TestListPatients(t *testing.T) {
	r := newRouter(newContacts(&fakeSource{docs: liveDocs}, config.ModeLive), nil)

	var resp models.ContactListResponse
	do(t, r, http.MethodGet, "/api/patients?q=0202", "", &resp)
	require.Len(t, resp.Patients, 1)
	assert.Equal(t, "c2", resp.Patients[0].ID)

	do(t, r, http.MethodGet, "/api/patients?q=cleo+prk&fuzzy=true", "", &resp)
	require.NotEmpty(t, resp.Patients)
	assert.Equal(t, "c3", resp.Patients[0].ID)

	do(t, r, http.MethodGet, "/api/patients", "", &resp)
	assert.Equal(t, 3, resp.Total)
}

func TestListAppointments(t *testing.T) {
	r := newRouter(newContacts(&fakeSource{docs: liveDocs}, config.ModeLive), nil)

	var resp models.ContactListResponse
	w := do(t, r, http.MethodGet, "/api/appointments", "", &resp)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Patients, 2)
	assert.Equal(t, "c2", resp.Patients[0].ID)
	assert.Equal(t, "c1", resp.Patients[1].ID)
}

func TestReports(t *testing.T) {
	r := newRouter(newContacts(&fakeSource{docs: liveDocs}, config.ModeLive), nil)

	var resp models.ReportsResponse
	w := do(t, r, http.MethodGet, "/api/reports", "", &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, resp.Analytics.TotalPatients)
	assert.Len(t, resp.Analytics.WeeklyData.Days, 7)
}

func TestSettings(t *testing.T) {
	settings := services.NewSettingsService(repository.NewMemorySettingsStore(), doctor)
	r := newRouter(newContacts(&fakeSource{}, config.ModeLive), settings)

	var got models.Settings
	w := do(t, r, http.MethodGet, "/api/settings", "", &got)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dr. John Smith", got.Profile.Name)
	assert.True(t, got.Notifications.Email)

	body := `{"profile":{"name":"Dr. <i>Jane</i> Roe","email":"jane@clinic.com","phone":"+1 (555) 010-2000","specialty":"Cardiology"},"notifications":{"email":false,"push":true,"sms":true}}`
	w = do(t, r, http.MethodPut, "/api/settings", body, &got)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dr. Jane Roe", got.Profile.Name)
	assert.True(t, got.Notifications.SMS)

	do(t, r, http.MethodGet, "/api/settings", "", &got)
	assert.Equal(t, "jane@clinic.com", got.Profile.Email)
}

func TestUpdateSettings_Validation(t *testing.T) {
	settings := services.NewSettingsService(repository.NewMemorySettingsStore(), doctor)
	r := newRouter(newContacts(&fakeSource{}, config.ModeLive), settings)

	tests := []struct {
		body    string
		message string
	}{
		{`{"profile":{"email":"jane@clinic.com"}}`, "name is required"},
		{`{"profile":{"name":"Jane","email":"not-an-email"}}`, "Please enter a valid email address"},
		{`{"profile":{"name":"Jane","email":"jane@clinic.com","phone":"call me"}}`, "Please enter a valid phone number"},
		{`{"profile":{"name":"<br>","email":"jane@clinic.com"}}`, ""},
		{`not json`, "Invalid request body"},
	}
	for _, tt := range tests {
		var resp models.ErrorResponse
		w := do(t, r, http.MethodPut, "/api/settings", tt.body, &resp)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.body)
		assert.Equal(t, "validation_error", resp.Error, tt.body)
		if tt.message != "" {
			assert.Equal(t, tt.message, resp.Message, tt.body)
		}
	}
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/api/health", NewHealthHandler("demo", "firestore").Health)

	var resp models.HealthResponse
	w := do(t, r, http.MethodGet, "/api/health", "", &resp)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.HealthResponse{Status: "ok", Mode: "demo", Source: "firestore"}, resp)
}

func TestMissingSession(t *testing.T) {
	r := gin.New()
	r.GET("/api/reports", NewDashboardHandler(newContacts(&fakeSource{}, config.ModeLive)).GetReports)

	w := do(t, r, http.MethodGet, "/api/reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthFlow(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:            "test-secret",
		JWTAccessExpiration:  time.Minute,
		JWTRefreshExpiration: time.Hour,
		Doctor:               config.DoctorConfig{ID: doctor.ID, Email: doctor.Email, Password: "password123", Name: doctor.Name},
	}
	auth, err := services.NewAuthService(cfg, repository.NewMemoryTokenStore())
	require.NoError(t, err)
	h := NewAuthHandler(auth, services.NewSettingsService(repository.NewMemorySettingsStore(), doctor))

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/refresh", h.RefreshToken)
	protected := r.Group("/api", middleware.AuthMiddleware(auth))
	protected.GET("/auth/me", h.Me)
	protected.POST("/auth/logout", h.Logout)

	var errResp models.ErrorResponse
	w := do(t, r, http.MethodPost, "/api/auth/login", `{"email":"","password":"x"}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter your email address", errResp.Message)

	w = do(t, r, http.MethodPost, "/api/auth/login", `{"email":"doctor@clinic.com","password":"nope"}`, &errResp)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", errResp.Message)

	var login models.AuthResponse
	w = do(t, r, http.MethodPost, "/api/auth/login", `{"email":"doctor@clinic.com","password":"password123"}`, &login)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, login.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, doctor.ID, me.Doctor.ID)
	assert.Equal(t, doctor.Name, me.Profile.Name)

	var refreshed models.AuthResponse
	w = do(t, r, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"`+login.RefreshToken+`"}`, &refreshed)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/auth/refresh", `{}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", strings.NewReader(`{"refreshToken":"`+refreshed.RefreshToken+`"}`))
	req.Header.Set("Authorization", "Bearer "+refreshed.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodPost, "/api/auth/refresh", `{"refreshToken":"`+refreshed.RefreshToken+`"}`, &errResp)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+refreshed.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
