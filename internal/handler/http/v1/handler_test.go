package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/config"
	"github.com/shenikar/disaster_response_system/internal/media"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/shenikar/disaster_response_system/internal/service"
	"github.com/shenikar/disaster_response_system/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type serviceMocks struct {
	users      *mocks.MockUserService
	incidents  *mocks.MockIncidentService
	resources  *mocks.MockResourceService
	sos        *mocks.MockSOSService
	broadcasts *mocks.MockBroadcastService
	shelters   *mocks.MockShelterService
	dashboard  *mocks.MockDashboardService
}

// memoryMedia records saved uploads instead of touching the disk.
type memoryMedia struct {
	saved map[string][]byte
	err   error
}

func (m *memoryMedia) Save(_ context.Context, prefix, filename string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	path := "uploads/" + prefix + "_" + filename
	m.saved[path] = data
	return path, nil
}

func (m *memoryMedia) Delete(_ context.Context, path string) error {
	delete(m.saved, path)
	return nil
}

// newTestHandler builds a Handler over mocked services and a live hub.
func newTestHandler(t *testing.T) (*Handler, serviceMocks, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		users:      mocks.NewMockUserService(ctrl),
		incidents:  mocks.NewMockIncidentService(ctrl),
		resources:  mocks.NewMockResourceService(ctrl),
		sos:        mocks.NewMockSOSService(ctrl),
		broadcasts: mocks.NewMockBroadcastService(ctrl),
		shelters:   mocks.NewMockShelterService(ctrl),
		dashboard:  mocks.NewMockDashboardService(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		SessionTTL:     time.Hour,
		WSWriteTimeout: time.Second,
	}

	handler := NewHandler(Services{
		Users:      m.users,
		Incidents:  m.incidents,
		Resources:  m.resources,
		SOS:        m.sos,
		Broadcasts: m.broadcasts,
		Shelters:   m.shelters,
		Dashboard:  m.dashboard,
	}, realtime.NewHub(8, logger), &memoryMedia{saved: map[string][]byte{}}, logger, cfg)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, m, router
}

// sessionFor makes token resolve to a fresh identity with the given role.
func sessionFor(m serviceMocks, token string, role models.Role) auth.Identity {
	id := auth.Identity{
		UserID:    uuid.New(),
		Username:  "user-" + token,
		Role:      role,
		SessionID: uuid.NewString(),
	}
	m.users.EXPECT().Authenticate(gomock.Any(), token).Return(id, nil).AnyTimes()
	return id
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// makeRequest - helper to perform HTTP requests against the router
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().
		Authenticate(gomock.Any(), "stale").
		Return(auth.Identity{}, fmt.Errorf("session expired: %w", models.ErrUnauthenticated)).
		AnyTimes()
	m.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Times(0)
	m.dashboard.EXPECT().Summarize(gomock.Any()).Times(0)

	paths := []string{"/api/v1/incidents", "/api/v1/dashboard/summary", "/api/v1/presence"}
	for _, path := range paths {
		w := makeRequest(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = makeRequest(router, http.MethodGet, path, nil, bearer("stale"))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "unauthenticated", decodeError(t, w).Code)
	}
}

func TestSessionCookieAccepted(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "cookie-token", models.RoleUser)
	m.broadcasts.EXPECT().ListBroadcasts(gomock.Any()).Return([]*models.Broadcast{}, nil).Times(1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/broadcasts", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "cookie-token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	user := &models.User{ID: uuid.New(), Username: "alice", Role: models.RoleUser}

	m.users.EXPECT().
		Register(gomock.Any(), service.RegisterInput{Username: "alice", Password: "secret1"}).
		Return(&service.AuthResult{User: user, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/register", jsonBody(t, RegisterRequest{Username: "alice", Password: "secret1"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "user", resp.User.Role)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionCookie+"=tok")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("service: register %q: %w", "alice", models.ErrUsernameTaken))

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/register", jsonBody(t, RegisterRequest{Username: "alice", Password: "secret1"}))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "username already exists", decodeError(t, w).Error)
}

func TestRespondError_GenericConflictHidesDetail(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("username already exists, but reworded: %w", models.ErrConflict))

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/register", jsonBody(t, RegisterRequest{Username: "alice", Password: "secret1"}))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "conflict", body.Error)
	assert.Equal(t, "conflict", body.Code)
}

func TestRegister_ValidationError(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/register", jsonBody(t, RegisterRequest{Username: "al"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Username' failed on the 'min' tag")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().
		Login(gomock.Any(), "alice", "wrong-pw").
		Return(nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated))

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/login", jsonBody(t, LoginRequest{Username: "alice", Password: "wrong-pw"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.users.EXPECT().Logout(gomock.Any()).Return(nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/logout", nil, bearer("tok"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestReportIncident_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	caller := sessionFor(m, "tok", models.RoleUser)
	incidentID := uuid.New()

	m.incidents.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input service.ReportIncidentInput) (*models.Incident, error) {
			assert.Equal(t, caller.UserID, auth.IdentityFromContext(ctx).UserID)
			assert.Equal(t, 0.0, *input.Latitude)
			return &models.Incident{ID: incidentID, Type: input.Type, ReportedBy: caller.UserID}, nil
		}).Times(1)

	lat, lon := 0.0, 0.0
	reqBody := ReportIncidentRequest{Type: "flood", Latitude: &lat, Longitude: &lon}
	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, reqBody), bearer("tok"))

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, incidentID, resp.ID)
}

func TestReportIncident_InvalidJSON(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", bytes.NewBufferString(`{"type": "flood"`), bearer("tok"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestReportIncident_MissingCoordinates(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, map[string]any{"type": "flood"}), bearer("tok"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "'Latitude' failed on the 'required' tag")
}

func TestReportIncident_Multipart(t *testing.T) {
	h, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	uploads := h.media.(*memoryMedia)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("type", "fire"))
	require.NoError(t, mw.WriteField("latitude", "10.5"))
	require.NoError(t, mw.WriteField("longitude", "-20.25"))
	require.NoError(t, mw.WriteField("urgency", "high"))
	part, err := mw.CreateFormFile("image", "smoke.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	m.incidents.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input service.ReportIncidentInput) (*models.Incident, error) {
			require.NotNil(t, input.ImagePath)
			assert.Nil(t, input.AudioPath)
			require.NotEqual(t, uuid.Nil, input.ID)
			assert.Equal(t, "uploads/"+input.ID.String()+"_smoke.jpg", *input.ImagePath)
			assert.Equal(t, []byte("jpeg-bytes"), uploads.saved[*input.ImagePath])
			assert.Equal(t, 10.5, *input.Latitude)
			assert.Equal(t, "high", input.Urgency)
			return &models.Incident{ID: uuid.New(), ImagePath: input.ImagePath}, nil
		}).Times(1)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/incidents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, uploads.saved, 1)
}

func TestReportIncident_UploadRejected(t *testing.T) {
	h, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	h.media.(*memoryMedia).err = models.NewValidationError("image", "file exceeds %d bytes", 10)
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("type", "fire"))
	require.NoError(t, mw.WriteField("latitude", "1"))
	require.NoError(t, mw.WriteField("longitude", "1"))
	part, err := mw.CreateFormFile("image", "big.jpg")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 64))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/incidents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "image", decodeError(t, w).Field)
}

// multipartReport encodes form fields and file parts as a multipart body.
func multipartReport(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, data := range files {
		part, err := mw.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func postMultipart(router *gin.Engine, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/incidents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// useDiskMedia swaps in a real media store over a temp dir and returns the dir.
func useDiskMedia(t *testing.T, h *Handler, maxBytes int64) string {
	t.Helper()
	dir := t.TempDir()
	store, err := media.NewStore(dir, maxBytes, h.logger)
	require.NoError(t, err)
	h.media = store
	return dir
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestReportIncident_InvalidReportStoresNoFiles(t *testing.T) {
	h, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	dir := useDiskMedia(t, h, 1024)
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	body, contentType := multipartReport(t,
		map[string]string{"type": "fire", "latitude": "200", "longitude": "10"},
		map[string][]byte{"image": []byte("jpeg-bytes")},
	)
	w := postMultipart(router, body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "latitude", decodeError(t, w).Field)
	assert.Empty(t, dirEntries(t, dir))
}

func TestReportIncident_ServiceFailureRemovesFiles(t *testing.T) {
	h, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	dir := useDiskMedia(t, h, 1024)

	m.incidents.EXPECT().
		ReportIncident(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input service.ReportIncidentInput) (*models.Incident, error) {
			require.NotNil(t, input.ImagePath)
			require.NotNil(t, input.AudioPath)
			assert.Len(t, dirEntries(t, dir), 2)
			return nil, fmt.Errorf("service: could not create incident: %w", errors.New("connection reset"))
		}).Times(1)

	body, contentType := multipartReport(t,
		map[string]string{"type": "fire", "latitude": "10", "longitude": "10"},
		map[string][]byte{"image": []byte("jpeg-bytes"), "audio": []byte("ogg-bytes")},
	)
	w := postMultipart(router, body, contentType)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, dirEntries(t, dir))
}

func TestReportIncident_RejectedAudioRemovesImage(t *testing.T) {
	h, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	dir := useDiskMedia(t, h, 16)
	m.incidents.EXPECT().ReportIncident(gomock.Any(), gomock.Any()).Times(0)

	body, contentType := multipartReport(t,
		map[string]string{"type": "fire", "latitude": "10", "longitude": "10"},
		map[string][]byte{"image": []byte("small"), "audio": bytes.Repeat([]byte("x"), 64)},
	)
	w := postMultipart(router, body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, dirEntries(t, dir))
}

func TestListIncidents_Filters(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m.incidents.EXPECT().
		ListIncidents(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
			assert.Equal(t, "flood", filter.Type)
			assert.Equal(t, models.UrgencyHigh, filter.Urgency)
			require.NotNil(t, filter.ReportedFrom)
			assert.True(t, from.Equal(*filter.ReportedFrom))
			return []*models.Incident{}, nil
		})

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?type=flood&urgency=high&time_from=2024-05-01T12:00:00Z", nil, bearer("tok"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListIncidents_BadTimeFrom(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents?time_from=yesterday", nil, bearer("tok"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetIncident_InvalidID(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/invalid-uuid", nil, bearer("tok"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid incident ID")
}

func TestGetIncident_NotFound(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	incidentID := uuid.New()

	m.incidents.EXPECT().
		GetIncident(gomock.Any(), incidentID).
		Return(nil, fmt.Errorf("service: could not get incident: %w", models.ErrNotFound))

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+incidentID.String(), nil, bearer("tok"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetIncident_ServiceError(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Return(nil, errors.New("pool closed"))

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/"+uuid.NewString(), nil, bearer("tok"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pool closed")
}

func TestUpdateIncidentStatus_Forbidden(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.incidents.EXPECT().
		UpdateIncidentStatus(gomock.Any(), gomock.Any(), models.IncidentResolved).
		Return(nil, fmt.Errorf("incident.status: %w", models.ErrForbidden))

	w := makeRequest(router, http.MethodPut, "/api/v1/incidents/"+uuid.NewString()+"/status",
		jsonBody(t, UpdateStatusRequest{Status: "resolved"}), bearer("tok"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeError(t, w).Code)
}

func TestUpdateResourceLoad_OverCapacity(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "admin", models.RoleAdmin)
	resourceID := uuid.New()

	m.resources.EXPECT().
		UpdateResourceLoad(gomock.Any(), resourceID, 11).
		Return(nil, models.NewValidationError("current_load", "cannot exceed capacity %d", 10))

	w := makeRequest(router, http.MethodPut, "/api/v1/resources/"+resourceID.String()+"/load",
		jsonBody(t, map[string]int{"current_load": 11}), bearer("admin"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "current_load", resp.Field)
	assert.Equal(t, "validation_error", resp.Code)
}

func TestUpdateResourceLoad_MissingLoad(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "admin", models.RoleAdmin)
	m.resources.EXPECT().UpdateResourceLoad(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPut, "/api/v1/resources/"+uuid.NewString()+"/load",
		jsonBody(t, map[string]any{}), bearer("admin"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSOS_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.sos.EXPECT().
		CreateSOS(gomock.Any(), gomock.Any()).
		Return(&models.SOSAlert{ID: uuid.New(), Status: models.SOSActive}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/sos",
		jsonBody(t, map[string]any{"latitude": 1.5, "longitude": 2.5, "message": "help"}), bearer("tok"))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateBroadcast_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.broadcasts.EXPECT().
		CreateBroadcast(gomock.Any(), service.CreateBroadcastInput{Message: "evacuate"}).
		Return(&models.Broadcast{ID: uuid.New(), Message: "evacuate", Radius: models.DefaultBroadcastRadius}, nil)

	w := makeRequest(router, http.MethodPost, "/api/v1/broadcast", jsonBody(t, CreateBroadcastRequest{Message: "evacuate"}), bearer("tok"))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestListShelters_Public(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.users.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Times(0)
	m.shelters.EXPECT().
		ListShelters(gomock.Any(), "all").
		Return([]*models.Shelter{{ID: 1, Name: "Gym", Resources: []*models.ShelterResource{}}}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/shelters", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []ShelterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Gym", resp[0].Name)
}

func TestGetShelter(t *testing.T) {
	_, m, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/shelters/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	m.shelters.EXPECT().GetShelter(gomock.Any(), int64(42)).Return(nil, fmt.Errorf("shelter: %w", models.ErrNotFound))
	w = makeRequest(router, http.MethodGet, "/api/v1/shelters/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateShelter_RequiresSession(t *testing.T) {
	_, m, router := newTestHandler(t)
	m.shelters.EXPECT().CreateShelter(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/shelters", jsonBody(t, map[string]any{"name": "x"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateShelter_PartialPatch(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)

	m.shelters.EXPECT().
		UpdateShelter(gomock.Any(), int64(5), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, patch models.ShelterPatch) (*models.Shelter, error) {
			require.NotNil(t, patch.Capacity)
			assert.Equal(t, 30, *patch.Capacity)
			assert.Nil(t, patch.Name)
			require.NotNil(t, patch.Resources)
			assert.Empty(t, *patch.Resources)
			return &models.Shelter{ID: 5, Capacity: 30}, nil
		})

	w := makeRequest(router, http.MethodPut, "/api/v1/shelters/5",
		bytes.NewBufferString(`{"capacity": 30, "resources": []}`), bearer("tok"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateOccupancy_OverCapacity(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.shelters.EXPECT().
		UpdateOccupancy(gomock.Any(), int64(5), 500).
		Return(nil, models.NewValidationError("occupancy", "cannot exceed capacity %d", 30))

	w := makeRequest(router, http.MethodPut, "/api/v1/shelters/5/occupancy",
		jsonBody(t, map[string]int{"occupancy": 500}), bearer("tok"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "occupancy", decodeError(t, w).Field)
}

func TestGrantRole_Forbidden(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleEmergency)
	m.users.EXPECT().
		GrantRole(gomock.Any(), gomock.Any(), models.RoleAdmin).
		Return(nil, fmt.Errorf("user.role: %w", models.ErrForbidden))

	w := makeRequest(router, http.MethodPut, "/api/v1/users/"+uuid.NewString()+"/role",
		jsonBody(t, GrantRoleRequest{Role: "admin"}), bearer("tok"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGrantRole_UnknownRole(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleAdmin)
	m.users.EXPECT().GrantRole(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPut, "/api/v1/users/"+uuid.NewString()+"/role",
		jsonBody(t, GrantRoleRequest{Role: "root"}), bearer("tok"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUser_HidesPassword(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	userID := uuid.New()
	m.users.EXPECT().
		GetProfile(gomock.Any(), userID).
		Return(&models.User{ID: userID, Username: "bob", PasswordHash: "$2a$10$hash", Role: models.RoleUser}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/users/"+userID.String(), nil, bearer("tok"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestDashboardSummary(t *testing.T) {
	_, m, router := newTestHandler(t)
	sessionFor(m, "tok", models.RoleUser)
	m.dashboard.EXPECT().Summarize(gomock.Any()).Return(&models.DashboardSummary{
		ActiveIncidents:     3,
		EmergencyBroadcasts: []string{"stay indoors"},
	}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/dashboard/summary", nil, bearer("tok"))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ActiveIncidents)
	assert.Equal(t, []string{"stay indoors"}, resp.EmergencyBroadcasts)
}

func TestHealthCheck(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","connections":0}`, w.Body.String())
}
