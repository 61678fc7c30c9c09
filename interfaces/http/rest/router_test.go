package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mindbloom-backend/application/services"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	"mindbloom-backend/infrastructure/persistence/memory"
	"mindbloom-backend/infrastructure/storage/local"
	"mindbloom-backend/interfaces/http/rest/middleware"
	"mindbloom-backend/pkg/auth"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Pagination struct {
			Total   int  `json:"total"`
			HasNext bool `json:"has_next"`
		} `json:"pagination"`
	} `json:"meta"`
}

type testServer struct {
	handler   http.Handler
	tokens    *auth.JWTGenerator
	collector *observability.Collector
}

type serverOption func(*Options, *[]auth.RateLimiter)

func withReady(check ReadinessCheck) serverOption {
	return func(o *Options, _ *[]auth.RateLimiter) { o.Ready = check }
}

func withIPLimit(n int) serverOption {
	return func(_ *Options, l *[]auth.RateLimiter) { (*l)[0] = auth.NewIPRateLimiter(n) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	logger := zap.NewNop()

	repos := memory.NewRepositories()
	files, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)
	collector := observability.NewCollector("test")

	base := services.Base{Clock: func() time.Time { return time.Now().UTC() }, Created: collector.Created, Logger: logger}
	svcs := services.NewServices(base, repos, nil, nil, files, services.Settings{
		RelevanceStrategy: services.RelevanceHeuristic,
		MaxUploadBytes:    1024,
	}, nil, collector)

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SigningMethod: "HS256", SecretKey: testSecret})
	require.NoError(t, err)
	tokens, err := auth.NewJWTGenerator(testSecret, "", nil, time.Hour)
	require.NoError(t, err)

	options := Options{CORSOrigins: []string{"http://localhost:3000"}, MaxUploadBytes: 1024}
	limiters := []auth.RateLimiter{nil, nil}
	for _, opt := range opts {
		opt(&options, &limiters)
	}
	authn := middleware.NewAuthenticator(validator, limiters[0], limiters[1], logger)
	router := NewRouter(svcs, authn, pkgerrors.NewErrorHandler(logger, false), collector, options, logger)

	return &testServer{handler: router.Setup(), tokens: tokens, collector: collector}
}

func (s *testServer) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := s.tokens.GenerateToken(userID, userID+"@example.com", strings.ToUpper(userID[:1])+userID[1:], []string{role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "MindBloom API")

	rec, _ = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestRouter_ReadinessFailure(t *testing.T) {
	s := newTestServer(t, withReady(func(context.Context) error { return errors.New("table missing") }))

	rec, env := s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/journal", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/journal", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_IPRateLimit(t *testing.T) {
	s := newTestServer(t, withIPLimit(2))
	token := s.token(t, "rose", "patient")

	for i := 0; i < 2; i++ {
		rec, _ := s.do(t, http.MethodGet, "/api/ai/chat/history", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := s.do(t, http.MethodGet, "/api/ai/chat/history", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
}

func TestRouter_RegisterIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	rec, env := s.do(t, http.MethodPost, "/api/auth/register", token, map[string]string{"role": "patient"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var user entities.User
	decodeData(t, env, &user)
	assert.Equal(t, "rose", user.ID)
	assert.Equal(t, entities.RolePatient, user.Role)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/register", token, map[string]string{"role": "patient"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_JournalLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	rec, env := s.do(t, http.MethodPost, "/api/journal", token, map[string]interface{}{"title": "Sunday", "content": "We baked bread."})
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry entities.JournalEntry
	decodeData(t, env, &entry)
	assert.Contains(t, entry.Insights.KeyThemes, "food")

	rec, env = s.do(t, http.MethodPost, "/api/journal", token, map[string]interface{}{"content": "No title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, env = s.do(t, http.MethodGet, "/api/journal?limit=10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Pagination.Total)

	rec, _ = s.do(t, http.MethodPost, "/api/journal/"+entry.ID+"/pin", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/journal/"+entry.ID, s.token(t, "mallory", "user"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.do(t, http.MethodDelete, "/api/journal/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, "/api/journal/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CaregiverView(t *testing.T) {
	s := newTestServer(t)
	patient := s.token(t, "rose", "patient")
	caregiver := s.token(t, "carol", "caregiver")

	rec, _ := s.do(t, http.MethodPost, "/api/auth/register", patient, map[string]string{"role": "patient"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = s.do(t, http.MethodPost, "/api/auth/register", caregiver, map[string]string{"role": "caregiver"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/journal", patient, map[string]interface{}{"title": "Garden", "content": "The roses bloomed."})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/journal/caregiver/rose", caregiver, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/caregiver/assign", caregiver, map[string]string{"patient_id": "rose"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/api/journal/caregiver/rose", caregiver, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []entities.JournalEntry
	decodeData(t, env, &entries)
	assert.Len(t, entries, 1)

	rec, env = s.do(t, http.MethodGet, "/api/auth/caregiver/patients", caregiver, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var patients []entities.Patient
	decodeData(t, env, &patients)
	require.Len(t, patients, 1)
	assert.Equal(t, "rose", patients[0].ID)
}

func TestRouter_CalendarFilters(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	event := map[string]interface{}{
		"title": "Doctor", "event_type": "appointment", "date": "2030-01-02",
		"start_time": "10:00", "end_time": "11:00",
	}
	rec, _ := s.do(t, http.MethodPost, "/api/calendar", token, event)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/calendar?start_date=01/02/2030", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/api/calendar?event_type=appointment&start_date=2030-01-01", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []entities.CalendarEvent
	decodeData(t, env, &events)
	assert.Len(t, events, 1)

	event["end_time"] = "09:00"
	rec, _ = s.do(t, http.MethodPost, "/api/calendar", token, event)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ChatReply(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	rec, env := s.do(t, http.MethodPost, "/api/ai/chat", token, map[string]string{"message": "Hello there"})
	require.Equal(t, http.StatusOK, rec.Code)
	var entry entities.ChatEntry
	decodeData(t, env, &entry)
	assert.Equal(t, "Hello! How are you feeling today?", entry.Response)
}

func TestRouter_RibbonUnavailableWithoutKey(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	rec, _ := s.do(t, http.MethodPost, "/api/ribbon/flows", token, map[string]interface{}{"flow_name": "Childhood", "patient_id": "rose"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_FindRelevantMemoriesFromForm(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	rec, _ := s.do(t, http.MethodPost, "/api/memories", token, map[string]interface{}{
		"title": "Grandma's bread", "content": "Baking bread with grandmother in the kitchen.", "mood": string(valueobjects.MoodHappy),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	form := url.Values{
		"question":      {"What did you cook?"},
		"response_text": {"I loved baking bread with my grandmother in her kitchen."},
		"patient_id":    {"rose"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/interview-analysis/find-relevant-memories", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec, env := s.send(t, req, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		RelevantMemories []struct {
			MemoryTitle string `json:"memory_title"`
		} `json:"relevant_memories"`
		Strategy string `json:"strategy"`
	}
	decodeData(t, env, &result)
	require.Len(t, result.RelevantMemories, 1)
	assert.Equal(t, "Grandma's bread", result.RelevantMemories[0].MemoryTitle)
	assert.Equal(t, "heuristic", result.Strategy)

	rec, _ = s.do(t, http.MethodPost, "/api/interview-analysis/real-time-feedback", token, map[string]string{"response_text": "yes"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func multipartBody(t *testing.T, field, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestRouter_MediaUploadAndDownload(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	body, contentType := multipartBody(t, "file", "beach.png", []byte("png bytes"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec, env := s.send(t, req, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var file entities.MediaFile
	decodeData(t, env, &file)
	assert.Equal(t, "beach.png", file.OriginalName)

	req = httptest.NewRequest(http.MethodGet, "/api/media/files/"+file.ID, nil)
	rec, _ = s.send(t, req, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png bytes", rec.Body.String())

	body, contentType = multipartBody(t, "file", "virus.exe", []byte("MZ"), nil)
	req = httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec, env = s.send(t, req, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", env.Error.Code)

	body, contentType = multipartBody(t, "file", "big.png", bytes.Repeat([]byte("x"), 2048), nil)
	req = httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec, env = s.send(t, req, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/media/files/"+file.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_VoiceNeedsGemini(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "rose", "patient")

	body, contentType := multipartBody(t, "audio", "answer.wav", []byte("RIFF"), map[string]string{"patient_id": "rose"})
	req := httptest.NewRequest(http.MethodPost, "/api/interview-analysis/analyze-voice-response", body)
	req.Header.Set("Content-Type", contentType)
	rec, _ := s.send(t, req, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "", nil)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
