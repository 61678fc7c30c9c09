package ribbon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindbloom-backend/application/ports"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "secret", BaseURL: srv.URL + "/", Timeout: time.Second}, nil, nil, nil, zap.NewNop())
}

func TestClient_CreateFlow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/interview-flows", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body flowBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Family - Memory Interview", body.Name)
		assert.Equal(t, "general", body.Type)
		assert.Equal(t, []string{"q1", "q2"}, body.Questions)
		assert.Equal(t, "p1", body.Metadata["patient_id"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"interview_flow_id": "flow-1"}`))
	})

	flow, err := c.CreateFlow(context.Background(), ports.FlowRequest{
		Name:      "Family - Memory Interview",
		Questions: []string{"q1", "q2"},
		Metadata:  map[string]string{"patient_id": "p1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "flow-1", flow.ID)
}

func TestClient_CreateInterview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interviews", r.URL.Path)
		var body interviewBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "flow-1", body.FlowID)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"interview_id": "iv-1", "interview_link": "https://ribbon.test/i/iv-1", "status": "created"}`))
	})

	iv, err := c.CreateInterview(context.Background(), "flow-1", map[string]string{"patient_name": "Rose"})
	require.NoError(t, err)
	assert.Equal(t, &ports.RemoteInterview{ID: "iv-1", URL: "https://ribbon.test/i/iv-1", Status: "created"}, iv)
}

func TestClient_GetResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/interviews/iv-1/results", r.URL.Path)
		_, _ = w.Write([]byte(`{"responses": [{"question": "Where did you grow up?", "answer": "Ohio"}]}`))
	})

	res, err := c.GetResults(context.Background(), "iv-1")
	require.NoError(t, err)
	assert.Equal(t, "iv-1", res.InterviewID)
	assert.Equal(t, []ports.QuestionAnswer{{Question: "Where did you grow up?", Answer: "Ohio"}}, res.Responses)
}

func TestClient_UnexpectedStatusCarriesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "flow_id is invalid"}`))
	})

	_, err := c.GetInterview(context.Background(), "iv-1")
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.ErrorTypeExternal, appErr.Type)
	assert.Equal(t, http.StatusBadRequest, appErr.Details["status"])
	assert.Equal(t, `{"error": "flow_id is invalid"}`, appErr.Details["body"])
}

func TestClient_Disabled(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"}, nil, nil, nil, zap.NewNop())
	assert.False(t, c.Enabled())

	_, err := c.CreateFlow(context.Background(), ports.FlowRequest{Name: "x"})
	assert.True(t, pkgerrors.IsUnavailable(err))
}
