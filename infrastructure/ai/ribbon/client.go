// Package ribbon is the client for the Ribbon voice-interview API.
package ribbon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mindbloom-backend/application/ports"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	service = "ribbon"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Config configures the Ribbon client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Ribbon REST API with a bearer key.
type Client struct {
	apiKey    string
	baseURL   string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	tracer    *observability.Tracer
	metrics   *observability.Metrics
	collector *observability.Collector
	logger    *zap.Logger
}

// NewClient creates a Ribbon client. Without an API key the client is
// disabled and every call fails with an Unavailable error.
func NewClient(cfg Config, tracer *observability.Tracer, metrics *observability.Metrics, collector *observability.Collector, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.APIKey == "" {
		logger.Info("Ribbon API key not set, voice interviews are disabled")
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        service,
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// 4xx answers mean the service is up.
				var se *statusError
				return err == nil || (errors.As(err, &se) && se.status < 500)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		tracer:    tracer,
		metrics:   metrics,
		collector: collector,
		logger:    logger,
	}
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type flowBody struct {
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Questions []string          `json:"questions"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type interviewBody struct {
	FlowID   string            `json:"flow_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// remoteObject accepts the id and link spellings Ribbon uses across endpoints.
type remoteObject struct {
	ID              string `json:"id"`
	InterviewFlowID string `json:"interview_flow_id"`
	InterviewID     string `json:"interview_id"`
	URL             string `json:"url"`
	InterviewLink   string `json:"interview_link"`
	Status          string `json:"status"`
}

func (o remoteObject) id() string {
	return firstNonEmpty(o.ID, o.InterviewFlowID, o.InterviewID)
}

type resultsBody struct {
	InterviewID string                 `json:"interview_id"`
	Responses   []ports.QuestionAnswer `json:"responses"`
}

// CreateFlow registers an interview flow.
func (c *Client) CreateFlow(ctx context.Context, req ports.FlowRequest) (*ports.RemoteFlow, error) {
	var out remoteObject
	err := c.call(ctx, "CreateFlow", http.MethodPost, "/interview-flows", flowBody{
		Name:      req.Name,
		Type:      "general",
		Questions: req.Questions,
		Metadata:  req.Metadata,
	}, http.StatusCreated, &out)
	if err != nil {
		return nil, err
	}
	if out.id() == "" {
		return nil, pkgerrors.NewExternalError(service, errors.New("flow id missing from response"))
	}
	return &ports.RemoteFlow{ID: out.id()}, nil
}

// CreateInterview starts an interview session from a flow.
func (c *Client) CreateInterview(ctx context.Context, flowID string, metadata map[string]string) (*ports.RemoteInterview, error) {
	var out remoteObject
	err := c.call(ctx, "CreateInterview", http.MethodPost, "/interviews", interviewBody{
		FlowID:   flowID,
		Metadata: metadata,
	}, http.StatusCreated, &out)
	if err != nil {
		return nil, err
	}
	if out.id() == "" {
		return nil, pkgerrors.NewExternalError(service, errors.New("interview id missing from response"))
	}
	return &ports.RemoteInterview{ID: out.id(), URL: firstNonEmpty(out.InterviewLink, out.URL), Status: out.Status}, nil
}

// GetInterview returns the current state of an interview.
func (c *Client) GetInterview(ctx context.Context, id string) (*ports.RemoteInterview, error) {
	var out remoteObject
	if err := c.call(ctx, "GetInterview", http.MethodGet, "/interviews/"+url.PathEscape(id), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &ports.RemoteInterview{ID: firstNonEmpty(out.id(), id), URL: firstNonEmpty(out.InterviewLink, out.URL), Status: out.Status}, nil
}

// GetResults returns the answers of a finished interview.
func (c *Client) GetResults(ctx context.Context, id string) (*ports.InterviewResults, error) {
	var out resultsBody
	if err := c.call(ctx, "GetResults", http.MethodGet, "/interviews/"+url.PathEscape(id)+"/results", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &ports.InterviewResults{InterviewID: firstNonEmpty(out.InterviewID, id), Responses: out.Responses}, nil
}

// statusError is an unexpected HTTP status from Ribbon.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

func (c *Client) call(ctx context.Context, operation, method, path string, body any, want int, out any) error {
	if !c.Enabled() {
		return pkgerrors.NewUnavailableError(service)
	}

	start := time.Now()
	err := c.tracer.TraceFunction(ctx, "Ribbon."+operation, func(ctx context.Context) error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.do(ctx, method, path, body, want, out)
		})
		return err
	})

	c.metrics.RecordLatency(ctx, "Ribbon."+operation, time.Since(start), err)
	c.collector.AICall(service, err)
	if err == nil {
		return nil
	}

	c.logger.Warn("Ribbon call failed", zap.String("operation", operation), zap.Error(err))
	var se *statusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.NewUnavailableError(service).WithCause(err)
	case errors.As(err, &se):
		return pkgerrors.NewExternalError(service, err).WithDetails(map[string]interface{}{
			"status": se.status,
			"body":   se.body,
		})
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.NewTimeoutError(service).WithCause(err)
	default:
		return pkgerrors.NewExternalError(service, err)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ribbon marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("ribbon request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ribbon decode: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
