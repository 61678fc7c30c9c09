// Package gemini adapts the Google Gemini API to ports.TextGenerator.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const service = "gemini"

// contentGenerator is the part of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls Gemini behind a timeout and a circuit breaker. A client built
// without an API key reports itself disabled and every call fails with an
// Unavailable error.
type Client struct {
	models    contentGenerator
	model     string
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker
	tracer    *observability.Tracer
	metrics   *observability.Metrics
	collector *observability.Collector
	logger    *zap.Logger
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config, tracer *observability.Tracer, metrics *observability.Metrics, collector *observability.Collector, logger *zap.Logger) (*Client, error) {
	c := newClient(nil, cfg, tracer, metrics, collector, logger)
	if cfg.APIKey == "" {
		logger.Info("Gemini API key not set, AI features use local fallbacks")
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create Gemini client")
	}
	c.models = client.Models
	logger.Info("Gemini client initialized", zap.String("model", cfg.Model))
	return c, nil
}

func newClient(models contentGenerator, cfg Config, tracer *observability.Tracer, metrics *observability.Metrics, collector *observability.Collector, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		models:    models,
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		breaker:   newBreaker(logger),
		tracer:    tracer,
		metrics:   metrics,
		collector: collector,
		logger:    logger,
	}
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        service,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.models != nil
}

// GenerateText returns the model's text answer to prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "GenerateText", genai.Text(prompt), nil)
}

// GenerateJSON asks for a JSON answer and decodes it into out.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, out any) error {
	text, err := c.generate(ctx, "GenerateJSON", genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFence(text)), out); err != nil {
		return pkgerrors.NewExternalError(service, err).WithCode("INVALID_AI_RESPONSE")
	}
	return nil
}

// Transcribe returns the words spoken in audio.
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", pkgerrors.NewValidationError("audio is empty")
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Transcribe this recording word for word. Reply with the transcript only."),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}
	text, err := c.generate(ctx, "Transcribe", contents, nil)
	return strings.TrimSpace(text), err
}

func (c *Client) generate(ctx context.Context, operation string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	if !c.Enabled() {
		return "", pkgerrors.NewUnavailableError(service)
	}

	start := time.Now()
	var text string
	err := c.tracer.TraceFunction(ctx, "Gemini."+operation, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		res, err := c.breaker.Execute(func() (interface{}, error) {
			resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
			if err != nil {
				return nil, err
			}
			return resp.Text(), nil
		})
		if err != nil {
			return c.classify(ctx, err)
		}
		text = res.(string)
		return nil
	})

	c.metrics.RecordLatency(ctx, "Gemini."+operation, time.Since(start), err)
	c.collector.AICall(service, err)
	if err != nil {
		c.logger.Warn("Gemini call failed", zap.String("operation", operation), zap.Error(err))
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", pkgerrors.NewExternalError(service, errors.New("empty response"))
	}
	return text, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.NewUnavailableError(service).WithCause(err)
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
		return pkgerrors.NewTimeoutError(service).WithCause(err)
	default:
		return pkgerrors.NewExternalError(service, err)
	}
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}
