// Package ollama provides Ollama integration for local AI inference
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/ports/outbound"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2-vision"

	providerName = "ollama"
)

// Config configures the client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements outbound.GenerativeModel using the Ollama chat API
type Client struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a new Ollama client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	logger.Info("Ollama client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		http:   c,
		model:  cfg.Model,
		logger: logger.Named("ollama-client"),
	}
}

// Ollama API structures
type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	// Format is either "json" or a JSON schema.
	Format interface{} `json:"format,omitempty"`
}

type chatResponse struct {
	Model         string      `json:"model"`
	Message       chatMessage `json:"message"`
	Done          bool        `json:"done"`
	TotalDuration int64       `json:"total_duration,omitempty"`
	EvalCount     int         `json:"eval_count,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Name identifies provider and model.
func (c *Client) Name() string {
	return providerName + "/" + c.model
}

// Generate runs one non-streaming chat call with the schema as format.
func (c *Client) Generate(ctx context.Context, req outbound.GenerationRequest) (string, error) {
	var messages []chatMessage
	if req.SystemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemInstruction})
	}
	user := chatMessage{Role: "user", Content: req.Prompt}
	if req.Image != nil {
		user.Images = []string{req.Image.Base64()}
	}
	messages = append(messages, user)

	body := chatRequest{Model: c.model, Messages: messages, Stream: false, Format: "json"}
	if req.Schema != nil {
		body.Format = req.Schema
	}

	var out chatResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/chat")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.String()
		}
		return "", &outbound.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Message:    msg,
		}
	}

	c.logger.Debug("Ollama response received",
		zap.Bool("done", out.Done),
		zap.Int("eval_count", out.EvalCount),
		zap.Duration("total_duration", time.Duration(out.TotalDuration)))
	return out.Message.Content, nil
}

// HealthCheck verifies the Ollama daemon answers.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode())
	}
	return nil
}
