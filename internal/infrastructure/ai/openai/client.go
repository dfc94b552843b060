// Package openai provides an OpenAI chat completions adapter with JSON schema
// structured output.
package openai

import (
	"context"
	"encoding/json"
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
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	providerName = "openai"
)

// Config configures the client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements outbound.GenerativeModel using the OpenAI API
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewClient creates a new OpenAI client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	logger.Info("OpenAI client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Bool("api_key_set", cfg.APIKey != ""))

	return &Client{
		http:   c,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		logger: logger.Named("openai-client"),
	}
}

// OpenAI API structures
type imageURL struct {
	URL string `json:"url"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type jsonSchema struct {
	Name   string           `json:"name"`
	Schema *outbound.Schema `json:"schema"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// Name identifies provider and model.
func (c *Client) Name() string {
	return providerName + "/" + c.model
}

// Generate runs one chat completion constrained to the request schema.
func (c *Client) Generate(ctx context.Context, req outbound.GenerationRequest) (string, error) {
	if c.apiKey == "" {
		return "", &outbound.ProviderError{
			Provider:   providerName,
			StatusCode: http.StatusUnauthorized,
			Message:    "API key is not configured",
		}
	}

	var messages []message
	if req.SystemInstruction != "" {
		messages = append(messages, message{Role: "system", Content: req.SystemInstruction})
	}
	user := []contentPart{{Type: "text", Text: req.Prompt}}
	if req.Image != nil {
		user = append(user, contentPart{Type: "image_url", ImageURL: &imageURL{URL: req.Image.DataURL()}})
	}
	messages = append(messages, message{Role: "user", Content: user})

	body := chatCompletionRequest{Model: c.model, Messages: messages}
	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		body.ResponseFormat = &responseFormat{Type: "json_schema", JSONSchema: &jsonSchema{Name: name, Schema: req.Schema}}
	} else {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var out chatCompletionResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(&body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", &outbound.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Status:     apiErr.Error.Type,
			Message:    msg,
		}
	}

	if len(out.Choices) == 0 {
		return "", nil
	}
	c.logger.Debug("OpenAI response received",
		zap.String("finish_reason", out.Choices[0].FinishReason),
		zap.Int("total_tokens", out.Usage.TotalTokens))
	return out.Choices[0].Message.Content, nil
}
