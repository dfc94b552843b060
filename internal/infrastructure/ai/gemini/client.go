// Package gemini calls the Google Generative Language REST API with
// structured JSON output.
package gemini

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
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash-preview-09-2025"

	providerName = "gemini"
)

// Config configures the client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client implements outbound.GenerativeModel.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewClient creates a Gemini client. A missing API key is reported on the
// first call as an invalid-credentials error.
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

	logger.Info("Gemini client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Bool("api_key_set", cfg.APIKey != ""),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		http:   c,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		logger: logger.Named("gemini-client"),
	}
}

// Gemini API structures
type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*schema `json:"properties,omitempty"`
	Items       *schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type generateResponse struct {
	Candidates     []candidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Name identifies provider and model.
func (c *Client) Name() string {
	return providerName + "/" + c.model
}

// Generate sends one generateContent call and returns the text of the first
// candidate. An empty string is returned when the model produced no text.
func (c *Client) Generate(ctx context.Context, req outbound.GenerationRequest) (string, error) {
	if c.apiKey == "" {
		return "", &outbound.ProviderError{
			Provider:   providerName,
			StatusCode: http.StatusUnauthorized,
			Message:    "API key is not configured",
		}
	}

	var parts []part
	if req.Image != nil {
		parts = append(parts, part{InlineData: &inlineData{MimeType: req.Image.MIMEType, Data: req.Image.Base64()}})
	}
	parts = append(parts, part{Text: req.Prompt})

	body := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   convertSchema(req.Schema),
		},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemInstruction}}}
	}

	var out generateResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetPathParam("model", c.model).
		SetBody(&body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", &outbound.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode(),
			Status:     apiErr.Error.Status,
			Message:    msg,
		}
	}

	if len(out.Candidates) == 0 {
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			c.logger.Warn("Prompt blocked", zap.String("reason", out.PromptFeedback.BlockReason))
		}
		return "", nil
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	c.logger.Debug("Gemini response received",
		zap.String("finish_reason", out.Candidates[0].FinishReason),
		zap.Int("length", b.Len()),
		zap.Duration("duration", resp.Time()))
	return b.String(), nil
}

// convertSchema renders the neutral schema in Gemini's OpenAPI subset, which
// spells types in upper case.
func convertSchema(s *outbound.Schema) *schema {
	if s == nil {
		return nil
	}
	out := &schema{
		Type:        strings.ToUpper(string(s.Type)),
		Description: s.Description,
		Enum:        s.Enum,
		Items:       convertSchema(s.Items),
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = convertSchema(prop)
		}
	}
	return out
}
