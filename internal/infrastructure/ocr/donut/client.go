// Package donut calls the receipt OCR microservice built on the Donut
// document understanding model.
package donut

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/ports/outbound"
)

// ErrNoText is returned when the service answered but found no text.
var ErrNoText = errors.New("ocr returned no text")

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements outbound.ReceiptOCR.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for the service at cfg.BaseURL.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	logger.Info("Receipt OCR client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{http: c, logger: logger.Named("donut-ocr")}
}

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Success       bool   `json:"success"`
	ExtractedText string `json:"extracted_text"`
	Error         string `json:"error,omitempty"`
}

// ExtractText sends the image as a data URL and returns the extracted text.
// A non-2xx status, success=false or empty text is an error.
func (c *Client) ExtractText(ctx context.Context, img outbound.Image) (string, error) {
	var out analyzeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(analyzeRequest{Image: img.DataURL()}).
		SetResult(&out).
		Post("/analyze-receipt")
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ocr status %d: %s", resp.StatusCode(), resp.String())
	}
	if !out.Success {
		return "", fmt.Errorf("ocr failed: %s", out.Error)
	}
	text := strings.TrimSpace(out.ExtractedText)
	if text == "" {
		return "", ErrNoText
	}

	c.logger.Debug("Receipt text extracted", zap.Int("length", len(text)), zap.Duration("duration", resp.Time()))
	return text, nil
}

// HealthCheck calls the service's health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("ocr health check failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ocr health check failed with status %d", resp.StatusCode())
	}
	return nil
}
