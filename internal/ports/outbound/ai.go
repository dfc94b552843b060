package outbound

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Image is an inline image sent for analysis.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the image bytes in standard base64.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL renders the image as a data: URL.
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MIMEType, i.Base64())
}

// SchemaType is a JSON schema primitive.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeBoolean SchemaType = "boolean"
)

// Schema is the provider-neutral description of a structured response.
// Adapters translate it into their own dialect.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// GenerationRequest is one structured-output call to a generative model.
type GenerationRequest struct {
	SystemInstruction string
	Prompt            string
	// Image is nil for text-only requests.
	Image *Image
	// SchemaName identifies the schema for providers that require a name.
	SchemaName string
	Schema     *Schema
}

// GenerativeModel produces JSON text conforming to a requested schema.
type GenerativeModel interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Name identifies provider and model, e.g. "gemini/gemini-2.5-flash".
	Name() string
}

// ReceiptOCR extracts text from a receipt image.
type ReceiptOCR interface {
	ExtractText(ctx context.Context, img Image) (string, error)
}

// ProviderError is returned by model adapters when the provider answers with
// an error. The fields are used for classification only and are never shown
// to users.
type ProviderError struct {
	Provider   string
	StatusCode int
	Status     string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Provider, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %d: %s", e.Provider, e.StatusCode, e.Message)
}
