package ai

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("storage", func(fl validator.FieldLevel) bool {
		return pantry.StorageLocation(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// extractJSON strips markdown fences and any prose around the outermost JSON
// object.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

// decodeStrict parses model output into T and validates it against the
// struct's validate tags. Any mismatch is a malformed response.
func decodeStrict[T any](op errors.Operation, raw string) (*T, error) {
	text := extractJSON(raw)
	if text == "" {
		return nil, errors.NewMalformedResponseError(op, "empty response from model", nil)
	}

	var out T
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, errors.NewMalformedResponseError(op, "response is not valid JSON", err)
	}
	if err := validate.Struct(out); err != nil {
		return nil, errors.NewMalformedResponseError(op, "response does not match schema", err)
	}
	return &out, nil
}
