package validate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/bookaio/backend/pkg/models"
)

// Validation failures. The handler maps each to its own HTTP status.
var (
	ErrMalformedBody = errors.New("request body is not valid JSON")
	ErrInvalidType   = errors.New("invalid generation type")
)

// FieldTooLongError names the offending field without echoing its contents
type FieldTooLongError struct {
	Field string
	Max   int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("field %q exceeds the maximum length of %d characters", e.Field, e.Max)
}

// typedFields covers the portion of the payload with a fixed shape
type typedFields struct {
	Type string `json:"type" validate:"required,oneof=ebook cover mockup ad video"`
}

// Validator performs stateless checks on generation request bodies
type Validator struct {
	maxFieldLength int
	validate       *validator.Validate
}

// New creates a request validator with the given string field bound
func New(maxFieldLength int) *Validator {
	return &Validator{
		maxFieldLength: maxFieldLength,
		validate:       validator.New(),
	}
}

// ParseRequest parses and validates a raw body into a GenerateRequest.
// It is a pure function of its inputs; no side effects.
func (v *Validator) ParseRequest(body []byte) (*models.GenerateRequest, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, ErrMalformedBody
	}

	var typed typedFields
	if err := json.Unmarshal(body, &typed); err != nil {
		return nil, ErrMalformedBody
	}
	if err := v.validate.Struct(&typed); err != nil {
		return nil, ErrInvalidType
	}

	if err := v.checkFieldLengths("", fields); err != nil {
		return nil, err
	}

	return &models.GenerateRequest{
		Type:   models.GenerationType(typed.Type),
		Fields: fields,
	}, nil
}

// checkFieldLengths walks the decoded payload and bounds every string
// value, including strings nested in objects and arrays.
func (v *Validator) checkFieldLengths(prefix string, value any) error {
	switch val := value.(type) {
	case string:
		if len(val) > v.maxFieldLength {
			return &FieldTooLongError{Field: prefix, Max: v.maxFieldLength}
		}
	case map[string]any:
		for key, nested := range val {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			if err := v.checkFieldLengths(name, nested); err != nil {
				return err
			}
		}
	case []any:
		for i, nested := range val {
			if err := v.checkFieldLengths(fmt.Sprintf("%s[%d]", prefix, i), nested); err != nil {
				return err
			}
		}
	}
	return nil
}
