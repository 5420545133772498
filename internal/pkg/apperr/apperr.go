package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer. Handlers map them to status codes
// with errors.Is, so wrap instead of replacing them.
var (
	ErrValidation         = errors.New("validation error")
	ErrSchemaViolation    = errors.New("schema violation")
	ErrDuplicateSlug      = errors.New("duplicate slug")
	ErrNotFound           = errors.New("not found")
	ErrGenerationFormat   = errors.New("generation format error")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError describes a missing or malformed article field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation creates a ValidationError for a single field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SchemaError reports a content block that does not match its variant shape.
// Index is the block position in its sequence, or -1 for a standalone block.
type SchemaError struct {
	Index  int
	Type   string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	msg := "schema violation"
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at block %d", e.Index)
	}
	if e.Type != "" {
		msg += fmt.Sprintf(" (%s)", e.Type)
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

// AtIndex returns a copy of err positioned at index i when err is a SchemaError.
func AtIndex(err error, i int) error {
	var se *SchemaError
	if errors.As(err, &se) {
		cp := *se
		cp.Index = i
		return &cp
	}
	return err
}

// GenerationFormatError is returned when a text-generation response carries
// no usable JSON payload.
type GenerationFormatError struct {
	Reason string
	Err    error
}

func (e *GenerationFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation format: %s: %v", e.Reason, e.Err)
	}
	return "generation format: " + e.Reason
}

func (e *GenerationFormatError) Unwrap() error { return ErrGenerationFormat }

// DuplicateSlug reports that slug is already taken.
func DuplicateSlug(slug string) error {
	return fmt.Errorf("article %q: %w", slug, ErrDuplicateSlug)
}

// NotFound reports that the named resource does not exist.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// Storage marks err as a backend failure of op.
func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
