package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructural marks a rejected record position (stale or out-of-range index).
	ErrStructural = errors.New("structural error")
	// ErrIO marks an unreadable or unwritable backing document or malformed content.
	ErrIO = errors.New("io error")
	// ErrImage marks a missing or undecodable image, or a failed thumbnail write.
	ErrImage = errors.New("image error")
	// ErrNotFound marks a record or file that could not be located.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks a document that failed validation in strict mode.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks an unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component and operation context
// while tagging it with the provided marker for errors.Is classification. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, for log fields and
// CLI exit summaries.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStructural):
		return "structural"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrImage):
		return "image"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}
