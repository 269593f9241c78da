package period

import (
	"errors"
	"fmt"
)

// InvalidRangeError reports a malformed or inverted date range.
type InvalidRangeError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid date range: %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid date range: %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsInvalidRange reports whether err is or wraps an *InvalidRangeError.
func IsInvalidRange(err error) bool {
	var target *InvalidRangeError
	return errors.As(err, &target)
}

func withField(err error, field string) error {
	var target *InvalidRangeError
	if errors.As(err, &target) && target.Field == "" {
		copied := *target
		copied.Field = field
		return &copied
	}
	return err
}
