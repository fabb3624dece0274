package label

import (
	"errors"
	"fmt"
)

// ErrFontUnavailable is matched by every font loading failure.
var ErrFontUnavailable = errors.New("font unavailable")

// LoadError reports a font that could not be fetched or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load font %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrFontUnavailable, e.Err}
}
