package common

import (
	"errors"
	"fmt"
)

// Job-setup failures. Both are fatal for the job and are surfaced to the
// caller before any model call happens; everything that goes wrong after
// setup stays local to a single entity result.
var (
	// ErrInvalidConfig marks misconfiguration detected at job setup time:
	// duplicate entity names, an empty input-mode set, an unknown mode.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnsupportedFormat marks a document that cannot be converted to the
	// requested representation (e.g. text from a pure image).
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// WrapError annotates err with a message, preserving the chain for errors.Is.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
