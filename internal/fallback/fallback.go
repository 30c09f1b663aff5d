// Package fallback makes try-primary/degrade chains explicit instead of
// scattering error interception across call sites.
package fallback

import (
	"errors"
	"fmt"
)

// ErrNoPrimary marks a chain whose primary path is not configured at all.
var ErrNoPrimary = errors.New("no primary implementation configured")

// Reason builds a tagged failure reason for a degraded path.
func Reason(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Run executes primary and, on error, the degrade function with the failure
// reason. The second return reports whether the degraded path was taken.
func Run[T any](primary func() (T, error), degrade func(error) T) (T, bool) {
	v, err := primary()
	if err != nil {
		return degrade(err), true
	}
	return v, false
}
