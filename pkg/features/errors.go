// Package features provides text tokenization and TF-IDF vectorization
// of browsing-history records.
package features

import "errors"

var (
	// ErrInvalidConfig is returned when a component is constructed with an unusable setting.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvariant is returned when internal state is inconsistent, e.g. misaligned rows.
	ErrInvariant = errors.New("invariant violated")

	// ErrNotFitted is returned by Transform before Fit has been called.
	ErrNotFitted = errors.New("vectorizer not fitted")
)
