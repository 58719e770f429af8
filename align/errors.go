package align

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuffix is returned when a calculation is requested without any suffix configured.
	ErrNoSuffix = errors.New("no version suffix configured")
	// ErrConflictingSuffix is returned when both a static and an incremental suffix are configured.
	ErrConflictingSuffix = errors.New("static and incremental suffix are mutually exclusive")
	// ErrPropertyClash is returned when one property would receive two different values.
	ErrPropertyClash = errors.New("property replacement clash")
	// ErrDivergentProperty is returned when a property is declared with different values across the reactor.
	ErrDivergentProperty = errors.New("property declared with divergent values")
)

// ConfigurationError reports a contradictory or empty suffix configuration.
// It is fatal for a calculation pass.
type ConfigurationError struct {
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid suffix configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid suffix configuration %q: %v", e.Option, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// CoordinateResolutionError reports a metadata lookup failure for one coordinate.
// The calculator recovers from it by assuming no versions were published.
type CoordinateResolutionError struct {
	Coordinate GA
	Err        error
}

func (e *CoordinateResolutionError) Error() string {
	return fmt.Sprintf("unable to resolve known versions of %s: %v", e.Coordinate, e.Err)
}

func (e *CoordinateResolutionError) Unwrap() error {
	return e.Err
}

// PropertyAmbiguityError reports a property value that cannot be safely
// decomposed or rewritten. It concerns a single property and is not fatal.
type PropertyAmbiguityError struct {
	Project  GA
	Property string
	Value    string
	Err      error
}

func (e *PropertyAmbiguityError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("project %s: unable to rewrite %q: %v", e.Project, e.Value, e.Err)
	}
	return fmt.Sprintf("project %s: unable to rewrite property %q (%q): %v", e.Project, e.Property, e.Value, e.Err)
}

func (e *PropertyAmbiguityError) Unwrap() error {
	return e.Err
}

// StrictAlignmentViolation reports a target version which is not a valid
// alignment of its source. The validator itself only returns a boolean,
// callers that want to fail on it use this type.
type StrictAlignmentViolation struct {
	Source string
	Target string
}

func (e *StrictAlignmentViolation) Error() string {
	return fmt.Sprintf("%q is not a strict alignment of %q", e.Target, e.Source)
}
