package veloxext

import (
	"errors"
	"fmt"
)

// Standard sentinel errors shared by the contrib packages.
var (
	// ErrNotFound is returned when a lookup does not resolve to an entity.
	ErrNotFound = errors.New("veloxext: entity not found")

	// ErrNotSingular is returned when a lookup that expects exactly one entity
	// matches several.
	ErrNotSingular = errors.New("veloxext: entity not singular")

	// ErrConfig is matched by every ConfigError.
	ErrConfig = errors.New("veloxext: improperly configured")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the value that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("veloxext: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("veloxext: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the value that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the value that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NotSingularError represents an error when a lookup expects a singular result
// but receives several.
type NotSingularError struct {
	label string
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	return fmt.Sprintf("veloxext: %s not singular", e.label)
}

// Is reports whether the target error matches NotSingularError.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// NewNotSingularError returns a new NotSingularError for the given entity type.
func NewNotSingularError(label string) *NotSingularError {
	return &NotSingularError{label: label}
}

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}

// ConfigError reports a fatal configuration problem, such as a database alias
// that is missing from the settings. Commands abort before writing any output.
type ConfigError struct {
	msg string
}

// Error returns the message unprefixed; it is shown to operators as-is.
func (e *ConfigError) Error() string {
	return e.msg
}

// Is reports whether the target error matches ErrConfig.
func (e *ConfigError) Is(err error) bool {
	return err == ErrConfig
}

// NewConfigError returns a ConfigError with a formatted message.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}
