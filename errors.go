package mimekit

import (
	"errors"
	"fmt"
)

// Common database errors
var (
	ErrNotFound              = errors.New("mime type not found")
	ErrTypeExists            = errors.New("mime type already exists")
	ErrInvalidName           = errors.New("invalid mime type name")
	ErrAlreadyLoaded         = errors.New("mime database already loaded")
	ErrProviderNotRegistered = errors.New("mime provider not registered")
)

// TypeError records an error and the operation and mime type that caused it
type TypeError struct {
	Op   string
	Name string
	Err  error
}

// Error implements the error interface
func (e *TypeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the underlying error
func (e *TypeError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether an error indicates an unknown mime type
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// validName reports whether name has the "group/subtype" shape.
func validName(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == '/' {
			return i > 0 && i < len(name)-1
		}
	}
	return false
}
