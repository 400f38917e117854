package users

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailRegistered        = errors.New("email already registered")
	ErrInvalidReactivateToken = errors.New("invalid reactivation token")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports one or more attribute constraint violations found
// while creating or updating an account.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
