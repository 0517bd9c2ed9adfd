package domain

import (
	"errors"
	"fmt"
)

type Action string

const (
	ActionList   Action = "load"
	ActionCreate Action = "create"
)

// AuthenticationError is any failed login, whatever the upstream said.
type AuthenticationError struct {
	Err error
}

func (e AuthenticationError) Error() string {
	return "Invalid credentials"
}

func (e AuthenticationError) Unwrap() error { return e.Err }

// RequestError is a failed list or create call. Status is 0 for transport
// failures. The message is fixed per resource and action; the upstream
// body is never surfaced.
type RequestError struct {
	Resource Resource
	Action   Action
	Status   int
	Err      error
}

func (e RequestError) Error() string {
	if e.Action == ActionList {
		return fmt.Sprintf("Failed to load %s", e.Resource)
	}
	return fmt.Sprintf("Failed to %s %s", e.Action, e.Resource.Singular())
}

func (e RequestError) Unwrap() error { return e.Err }

// ValidationError is a missing required login field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

// ValidationErrors collects per-field failures so a form can show all of
// them at once.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation error"
	}
	return v[0].Error()
}

// Field returns the message for one field, or "".
func (v ValidationErrors) Field(name string) string {
	for _, e := range v {
		if e.Field == name {
			return e.Msg
		}
	}
	return ""
}

var ErrForbidden = errors.New("access denied")

func IsAuthentication(err error) bool {
	var target AuthenticationError
	return errors.As(err, &target)
}

func IsRequest(err error) bool {
	var target RequestError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var one ValidationError
	var many ValidationErrors
	return errors.As(err, &one) || errors.As(err, &many)
}
