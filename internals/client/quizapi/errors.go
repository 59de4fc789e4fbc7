package quizapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrAlreadyAttempted = errors.New("quiz already attempted")

// APIError = envelope error dari server (success=false).
type APIError struct {
	Status  int
	Code    string
	Message string
	Errors  map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("quiz api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Errors[k], ", "))
	}
	return fmt.Sprintf("quiz api: %d %s: %s (%s)", e.Status, e.Code, e.Message, strings.Join(parts, "; "))
}

// AlreadyAttemptedError: GET dengan has_attempted=true atau submit 409.
// Attempt bisa nil kalau server tidak mengirim attempt lama.
type AlreadyAttemptedError struct {
	Attempt *Attempt
}

func (e *AlreadyAttemptedError) Error() string { return ErrAlreadyAttempted.Error() }

func (e *AlreadyAttemptedError) Unwrap() error { return ErrAlreadyAttempted }

func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == 404
}

func IsValidation(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == 422
}
