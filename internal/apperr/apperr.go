// Package apperr defines the error kinds the service layer reports.
// Handlers match them with errors.Is and translate each kind to a fixed
// HTTP status, so services never import anything HTTP-aware.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrAlreadyWaitlisted  = errors.New("already waitlisted")
	ErrNotRegistered      = errors.New("not registered")
	ErrCategoryRestricted = errors.New("category not allowed for this event")
	ErrEventInPast        = errors.New("event is in the past")
)
