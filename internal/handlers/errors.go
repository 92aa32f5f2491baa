package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/campus-hub/campus-events-api/internal/apperr"
)

// translateError maps service error kinds to HTTP statuses. The mapping is
// deterministic: the same kind always yields the same status.
func translateError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, apperr.ErrNotRegistered):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, apperr.ErrPermissionDenied):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, apperr.ErrCategoryRestricted):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, apperr.ErrAlreadyRegistered),
		errors.Is(err, apperr.ErrAlreadyWaitlisted):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrEventInPast):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError("internal error: " + err.Error())
	}
}
