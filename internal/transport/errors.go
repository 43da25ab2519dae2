package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"go.uber.org/zap"
)

// respondWithDecodeError answers a request whose body failed to decode or validate
func respondWithDecodeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Debug("Request validation failed", zap.Error(err))

	// Check if it's a validation error
	if middleware.IsValidationFailure(err) {
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return
	}

	// JSON decode error
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// respondWithServiceError maps shared service outcomes onto HTTP statuses.
// Product lookups differ per endpoint and are handled by the caller.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, op string, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		fields := make([]middleware.ValidationError, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			fields = append(fields, middleware.ValidationError{Field: f.Field, Message: f.Message})
		}
		middleware.RespondWithValidationErrors(w, fields)
	case errors.Is(err, service.ErrMissingSession):
		middleware.RespondWithError(w, http.StatusBadRequest, "session ID required")
	case errors.Is(err, service.ErrCartNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "cart not found")
	case errors.Is(err, service.ErrCartItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
	default:
		middleware.RespondWithInternalError(w, r, logger, op, err)
	}
}
