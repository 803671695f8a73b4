// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them. Service
// sentinels are translated by classify so that REST responses and websocket
// error frames carry the same code for the same failure.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "conflict",
//	  "message": "request already responded"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/tbourn/skillswap-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeInvalidID        = "invalid_id"
	ErrCodeSelfRequest      = "self_request"
	ErrCodeNotAccepted      = "request_not_accepted"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// classify maps a service error onto an HTTP status and error code. Unknown
// errors are internal.
func classify(err error) (status int, code string) {
	switch {
	case errors.Is(err, services.ErrInvalidID):
		return http.StatusBadRequest, ErrCodeInvalidID
	case errors.Is(err, services.ErrSelfRequest):
		return http.StatusBadRequest, ErrCodeSelfRequest
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrContentTooLong),
		errors.Is(err, services.ErrInvalidSkill),
		errors.Is(err, services.ErrInvalidProfile):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, services.ErrSkillNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, services.ErrAlreadyResponded):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, services.ErrRequestNotAccepted):
		return http.StatusConflict, ErrCodeNotAccepted
	}
	return http.StatusInternalServerError, ErrCodeInternal
}
