// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Service errors are translated in one place (failErr) so
// every endpoint answers the same sentinel with the same status.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "illegal_transition",
//	  "message": "illegal state transition"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/pedidos-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeInvalidState      = "invalid_state"
	ErrCodeIllegalTransition = "illegal_transition"
	ErrCodeEmailTaken        = "email_taken"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)

// errorMapping is checked in order with errors.Is.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{services.ErrValidation, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrInvalidState, http.StatusBadRequest, ErrCodeInvalidState},
	{services.ErrIllegalTransition, http.StatusConflict, ErrCodeIllegalTransition},
	{services.ErrEmailTaken, http.StatusBadRequest, ErrCodeEmailTaken},
	{services.ErrWrongPassword, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrOrderNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrImageNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrFilterNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized},
	{services.ErrInvalidToken, http.StatusUnauthorized, ErrCodeUnauthorized},
	{services.ErrInvalidRefreshToken, http.StatusUnauthorized, ErrCodeUnauthorized},
	{services.ErrInactiveUser, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
}

// failErr writes the envelope for a service error. Unknown errors become a
// logged 500 whose message does not leak internals.
func failErr(c *gin.Context, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			if m.status == http.StatusUnauthorized {
				c.Header("WWW-Authenticate", "Bearer")
			}
			fail(c, m.status, m.code, m.err.Error())
			return
		}
	}
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
