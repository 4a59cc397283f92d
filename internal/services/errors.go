// Package services defines the business logic for orders, their lifecycle,
// notifications, chat intake, authentication and users.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Order lifecycle errors.
var (
	// ErrInvalidState is returned when a requested state is not one of the
	// known order states. No write happens in that case.
	ErrInvalidState = errors.New("invalid order state")

	// ErrIllegalTransition is returned in strict mode when the requested
	// transition is not part of the canonical lifecycle.
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrOrderNotFound indicates that the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDeliveryFailed wraps a messaging failure. The failed attempt is
	// still recorded.
	ErrDeliveryFailed = errors.New("notification delivery failed")

	// ErrClassificationFailed is returned when the language model could not
	// classify an inbound message.
	ErrClassificationFailed = errors.New("message classification failed")

	// ErrTranscriptionFailed is returned when a voice note could not be
	// turned into text.
	ErrTranscriptionFailed = errors.New("voice transcription failed")

	// ErrValidation marks malformed input that passed request binding.
	ErrValidation = errors.New("validation failed")
)

// Auth and user errors.
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("incorrect email or password")
	ErrInactiveUser        = errors.New("inactive user")
	ErrInvalidToken        = errors.New("could not validate credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrForbidden           = errors.New("not enough permissions")
)

// Extras errors.
var (
	ErrImageNotFound  = errors.New("image not found")
	ErrFilterNotFound = errors.New("filter not found")
)
