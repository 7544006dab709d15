package domain

import "errors"

// Sentinel errors for every caller-visible failure. Services return these
// (possibly wrapped); only the HTTP layer maps them to status codes.
var (
	ErrValidation              = errors.New("invalid request")
	ErrDuplicateAccount        = errors.New("account already exists")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailAlreadyVerified    = errors.New("email already verified")
	ErrInvalidOrExpiredSecret  = errors.New("invalid or expired verification secret")
	ErrUnverifiedProviderEmail = errors.New("provider email not verified")
	ErrUpstreamVerification    = errors.New("provider assertion verification failed")
	ErrTodoNotFound            = errors.New("todo not found")
	ErrForbidden               = errors.New("not authorized to access this todo")
)
