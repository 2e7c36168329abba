package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Approval code errors
var (
	ErrCodeFormatInvalid      = errors.New("approval code format is invalid")
	ErrCodeNotFound           = errors.New("approval code not found")
	ErrCodeAlreadyUsed        = errors.New("approval code already used")
	ErrCodeExpired            = errors.New("approval code expired")
	ErrCodeRedemptionConflict = errors.New("approval code was redeemed by another signup")
)

// Membership errors
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrInvalidTransition  = errors.New("invalid approval status transition")
	ErrReasonRequired     = errors.New("a reason is required for this action")
	ErrHomeGroupNotFound  = errors.New("home group not found")
	ErrHomeGroupInUse     = errors.New("home group is referenced by member profiles")
	ErrFutureCleanDate    = errors.New("clean date must not be in the future")
	ErrNameRequired       = errors.New("first or last name is required")
	ErrEmailAlreadyExists = errors.New("email already registered")
)
