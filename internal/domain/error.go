package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// OTP flow errors. Verification never distinguishes a wrong code from a
	// missing or expired one.
	ErrRateLimitExceeded   = errors.New("too many OTP requests")
	ErrTooManyAttempts     = errors.New("too many verification attempts")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")

	// Token errors
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)
