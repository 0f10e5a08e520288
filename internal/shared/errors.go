package shared

import "errors"

var (
	// ErrTokenInvalid indicates a token that failed signature or expiry checks.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrMissingSecret indicates the signing secret was not configured.
	ErrMissingSecret = errors.New("signing secret must be provided")
)
