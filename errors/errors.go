package errors

import "fmt"

var (
	ErrEmptyPrompt        = fmt.Errorf("prompt is required")
	ErrUnauthorized       = fmt.Errorf("not authorized")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrListingNotFound    = fmt.Errorf("listing not found")
	ErrUnsupportedImage   = fmt.Errorf("unsupported image format")
	ErrEmptySeed          = fmt.Errorf("no seed entries have been found")
	ErrNoRules            = fmt.Errorf("no intent rules have been found")
)
