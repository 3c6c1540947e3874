package account

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrUsernameTaken      = errors.New("username_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)
