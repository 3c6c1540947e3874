package admin

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrPlayerNotFound = errors.New("player_not_found")
	ErrUnknownUpgrade = errors.New("unknown_upgrade")
)
