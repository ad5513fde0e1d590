package domain

import "errors"

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrStorage         = errors.New("storage failure")
	ErrInvalidArgument = errors.New("invalid argument")
)
