package storage

import "errors"

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenNotFound   = errors.New("verification token not found")
	ErrSessionNotFound = errors.New("session not found")
)
