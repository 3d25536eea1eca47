package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSecretNotFound  = errors.New("secret not found")
	ErrSecretReadOnly  = errors.New("secret store is read-only")
	ErrEmptyMessage    = errors.New("message content is empty")
	ErrEmptyTitle      = errors.New("session title is empty")
)
