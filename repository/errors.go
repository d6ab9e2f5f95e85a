package repository

import "errors"

// Sentinel errors for store operations.
var (
	ErrArticleNotFound = errors.New("article not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("username or email already exists")
)
