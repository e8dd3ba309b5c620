package storage

import (
	"errors"
	"fmt"
)

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that a uniqueness constraint on users was violated
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUsernameTaken indicates that user with this username already exists
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrUserAlreadyExists)

	// ErrEmailTaken indicates that user with this email already exists
	ErrEmailTaken = fmt.Errorf("%w: email already taken", ErrUserAlreadyExists)

	// ErrTokenNotFound indicates that token is not in the revocation list
	ErrTokenNotFound = errors.New("revoked token not found")
)
