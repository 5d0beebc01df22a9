package repository

import "errors"

// ErrDuplicateEmail is returned when a user's email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")
