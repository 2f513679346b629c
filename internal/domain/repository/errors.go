package repository

import "errors"

// ErrNotFound is returned by lookups that match nothing
var ErrNotFound = errors.New("record not found")
