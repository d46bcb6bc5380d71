// internal/domain/errors.go
package domain

import "errors"

// ErrNotFound is returned by repositories when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrAlreadyApplied guards against re-applying a pricing recommendation.
var ErrAlreadyApplied = errors.New("recommendation already applied")

// ErrExpired is returned when applying a recommendation past its valid_until.
var ErrExpired = errors.New("recommendation expired")
