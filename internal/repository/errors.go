// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to existing state (e.g. rating a service twice
// or subscribing while a subscription is still active).
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// email column. Handlers should translate this into an HTTP 400
// "Email already registered" response.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as rating a service that the user already
// rated. Handlers should translate this into an HTTP 400 response.
var ErrConflict = errors.New("conflict")
