// Package repository implements data access over MySQL. The sentinel
// errors below let handlers distinguish failure scenarios and map
// them onto HTTP status codes without string matching: ErrForbidden
// becomes 403, ErrNotFound 404 and the conflict family 409.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on
// a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when the referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation cannot proceed due to
// current state, such as an illegal status transition or a
// race-lost update.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned on user creation with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateClub is returned when a club with the same name and
// country already exists among non-rejected clubs.
var ErrDuplicateClub = errors.New("club already registered")

// ErrDuplicateLicense is returned when the license number is taken.
var ErrDuplicateLicense = errors.New("license number already registered")

// ErrWishlisted is returned when a club already wishlists a player.
var ErrWishlisted = errors.New("player already wishlisted")

// ErrWindowOverlap is returned when a new transfer window would
// overlap an existing open one.
var ErrWindowOverlap = errors.New("overlapping transfer window")
