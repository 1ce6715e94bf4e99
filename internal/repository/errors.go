// Package repository contains data access logic separated from HTTP
// handlers. This file defines sentinel errors shared across the
// repositories so higher layers can translate failure scenarios to the
// proper HTTP responses without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when registering a user whose email is
// already taken. Handlers translate it to a registration failure.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when a category insert or rename collides
// with the unique slug index. Handlers translate it to HTTP 409.
var ErrSlugExists = errors.New("category slug already exists")

// ErrUserNotFound is returned when a user id or email has no row.
var ErrUserNotFound = errors.New("user not found")

// ErrCategoryNotFound is returned when a category id has no row.
var ErrCategoryNotFound = errors.New("category not found")

// ErrMaterialNotFound is returned when a material id has no row.
var ErrMaterialNotFound = errors.New("material not found")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062 on a unique index).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
