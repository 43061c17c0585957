// Package repository holds the MySQL access code for screenings and the
// booking ledger.  Methods suffixed with Tx run inside a caller-owned
// transaction and never commit or roll back themselves.
package repository

import "errors"

// ErrConflict is returned when a guarded write matched no row because the
// stored state no longer satisfies its precondition, e.g. a seat decrement
// that would drive the counter below zero.
var ErrConflict = errors.New("conflict")

// ErrInvalidArgument is returned before touching the database when a write
// is asked to store a value the schema would reject.
var ErrInvalidArgument = errors.New("invalid argument")
