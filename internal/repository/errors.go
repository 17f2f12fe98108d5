package repository

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrSeatsHeld        = errors.New("some seats are held by another user")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)
