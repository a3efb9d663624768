package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrLoadData        = errors.New("load reference data failed")
	ErrInvalidSchedule = errors.New("invalid schedule text")
)
