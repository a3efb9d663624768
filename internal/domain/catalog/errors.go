package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCatalogUnavailable = errors.New("course catalog unavailable")
	ErrLoadTable          = errors.New("load reference table failed")
)
