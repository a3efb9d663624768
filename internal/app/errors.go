package service

import (
	"fmt"

	"github.com/unitrack/planner/internal/adapters/repository"
	"github.com/unitrack/planner/internal/domain/catalog"
	"github.com/unitrack/planner/internal/domain/types"
)

// Sentinel error kinds returned by the service. Transports map them to
// status codes with errors.Is.
var (
	ErrNotStarted         = fmt.Errorf("%w: not started", types.ErrUnavailable)
	ErrInvalidRequest     = types.ErrInvalidRequest
	ErrCourseNotFound     = catalog.ErrCourseNotFound
	ErrCatalogUnavailable = catalog.ErrCatalogUnavailable
	ErrStudentNotFound    = repository.ErrStudentNotFound
)
