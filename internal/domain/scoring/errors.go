package scoring

import (
	"errors"

	"github.com/unitrack/planner/internal/domain/catalog"
)

// Sentinel kinds for bundles that cannot be scored.
var (
	ErrCatalogUnavailable = catalog.ErrCatalogUnavailable
	ErrEmptyBundle        = errors.New("bundle is empty")
	ErrUnknownCourse      = errors.New("course not in catalog")
)
