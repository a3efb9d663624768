package types

import "errors"

// Sentinel error kinds shared by the service and its transports.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnavailable    = errors.New("service unavailable")
)
