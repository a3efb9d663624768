package api

import (
	"golang.org/x/time/rate"

	"github.com/unitrack/planner/pkg/logger"
)

const defaultMaxBody = 1 << 20

type settings struct {
	limiter *rate.Limiter
	maxBody int64
	log     logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*settings)

// WithRateLimit throttles POST /recommendations to rps requests per second
// with the given burst. A non-positive rps disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *settings) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBodyBytes caps request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
