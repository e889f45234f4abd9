package chain

import (
	"time"

	"go.uber.org/zap"
)

// Option configures client settings using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger         *zap.Logger
	maxAttempts    int
	retryDelay     time.Duration
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// WithLogger sets a custom logger for the client.
// If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithRetry sets the bounded retry policy for transaction submission:
// a fixed attempt count with a flat delay between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *settings) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
		s.retryDelay = delay
	}
}

// WithConfirmTimeout bounds how long confirmation polling may take.
func WithConfirmTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.confirmTimeout = d
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger:         zap.NewNop(),
		maxAttempts:    3,
		retryDelay:     2 * time.Second,
		confirmTimeout: 60 * time.Second,
		pollInterval:   2 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
