package odyssey

import (
	"net/http"

	"go.uber.org/zap"
)

// Option configures client settings using the functional options pattern.
type Option func(*settings)

// settings holds internal configurable dependencies for the client.
type settings struct {
	logger     *zap.Logger
	httpClient *http.Client
	userAgent  string
	origin     string
}

// WithLogger sets a custom logger for the client.
// If not provided, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets a custom HTTP client for outbound requests.
// If not provided, http.DefaultClient is used.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithOrigin sets the Origin/Referer headers the API expects from browsers.
func WithOrigin(origin string) Option {
	return func(s *settings) { s.origin = origin }
}

// applyOptions applies the provided options and returns the resulting settings.
// Defaults are applied before user-defined options.
func applyOptions(opts []Option) settings {
	s := settings{
		logger:     zap.NewNop(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
