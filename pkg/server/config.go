package server

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Config holds configuration for the HTTP/WebSocket server.
type Config struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// Title is the page title and heading.
	// Default: "Address".
	Title string

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// MaxMessageSize is the largest live-validation message accepted.
	// Default: 4KB.
	MaxMessageSize int64

	// MaxBodySize caps request bodies on the form endpoints.
	// Default: 64KB.
	MaxBodySize int64

	// CheckOrigin is called to validate the WebSocket origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// Server lifecycle

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 15 seconds.
	ShutdownTimeout time.Duration

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration

	// IdleTimeout closes idle keep-alive and live connections.
	// Default: 2 minutes.
	IdleTimeout time.Duration

	// Limits

	// RateLimit is the sustained rate of form posts allowed per client IP.
	// Zero disables limiting.
	// Default: 5 per second.
	RateLimit rate.Limit

	// RateBurst is the burst allowed above RateLimit.
	// Default: 10.
	RateBurst int

	// TrustedProxies lists reverse proxy IPs or CIDRs whose forwarding
	// headers are believed when resolving the client IP.
	TrustedProxies []string

	// Observability

	// MetricsPath is where metrics are exposed when a Metrics is set.
	// Empty disables the endpoint.
	// Default: "/metrics".
	MetricsPath string

	// Tracing enables the OpenTelemetry request middleware.
	Tracing bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		Title:             "Address",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		MaxMessageSize:    4 * 1024,
		MaxBodySize:       64 * 1024,
		CheckOrigin:       SameOriginCheck,
		ShutdownTimeout:   15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		RateLimit:         5,
		RateBurst:         10,
		MetricsPath:       "/metrics",
	}
}

// withDefaults fills every unset field from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Title == "" {
		out.Title = defaults.Title
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = defaults.MaxMessageSize
	}
	if out.MaxBodySize == 0 {
		out.MaxBodySize = defaults.MaxBodySize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.RateLimit > 0 && out.RateBurst <= 0 {
		out.RateBurst = 1
	}
	return &out
}

// SameOriginCheck accepts a WebSocket upgrade only when the Origin header is
// absent or names the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
