package config

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/addressform/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "addressform.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where metrics are served.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace prefixes every metric name.
	DefaultNamespace = "addressform"
)

// Submission sinks.
const (
	SinkLog    = "log"
	SinkMemory = "memory"
	SinkDisk   = "disk"
	SinkS3     = "s3"
)

// Config represents addressform.json.
type Config struct {
	// Host is the interface to bind to.
	Host string `json:"host,omitempty"`

	// Port is the server port.
	Port int `json:"port,omitempty"`

	// Title is the page title.
	Title string `json:"title,omitempty"`

	// Messages is a YAML file overriding error messages, relative to the
	// config file.
	Messages string `json:"messages,omitempty"`

	// Submit selects where valid submissions go.
	Submit SubmitConfig `json:"submit"`

	// RateLimit limits form posts per client IP.
	RateLimit RateLimitConfig `json:"rateLimit"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics"`

	// Tracing enables OpenTelemetry spans for requests and submissions.
	Tracing bool `json:"tracing,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are
	// believed.
	TrustedProxies []string `json:"trustedProxies,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SubmitConfig selects and configures the submission sink.
type SubmitConfig struct {
	// Sink is one of log, memory, disk, s3 (default: log).
	Sink string `json:"sink,omitempty"`

	// Dir is the output directory of the disk sink.
	Dir string `json:"dir,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region; the SDK default chain applies when empty.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty"`

	// Sanitize strips markup from values before they are validated (default: true).
	Sanitize bool `json:"sanitize"`
}

// RateLimitConfig limits form posts per client IP.
type RateLimitConfig struct {
	// Enabled turns limiting on (default: true).
	Enabled bool `json:"enabled"`

	// PerSecond is the sustained request rate.
	PerSecond float64 `json:"perSecond,omitempty"`

	// Burst is the number of requests allowed above the rate.
	Burst int `json:"burst,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes metrics (default: true).
	Enabled bool `json:"enabled"`

	// Path is the metrics URL path.
	Path string `json:"path,omitempty"`

	// Namespace prefixes metric names.
	Namespace string `json:"namespace,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Host:  DefaultHost,
		Port:  DefaultPort,
		Title: "Address",
		Submit: SubmitConfig{
			Sink:     SinkLog,
			Sanitize: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			PerSecond: 5,
			Burst:     10,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      DefaultMetricsPath,
			Namespace: DefaultNamespace,
		},
		LogLevel: "info",
	}
}

// Load reads addressform.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Fields missing
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New(errors.CodeConfigNotFound).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New(errors.CodeConfigSyntax).Wrap(err)
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syntaxErr):
			e.WithOffset(path, data, syntaxErr.Offset)
		case stderrors.As(err, &typeErr):
			e.WithOffset(path, data, typeErr.Offset).
				WithSuggestion(typeErr.Field + " must be a " + typeErr.Type.String())
		}
		return nil, e
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOptional loads addressform.json from dir when present, and the
// defaults otherwise.
func LoadOptional(dir string) (*Config, error) {
	if !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Newf(errors.CategoryConfig, "encode config").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Newf(errors.CategoryConfig, "write %s", path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New()
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.Title == "" {
		c.Title = defaults.Title
	}
	if c.Submit.Sink == "" {
		c.Submit.Sink = defaults.Submit.Sink
	}
	c.Submit.Sink = strings.ToLower(c.Submit.Sink)
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaults.Metrics.Path
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail, suggestion string) error {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(detail).
			WithSuggestion(suggestion)
	}

	if c.Port < 1 || c.Port > 65535 {
		return invalid("port must be between 1 and 65535, got "+strconv.Itoa(c.Port), `Set "port", e.g. 8080.`)
	}

	switch c.Submit.Sink {
	case SinkLog, SinkMemory:
	case SinkDisk:
		if c.Submit.Dir == "" {
			return invalid("the disk sink needs a directory", `Set "submit.dir".`)
		}
	case SinkS3:
		if c.Submit.Bucket == "" {
			return invalid("the s3 sink needs a bucket", `Set "submit.bucket".`)
		}
	default:
		return invalid("unknown sink "+strconv.Quote(c.Submit.Sink), "Use one of log, memory, disk, s3.")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.PerSecond <= 0 {
			return invalid("rateLimit.perSecond must be positive", `Set "rateLimit.enabled": false to turn limiting off.`)
		}
		if c.RateLimit.Burst < 1 {
			return invalid("rateLimit.burst must be at least 1", "")
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /", "")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return invalid(err.Error(), "Use one of debug, info, warn, error.")
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MessagesPath returns the messages file resolved against the config
// directory, or "" when none is set.
func (c *Config) MessagesPath() string {
	if c.Messages == "" || filepath.IsAbs(c.Messages) {
		return c.Messages
	}
	return filepath.Join(c.Dir(), c.Messages)
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
