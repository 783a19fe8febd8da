package mcp

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kfreiman/docloader/internal/loader"
	"github.com/kfreiman/docloader/internal/parser"
)

// Config holds the configuration for the MCP server
type Config struct {
	Root           string `env:"DOCLOADER_ROOT" env-default:"/" env-description:"Storage root every load path is resolved against"`
	MaxConcurrency int    `env:"DOCLOADER_MAX_CONCURRENCY" env-default:"8" env-description:"Maximum number of files parsed at the same time"`
	Patterns       string `env:"DOCLOADER_PATTERNS" env-description:"Comma-separated glob=format bindings, first match wins"`
	Port           int    `env:"PORT" env-default:"8080" env-description:"HTTP server port"`

	RetryAttempts  int           `env:"DOCLOADER_RETRY_ATTEMPTS" env-default:"3" env-description:"Load attempts on transient storage errors"`
	RetryBackoff   string        `env:"DOCLOADER_RETRY_BACKOFF" env-default:"exponential" env-description:"Backoff between attempts: exponential, linear or fixed"`
	RetryBaseDelay time.Duration `env:"DOCLOADER_RETRY_BASE_DELAY" env-default:"500ms" env-description:"Pause after the first failed attempt"`
	RetryMaxDelay  time.Duration `env:"DOCLOADER_RETRY_MAX_DELAY" env-default:"5s" env-description:"Upper bound for the pause between attempts"`
	RetryJitter    bool          `env:"DOCLOADER_RETRY_JITTER" env-default:"true" env-description:"Randomize pauses by 25 percent"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Patterns == "" {
		cfg.Patterns = parser.DefaultPatterns
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no environment is set
func DefaultConfig() Config {
	return Config{
		Root:           "/",
		MaxConcurrency: loader.DefaultMaxConcurrency,
		Patterns:       parser.DefaultPatterns,
		Port:           8080,
		RetryAttempts:  DefaultRetryPolicy.Attempts,
		RetryBackoff:   string(DefaultRetryPolicy.Backoff),
		RetryBaseDelay: DefaultRetryPolicy.BaseDelay,
		RetryMaxDelay:  DefaultRetryPolicy.MaxDelay,
		RetryJitter:    DefaultRetryPolicy.Jitter,
	}
}

// Validate rejects settings no loader can run with. Zero is not a default
// here: every numeric setting already has one in the environment layer.
func (c Config) Validate() error {
	if c.MaxConcurrency < 1 {
		return &loader.ConfigError{
			Field:  "max_concurrency",
			Value:  fmt.Sprint(c.MaxConcurrency),
			Reason: "must be at least 1",
		}
	}
	_, err := c.RetryPolicy()
	return err
}

// RetryPolicy returns the retry settings as a policy
func (c Config) RetryPolicy() (RetryPolicy, error) {
	backoff, err := ParseBackoff(c.RetryBackoff)
	if err != nil {
		return RetryPolicy{}, err
	}
	if c.RetryAttempts < 1 {
		return RetryPolicy{}, &ValidationError{Field: "retry_attempts", Value: fmt.Sprint(c.RetryAttempts), Reason: "must be at least 1"}
	}
	if c.RetryBaseDelay < 0 || c.RetryMaxDelay < 0 {
		return RetryPolicy{}, &ValidationError{Field: "retry_delay", Value: fmt.Sprintf("%s/%s", c.RetryBaseDelay, c.RetryMaxDelay), Reason: "must not be negative"}
	}
	return RetryPolicy{
		Attempts:  c.RetryAttempts,
		Backoff:   backoff,
		BaseDelay: c.RetryBaseDelay,
		MaxDelay:  c.RetryMaxDelay,
		Jitter:    c.RetryJitter,
	}, nil
}

// WithRoot sets the storage root
func (c Config) WithRoot(root string) Config {
	c.Root = root
	return c
}

// WithMaxConcurrency sets the loader parallelism
func (c Config) WithMaxConcurrency(n int) Config {
	c.MaxConcurrency = n
	return c
}

// WithPatterns sets the glob=format bindings
func (c Config) WithPatterns(patterns string) Config {
	c.Patterns = patterns
	return c
}

// WithRetryPolicy sets the retry settings from policy
func (c Config) WithRetryPolicy(policy RetryPolicy) Config {
	c.RetryAttempts = policy.Attempts
	c.RetryBackoff = string(policy.Backoff)
	c.RetryBaseDelay = policy.BaseDelay
	c.RetryMaxDelay = policy.MaxDelay
	c.RetryJitter = policy.Jitter
	return c
}

// WithPort sets the server port
func (c Config) WithPort(port int) Config {
	c.Port = port
	return c
}
