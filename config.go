package submux

import (
	"fmt"
	"os"
	"time"

	"github.com/arloliu/submux/asyncmutex"
	"github.com/arloliu/submux/codec"
	"github.com/arloliu/submux/subscription"
	"gopkg.in/yaml.v3"
)

// TransportConfig controls the NATS transport.
type TransportConfig struct {
	// MutexStripes is the number of mutexes channels are striped over.
	// Channels sharing a stripe serialize their subscription changes.
	// Default: 50
	MutexStripes int `yaml:"mutexStripes"`

	// SubscribeTimeout bounds the server round trip confirming a subscribe.
	// Default: 5 seconds
	SubscribeTimeout time.Duration `yaml:"subscribeTimeout"`

	// UnsubscribeTimeout bounds the server round trip confirming an unsubscribe.
	// Default: 5 seconds
	UnsubscribeTimeout time.Duration `yaml:"unsubscribeTimeout"`

	// MaxRetries is the number of retries after a connectivity failure.
	// Negative disables retries.
	// Default: 3
	MaxRetries int `yaml:"maxRetries"`

	// RetryBackoff is the base delay between retries.
	// Default: 100ms
	RetryBackoff time.Duration `yaml:"retryBackoff"`

	// MaxRetryBackoff caps the delay between retries.
	// Default: 2 seconds
	MaxRetryBackoff time.Duration `yaml:"maxRetryBackoff"`
}

// Config is the configuration for a NATS backed PubSub.
//
// All duration fields accept standard Go duration strings like "500ms", "5s".
type Config struct {
	// Codec names the payload codec: "long", "string", "bytes" or "cbor".
	// Default: "long"
	Codec string `yaml:"codec"`

	// Transport controls the NATS transport.
	Transport TransportConfig `yaml:"transport"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Codec: "long",
		Transport: TransportConfig{
			MutexStripes:       asyncmutex.DefaultStripes,
			SubscribeTimeout:   subscription.DefaultSubscribeTimeout,
			UnsubscribeTimeout: subscription.DefaultUnsubscribeTimeout,
			MaxRetries:         subscription.DefaultMaxRetries,
			RetryBackoff:       subscription.DefaultRetryBackoff,
			MaxRetryBackoff:    subscription.DefaultMaxRetryBackoff,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Codec == "" {
		cfg.Codec = defaults.Codec
	}
	if cfg.Transport.MutexStripes == 0 {
		cfg.Transport.MutexStripes = defaults.Transport.MutexStripes
	}
	if cfg.Transport.SubscribeTimeout == 0 {
		cfg.Transport.SubscribeTimeout = defaults.Transport.SubscribeTimeout
	}
	if cfg.Transport.UnsubscribeTimeout == 0 {
		cfg.Transport.UnsubscribeTimeout = defaults.Transport.UnsubscribeTimeout
	}
	if cfg.Transport.MaxRetries == 0 {
		cfg.Transport.MaxRetries = defaults.Transport.MaxRetries
	}
	if cfg.Transport.RetryBackoff == 0 {
		cfg.Transport.RetryBackoff = defaults.Transport.RetryBackoff
	}
	if cfg.Transport.MaxRetryBackoff == 0 {
		cfg.Transport.MaxRetryBackoff = defaults.Transport.MaxRetryBackoff
	}
}

// Validate checks configuration constraints.
//
// Rules:
//   - Codec must name a known codec
//   - MutexStripes > 0
//   - SubscribeTimeout and UnsubscribeTimeout > 0
//   - 0 < RetryBackoff <= MaxRetryBackoff
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if _, err := codec.ByName(cfg.Codec); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	t := cfg.Transport
	if t.MutexStripes <= 0 {
		return fmt.Errorf("%w: MutexStripes must be > 0, got %d", ErrInvalidConfig, t.MutexStripes)
	}
	if t.SubscribeTimeout <= 0 {
		return fmt.Errorf("%w: SubscribeTimeout must be > 0, got %v", ErrInvalidConfig, t.SubscribeTimeout)
	}
	if t.UnsubscribeTimeout <= 0 {
		return fmt.Errorf("%w: UnsubscribeTimeout must be > 0, got %v", ErrInvalidConfig, t.UnsubscribeTimeout)
	}
	if t.RetryBackoff <= 0 {
		return fmt.Errorf("%w: RetryBackoff must be > 0, got %v", ErrInvalidConfig, t.RetryBackoff)
	}
	if t.MaxRetryBackoff < t.RetryBackoff {
		return fmt.Errorf(
			"%w: MaxRetryBackoff (%v) must be >= RetryBackoff (%v)",
			ErrInvalidConfig, t.MaxRetryBackoff, t.RetryBackoff,
		)
	}

	return nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Command timeouts and retry delays are short so failure paths finish
// quickly. Use DefaultConfig() for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.Transport.SubscribeTimeout = 500 * time.Millisecond   // 10x faster
	cfg.Transport.UnsubscribeTimeout = 500 * time.Millisecond // 10x faster
	cfg.Transport.RetryBackoff = 10 * time.Millisecond        // 10x faster
	cfg.Transport.MaxRetryBackoff = 50 * time.Millisecond     // 40x faster

	return cfg
}

// LoadConfig loads configuration from a YAML file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if file cannot be read, parsed or validated
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// TransportConfig maps the configuration onto subscription.Config.
// Logger and Metrics are left for the caller to set.
func (cfg *Config) TransportConfig() subscription.Config {
	return subscription.Config{
		MutexStripes:       cfg.Transport.MutexStripes,
		SubscribeTimeout:   cfg.Transport.SubscribeTimeout,
		UnsubscribeTimeout: cfg.Transport.UnsubscribeTimeout,
		MaxRetries:         cfg.Transport.MaxRetries,
		RetryBackoff:       cfg.Transport.RetryBackoff,
		MaxRetryBackoff:    cfg.Transport.MaxRetryBackoff,
	}
}
