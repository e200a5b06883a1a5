package subscription

import (
	"fmt"
	"time"

	"github.com/arloliu/submux/asyncmutex"
	"github.com/arloliu/submux/internal/logger"
	"github.com/arloliu/submux/internal/metrics"
	"github.com/arloliu/submux/types"
)

// Config configures a Conn.
//
// Zero values are replaced by defaults via applyDefaults().
type Config struct {
	// MutexStripes is the number of mutexes channels are striped over.
	MutexStripes int

	// SubscribeTimeout bounds the flush confirming a SUB.
	SubscribeTimeout time.Duration
	// UnsubscribeTimeout bounds the flush confirming an UNSUB.
	UnsubscribeTimeout time.Duration

	// MaxRetries is the number of retries after a connectivity failure.
	// Negative disables retries.
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration

	// RetrySeed makes retry jitter deterministic when non-zero (tests).
	RetrySeed int64

	Logger  types.Logger
	Metrics types.TransportMetrics
}

// applyDefaults fills unset optional fields with project defaults.
func (cfg *Config) applyDefaults() {
	if cfg.MutexStripes == 0 {
		cfg.MutexStripes = asyncmutex.DefaultStripes
	}
	if cfg.SubscribeTimeout == 0 {
		cfg.SubscribeTimeout = DefaultSubscribeTimeout
	}
	if cfg.UnsubscribeTimeout == 0 {
		cfg.UnsubscribeTimeout = DefaultUnsubscribeTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = DefaultMaxRetryBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
}

// validate checks the configuration after defaults were applied.
func (cfg *Config) validate() error {
	if cfg.MutexStripes < 0 {
		return fmt.Errorf("%w: MutexStripes must be > 0, got %d", types.ErrInvalidConfig, cfg.MutexStripes)
	}
	if cfg.SubscribeTimeout < 0 || cfg.UnsubscribeTimeout < 0 {
		return fmt.Errorf("%w: command timeouts must be > 0", types.ErrInvalidConfig)
	}
	if cfg.RetryBackoff < 0 || cfg.MaxRetryBackoff < 0 {
		return fmt.Errorf("%w: retry backoff must be > 0", types.ErrInvalidConfig)
	}

	return nil
}
