package subscription

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/arloliu/submux/internal/natsutil"
	"github.com/arloliu/submux/types"
)

// jitterBackoff computes a decorrelated jitter delay with a cap.
// See: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
//
//	next = min(cap, base + rand(prev*mult - base))
//
// A non-positive prev starts from base. Multipliers below 1.0 are treated as 1.0
// and a cap below base always wins.
func jitterBackoff(prev, base time.Duration, mult float64, capDur time.Duration, rng *rand.Rand) time.Duration {
	if base <= 0 {
		base = DefaultRetryBackoff
	}
	if mult < 1.0 {
		mult = 1.0
	}
	if capDur > 0 && capDur < base {
		return capDur
	}
	if prev <= 0 {
		return base
	}

	span := time.Duration(float64(prev)*mult) - base
	if span <= 0 {
		span = base
	}

	var jitter int64
	if rng != nil {
		jitter = rng.Int64N(int64(span))
	} else {
		jitter = rand.Int64N(int64(span)) //nolint:gosec // non-crypto backoff jitter
	}

	next := base + time.Duration(jitter)
	if capDur > 0 && next > capDur {
		return capDur
	}

	return next
}

// newRetryRNG returns a deterministic RNG only when a non-zero seed is provided.
// When seed == 0 it returns nil so callers use the package-level PRNG.
//
//nolint:gosec
func newRetryRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	s1 := uint64(seed)
	s2 := s1 ^ 0x9e3779b97f4a7c15

	return rand.New(rand.NewPCG(s1, s2))
}

// retrier runs raw NATS commands, retrying connectivity failures with jittered backoff.
type retrier struct {
	maxRetries int
	base       time.Duration
	capDur     time.Duration
	logger     types.Logger
	metrics    types.TransportMetrics
	done       <-chan struct{}

	rngMu sync.Mutex // *rand.Rand is not safe for concurrent use
	rng   *rand.Rand
}

func newRetrier(cfg *Config, done <-chan struct{}) *retrier {
	return &retrier{
		maxRetries: cfg.MaxRetries,
		base:       cfg.RetryBackoff,
		capDur:     cfg.MaxRetryBackoff,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		done:       done,
		rng:        newRetryRNG(cfg.RetrySeed),
	}
}

// next returns the delay following prev.
func (r *retrier) next(prev time.Duration) time.Duration {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()

	return jitterBackoff(prev, r.base, retryMultiplier, r.capDur, r.rng)
}

// do runs fn until it succeeds, fails with a non-connectivity error, runs out of
// retries, or the transport closes. The last error is returned.
func (r *retrier) do(op, channel string, fn func() error) error {
	var delay time.Duration
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= r.maxRetries || !natsutil.IsConnectivityError(err) {
			return err
		}

		delay = r.next(delay)
		emitRetry(r.metrics, op)
		r.logger.Warn("retrying channel command",
			"op", op,
			"channel", channel,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-r.done:
			timer.Stop()
			return err
		}
	}
}
