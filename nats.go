package submux

import (
	"fmt"

	"github.com/arloliu/submux/codec"
	"github.com/arloliu/submux/internal/logger"
	"github.com/arloliu/submux/internal/metrics"
	"github.com/arloliu/submux/subscription"
	"github.com/nats-io/nats.go"
)

// NewNATS builds a NATS transport from cfg and a PubSub on top of it.
//
// The logger and metrics passed through opts are shared by both. The codec
// comes from cfg.Codec unless opts contain WithCodec. Several PubSubs may share
// one transport; build the rest with New(conn, ...).
//
// Parameters:
//   - nc: Connected NATS connection; the caller keeps ownership
//   - cfg: Configuration, defaults are applied to a copy
//   - v: Entry factory and message handler
//   - opts: Optional logger, metrics and codec
//
// Returns:
//   - *PubSub[E]: Coordinator
//   - *subscription.Conn: Transport, close it with Close(ctx) when done
//   - error: Configuration or construction error
//
// Example:
//
//	locks, conn, err := submux.NewNATS(nc, submux.DefaultConfig(), variant.NewLockPubSub())
//	if err != nil {
//	    return err
//	}
//	defer conn.Close(ctx)
func NewNATS[E Entry[E]](nc *nats.Conn, cfg Config, v Variant[E], opts ...Option) (*PubSub[E], *subscription.Conn, error) {
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	o := options{logger: logger.NewNop(), metrics: metrics.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	tcfg := cfg.TransportConfig()
	tcfg.Logger = o.logger
	if mc, ok := o.metrics.(MetricsCollector); ok {
		tcfg.Metrics = mc
	}

	conn, err := subscription.NewConn(nc, tcfg)
	if err != nil {
		return nil, nil, err
	}

	ps, err := New(conn, v, append([]Option{WithCodec(c)}, opts...)...)
	if err != nil {
		return nil, nil, err
	}

	return ps, conn, nil
}
