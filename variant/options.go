package variant

import (
	"github.com/arloliu/submux/internal/logger"
	"github.com/arloliu/submux/types"
)

// Option configures a variant.
type Option func(*options)

type options struct {
	logger types.Logger
}

func defaultOptions(opts []Option) options {
	o := options{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithLogger sets the logger used to report unexpected messages.
func WithLogger(l types.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
