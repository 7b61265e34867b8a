package migrate

import "go.uber.org/zap"

type options struct {
	logger   *zap.Logger
	observer Observer
}

// Option configures a Scanner or Migrator.
type Option func(*options)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers an observer for discovery and move events.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
