package cgbench

type options struct {
	logger *Logger
}

// Option configures CGSolve and DotBench construction.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is discarded.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: NewLogger(nil)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
