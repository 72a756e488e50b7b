package eventbus

import "errors"

// ErrNilCollector is returned when a nil logger or collector is passed to an option.
var ErrNilCollector = errors.New("collector must not be nil")

// Option defines a functional option for configuring a bus.
type Option func(*observability) error

// WithLogger sets the logger for the bus.
//
// Debug level: per-publish dispatch details (development use)
// Info level: subscription registry changes
// Error level: handler failures during publish.
func WithLogger(logger Logger) Option {
	return func(o *observability) error {
		if logger == nil {
			return ErrNilCollector
		}

		o.logger = logger

		return nil
	}
}

// WithContextualLogger sets the contextual logger for the bus. When both a
// Logger and a ContextualLogger are configured, the contextual logger wins
// for messages that have a context.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(o *observability) error {
		if logger == nil {
			return ErrNilCollector
		}

		o.contextualLogger = logger

		return nil
	}
}

// WithMetrics sets the metrics collector for the bus. The collector
// receives publish durations, published event counts and handler failure
// counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(o *observability) error {
		if collector == nil {
			return ErrNilCollector
		}

		o.metricsCollector = collector

		return nil
	}
}

// WithTracing sets the tracing collector for the bus. The collector
// receives one span per publish call, carrying the flavor and batch size.
func WithTracing(collector TracingCollector) Option {
	return func(o *observability) error {
		if collector == nil {
			return ErrNilCollector
		}

		o.tracingCollector = collector

		return nil
	}
}
