package veffgo

import (
	"log/slog"
)

// Options holds the configuration shared by every writer variant.
//
// Writers resolve their Options once at construction with ApplyOptions; the
// values are immutable afterwards.
type Options struct {
	Logger           *Logger
	MetricsCollector MetricsCollector
	FloatFormat      FloatFormat
	IDGenerator      IDGenerator
	StandardiseVarID bool
	WriterName       string
}

// Option configures a writer.
type Option func(*Options)

// WithLogger configures structured logging for writer events.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := veffgo.NewJSONLogger(slog.LevelInfo)
//	w, _ := vcf.CreateAnnotationWriter(model, header, "out.vcf.gz", veffgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *Options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.Logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring writes.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &veffgo.BasicMetricsCollector{}
//	w := batchwriter.New(sink, veffgo.WithMetricsCollector(metrics))
//	// ... write batches ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *Options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.MetricsCollector = mc
	}
}

// WithFloatFormat selects how prediction values are rendered as text.
func WithFloatFormat(f FloatFormat) Option {
	return func(o *Options) {
		o.FloatFormat = f
	}
}

// WithIDGenerator replaces the generator used when variant identifiers are
// standardised. A nil generator disables regeneration.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *Options) {
		o.IDGenerator = gen
	}
}

// WithStandardiseVarID regenerates each record identifier with the configured
// IDGenerator before it is annotated.
func WithStandardiseVarID(enabled bool) Option {
	return func(o *Options) {
		o.StandardiseVarID = enabled
	}
}

// WithWriterName sets the name reported to the logger and metrics collector.
func WithWriterName(name string) Option {
	return func(o *Options) {
		o.WriterName = name
	}
}

// ApplyOptions resolves optFns on top of the defaults.
func ApplyOptions(defaultName string, optFns ...Option) Options {
	o := Options{
		Logger:           NoopLogger(),
		MetricsCollector: NoopMetricsCollector{},
		FloatFormat:      FormatDefault,
		IDGenerator:      DefaultIDGenerator(":"),
		WriterName:       defaultName,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	o.Logger = o.Logger.WithWriter(o.WriterName)
	return o
}
