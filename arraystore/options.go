package arraystore

import (
	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/codec"
)

// DefaultFlushEvery persists the manifest with every write, so every
// successful write survives a crash.
const DefaultFlushEvery = 1

// Options configures a Store.
type Options struct {
	Compression Compression
	Codec       codec.Codec
	// FlushEvery writes the manifest after every n successful writes.
	// Zero flushes only on Flush and Close.
	FlushEvery int
	Writer     []veffgo.Option
}

// Option configures a Store.
type Option func(*Options)

// WithCompression selects the chunk compression. Default: CompressionZSTD.
func WithCompression(c Compression) Option {
	return func(o *Options) {
		o.Compression = c
	}
}

// WithCodec selects the manifest codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		if c == nil {
			c = codec.Default
		}
		o.Codec = c
	}
}

// WithFlushEvery persists the manifest after every n writes. Larger values
// trade crash durability for fewer manifest uploads; zero defers the
// manifest to Flush and Close. Default: DefaultFlushEvery.
func WithFlushEvery(n int) Option {
	return func(o *Options) {
		o.FlushEvery = max(n, 0)
	}
}

// WithLogger configures structured logging for store events.
func WithLogger(logger *veffgo.Logger) Option {
	return WithWriterOptions(veffgo.WithLogger(logger))
}

// WithMetricsCollector configures a metrics collector for store writes.
func WithMetricsCollector(mc veffgo.MetricsCollector) Option {
	return WithWriterOptions(veffgo.WithMetricsCollector(mc))
}

// WithWriterOptions forwards shared writer options (logger, metrics, name).
func WithWriterOptions(optFns ...veffgo.Option) Option {
	return func(o *Options) {
		o.Writer = append(o.Writer, optFns...)
	}
}

func applyOptions(optFns []Option) (Options, veffgo.Options) {
	o := Options{
		Compression: CompressionZSTD,
		Codec:       codec.Default,
		FlushEvery:  DefaultFlushEvery,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o, veffgo.ApplyOptions("arraystore", o.Writer...)
}
