// Package batchwriter adapts prediction batches into flat, column-oriented
// batches and forwards them to a Sink.
//
// A flat batch carries the intrinsic variant fields (chr, pos, id, ref, alt),
// the line identifiers and, per method, one value array per column. The sink
// owns the on-disk representation; see the sink/... packages and
// arraystore.BatchSink.
package batchwriter
