// Package amqp implements a batchwriter.Sink publishing every flat batch as
// one JSON message to a RabbitMQ queue.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hupe1980/veffgo"
	"github.com/hupe1980/veffgo/batchwriter"
	"github.com/hupe1980/veffgo/codec"
)

// Channel is the subset of *amqp.Channel used by the sink.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ Channel = (*amqp.Channel)(nil)

// Message headers set on every publishing.
const (
	HeaderRunID    = "x-veff-run-id"
	HeaderSequence = "x-veff-sequence"
	HeaderRows     = "x-veff-rows"
)

// Config holds the connection settings for Dial.
type Config struct {
	URL   string
	Queue string
	// Transient disables message persistence and queue durability.
	Transient bool
}

// Sink publishes flat batches.
type Sink struct {
	ch     Channel
	conn   *amqp.Connection
	queue  string
	codec  codec.Codec
	mode   uint8
	runID  string
	seq    int64
	closed bool
}

var _ batchwriter.Sink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

// WithCodec selects the message body codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(s *Sink) {
		if c != nil {
			s.codec = c
		}
	}
}

// Dial connects to the broker, declares the queue and returns a sink owning
// the connection.
func Dial(cfg Config, optFns ...Option) (*Sink, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	s, err := newSink(ch, cfg.Queue, !cfg.Transient, optFns)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	s.conn = conn
	return s, nil
}

// New declares a durable queue on ch and returns a sink publishing to it.
// ch is closed by Close.
func New(ch Channel, queue string, optFns ...Option) (*Sink, error) {
	return newSink(ch, queue, true, optFns)
}

func newSink(ch Channel, queue string, durable bool, optFns []Option) (*Sink, error) {
	if _, err := ch.QueueDeclare(queue, durable, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}
	s := &Sink{
		ch:    ch,
		queue: queue,
		codec: codec.Default,
		mode:  amqp.Transient,
		runID: uuid.NewString(),
	}
	if durable {
		s.mode = amqp.Persistent
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s, nil
}

// RunID returns the identifier set on every message of this sink.
func (s *Sink) RunID() string { return s.runID }

// BatchWrite implements batchwriter.Sink.
func (s *Sink) BatchWrite(ctx context.Context, f *batchwriter.Flat) error {
	if s.closed {
		return veffgo.ErrClosed
	}
	body, err := s.codec.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: s.mode,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Headers: amqp.Table{
			HeaderRunID:    s.runID,
			HeaderSequence: s.seq,
			HeaderRows:     int64(f.Len()),
		},
		Body: body,
	}
	if err := s.ch.PublishWithContext(ctx, "", s.queue, false, false, msg); err != nil {
		return veffgo.NewIOError("publish", s.queue, err)
	}
	s.seq++
	return nil
}

// Close closes the channel and, if the sink dialed it, the connection.
// It is idempotent.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.ch.Close()
	if s.conn != nil {
		err = errors.Join(err, s.conn.Close())
	}
	return err
}
