package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/resilience"
)

// MessageHandler is a callback invoked for each Kafka message.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Drainer reads a bounded snapshot of one topic partition.
type Drainer struct {
	cfg    config.KafkaConfig
	logger *slog.Logger
}

func NewDrainer(cfg config.KafkaConfig) *Drainer {
	return &Drainer{
		cfg:    cfg,
		logger: slog.Default().With("component", "kafka-drainer", "topic", cfg.Topic, "partition", cfg.Partition),
	}
}

// Drain passes every message between the partition's first offset and the
// last offset observed at call time to handler, in offset order, and
// returns the number handled. Messages published after the call starts are
// not read. A handler error stops the drain.
func (d *Drainer) Drain(ctx context.Context, handler MessageHandler) (int, error) {
	if len(d.cfg.Brokers) == 0 {
		return 0, errors.New("no kafka brokers configured")
	}
	first, last, err := d.bounds(ctx)
	if err != nil {
		return 0, err
	}
	if first >= last {
		d.logger.Info("partition empty", "offset", first)
		return 0, nil
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   d.cfg.Brokers,
		Topic:     d.cfg.Topic,
		Partition: d.cfg.Partition,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer r.Close()
	if err := r.SetOffset(first); err != nil {
		return 0, fmt.Errorf("seeking to offset %d: %w", first, err)
	}

	d.logger.Info("draining partition", "first_offset", first, "last_offset", last)
	n := 0
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			return n, fmt.Errorf("reading offset %d: %w", first+int64(n), err)
		}
		d.logger.Debug("message received",
			"offset", msg.Offset,
			"key", string(msg.Key),
			"value_size", len(msg.Value),
		)
		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			return n, fmt.Errorf("handling offset %d: %w", msg.Offset, err)
		}
		n++
		if msg.Offset+1 >= last {
			return n, nil
		}
	}
}

// bounds returns the partition's first offset and the offset one past its
// last message, retrying while the leader is unreachable.
func (d *Drainer) bounds(ctx context.Context) (first, last int64, err error) {
	err = resilience.Retry(ctx, "kafka-dial-leader", resilience.RetryConfig{}, func() error {
		conn, err := kafka.DialLeader(ctx, "tcp", d.cfg.Brokers[0], d.cfg.Topic, d.cfg.Partition)
		if err != nil {
			return fmt.Errorf("dialing partition leader: %w", err)
		}
		defer conn.Close()
		first, last, err = conn.ReadOffsets()
		if err != nil {
			return fmt.Errorf("reading offsets: %w", err)
		}
		return nil
	})
	return first, last, err
}

// DecodeJSON is a generic helper that unmarshals a Kafka message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
