package source

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/kafka"
)

// Kafka replays the documents published to one topic partition, one
// DocumentEvent per message, stopping at the offset that was last when the
// load started.
type Kafka struct {
	drainer *kafka.Drainer
	logger  *slog.Logger
}

func NewKafka(cfg config.KafkaConfig) *Kafka {
	return &Kafka{
		drainer: kafka.NewDrainer(cfg),
		logger:  slog.Default().With("component", "kafka-source", "topic", cfg.Topic),
	}
}

func (k *Kafka) Load(ctx context.Context, emit EmitFunc) error {
	n, err := k.drainer.Drain(ctx, k.handle(emit))
	if err != nil {
		return err
	}
	k.logger.Info("corpus loaded", "messages", n)
	return nil
}

// handle decodes one message. Undecodable messages are logged and skipped.
func (k *Kafka) handle(emit EmitFunc) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			k.logger.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		return emit(ingestion.Document{
			Path:     event.Path,
			Articles: validated(event.Path, event.Articles, nil, k.logger),
		})
	}
}
