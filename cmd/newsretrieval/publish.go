package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/news-retrieval/pkg/postgres"
)

var (
	toKafka    bool
	toPostgres bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Copy a corpus directory to Kafka and/or PostgreSQL",
	Long: `Load the corpus from the directory source and write it to the Kafka
topic and/or the PostgreSQL articles table, so later builds can use
--source kafka or --source postgres.`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&toKafka, "kafka", false, "publish document events to the Kafka topic")
	publishCmd.Flags().BoolVar(&toPostgres, "postgres", false, "store articles in PostgreSQL")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	if !toKafka && !toPostgres {
		return fmt.Errorf("at least one of --kafka or --postgres is required")
	}
	ctx := cmd.Context()

	var docs []ingestion.Document
	src := source.NewDir(cfg.Source.Dir, cfg.Source.Workers)
	err := src.Load(ctx, func(doc ingestion.Document) error {
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return err
	}

	var db *postgres.Client
	if toPostgres {
		db, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
	}
	var sink publisher.BatchPublisher
	if toKafka {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		sink = producer
	}

	if err := publisher.New(db, sink).Publish(ctx, docs); err != nil {
		return err
	}
	cmd.Printf("Published %d documents\n", len(docs))
	return nil
}
