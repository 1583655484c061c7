// Package kafka consumes crowdsourced saved-name submissions from a Kafka
// topic and writes them into the corpus store. Saved-name entries arrive
// from many client devices; a batch HTTP endpoint does not scale to
// continuous crowdsourced submission at that volume. This is purely a
// corpus-population path — it never touches the resolution pipeline
// directly.
package kafka

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"identityresolver/internal/logging"
	"identityresolver/internal/model"
	"identityresolver/internal/store"
)

// Config holds Kafka ingester configuration.
type Config struct {
	Brokers []string
	Topic   string
	Group   string
	TLS     bool
	Workers int // bounded concurrent writers; <=0 defaults to 4
	Logger  *slog.Logger
}

// submission is the wire shape of one crowdsourced entry message.
type submission struct {
	PhoneNumber string           `json:"phoneNumber"`
	Entry       model.CrowdEntry `json:"entry"`
}

// Ingester consumes submission messages and persists them to a Store.
type Ingester struct {
	cfg    Config
	store  *store.Store
	logger *slog.Logger
}

// New creates an Ingester writing consumed submissions to st.
func New(cfg Config, st *store.Store) *Ingester {
	return &Ingester{
		cfg:    cfg,
		store:  st,
		logger: logging.Default(cfg.Logger).With("component", "ingest", "type", "kafka"),
	}
}

// Run connects to Kafka and consumes until ctx is cancelled, dispatching
// each record to a bounded pool of writer goroutines.
func (ing *Ingester) Run(ctx context.Context) error {
	opts := []kgo.Opt{
		kgo.SeedBrokers(ing.cfg.Brokers...),
		kgo.ConsumeTopics(ing.cfg.Topic),
		kgo.ConsumerGroup(ing.cfg.Group),
	}
	if ing.cfg.TLS {
		opts = append(opts, kgo.DialTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("kafka client: %w", err)
	}
	defer client.Close()

	workers := ing.cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	records := make(chan *kgo.Record, workers*2)
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go ing.writeLoop(ctx, records, done)
	}

	ing.logger.Info("kafka consumer started", "brokers", ing.cfg.Brokers, "topic", ing.cfg.Topic, "group", ing.cfg.Group)

	for {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			close(records)
			for i := 0; i < workers; i++ {
				<-done
			}
			_ = client.CommitUncommittedOffsets(context.Background())
			ing.logger.Info("kafka consumer stopping")
			return nil
		}

		for _, e := range fetches.Errors() {
			ing.logger.Warn("kafka fetch error", "topic", e.Topic, "partition", e.Partition, "error", e.Err)
		}

		fetches.EachRecord(func(rec *kgo.Record) {
			select {
			case records <- rec:
			case <-ctx.Done():
			}
		})
	}
}

func (ing *Ingester) writeLoop(ctx context.Context, records <-chan *kgo.Record, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	for rec := range records {
		var sub submission
		if err := json.Unmarshal(rec.Value, &sub); err != nil {
			ing.logger.Warn("discarding malformed submission", "offset", rec.Offset, "error", err)
			continue
		}
		if err := ing.store.SaveEntry(ctx, sub.PhoneNumber, sub.Entry); err != nil {
			ing.logger.Warn("save submission failed", "phone", sub.PhoneNumber, "error", err)
		}
	}
}
