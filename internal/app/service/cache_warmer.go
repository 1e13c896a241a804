package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jianyuhu/TinyLink/internal/app/cache"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// CacheWarmer consumes link-created events from JetStream and feeds each
// instance's bloom guard and the shared resolution cache, so codes created
// on one instance resolve on every other without a store round-trip.
type CacheWarmer struct {
	js       nats.JetStreamContext
	resolver *cache.Resolver
	logger   *zap.Logger
	consumer string
	stopChan chan struct{}
}

// NewCacheWarmer creates a warmer bound to one durable consumer name.
// The name must be unique per instance: a durable shared across instances
// distributes each event to exactly one of them, and every instance needs
// the full stream to keep its bloom guard complete. Callers derive the
// name from the configured prefix plus an instance suffix; an empty name
// falls back to the bare prefix, which is only safe single-instance.
func NewCacheWarmer(js nats.JetStreamContext, resolver *cache.Resolver, logger *zap.Logger, consumer string) *CacheWarmer {
	if consumer == "" {
		consumer = model.LinkConsumerName
	}
	return &CacheWarmer{
		js:       js,
		resolver: resolver,
		logger:   logger,
		consumer: consumer,
		stopChan: make(chan struct{}),
	}
}

// Start ensures the stream and consumer exist, then consumes in the
// background until Stop is called.
func (w *CacheWarmer) Start() error {
	if _, err := w.js.StreamInfo(model.LinkStreamName); err != nil {
		_, err = w.js.AddStream(&nats.StreamConfig{
			Name:     model.LinkStreamName,
			Subjects: []string{model.LinkStreamSubject},
			MaxBytes: model.LinkStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	if _, err := w.js.ConsumerInfo(model.LinkStreamName, w.consumer); err != nil {
		_, err = w.js.AddConsumer(model.LinkStreamName, &nats.ConsumerConfig{
			Durable:   w.consumer,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := w.js.PullSubscribe(model.LinkStreamSubject, w.consumer)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go w.consume(sub)
	return nil
}

// Stop ends the consume loop.
func (w *CacheWarmer) Stop() {
	close(w.stopChan)
}

func (w *CacheWarmer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		select {
		case <-w.stopChan:
			w.logger.Info("cache warmer stopped")
			return
		default:
		}

		msgs, err := sub.Fetch(64, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			w.logger.Error("failed to fetch link events", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.LinkCreated
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				w.logger.Error("failed to unmarshal link event", zap.Error(err))
				msg.Nak()
				continue
			}

			w.resolver.Observe(event.ShortCode)
			w.resolver.Populate(ctx, &model.Link{
				ID:          event.LinkID,
				ShortCode:   event.ShortCode,
				OriginalURL: event.OriginalURL,
				CreatedAt:   event.CreatedAt,
			})

			w.logger.Debug("warmed cache from link event",
				zap.String("event_id", event.EventID),
				zap.String("code", event.ShortCode))

			msg.Ack()
		}
	}
}
