package service

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"github.com/nats-io/nats.go"
)

// LinkPublisher publishes link-created events to NATS JetStream.
type LinkPublisher struct {
	js nats.JetStreamContext
}

// NewLinkPublisher creates a publisher over an existing JetStream context.
func NewLinkPublisher(js nats.JetStreamContext) *LinkPublisher {
	return &LinkPublisher{js: js}
}

// Publish emits a LinkCreated event for the given link.
func (p *LinkPublisher) Publish(link *model.Link) error {
	event := model.LinkCreated{
		EventID:     uuid.New().String(),
		LinkID:      link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.LinkStreamSubject, data)
	return err
}
