package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pedrofarias/storefinder/internal/core/domain"
	"github.com/pedrofarias/storefinder/internal/core/ports"
)

// Publisher implements ports.EventPublisher using NATS JetStream. Change
// events feed downstream consumers (search indexers, BI) and are
// best-effort from the API's point of view.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

var _ ports.EventPublisher = (*Publisher)(nil)

// changeEvent is the wire format for store/PDV change notifications.
type changeEvent struct {
	Action     string    `json:"action"`
	EntityID   string    `json:"entity_id"`
	EntityType string    `json:"entity_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NewPublisher connects to NATS and ensures the retail events stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "RETAIL_LOCATIONS",
		Subjects:  []string{"retail.store.>", "retail.pdv.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist with older settings.
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishStoreChange emits a store created/updated/deleted event.
func (p *Publisher) PublishStoreChange(ctx context.Context, action string, store *domain.Store) error {
	return p.publish(ctx, "retail.store."+action, changeEvent{
		Action:     action,
		EntityID:   store.ID,
		EntityType: "store",
		OccurredAt: time.Now().UTC(),
		Payload:    store,
	})
}

// PublishPDVChange emits a PDV created/updated/deleted event.
func (p *Publisher) PublishPDVChange(ctx context.Context, action string, pdv *domain.PDV) error {
	return p.publish(ctx, "retail.pdv."+action, changeEvent{
		Action:     action,
		EntityID:   pdv.ID,
		EntityType: "pdv",
		OccurredAt: time.Now().UTC(),
		Payload:    pdv,
	})
}

func (p *Publisher) publish(ctx context.Context, subject string, event changeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
