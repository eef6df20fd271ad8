package natsstan

import (
	"encoding/json"
	"fmt"

	"github.com/example/storefront-core/internal/domain"
	stan "github.com/nats-io/stan.go"
)

// Publisher sends orders to the feed subject.
type Publisher struct {
	conn    stan.Conn
	subject string
}

func NewPublisher(clusterID, clientIDValue, url, subject string) (*Publisher, error) {
	sc, err := stan.Connect(clusterID, clientID(clientIDValue, "storefront-pub"), stan.NatsURL(url))
	if err != nil {
		return nil, fmt.Errorf("stan connect: %w", err)
	}
	return &Publisher{conn: sc, subject: subject}, nil
}

func (p *Publisher) Publish(o domain.Order) error {
	if o.ID == "" {
		return fmt.Errorf("%w: order has no id", domain.ErrValidation)
	}
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", o.ID, err)
	}
	if err := p.conn.Publish(p.subject, b); err != nil {
		return fmt.Errorf("publish order %s: %w", o.ID, err)
	}
	return nil
}

func (p *Publisher) Close() error { return p.conn.Close() }
