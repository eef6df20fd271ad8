// Package natsstan carries the pushed order feed over NATS Streaming.
package natsstan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/storefront-core/internal/domain"
	"github.com/google/uuid"
	stan "github.com/nats-io/stan.go"
)

const (
	defaultQueue   = "storefront-workers"
	handlerTimeout = 5 * time.Second
	ackWait        = 10 * time.Second
)

type Subscriber struct {
	ClusterID string
	ClientID  string
	URL       string
	Subject   string
	Durable   string
	Queue     string
	Logger    *slog.Logger
}

func (s *Subscriber) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// clientID returns the configured id or a fresh one. stan rejects a client id
// that is already connected.
func clientID(configured, prefix string) string {
	if configured != "" {
		return configured
	}
	return prefix + "-" + uuid.NewString()
}

// Subscribe connects and registers handler. The connection closes when ctx is
// done. Messages whose handler fails are left unacked for redelivery.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(ctx context.Context, raw []byte) error) error {
	sc, err := stan.Connect(s.ClusterID, clientID(s.ClientID, "storefront"), stan.NatsURL(s.URL))
	if err != nil {
		return fmt.Errorf("stan connect: %w", err)
	}
	queue := s.Queue
	if queue == "" {
		queue = defaultQueue
	}
	log := s.logger().With("subject", s.Subject)
	_, err = sc.QueueSubscribe(s.Subject, queue, func(m *stan.Msg) {
		hCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
		defer cancel()
		if err := handler(hCtx, m.Data); err != nil {
			log.Warn("order message rejected", "seq", m.Sequence, "redelivered", m.Redelivered, "err", err)
			return
		}
		if err := m.Ack(); err != nil {
			log.Error("ack failed", "seq", m.Sequence, "err", err)
		}
	}, stan.DurableName(s.Durable), stan.SetManualAckMode(), stan.AckWait(ackWait), stan.DeliverAllAvailable())
	if err != nil {
		sc.Close()
		return fmt.Errorf("stan subscribe %s: %w", s.Subject, err)
	}
	go func() {
		<-ctx.Done()
		if err := sc.Close(); err != nil {
			log.Warn("stan close", "err", err)
		}
	}()
	log.Info("order feed subscribed", "queue", queue, "durable", s.Durable)
	return nil
}

var _ domain.MessageSubscriber = (*Subscriber)(nil)
