// Package relay is a consumer which delivers events from NATS to local subscribers.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/photon/internal/consumer"
	"github.com/Decentr-net/photon/internal/events"
	"github.com/Decentr-net/photon/internal/events/natsbus"
)

const bufferSize = 256

var log = logrus.WithField("layer", "consumer").WithField("package", "relay")

var errNotConnected = errors.New("not connected")

type relay struct {
	c *nats.Conn
	p events.Publisher
}

// New creates new instance of relay.
func New(c *nats.Conn, p events.Publisher) consumer.Consumer {
	return relay{
		c: c,
		p: p,
	}
}

func (r relay) Name() string {
	return "nats"
}

func (r relay) Ping(ctx context.Context) error {
	if !r.c.IsConnected() {
		return errNotConnected
	}

	if err := r.c.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	return nil
}

func (r relay) Run(ctx context.Context) error {
	ch := make(chan *nats.Msg, bufferSize)

	sub, err := r.c.ChanSubscribe(natsbus.AllSubjects, ch)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			log.WithError(err).Error("failed to unsubscribe")
		}
	}()

	log.Info("relay started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-ch:
			if err := r.process(ctx, msg); err != nil {
				log.WithField("subject", msg.Subject).WithError(err).Error("failed to process message")
			}
		}
	}
}

func (r relay) process(ctx context.Context, msg *nats.Msg) error {
	var e events.Event
	if err := json.Unmarshal(msg.Data, &e); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if e.Collection() != natsbus.Collection(msg.Subject) {
		return fmt.Errorf("channel %s does not match subject", e.Channel)
	}

	if err := r.p.Publish(ctx, &e); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	return nil
}
