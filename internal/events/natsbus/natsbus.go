// Package natsbus is a NATS implementation of events publisher.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/Decentr-net/photon/internal/events"
)

// SubjectPrefix is a prefix of every documents' event subject.
const SubjectPrefix = "photon."

// AllSubjects matches events of all collections.
const AllSubjects = SubjectPrefix + ">"

type publisher struct {
	c *nats.Conn
}

// New creates new instance of publisher.
func New(c *nats.Conn) events.Publisher {
	return publisher{c: c}
}

// Subject returns subject for collection's events.
func Subject(collection string) string {
	return SubjectPrefix + collection
}

// Collection returns collection of the subject.
func Collection(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix)
}

func (p publisher) Publish(_ context.Context, e *events.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.c.Publish(Subject(e.Collection()), b); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	return nil
}
