// Package events describes documents' change events pushed to realtime subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

//go:generate mockgen -destination=./mock/events.go -package=mock -source=events.go

// AnyCreate matches creation of a document in any collection.
const AnyCreate = "collections.*.documents.*.create"

// Event is a single change notification.
type Event struct {
	Channel   string          `json:"channel"`
	Events    []string        `json:"events"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
	// Scope is used for routing only and is stripped before the event reaches a subscriber.
	Scope *Scope `json:"scope,omitempty"`
}

// Scope limits subscribers who may receive an event. Nil scope means everyone.
type Scope struct {
	// Audience is the exhaustive list of receivers.
	Audience []string `json:"audience,omitempty"`
	// Owner is author of the content. Receivers must be able to see owner's content.
	Owner string `json:"owner,omitempty"`
}

// To returns scope delivering event to the users only.
func To(users ...string) *Scope {
	return &Scope{Audience: users}
}

// OwnedBy returns scope delivering event to those who can see content of the owner.
func OwnedBy(owner string) *Scope {
	return &Scope{Owner: owner}
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, e *Event) error
}

// Channel returns name of collection's documents channel.
func Channel(collection string) string {
	return fmt.Sprintf("collections.%s.documents", collection)
}

// NewCreateEvent returns an event about created document.
func NewCreateEvent(collection, id string, payload interface{}, timestamp time.Time) (*Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	ch := Channel(collection)

	return &Event{
		Channel: ch,
		Events: []string{
			fmt.Sprintf("%s.%s.create", ch, id),
			fmt.Sprintf("%s.*.create", ch),
			fmt.Sprintf("%s.%s", ch, id),
			AnyCreate,
		},
		Payload:   b,
		Timestamp: timestamp.UTC(),
	}, nil
}

// Collection returns collection name the event channel belongs to.
func (e Event) Collection() string {
	return strings.TrimSuffix(strings.TrimPrefix(e.Channel, "collections."), ".documents")
}

// Is checks if event matches the name.
func (e Event) Is(name string) bool {
	for _, v := range e.Events {
		if v == name {
			return true
		}
	}

	return false
}
