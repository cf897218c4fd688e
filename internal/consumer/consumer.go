// Package consumer contains interface of events consumer.
package consumer

import (
	"context"

	"github.com/Decentr-net/photon/internal/health"
)

// Consumer consumes documents' events from the bus and delivers them to subscribers.
type Consumer interface {
	health.Pinger

	Run(ctx context.Context) error
}
