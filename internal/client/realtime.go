package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Decentr-net/photon/internal/events"
)

// Subscribe receives events of channels and passes them to f until ctx is done or connection is closed.
// It returns nil when ctx is done.
func (c *Client) Subscribe(ctx context.Context, channels []string, f func(e *events.Event)) error {
	u, err := url.Parse(c.baseURL + "/v1/realtime")
	if err != nil {
		return fmt.Errorf("failed to parse url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.RawQuery = url.Values{"channels": channels}.Encode()

	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			return readError(resp)
		}
		return fmt.Errorf("failed to dial: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var e events.Event
		if err := json.Unmarshal(b, &e); err != nil {
			log.WithError(err).WithField("message", strings.TrimSpace(string(b))).Warn("failed to unmarshal event")
			continue
		}

		f(&e)
	}
}
