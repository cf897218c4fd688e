package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Decentr-net/photon/internal/events"
	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/session"
)

// newServer serves the hub authenticating requests as the user from the query.
func newServer(h *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := r.URL.Query().Get("user"); u != "" {
			r = r.WithContext(mm.WithSession(r.Context(), "token", &session.Session{ID: u, UserID: u}))
		}
		h.ServeHTTP(w, r)
	}))
}

type guardFunc func(viewerID, ownerID string) bool

func (f guardFunc) CanView(_ context.Context, viewerID, ownerID string) (bool, error) {
	return f(viewerID, ownerID), nil
}

func expectMessage(t *testing.T, conn *websocket.Conn) *events.Event {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)

	var e events.Event
	require.NoError(t, json.Unmarshal(b, &e))
	return &e
}

func expectNothing(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)

	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()

	require.Eventually(t, func() bool { return h.Len() == n }, time.Second, 5*time.Millisecond)
}

func TestHub_Publish(t *testing.T) {
	h := NewHub(0, nil)
	srv := newServer(h)
	defer srv.Close()

	posts := dial(t, srv, "channels=collections.posts.documents")
	defer posts.Close()
	comments := dial(t, srv, "channels=collections.comments.documents&channels=collections.likes.documents")
	defer comments.Close()

	waitClients(t, h, 2)

	e, err := events.NewCreateEvent("posts", "1", map[string]string{"id": "1"}, time.Unix(100, 0))
	require.NoError(t, err)
	require.NoError(t, h.Publish(context.Background(), e))

	_ = posts.SetReadDeadline(time.Now().Add(time.Second))
	_, b, err := posts.ReadMessage()
	require.NoError(t, err)

	var got events.Event
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, e.Channel, got.Channel)
	assert.Equal(t, e.Events, got.Events)

	_ = comments.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = comments.ReadMessage()
	require.Error(t, err, "client is not subscribed to posts")
}

func TestHub_PublishToAudience(t *testing.T) {
	h := NewHub(0, nil)
	srv := newServer(h)
	defer srv.Close()

	sender := dial(t, srv, "channels=collections.messages.documents&user=a")
	defer sender.Close()
	receiver := dial(t, srv, "channels=collections.messages.documents&user=b")
	defer receiver.Close()
	stranger := dial(t, srv, "channels=collections.messages.documents&user=c")
	defer stranger.Close()
	anonymous := dial(t, srv, "channels=collections.messages.documents")
	defer anonymous.Close()

	waitClients(t, h, 4)

	e, err := events.NewCreateEvent("messages", "1", map[string]string{"content": "hi"}, time.Unix(100, 0))
	require.NoError(t, err)
	e.Scope = events.To("a", "b")
	require.NoError(t, h.Publish(context.Background(), e))

	for _, conn := range []*websocket.Conn{sender, receiver} {
		got := expectMessage(t, conn)
		assert.Equal(t, e.Channel, got.Channel)
		assert.Nil(t, got.Scope)
	}

	expectNothing(t, stranger)
	expectNothing(t, anonymous)
}

func TestHub_PublishOwned(t *testing.T) {
	h := NewHub(0, guardFunc(func(viewerID, ownerID string) bool {
		assert.Equal(t, "owner", ownerID)
		return viewerID == "follower"
	}))
	srv := newServer(h)
	defer srv.Close()

	owner := dial(t, srv, "channels=collections.posts.documents&user=owner")
	defer owner.Close()
	follower := dial(t, srv, "channels=collections.posts.documents&user=follower")
	defer follower.Close()
	stranger := dial(t, srv, "channels=collections.posts.documents&user=stranger")
	defer stranger.Close()

	waitClients(t, h, 3)

	e, err := events.NewCreateEvent("posts", "1", map[string]string{"id": "1"}, time.Unix(100, 0))
	require.NoError(t, err)
	e.Scope = events.OwnedBy("owner")
	require.NoError(t, h.Publish(context.Background(), e))

	expectMessage(t, owner)
	expectMessage(t, follower)
	expectNothing(t, stranger)
}

func TestHub_Disconnect(t *testing.T) {
	h := NewHub(0, nil)
	srv := newServer(h)
	defer srv.Close()

	conn := dial(t, srv, "channels=collections.posts.documents")
	waitClients(t, h, 1)

	require.NoError(t, conn.Close())
	waitClients(t, h, 0)
}

func TestHub_DropsSlowConnection(t *testing.T) {
	h := NewHub(1, nil)
	srv := newServer(h)
	defer srv.Close()

	conn := dial(t, srv, "channels=collections.posts.documents")
	defer conn.Close()
	waitClients(t, h, 1)

	e, err := events.NewCreateEvent("posts", "1", strings.Repeat("x", 1<<16), time.Now())
	require.NoError(t, err)

	// nobody reads from conn, so buffers fill up and the client gets dropped
	require.Eventually(t, func() bool {
		require.NoError(t, h.Publish(context.Background(), e))
		return h.Len() == 0
	}, 5*time.Second, time.Millisecond)
}

func TestHub_NoChannels(t *testing.T) {
	h := NewHub(0, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
