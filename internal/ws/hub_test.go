package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type feedServer struct {
	hub      *Hub
	server   *httptest.Server
	upgrader websocket.Upgrader
}

func newFeedServer(t *testing.T, hub *Hub) *feedServer {
	t.Helper()
	fs := &feedServer{hub: hub}
	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := uuid.MustParse(r.URL.Query().Get("user"))
		isAdmin := r.URL.Query().Get("admin") == "1"

		conn, err := fs.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, hub, userID, isAdmin)
		if err := hub.Register(client); err != nil {
			_ = conn.Close()
			return
		}
		client.Run(context.Background())
	}))
	return fs
}

func (fs *feedServer) dial(t *testing.T, userID uuid.UUID, admin bool) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(fs.server.URL, "http") + "/?user=" + userID.String()
	if admin {
		url += "&admin=1"
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ConnectedClients() == n }, 2*time.Second, 10*time.Millisecond)
}

type event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn) event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func TestHub_RoutesEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	fs := newFeedServer(t, hub)

	owner := uuid.New()
	admin := uuid.New()
	ownerConn := fs.dial(t, owner, false)
	adminConn := fs.dial(t, admin, true)
	waitClients(t, hub, 2)

	hub.NotifyAdmins("listing.pending", map[string]any{"title": "Flat"})
	ev := readEvent(t, adminConn)
	assert.Equal(t, "listing.pending", ev.Type)
	assert.Equal(t, "Flat", ev.Data["title"])

	hub.NotifyUser(owner, "listing.approved", map[string]any{"status": "active"})
	ev = readEvent(t, ownerConn)
	assert.Equal(t, "listing.approved", ev.Type)

	// Владелец не получает событий администраторов.
	require.NoError(t, ownerConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := ownerConn.ReadMessage()
	assert.Error(t, err)

	_ = ownerConn.Close()
	_ = adminConn.Close()
	waitClients(t, hub, 0)

	cancel()
	<-hub.Done()
	fs.server.Close()

	assert.ErrorIs(t, hub.BroadcastToAdmins("report.created", nil), ErrHubStopped)
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	fs := newFeedServer(t, hub)

	conn := fs.dial(t, uuid.New(), true)
	waitClients(t, hub, 1)

	cancel()
	<-hub.Done()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	_ = conn.Close()
	fs.server.Close()
	assert.Equal(t, 0, hub.ConnectedClients())
}
