package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/DoyleJ11/ninja-squad-backend/internal/hub"
	"github.com/DoyleJ11/ninja-squad-backend/internal/matchmaking"
	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
	"github.com/DoyleJ11/ninja-squad-backend/internal/types"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, _ := newServerWithMatchmaker(t)
	return srv
}

func newServerWithMatchmaker(t *testing.T) (*httptest.Server, *matchmaking.Matchmaker) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, hub.Options{Session: session.Config{RoundDuration: time.Hour}})
	mm := matchmaking.New(ctx, h, matchmaking.Options{Timeout: time.Hour})

	srv := httptest.NewServer(Handler(h, mm, zap.NewNop()))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, mm
}

func dial(t *testing.T, srv *httptest.Server, id string, rank int) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws%s?id=%s&name=%s&rank=%d", strings.TrimPrefix(srv.URL, "http"), id, id, rank)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))
}

func read(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHandler_SquadOfThreeGetsMatched(t *testing.T) {
	srv := newServer(t)

	conns := map[string]*websocket.Conn{}
	for _, role := range []string{"fire", "snow", "water"} {
		conns[role] = dial(t, srv, role+"-1", 100)
	}
	for role, conn := range conns {
		write(t, conn, types.ClientMessage{Type: types.MsgJoinQueue, Role: role})
	}

	for role, conn := range conns {
		msg := read(t, conn)
		require.Equal(t, types.MsgShowUI, msg.Type, "role %s", role)
		require.Equal(t, session.WindowPlayerSelect, msg.Window, "role %s", role)
	}
}

func TestHandler_RejectsBadInput(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "p1", 1)

	cases := []struct {
		name string
		msg  types.ClientMessage
	}{
		{name: "unknown role", msg: types.ClientMessage{Type: types.MsgJoinQueue, Role: "earth"}},
		{name: "unknown mode", msg: types.ClientMessage{Type: types.MsgJoinQueue, Role: "fire", Mode: 7}},
		{name: "use outside a session", msg: types.ClientMessage{Type: types.MsgUse, X: 1, Y: 1}},
		{name: "unknown type", msg: types.ClientMessage{Type: "Dance"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			write(t, conn, tc.msg)
			got := read(t, conn)
			require.Equal(t, types.MsgError, got.Type)
			require.NotEmpty(t, got.Error)
		})
	}
}

func TestHandler_StaleConnectionKeepsReplacementQueued(t *testing.T) {
	srv, mm := newServerWithMatchmaker(t)

	stale := dial(t, srv, "dup", 5)
	fresh := dial(t, srv, "dup", 5)
	write(t, fresh, types.ClientMessage{Type: types.MsgJoinQueue, Role: "water"})

	total := func() int {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		v, err := mm.Snapshot(ctx)
		if err != nil {
			return -1
		}
		return v.Total
	}
	require.Eventually(t, func() bool { return total() == 1 }, time.Second, 5*time.Millisecond)

	stale.Close(websocket.StatusNormalClosure, "")
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, total(), "closing the stale connection evicted its replacement")
}
