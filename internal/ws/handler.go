package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/grid"
	"github.com/DoyleJ11/ninja-squad-backend/internal/hub"
	"github.com/DoyleJ11/ninja-squad-backend/internal/matchmaking"
	"github.com/DoyleJ11/ninja-squad-backend/internal/player"
	"github.com/DoyleJ11/ninja-squad-backend/internal/types"
)

var errBadJoin = errors.New("cannot join queue now")
var errNoSession = errors.New("not in a session")
var errUnknownType = errors.New("unknown type")

func Handler(h *hub.Hub, mm *matchmaking.Matchmaker, log *zap.Logger) http.HandlerFunc {
	log = log.With(zap.String("component", "ws"))

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id := q.Get("id")
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
		}
		name := q.Get("name")
		if name == "" {
			name = id
		}
		rank, err := strconv.Atoi(q.Get("rank"))
		if err != nil {
			rank = 0
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		p := player.New(id, name, rank)
		out := make(chan types.ServerMessage, 64)
		h.Register(id, out)
		log.Info("client connected", zap.String("player", id), zap.Int("rank", rank))

		defer func() {
			mm.Withdraw(p)
			p.Disconnect()
			if s := h.Session(p.SessionID()); s != nil {
				_ = s.Disconnect(id)
			}
			h.Unregister(id, out)
			log.Info("client disconnected", zap.String("player", id))
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Warn("encode frame", zap.String("player", id), zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				err = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
			if writeCtx.Err() == nil {
				// The hub dropped us.
				conn.Close(websocket.StatusPolicyViolation, "too slow")
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.String("player", id), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				reply(r.Context(), conn, types.Error("bad json"))
				continue
			}
			if err := dispatch(h, mm, p, cm); err != nil {
				reply(r.Context(), conn, types.Error(err.Error()))
			}
		}
	}
}

func dispatch(h *hub.Hub, mm *matchmaking.Matchmaker, p *player.Player, cm types.ClientMessage) error {
	switch cm.Type {
	case types.MsgJoinQueue:
		role, err := engine.ParseRole(cm.Role)
		if err != nil {
			return err
		}
		mode, err := engine.ParseBattleMode(cm.Mode)
		if err != nil {
			return err
		}
		if !p.Select(role, mode) {
			return errBadJoin
		}
		mm.Add(p)
		return nil

	case types.MsgLeaveQueue:
		mm.Withdraw(p)
		return nil

	case types.MsgReady:
		p.MarkReady()
		return nil

	case types.MsgUse:
		s := h.Session(p.SessionID())
		if s == nil {
			return errNoSession
		}
		return s.Input(p.ID(), grid.Cell{X: cm.X, Y: cm.Y})

	default:
		return errUnknownType
	}
}

// reply writes straight to the socket; errors here only concern this client.
func reply(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
