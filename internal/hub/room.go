package hub

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/grid"
	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
	"github.com/DoyleJ11/ninja-squad-backend/internal/types"
)

// Room turns a session's presentation and network calls into frames for its
// human participants.
type Room struct {
	hub     *Hub
	members []string
}

func newRoom(h *Hub, r engine.Roster) *Room {
	room := &Room{hub: h}
	for _, p := range r.Humans() {
		room.members = append(room.members, p.ID())
	}
	return room
}

func (r *Room) send(m types.ServerMessage) {
	if len(r.members) == 0 {
		return
	}
	r.hub.send(Deliver{PlayerIDs: r.members, Msg: m})
}

func (r *Room) PlaceObject(e session.Entity) {
	r.send(types.ServerMessage{Type: types.MsgPlace, Entity: &e})
}

func (r *Room) RemoveObject(e session.Entity) {
	r.send(types.ServerMessage{Type: types.MsgRemove, Entity: &e})
}

func (r *Room) Animate(e session.Entity, clip string, style session.PlayStyle) {
	r.send(types.ServerMessage{Type: types.MsgAnimate, Entity: &e, Clip: clip, Style: style})
}

func (r *Room) PlaySound(s session.Sound) {
	r.send(types.ServerMessage{Type: types.MsgSound, Sound: &s})
}

func (r *Room) ShowUI(window string, payload any) {
	r.send(types.ServerMessage{Type: types.MsgShowUI, Window: window, Payload: payload})
}

func (r *Room) CloseUI(window string) {
	r.send(types.ServerMessage{Type: types.MsgCloseUI, Window: window})
}

func (r *Room) Broadcast(tag string, args ...any) {
	r.send(types.ServerMessage{Type: types.MsgTag, Tag: tag, Args: args})
}

func (r *Room) RegisterInput(spec session.InputSpec) {
	r.send(types.ServerMessage{Type: types.MsgInput, Input: &spec})
}

var (
	_ session.Presenter   = (*Room)(nil)
	_ session.Broadcaster = (*Room)(nil)
)

// strike eliminates whatever enemy stands on the used tile.
type strike struct{}

func (strike) HandleInput(s *session.Session, role engine.Role, c grid.Cell) {
	e, ok := s.EnemyAt(c)
	if !ok {
		return
	}
	if s.RemoveEnemy(e.ID) {
		s.Logger().Debug("enemy eliminated",
			zap.String("enemy", e.ID),
			zap.Stringer("role", role),
			zap.Int("x", c.X),
			zap.Int("y", c.Y))
	}
}
