package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DoyleJ11/ninja-squad-backend/internal/ai"
	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/player"
	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
	"github.com/DoyleJ11/ninja-squad-backend/internal/types"
)

func recvFrame(t *testing.T, ch <-chan types.ServerMessage) types.ServerMessage {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed")
		}
		return m
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for frame")
		return types.ServerMessage{}
	}
}

func recvClosed(t *testing.T, ch <-chan types.ServerMessage) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("outbox still open")
		}
	}
}

func humanWithBots(id string, role engine.Role) (*player.Player, engine.Roster) {
	p := player.New(id, id, 10)
	p.Select(role, engine.ModeStandard)
	var r engine.Roster
	r[role] = p
	return p, ai.Fill(r, engine.ModeStandard, 10)
}

func TestHub_DeliverReachesRegisteredClientsOnly(t *testing.T) {
	h := NewHub(context.Background(), Options{})
	defer h.Shutdown()

	out := make(chan types.ServerMessage, 4)
	h.Register("p1", out)
	h.Inbox() <- Deliver{PlayerIDs: []string{"p1", "bot-x"}, Msg: types.Error("hello")}

	m := recvFrame(t, out)
	if m.Type != types.MsgError || m.Error != "hello" {
		t.Fatalf("unexpected frame %+v", m)
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := NewHub(context.Background(), Options{})
	defer h.Shutdown()

	out := make(chan types.ServerMessage, 1)
	h.Register("p1", out)
	h.Inbox() <- Deliver{PlayerIDs: []string{"p1"}, Msg: types.Error("one")}
	h.Inbox() <- Deliver{PlayerIDs: []string{"p1"}, Msg: types.Error("two")}
	// The hub handles its inbox in order; once this returns both deliveries
	// have been attempted against the full buffer.
	if _, err := h.Sessions(context.Background()); err != nil {
		t.Fatalf("sessions: %v", err)
	}

	recvClosed(t, out)
}

func TestHub_StaleUnregisterKeepsReplacement(t *testing.T) {
	h := NewHub(context.Background(), Options{})
	defer h.Shutdown()

	first := make(chan types.ServerMessage, 4)
	second := make(chan types.ServerMessage, 4)
	h.Register("p1", first)
	h.Register("p1", second)
	recvClosed(t, first)

	h.Unregister("p1", first)
	h.Inbox() <- Deliver{PlayerIDs: []string{"p1"}, Msg: types.Error("still here")}
	if m := recvFrame(t, second); m.Error != "still here" {
		t.Fatalf("unexpected frame %+v", m)
	}
}

type countingSink struct{ outcomes chan session.Outcome }

func (c countingSink) Record(_ context.Context, o session.Outcome) error {
	c.outcomes <- o
	return nil
}

func TestHub_StartRunsSessionToTheEnd(t *testing.T) {
	sink := countingSink{outcomes: make(chan session.Outcome, 1)}
	h := NewHub(context.Background(), Options{
		Session: session.Config{RoundDuration: time.Millisecond},
		Sink:    sink,
	})
	defer h.Shutdown()

	p, r := humanWithBots("p1", engine.RoleSnow)
	out := make(chan types.ServerMessage, 512)
	h.Register(p.ID(), out)

	if err := h.Start(r, engine.ModeStandard); err != nil {
		t.Fatalf("start: %v", err)
	}
	if p.SessionID() == "" {
		t.Fatalf("player not bound to the session")
	}
	if s := h.Session(p.SessionID()); s == nil {
		t.Fatalf("session not registered")
	}

	first := recvFrame(t, out)
	if first.Type != types.MsgShowUI || first.Window != session.WindowPlayerSelect {
		t.Fatalf("first frame = %+v, want player select", first)
	}

	p.MarkReady()

	select {
	case o := <-sink.outcomes:
		if o.Aborted || o.Rounds < 2 {
			t.Fatalf("unexpected outcome %+v", o)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not finish")
	}

	h.Wait()
	if p.SessionID() != "" {
		t.Fatalf("player still bound after the session ended")
	}
	sessions, err := h.Sessions(context.Background())
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("finished session still listed")
	}
}

func TestHub_StartRejectsClaimedPlayer(t *testing.T) {
	h := NewHub(context.Background(), Options{})
	defer h.Shutdown()

	p, r := humanWithBots("p1", engine.RoleFire)
	p.Claim("elsewhere")

	if err := h.Start(r, engine.ModeStandard); !errors.Is(err, engine.ErrMatchRace) {
		t.Fatalf("err = %v, want ErrMatchRace", err)
	}
	for _, m := range r.Members() {
		if m.Bot() && m.SessionID() != "" {
			t.Fatalf("bot %s left bound after a failed start", m.ID())
		}
	}
}

func TestHub_StrikeRemovesEnemyOnCell(t *testing.T) {
	h := NewHub(context.Background(), Options{
		Session: session.Config{RoundDuration: time.Hour},
	})

	p, r := humanWithBots("p1", engine.RoleWater)
	if err := h.Start(r, engine.ModeStandard); err != nil {
		t.Fatalf("start: %v", err)
	}
	p.MarkReady()
	s := h.Session(p.SessionID())

	deadline := time.After(time.Second)
	for !s.Snapshot().InputOpen {
		select {
		case <-deadline:
			t.Fatalf("round never opened")
		case <-time.After(time.Millisecond):
		}
	}

	target := s.Enemies()[0]
	if err := s.Input(p.ID(), target.Cell); err != nil {
		t.Fatalf("input: %v", err)
	}
	if _, ok := s.EnemyAt(target.Cell); ok {
		t.Fatalf("enemy still on %+v", target.Cell)
	}

	h.Shutdown()
	h.Wait()
}
