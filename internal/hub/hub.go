package hub

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
	"github.com/DoyleJ11/ninja-squad-backend/internal/types"
)

type HubMsg interface{ isHubMsg() }

type RegisterClient struct {
	PlayerID string
	Outbox   chan types.ServerMessage
}

// UnregisterClient closes the outbox only if it is still the registered one,
// so a stale connection cannot evict its replacement.
type UnregisterClient struct {
	PlayerID string
	Outbox   chan types.ServerMessage
}

// Deliver fans one frame out to the listed players. Players without a
// connection, such as AI participants, are skipped.
type Deliver struct {
	PlayerIDs []string
	Msg       types.ServerMessage
}

type AddSession struct {
	Session *session.Session
}

type RemoveSession struct {
	ID string
}

type GetSession struct {
	ID    string
	Reply chan *session.Session
}

type ListSessions struct {
	Reply chan []*session.Session
}

type ShutdownHub struct{}

func (RegisterClient) isHubMsg()   {}
func (UnregisterClient) isHubMsg() {}
func (Deliver) isHubMsg()          {}
func (AddSession) isHubMsg()       {}
func (RemoveSession) isHubMsg()    {}
func (GetSession) isHubMsg()       {}
func (ListSessions) isHubMsg()     {}
func (ShutdownHub) isHubMsg()      {}

type Options struct {
	Session session.Config
	Sink    session.ResultSink
	Logger  *zap.Logger
}

// Hub owns every live connection and running session. It also starts the
// sessions the matchmaker forms.
type Hub struct {
	inbox    chan HubMsg
	clients  map[string]chan types.ServerMessage
	sessions map[string]*session.Session
	opts     Options
	log      *zap.Logger
	running  sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Sink == nil {
		opts.Sink = session.NopSink{}
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 256),
		clients:  make(map[string]chan types.ServerMessage),
		sessions: make(map[string]*session.Session),
		opts:     opts,
		log:      opts.Logger.With(zap.String("component", "hub")),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case RegisterClient:
				if old, ok := h.clients[msg.PlayerID]; ok {
					close(old)
				}
				h.clients[msg.PlayerID] = msg.Outbox

			case UnregisterClient:
				if out, ok := h.clients[msg.PlayerID]; ok && out == msg.Outbox {
					close(out)
					delete(h.clients, msg.PlayerID)
				}

			case Deliver:
				for _, id := range msg.PlayerIDs {
					out, ok := h.clients[id]
					if !ok {
						continue
					}
					select {
					case out <- msg.Msg:
					default:
						// Drop slow clients rather than stall every session.
						close(out)
						delete(h.clients, id)
						h.log.Warn("dropped slow client", zap.String("player", id))
					}
				}

			case AddSession:
				h.sessions[msg.Session.ID()] = msg.Session

			case RemoveSession:
				delete(h.sessions, msg.ID)

			case GetSession:
				msg.Reply <- h.sessions[msg.ID] // May be nil

			case ListSessions:
				out := make([]*session.Session, 0, len(h.sessions))
				for _, s := range h.sessions {
					out = append(out, s)
				}
				msg.Reply <- out

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, out := range h.clients {
		close(out)
		delete(h.clients, id)
	}
	clear(h.sessions)
	h.cancel()
}

func (h *Hub) send(msg HubMsg) bool {
	select {
	case h.inbox <- msg:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) Register(playerID string, outbox chan types.ServerMessage) {
	h.send(RegisterClient{PlayerID: playerID, Outbox: outbox})
}

func (h *Hub) Unregister(playerID string, outbox chan types.ServerMessage) {
	h.send(UnregisterClient{PlayerID: playerID, Outbox: outbox})
}

func (h *Hub) Session(id string) *session.Session {
	if id == "" {
		return nil
	}
	reply := make(chan *session.Session, 1)
	if !h.send(GetSession{ID: id, Reply: reply}) {
		return nil
	}
	select {
	case s := <-reply:
		return s
	case <-h.ctx.Done():
		return nil
	}
}

func (h *Hub) Sessions(ctx context.Context) ([]*session.Session, error) {
	reply := make(chan []*session.Session, 1)
	if !h.send(ListSessions{Reply: reply}) {
		return nil, h.ctx.Err()
	}
	select {
	case out := <-reply:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, h.ctx.Err()
	}
}

// Start creates a session for r and runs it in the background. It satisfies
// matchmaking.Starter.
func (h *Hub) Start(r engine.Roster, mode engine.BattleMode) error {
	if h.ctx.Err() != nil {
		return h.ctx.Err()
	}

	room := newRoom(h, r)
	s, err := session.New(session.Params{
		Roster:      r,
		Mode:        mode,
		Config:      h.opts.Session,
		Presenter:   room,
		Broadcaster: room,
		Input:       strike{},
		Sink:        h.opts.Sink,
		Logger:      h.opts.Logger,
	})
	if err != nil {
		return err
	}
	if !h.send(AddSession{Session: s}) {
		for _, p := range r.Members() {
			p.Release()
		}
		return h.ctx.Err()
	}

	h.running.Add(1)
	go func() {
		defer h.running.Done()
		err := s.Run(h.ctx)
		var fatal *session.FatalError
		if errors.As(err, &fatal) {
			room.send(types.Error(fatal.Err.Error()))
		}
		h.send(RemoveSession{ID: s.ID()})
	}()
	return nil
}

// Wait blocks until every session started by h has returned.
func (h *Hub) Wait() { h.running.Wait() }

func (h *Hub) Shutdown() {
	if !h.send(ShutdownHub{}) {
		return
	}
	<-h.ctx.Done()
}
