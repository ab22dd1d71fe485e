package matchmaking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
)

var ErrAlreadyQueued = errors.New("player already queued")
var ErrNotQueued = errors.New("player not queued")
var ErrInSession = errors.New("player already in a session")

type Msg interface{ isMatchmakerMsg() }

type Join struct {
	Player engine.Participant
}

func (Join) isMatchmakerMsg() {}

// Leave removes PlayerID from the queue. When Player is set, the entry is
// only removed if it still belongs to that participant.
type Leave struct {
	PlayerID string
	Player   engine.Participant
}

func (Leave) isMatchmakerMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isMatchmakerMsg() {}

type Shutdown struct{}

func (Shutdown) isMatchmakerMsg() {}

// fillDue is posted by a deferred fill timer.
type fillDue struct {
	PlayerID string
	Gen      uint64
}

func (fillDue) isMatchmakerMsg() {}

// Starter turns a finished roster into a running session. It must claim
// every participant or fail with engine.ErrMatchRace.
type Starter interface {
	Start(r engine.Roster, mode engine.BattleMode) error
}

type Options struct {
	Timeout   time.Duration
	AllowBots map[engine.BattleMode]bool
	Now       func() time.Time
	Logger    *zap.Logger
}

type Matchmaker struct {
	inbox   chan Msg
	queue   *Queue
	starter Starter
	opts    Options
	gen     uint64
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, starter Starter, opts Options) *Matchmaker {
	ctx, cancel := context.WithCancel(parent)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	m := &Matchmaker{
		inbox:   make(chan Msg, 64),
		queue:   NewQueue(),
		starter: starter,
		opts:    opts,
		log:     opts.Logger.With(zap.String("component", "matchmaking")),
		ctx:     ctx,
		cancel:  cancel,
	}

	go m.loop()
	return m
}

func (m *Matchmaker) loop() {
	for {
		select {
		case <-m.ctx.Done():
			m.shutdown()
			return

		case msg := <-m.inbox:
			switch msg := msg.(type) {
			case Join:
				m.join(msg.Player)

			case Leave:
				m.leave(msg.PlayerID, msg.Player)

			case fillDue:
				m.fill(msg.PlayerID, msg.Gen)

			case GetState:
				msg.Reply <- m.queue.View()

			case Shutdown:
				m.shutdown()
				return
			}
		}
	}
}

func (m *Matchmaker) join(p engine.Participant) {
	if p.SessionID() != "" {
		m.log.Debug("join ignored", zap.String("player", p.ID()), zap.Error(ErrInSession))
		return
	}

	e, added := m.queue.Add(p, m.opts.Now())
	if !added {
		m.log.Debug("join ignored", zap.String("player", p.ID()), zap.Error(ErrAlreadyQueued))
		return
	}
	p.SetQueued(true)
	m.log.Info("joined queue",
		zap.String("player", p.ID()),
		zap.Stringer("role", p.Role()),
		zap.Stringer("mode", p.BattleMode()),
		zap.Int("rank", p.Rank()))

	r := m.queue.FindMatch(e, nil)
	if r.Complete() {
		err := m.finalize(r, p.BattleMode())
		if err == nil {
			return
		}
		m.log.Debug("immediate match aborted", zap.String("player", p.ID()), zap.Error(err))
	}
	m.scheduleFill(e)
}

func (m *Matchmaker) leave(id string, owner engine.Participant) {
	e := m.queue.Get(id)
	if e == nil || (owner != nil && e.p != owner) {
		m.log.Debug("leave ignored", zap.String("player", id), zap.Error(ErrNotQueued))
		return
	}
	m.drop(e)
	m.log.Info("left queue", zap.String("player", id))
}

// drop takes e out of the queue and clears its pending fill.
func (m *Matchmaker) drop(e *entry) {
	m.queue.Remove(e.p.ID())
	m.cancelFill(e)
	e.p.SetQueued(false)
}

// validate re-checks that every human in r still waits in the queue and has
// not been claimed by another session.
func (m *Matchmaker) validate(r engine.Roster) error {
	for _, p := range r.Humans() {
		if m.queue.Get(p.ID()) == nil || p.SessionID() != "" {
			return engine.ErrMatchRace
		}
	}
	return nil
}

func (m *Matchmaker) finalize(r engine.Roster, mode engine.BattleMode) error {
	if err := m.validate(r); err != nil {
		return err
	}
	if err := m.starter.Start(r, mode); err != nil {
		return err
	}

	ids := make([]string, 0, engine.RoleCount)
	for _, p := range r.Members() {
		ids = append(ids, p.ID())
		if e := m.queue.Get(p.ID()); e != nil {
			m.drop(e)
		}
	}
	m.log.Info("match found", zap.Strings("players", ids), zap.Stringer("mode", mode))
	return nil
}

// Add queues p and tries to match it right away.
func (m *Matchmaker) Add(p engine.Participant) { m.send(Join{Player: p}) }

// Remove takes p out of the queue. Removing an absent player is a no-op.
func (m *Matchmaker) Remove(id string) { m.send(Leave{PlayerID: id}) }

// Withdraw is Remove for a specific participant: another participant queued
// under the same id is left alone.
func (m *Matchmaker) Withdraw(p engine.Participant) { m.send(Leave{PlayerID: p.ID(), Player: p}) }

func (m *Matchmaker) Snapshot(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if !m.send(GetState{Reply: reply}) {
		return View{}, m.ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-m.ctx.Done():
		return View{}, m.ctx.Err()
	}
}

func (m *Matchmaker) send(msg Msg) bool {
	select {
	case m.inbox <- msg:
		return true
	case <-m.ctx.Done():
		return false
	}
}

func (m *Matchmaker) shutdown() {
	for _, id := range m.queue.IDs() {
		m.drop(m.queue.Get(id))
	}
	m.cancel()
}

// Stop empties the queue and ends the matchmaker loop.
func (m *Matchmaker) Stop() { m.send(Shutdown{}) }

// Expose the inbox so tests or the transport layer can send messages.
func (m *Matchmaker) Inbox() chan<- Msg { return m.inbox }
