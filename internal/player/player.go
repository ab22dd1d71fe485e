package player

import (
	"sync"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
)

// Player is a connected client. The websocket reader, the matchmaker and the
// session goroutine all touch it, so every field sits behind mu.
type Player struct {
	id   string
	name string

	mu           sync.Mutex
	role         engine.Role
	mode         engine.BattleMode
	rank         int
	queued       bool
	sessionID    string
	ready        chan struct{}
	readyClosed  bool
	knockedOut   bool
	disconnected bool
}

func New(id, name string, rank int) *Player {
	return &Player{
		id:    id,
		name:  name,
		rank:  rank,
		ready: make(chan struct{}),
	}
}

func (p *Player) ID() string   { return p.id }
func (p *Player) Name() string { return p.name }
func (p *Player) Bot() bool    { return false }

func (p *Player) Role() engine.Role {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.role
}

func (p *Player) BattleMode() engine.BattleMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Player) Rank() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rank
}

// Select picks the role and battle mode for the next queue entry. It fails
// while the player is queued or in a session.
func (p *Player) Select(role engine.Role, mode engine.BattleMode) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queued || p.sessionID != "" {
		return false
	}
	p.role = role
	p.mode = mode
	return true
}

func (p *Player) Queued() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queued
}

func (p *Player) SetQueued(v bool) {
	p.mu.Lock()
	p.queued = v
	p.mu.Unlock()
}

func (p *Player) Claim(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessionID != "" {
		return false
	}
	p.sessionID = sessionID
	p.knockedOut = false
	if !p.disconnected {
		p.ready = make(chan struct{})
		p.readyClosed = false
	}
	return true
}

func (p *Player) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

func (p *Player) InGame() bool { return p.SessionID() != "" }

func (p *Player) Release() {
	p.mu.Lock()
	p.sessionID = ""
	p.queued = false
	p.mu.Unlock()
}

func (p *Player) Ready() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

func (p *Player) MarkReady() {
	p.mu.Lock()
	p.markReadyLocked()
	p.mu.Unlock()
}

func (p *Player) markReadyLocked() {
	if !p.readyClosed {
		close(p.ready)
		p.readyClosed = true
	}
}

func (p *Player) KnockedOut() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.knockedOut
}

func (p *Player) MarkKnockedOut() {
	p.mu.Lock()
	p.knockedOut = true
	p.mu.Unlock()
}

// Disconnect leaves the player permanently ready so a session waiting on
// them can proceed.
func (p *Player) Disconnect() {
	p.mu.Lock()
	p.disconnected = true
	p.markReadyLocked()
	p.mu.Unlock()
}

func (p *Player) Disconnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disconnected
}

var _ engine.Participant = (*Player)(nil)
