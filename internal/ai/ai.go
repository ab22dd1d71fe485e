// Package ai provides computer-controlled squad members used to backfill
// matches that time out with missing roles.
package ai

import (
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
)

// alwaysReady is shared by every bot; nothing ever waits on a bot loading.
var alwaysReady = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

type Player struct {
	id   string
	role engine.Role
	mode engine.BattleMode
	rank int

	mu         sync.Mutex
	sessionID  string
	knockedOut bool
}

func New(role engine.Role, mode engine.BattleMode, rank int) *Player {
	return &Player{
		id:   "bot-" + uuid.Must(uuid.NewV4()).String(),
		role: role,
		mode: mode,
		rank: rank,
	}
}

func (p *Player) ID() string                    { return p.id }
func (p *Player) Name() string                  { return p.role.String() + " bot" }
func (p *Player) Role() engine.Role             { return p.role }
func (p *Player) BattleMode() engine.BattleMode { return p.mode }
func (p *Player) Rank() int                     { return p.rank }
func (p *Player) Bot() bool                     { return true }
func (p *Player) Queued() bool                  { return false }
func (p *Player) SetQueued(bool)                {}
func (p *Player) Ready() <-chan struct{}        { return alwaysReady }

func (p *Player) Claim(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessionID != "" {
		return false
	}
	p.sessionID = sessionID
	return true
}

func (p *Player) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

func (p *Player) Release() {
	p.mu.Lock()
	p.sessionID = ""
	p.mu.Unlock()
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

// Fill seats a bot in every empty role of r, matching the given rank.
func Fill(r engine.Roster, mode engine.BattleMode, rank int) engine.Roster {
	for _, role := range r.Missing() {
		r[role] = New(role, mode, rank)
	}
	return r
}

var _ engine.Participant = (*Player)(nil)
