package matchmaking

import (
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ninja-squad-backend/internal/ai"
)

func (m *Matchmaker) scheduleFill(e *entry) {
	m.cancelFill(e)
	m.gen++
	e.gen = m.gen

	id, gen := e.p.ID(), e.gen
	e.fill = time.AfterFunc(m.opts.Timeout, func() {
		m.send(fillDue{PlayerID: id, Gen: gen})
	})
}

func (m *Matchmaker) cancelFill(e *entry) {
	if e.fill != nil {
		e.fill.Stop()
		e.fill = nil
	}
	e.gen = 0
}

// fill is the deferred attempt for a player that could not be matched on
// arrival. Candidates who joined too recently are left out; with bots enabled
// for the mode, empty roles are backfilled.
func (m *Matchmaker) fill(id string, gen uint64) {
	e := m.queue.Get(id)
	if e == nil || e.gen != gen {
		return
	}
	e.fill = nil

	p := e.p
	if p.SessionID() != "" {
		m.drop(e)
		m.log.Debug("fill dropped", zap.String("player", id), zap.Error(ErrInSession))
		return
	}

	mode := p.BattleMode()
	now := m.opts.Now()
	minWait := m.opts.Timeout / 2

	// The initiator is held to the same minimum wait as its candidates.
	if e.waited(now) < minWait {
		m.log.Debug("fill retry scheduled", zap.String("player", id), zap.Duration("waited", e.waited(now)))
		m.scheduleFill(e)
		return
	}

	r := m.queue.FindMatch(e, func(c *entry) bool {
		return c.waited(now) >= minWait
	})

	if !r.Complete() {
		if !m.opts.AllowBots[mode] {
			m.log.Debug("fill retry scheduled",
				zap.String("player", id),
				zap.Stringer("mode", mode),
				zap.Int("missing", len(r.Missing())))
			m.scheduleFill(e)
			return
		}
		if err := m.validate(r); err != nil {
			m.log.Debug("fill aborted", zap.String("player", id), zap.Error(err))
			m.scheduleFill(e)
			return
		}
		r = ai.Fill(r, mode, p.Rank())
	}

	if err := m.finalize(r, mode); err != nil {
		m.log.Debug("fill aborted", zap.String("player", id), zap.Error(err))
		m.scheduleFill(e)
	}
}
