package matchmaking

import (
	"time"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
)

type entry struct {
	p        engine.Participant
	queuedAt time.Time
	// fill is the pending deferred fill; gen tells a live fire from a stale one.
	fill *time.Timer
	gen  uint64
}

func (e *entry) waited(now time.Time) time.Duration { return now.Sub(e.queuedAt) }

// Queue holds waiting players in arrival order. It is owned by the matchmaker
// goroutine and is not safe for concurrent use.
type Queue struct {
	order []*entry
	byID  map[string]*entry
}

func NewQueue() *Queue {
	return &Queue{byID: make(map[string]*entry)}
}

// Add enqueues p. It reports false, leaving the queue untouched, when p is
// already waiting.
func (q *Queue) Add(p engine.Participant, now time.Time) (*entry, bool) {
	if e, ok := q.byID[p.ID()]; ok {
		return e, false
	}
	e := &entry{p: p, queuedAt: now}
	q.order = append(q.order, e)
	q.byID[p.ID()] = e
	return e, true
}

func (q *Queue) Remove(id string) (*entry, bool) {
	e, ok := q.byID[id]
	if !ok {
		return nil, false
	}
	delete(q.byID, id)
	for i, other := range q.order {
		if other == e {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return e, true
}

func (q *Queue) Get(id string) *entry { return q.byID[id] }

func (q *Queue) Len() int { return len(q.order) }

// IDs lists waiting players in arrival order.
func (q *Queue) IDs() []string {
	out := make([]string, 0, len(q.order))
	for _, e := range q.order {
		out = append(out, e.p.ID())
	}
	return out
}

// WithRole returns waiting players for role and mode in arrival order.
func (q *Queue) WithRole(role engine.Role, mode engine.BattleMode) []*entry {
	var out []*entry
	for _, e := range q.order {
		if e.p.Role() == role && e.p.BattleMode() == mode {
			out = append(out, e)
		}
	}
	return out
}

// FindMatch builds a roster around the initiating entry. For each role it
// lacks, the eligible candidate closest in rank wins; ties go to whoever
// queued first. Roles without a candidate stay empty.
func (q *Queue) FindMatch(init *entry, eligible func(*entry) bool) engine.Roster {
	var r engine.Roster
	r[init.p.Role()] = init.p

	for _, role := range engine.Roles {
		if role == init.p.Role() {
			continue
		}
		var best *entry
		bestDiff := 0
		for _, c := range q.WithRole(role, init.p.BattleMode()) {
			if c == init || (eligible != nil && !eligible(c)) {
				continue
			}
			diff := abs(c.p.Rank() - init.p.Rank())
			if best == nil || diff < bestDiff {
				best, bestDiff = c, diff
			}
		}
		if best != nil {
			r[role] = best.p
		}
	}
	return r
}

// View is a read-only summary of the queue.
type View struct {
	Total   int                       `json:"total"`
	Waiting map[string]map[string]int `json:"waiting"`
	Players []string                  `json:"players"`
}

func (q *Queue) View() View {
	v := View{Total: q.Len(), Waiting: map[string]map[string]int{}, Players: q.IDs()}
	for _, e := range q.order {
		mode := e.p.BattleMode().String()
		if v.Waiting[mode] == nil {
			v.Waiting[mode] = map[string]int{}
		}
		v.Waiting[mode][e.p.Role().String()]++
	}
	return v
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
