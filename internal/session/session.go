package session

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/grid"
	"github.com/DoyleJ11/ninja-squad-backend/internal/timer"
)

type Config struct {
	RoundDuration time.Duration
	PrepareDelay  time.Duration
	TitleDelay    time.Duration
	SpawnDelay    time.Duration
	// ReadyTimeout bounds the loading wait; zero waits forever.
	ReadyTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		RoundDuration: 10 * time.Second,
		PrepareDelay:  3 * time.Second,
		TitleDelay:    1600 * time.Millisecond,
		SpawnDelay:    time.Second,
		ReadyTimeout:  30 * time.Second,
	}
}

type Params struct {
	Roster      engine.Roster
	Mode        engine.BattleMode
	Config      Config
	Presenter   Presenter
	Broadcaster Broadcaster
	Input       InputHandler
	Sink        ResultSink
	Logger      *zap.Logger

	// Optional overrides, mostly for tests.
	Bonus engine.BonusCriteria
	MapID int
	Now   func() time.Time
	Rand  *rand.Rand
}

type ninja struct {
	role engine.Role
	hp   int
	cell grid.Cell
}

func (n *ninja) entity() Entity {
	name := ninjaNames[n.role]
	return Entity{ID: name, Name: name, X: float64(n.cell.X), Y: float64(n.cell.Y)}
}

var ninjaNames = [engine.RoleCount]string{
	engine.RoleFire:  "Fire",
	engine.RoleSnow:  "Snow",
	engine.RoleWater: "Water",
}

var ninjaCells = [engine.RoleCount]grid.Cell{
	engine.RoleFire:  {X: 0, Y: 4},
	engine.RoleSnow:  {X: 0, Y: 2},
	engine.RoleWater: {X: 0, Y: 0},
}

type Enemy struct {
	ID   string           `json:"id"`
	Kind engine.EnemyKind `json:"kind"`
	Cell grid.Cell        `json:"cell"`
}

func (e Enemy) entity() Entity {
	return Entity{ID: e.ID, Name: string(e.Kind), X: float64(e.Cell.X), Y: float64(e.Cell.Y)}
}

// Session is one squad's run from setup to the end of its last round. Run
// drives it on the caller's goroutine; the remaining methods are safe to call
// from transport goroutines meanwhile.
type Session struct {
	id        string
	roster    engine.Roster
	mode      engine.BattleMode
	mapID     int
	bonus     engine.BonusCriteria
	startedAt time.Time

	cfg   Config
	pres  Presenter
	net   Broadcaster
	input InputHandler
	sink  ResultSink
	log   *zap.Logger
	now   func() time.Time
	rng   *rand.Rand

	mu        sync.Mutex
	round     int
	played    int
	phase     engine.Phase
	inputOpen bool
	ended     bool
	ninjas    [engine.RoleCount]*ninja
	enemies   map[string]Enemy
	enemySeq  int
	grid      *grid.Grid
	timer     *timer.SessionTimer
}

// New binds every participant to a fresh session. If any of them already
// belongs to one, nobody is bound and engine.ErrMatchRace is returned.
func New(p Params) (*Session, error) {
	if !p.Roster.Complete() {
		return nil, ErrIncompleteRoster
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Rand == nil {
		p.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Sink == nil {
		p.Sink = NopSink{}
	}
	if p.Bonus == "" {
		p.Bonus = engine.BonusKinds[p.Rand.IntN(len(engine.BonusKinds))]
	}
	if p.MapID == 0 {
		p.MapID = p.Rand.IntN(len(backgrounds)) + 1
	}

	id := uuid.Must(uuid.NewV4()).String()

	var claimed []engine.Participant
	for _, m := range p.Roster.Members() {
		if !m.Claim(id) {
			for _, c := range claimed {
				c.Release()
			}
			return nil, engine.ErrMatchRace
		}
		claimed = append(claimed, m)
	}

	s := &Session{
		id:        id,
		roster:    p.Roster,
		mode:      p.Mode,
		mapID:     p.MapID,
		bonus:     p.Bonus,
		startedAt: p.Now(),
		cfg:       p.Config,
		pres:      p.Presenter,
		net:       p.Broadcaster,
		input:     p.Input,
		sink:      p.Sink,
		now:       p.Now,
		rng:       p.Rand,
		phase:     engine.PhaseSetup,
		enemies:   make(map[string]Enemy),
		grid:      grid.New(p.Rand),
	}
	s.log = p.Logger.With(
		zap.String("component", "session"),
		zap.String("session", id),
		zap.Stringer("mode", p.Mode),
		zap.String("bonus", string(p.Bonus)))

	for _, role := range engine.Roles {
		n := &ninja{role: role, hp: engine.MaxHealth, cell: ninjaCells[role]}
		s.ninjas[role] = n
		_ = s.grid.Put(n.cell, ninjaNames[role])
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }
func (s *Session) Roster() engine.Roster { return s.roster }
func (s *Session) Mode() engine.BattleMode { return s.mode }
func (s *Session) Bonus() engine.BonusCriteria { return s.bonus }
func (s *Session) MapID() int { return s.mapID }
func (s *Session) StartedAt() time.Time { return s.startedAt }
func (s *Session) Logger() *zap.Logger { return s.log }

func (s *Session) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

func (s *Session) Phase() engine.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// BonusHeld evaluates the session's bonus objective as of now.
func (s *Session) BonusHeld() bool {
	switch s.bonus {
	case engine.BonusNoKO:
		for _, p := range s.roster.Members() {
			if p.KnockedOut() {
				return false
			}
		}
		return true
	case engine.BonusFullHealth:
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, n := range s.ninjas {
			if n.hp < engine.MaxHealth {
				return false
			}
		}
		return true
	case engine.BonusUnderTime:
		return s.now().Sub(s.startedAt) < engine.BonusTimeLimit
	default:
		return false
	}
}

func (s *Session) roleOf(playerID string) (engine.Role, bool) {
	for _, role := range engine.Roles {
		if s.roster[role].ID() == playerID {
			return role, true
		}
	}
	return 0, false
}

// SetHealth sets a ninja's health. Dropping to zero knocks its owner out for
// the rest of the session.
func (s *Session) SetHealth(role engine.Role, hp int) error {
	if !role.Valid() {
		return engine.ErrUnknownRole
	}
	hp = max(0, min(hp, engine.MaxHealth))

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionEnded
	}
	s.ninjas[role].hp = hp
	s.mu.Unlock()

	if hp == 0 {
		s.roster[role].MarkKnockedOut()
		s.log.Info("participant knocked out", zap.String("player", s.roster[role].ID()), zap.Stringer("role", role))
	}
	return nil
}

func (s *Session) Health(role engine.Role) int {
	if !role.Valid() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ninjas[role].hp
}

// Disconnect knocks out a participant whose connection dropped. The player
// itself is expected to report ready so setup cannot stall on it.
func (s *Session) Disconnect(playerID string) error {
	role, ok := s.roleOf(playerID)
	if !ok {
		return ErrUnknownParticipant
	}
	return s.SetHealth(role, 0)
}

// Input forwards a tile action while the round accepts input.
func (s *Session) Input(playerID string, c grid.Cell) error {
	role, ok := s.roleOf(playerID)
	if !ok {
		return ErrUnknownParticipant
	}
	s.mu.Lock()
	open := s.inputOpen
	s.mu.Unlock()
	if !open {
		return ErrInputClosed
	}
	if s.input != nil {
		s.input.HandleInput(s, role, c)
	}
	return nil
}

type PlayerView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Role       engine.Role `json:"role"`
	Bot        bool        `json:"bot"`
	Health     int         `json:"health"`
	KnockedOut bool        `json:"knocked_out"`
}

type Snapshot struct {
	ID          string               `json:"id"`
	Mode        engine.BattleMode    `json:"mode"`
	MapID       int                  `json:"map_id"`
	Bonus       engine.BonusCriteria `json:"bonus"`
	Round       int                  `json:"round"`
	Phase       engine.Phase         `json:"phase"`
	InputOpen   bool                 `json:"input_open"`
	RemainingMs int64                `json:"remaining_ms"`
	StartedAt   time.Time            `json:"started_at"`
	Players     []PlayerView         `json:"players"`
	Enemies     []Enemy              `json:"enemies"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		Mode:      s.mode,
		MapID:     s.mapID,
		Bonus:     s.bonus,
		Round:     s.round,
		Phase:     s.phase,
		InputOpen: s.inputOpen,
		StartedAt: s.startedAt,
		Enemies:   s.enemyListLocked(),
	}
	if s.timer != nil {
		snap.RemainingMs = s.timer.Remaining().Milliseconds()
	}
	for _, role := range engine.Roles {
		p := s.roster[role]
		snap.Players = append(snap.Players, PlayerView{
			ID:         p.ID(),
			Name:       p.Name(),
			Role:       role,
			Bot:        p.Bot(),
			Health:     s.ninjas[role].hp,
			KnockedOut: p.KnockedOut(),
		})
	}
	return snap
}

func (s *Session) participantIDs() []string {
	ids := make([]string, 0, engine.RoleCount)
	for _, p := range s.roster.Members() {
		ids = append(ids, p.ID())
	}
	return ids
}
