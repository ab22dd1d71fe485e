package session

import (
	"context"
	"time"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/grid"
)

// UI windows addressed through the presenter.
const (
	WindowPlayerSelect = "playerselect"
	WindowRoundTitle   = "rounds"
	WindowCombat       = "combatui"
	WindowExit         = "close"
)

// Network tags broadcast to participants.
const (
	TagScene        = "scene"
	TagTileSize     = "tilesize"
	TagInputEnabled = "input_enabled"
	TagAborted      = "aborted"
	TagEnded        = "ended"
)

const (
	SoundAmbient    = "mus_mg_201303_cjsnow_gamewindamb"
	SoundEnemySpawn = "sfx_mg_2013_cjsnow_snowmenappear"
	ClipEnemySpawn  = "snowman_spawn_anim"
)

type PlayStyle string

const (
	PlayLoop PlayStyle = "loop"
	PlayOnce PlayStyle = "play_once"
)

// Entity is anything placed on the board.
type Entity struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Sprite string  `json:"sprite,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type Sound struct {
	Name    string `json:"name"`
	Looping bool   `json:"looping"`
}

type InputSpec struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	Target  string `json:"target"`
	Event   string `json:"event"`
}

var UseInput = InputSpec{ID: "/use", Command: "/use", Target: "tile", Event: "mouse_up"}

// Presenter drives what participants see and hear.
type Presenter interface {
	PlaceObject(e Entity)
	RemoveObject(e Entity)
	Animate(e Entity, clip string, style PlayStyle)
	PlaySound(s Sound)
	ShowUI(window string, payload any)
	CloseUI(window string)
}

// Broadcaster is the session's network surface.
type Broadcaster interface {
	Broadcast(tag string, args ...any)
	RegisterInput(spec InputSpec)
}

// InputHandler resolves tile input during an open round. Combat rules live
// behind it.
type InputHandler interface {
	HandleInput(s *Session, role engine.Role, c grid.Cell)
}

// ResultSink receives every finished or aborted session, e.g. for payouts.
type ResultSink interface {
	Record(ctx context.Context, o Outcome) error
}

type NopSink struct{}

func (NopSink) Record(context.Context, Outcome) error { return nil }

type ParticipantResult struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Role       engine.Role `json:"role"`
	Rank       int         `json:"rank"`
	Bot        bool        `json:"bot"`
	KnockedOut bool        `json:"knocked_out"`
	Health     int         `json:"health"`
}

type Outcome struct {
	SessionID    string               `json:"session_id"`
	Mode         engine.BattleMode    `json:"mode"`
	MapID        int                  `json:"map_id"`
	Bonus        engine.BonusCriteria `json:"bonus"`
	BonusMet     bool                 `json:"bonus_met"`
	Rounds       int                  `json:"rounds"`
	StartedAt    time.Time            `json:"started_at"`
	EndedAt      time.Time            `json:"ended_at"`
	Aborted      bool                 `json:"aborted"`
	Reason       string               `json:"reason,omitempty"`
	Participants []ParticipantResult  `json:"participants"`
}

// MatchFound maps each role's slot bit to the player's display name.
type MatchFound map[int]string

type RoundTitle struct {
	Bonus       engine.BonusCriteria `json:"bonusCriteria"`
	RemainingMs int64                `json:"remainingTime"`
	Round       int                  `json:"roundNumber"`
}

type CombatUI struct {
	Role engine.Role `json:"element"`
}
