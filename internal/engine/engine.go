package engine

import (
	"errors"
	"fmt"
)

var ErrUnknownRole = errors.New("unknown role")
var ErrUnknownBattleMode = errors.New("unknown battle mode")
var ErrRoleTaken = errors.New("role already filled")
var ErrMatchRace = errors.New("participant no longer available")

type Role int

const (
	RoleFire Role = iota
	RoleSnow
	RoleWater
)

// RoleCount is the number of seats in a squad.
const RoleCount = 3

// Roles lists every role in canonical order.
var Roles = [RoleCount]Role{RoleFire, RoleSnow, RoleWater}

func (r Role) String() string {
	switch r {
	case RoleFire:
		return "fire"
	case RoleSnow:
		return "snow"
	case RoleWater:
		return "water"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r Role) Valid() bool {
	return r >= RoleFire && r <= RoleWater
}

// Mask is the slot bit clients use to address a role in match payloads.
func (r Role) Mask() int {
	switch r {
	case RoleFire:
		return 1
	case RoleWater:
		return 2
	case RoleSnow:
		return 4
	default:
		return 0
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrUnknownRole
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "fire":
		return RoleFire, nil
	case "snow":
		return RoleSnow, nil
	case "water":
		return RoleWater, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

type BattleMode int

const (
	ModeStandard BattleMode = iota
	ModeCoop
)

func (m BattleMode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeCoop:
		return "coop"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseBattleMode(n int) (BattleMode, error) {
	m := BattleMode(n)
	if m != ModeStandard && m != ModeCoop {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBattleMode, n)
	}
	return m, nil
}

type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhaseRound      Phase = "round"
	PhaseTransition Phase = "transition"
	PhaseEnded      Phase = "ended"
)
