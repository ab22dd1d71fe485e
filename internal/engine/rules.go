package engine

import (
	"fmt"
	"time"
)

type BonusCriteria string

const (
	BonusNoKO       BonusCriteria = "no_ko"
	BonusUnderTime  BonusCriteria = "under_time"
	BonusFullHealth BonusCriteria = "full_health"
)

var BonusKinds = []BonusCriteria{BonusNoKO, BonusUnderTime, BonusFullHealth}

const (
	// MaxRounds is the hard cap on rounds per session.
	MaxRounds = 3
	// BonusRound is the first round that requires the bonus objective.
	BonusRound = 3
	// BonusTimeLimit is measured from session start, not per round.
	BonusTimeLimit = 300 * time.Second
	// MaxHealth is a ninja's starting and full health.
	MaxHealth = 100
)

type EnemyKind string

const (
	EnemySly   EnemyKind = "Sly"
	EnemyScrap EnemyKind = "Scrap"
	EnemyTank  EnemyKind = "Tank"
)

var EnemyKinds = []EnemyKind{EnemySly, EnemyScrap, EnemyTank}

// EnemyRange is an inclusive bound on the size of an enemy batch.
type EnemyRange struct {
	Min int
	Max int
}

// EnemyTable maps a round number to its batch size. Round 4 can never start
// under MaxRounds; it stays so the table matches the content data.
var EnemyTable = map[int]EnemyRange{
	1: {Min: 1, Max: 3},
	2: {Min: 1, Max: 3},
	3: {Min: 1, Max: 3},
	4: {Min: 4, Max: 4},
}

func EnemiesFor(round int) (EnemyRange, error) {
	r, ok := EnemyTable[round]
	if !ok {
		return EnemyRange{}, fmt.Errorf("no enemy table for round %d", round)
	}
	return r, nil
}

// ShouldContinue decides whether round number `round` may start. The bonus
// check is only consulted once the round requires it.
func ShouldContinue(round int, bonusHeld func() bool) bool {
	if round < 1 || round > MaxRounds {
		return false
	}
	if round < BonusRound {
		return true
	}
	return bonusHeld()
}
