package session

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/grid"
)

var backgrounds = map[int][]Entity{
	1: {
		{ID: "env_mountaintop_bg", Name: "env_mountaintop_bg", Sprite: "env_mountaintop_bg", X: 4.5, Y: -1.1},
	},
	2: {
		{ID: "forest_bg", Name: "forest_bg", Sprite: "forest_bg", X: 4.5, Y: -1.1},
		{ID: "forest_fg", Name: "forest_fg", Sprite: "forest_fg", X: 4.5, Y: 6.1},
	},
	3: {
		{ID: "cragvalley_bg", Name: "cragvalley_bg", Sprite: "cragvalley_bg", X: 4.5, Y: -1.1},
		{ID: "cragvalley_fg", Name: "cragvalley_fg", Sprite: "cragvalley_fg", X: 4.5, Y: 6},
	},
}

func idleClip(name string) string { return strings.ToLower(name) + "_idle_anim" }

// spawnEnemies places a fresh batch for round on free cells.
func (s *Session) spawnEnemies(round int) error {
	bounds, err := engine.EnemiesFor(round)
	if err != nil {
		return err
	}

	s.mu.Lock()
	count := bounds.Min + s.rng.IntN(bounds.Max-bounds.Min+1)
	batch := make([]Enemy, 0, count)
	for i := 0; i < count; i++ {
		cell, err := s.grid.SpawnLocation()
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("spawn enemy %d of %d: %w", i+1, count, err)
		}
		s.enemySeq++
		e := Enemy{
			ID:   fmt.Sprintf("enemy-%d", s.enemySeq),
			Kind: engine.EnemyKinds[s.rng.IntN(len(engine.EnemyKinds))],
			Cell: cell,
		}
		if err := s.grid.Put(cell, e.ID); err != nil {
			s.mu.Unlock()
			return err
		}
		s.enemies[e.ID] = e
		batch = append(batch, e)
	}
	s.mu.Unlock()

	for _, e := range batch {
		ent := e.entity()
		s.pres.PlaceObject(ent)
		s.pres.Animate(ent, ClipEnemySpawn, PlayOnce)
		s.pres.PlaySound(Sound{Name: SoundEnemySpawn})
		s.pres.Animate(ent, idleClip(string(e.Kind)), PlayLoop)
	}
	s.log.Debug("enemies spawned", zap.Int("round", round), zap.Int("count", count))
	return nil
}

// RemoveEnemy takes an eliminated enemy off the board.
func (s *Session) RemoveEnemy(id string) bool {
	s.mu.Lock()
	e, ok := s.enemies[id]
	if ok {
		delete(s.enemies, id)
		s.grid.Clear(e.Cell)
	}
	s.mu.Unlock()

	if ok {
		s.pres.RemoveObject(e.entity())
	}
	return ok
}

// EnemyAt reports the enemy standing on c, if any.
func (s *Session) EnemyAt(c grid.Cell) (Enemy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enemies {
		if e.Cell == c {
			return e, true
		}
	}
	return Enemy{}, false
}

func (s *Session) clearEnemies() {
	s.mu.Lock()
	gone := s.enemyListLocked()
	for _, e := range gone {
		s.grid.Clear(e.Cell)
	}
	clear(s.enemies)
	s.mu.Unlock()

	for _, e := range gone {
		s.pres.RemoveObject(e.entity())
	}
}

func (s *Session) Enemies() []Enemy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enemyListLocked()
}

func (s *Session) enemyListLocked() []Enemy {
	out := make([]Enemy, 0, len(s.enemies))
	for _, e := range s.enemies {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
