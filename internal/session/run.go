package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/ninja-squad-backend/internal/engine"
	"github.com/DoyleJ11/ninja-squad-backend/internal/timer"
)

// Run plays the session to its end. It returns nil after a normal finish,
// ctx's error when cancelled, and a *FatalError when the session had to be
// aborted. Participants are released in every case.
func (s *Session) Run(ctx context.Context) error {
	err := s.safeRun(ctx)
	return s.finish(ctx, err)
}

func (s *Session) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in round loop: %v", r)
		}
	}()

	if err := s.setup(ctx); err != nil {
		return err
	}

	for {
		s.mu.Lock()
		round := s.round + 1
		s.phase = engine.PhaseTransition
		s.mu.Unlock()

		if !engine.ShouldContinue(round, s.BonusHeld) {
			return nil
		}

		s.mu.Lock()
		s.round = round
		s.mu.Unlock()
		if err := s.prepareRound(ctx, round); err != nil {
			return err
		}
		if err := s.playRound(ctx, round); err != nil {
			return err
		}
	}
}

func (s *Session) setup(ctx context.Context) error {
	found := MatchFound{}
	for _, p := range s.roster.Members() {
		found[p.Role().Mask()] = p.Name()
	}
	s.pres.ShowUI(WindowPlayerSelect, found)

	// Give the "prepare to battle" screen time to play out.
	if err := sleep(ctx, s.cfg.PrepareDelay); err != nil {
		return err
	}

	s.pres.CloseUI(WindowPlayerSelect)
	s.net.Broadcast(TagScene, s.mapID)
	s.net.RegisterInput(UseInput)
	s.net.Broadcast(TagTileSize, 100)

	if err := s.waitReady(ctx); err != nil {
		return err
	}

	s.pres.PlaySound(Sound{Name: SoundAmbient, Looping: true})
	for _, bg := range backgrounds[s.mapID] {
		s.pres.PlaceObject(bg)
	}
	for _, n := range s.ninjas {
		e := n.entity()
		s.pres.PlaceObject(e)
		s.pres.Animate(e, idleClip(ninjaNames[n.role]+"ninja"), PlayLoop)
	}
	s.pres.ShowUI(WindowExit, nil)
	return nil
}

// waitReady suspends until every participant has loaded in.
func (s *Session) waitReady(ctx context.Context) error {
	wctx := ctx
	if s.cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, s.cfg.ReadyTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(wctx)
	for _, p := range s.roster.Members() {
		ready := p.Ready()
		g.Go(func() error {
			select {
			case <-ready:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w within %s", ErrReadyTimeout, s.cfg.ReadyTimeout)
	}
	return err
}

func (s *Session) prepareRound(ctx context.Context, round int) error {
	if round > 1 {
		s.clearEnemies()
		s.mu.Lock()
		s.grid.Widen()
		s.mu.Unlock()
	}

	remaining := s.startedAt.Add(engine.BonusTimeLimit).Sub(s.now())
	s.pres.ShowUI(WindowRoundTitle, RoundTitle{
		Bonus:       s.bonus,
		RemainingMs: max(remaining, 0).Milliseconds(),
		Round:       round,
	})
	if err := sleep(ctx, s.cfg.TitleDelay); err != nil {
		return err
	}

	if err := s.spawnEnemies(round); err != nil {
		return err
	}
	if err := sleep(ctx, s.cfg.SpawnDelay); err != nil {
		return err
	}

	if round == 1 {
		for _, p := range s.roster.Members() {
			s.pres.ShowUI(WindowCombat, CombatUI{Role: p.Role()})
		}
	}
	return nil
}

// playRound opens input for one countdown. Winning early does not cut the
// round short.
func (s *Session) playRound(ctx context.Context, round int) error {
	t := timer.New(s.cfg.RoundDuration)

	s.mu.Lock()
	s.phase = engine.PhaseRound
	s.inputOpen = true
	s.timer = t
	s.mu.Unlock()
	s.net.Broadcast(TagInputEnabled, true)
	s.log.Debug("round started", zap.Int("round", round), zap.Duration("duration", t.Duration()))

	err := t.Run(ctx)

	s.mu.Lock()
	s.inputOpen = false
	if err == nil {
		s.played++
	}
	s.mu.Unlock()
	s.net.Broadcast(TagInputEnabled, false)
	return err
}

func (s *Session) finish(ctx context.Context, err error) error {
	s.clearEnemies()

	s.mu.Lock()
	s.phase = engine.PhaseEnded
	s.inputOpen = false
	round := s.round
	s.mu.Unlock()

	bonusMet := s.BonusHeld()

	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()

	outcome := s.outcome(bonusMet)
	elapsed := outcome.EndedAt.Sub(s.startedAt)

	switch {
	case err == nil:
		s.net.Broadcast(TagEnded, outcome.Rounds, bonusMet)
		s.log.Info("session ended",
			zap.Int("rounds", outcome.Rounds),
			zap.Bool("bonus_met", bonusMet),
			zap.Duration("elapsed", elapsed))

	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		outcome.Aborted = true
		outcome.Reason = err.Error()
		s.log.Info("session cancelled", zap.Int("round", round), zap.Duration("elapsed", elapsed))

	default:
		fatal := &FatalError{
			SessionID:    s.id,
			Round:        round,
			Elapsed:      elapsed,
			Participants: s.participantIDs(),
			Err:          err,
		}
		err = fatal
		outcome.Aborted = true
		outcome.Reason = fatal.Err.Error()
		s.net.Broadcast(TagAborted, fatal.Err.Error())
		s.log.Error("session aborted",
			zap.Strings("participants", fatal.Participants),
			zap.Int("round", fatal.Round),
			zap.Duration("elapsed", fatal.Elapsed),
			zap.Error(fatal.Err))
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := s.sink.Record(rctx, outcome); rerr != nil {
		s.log.Warn("recording outcome failed", zap.Error(rerr))
	}

	for _, p := range s.roster.Members() {
		p.Release()
	}
	return err
}

func (s *Session) outcome(bonusMet bool) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := Outcome{
		SessionID: s.id,
		Mode:      s.mode,
		MapID:     s.mapID,
		Bonus:     s.bonus,
		BonusMet:  bonusMet,
		Rounds:    s.played,
		StartedAt: s.startedAt,
		EndedAt:   s.now(),
	}
	for _, role := range engine.Roles {
		p := s.roster[role]
		o.Participants = append(o.Participants, ParticipantResult{
			ID:         p.ID(),
			Name:       p.Name(),
			Role:       role,
			Rank:       p.Rank(),
			Bot:        p.Bot(),
			KnockedOut: p.KnockedOut(),
			Health:     s.ninjas[role].hp,
		})
	}
	return o
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
