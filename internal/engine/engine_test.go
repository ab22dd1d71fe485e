package engine

import (
	"errors"
	"testing"
)

type stubParticipant struct {
	id   string
	role Role
	bot  bool
}

func (s stubParticipant) ID() string { return s.id }
func (s stubParticipant) Name() string { return s.id }
func (s stubParticipant) Role() Role { return s.role }
func (s stubParticipant) BattleMode() BattleMode { return ModeStandard }
func (s stubParticipant) Rank() int { return 0 }
func (s stubParticipant) Bot() bool { return s.bot }
func (s stubParticipant) Queued() bool { return false }
func (s stubParticipant) SetQueued(bool) {}
func (s stubParticipant) Claim(string) bool { return true }
func (s stubParticipant) SessionID() string { return "" }
func (s stubParticipant) Release() {}
func (s stubParticipant) Ready() <-chan struct{} { return nil }
func (s stubParticipant) KnockedOut() bool { return false }
func (s stubParticipant) MarkKnockedOut() {}

func TestShouldContinue(t *testing.T) {
	cases := []struct {
		name  string
		round int
		bonus bool
		want  bool
	}{
		{name: "round 1 always starts", round: 1, bonus: false, want: true},
		{name: "round 2 ignores bonus", round: 2, bonus: false, want: true},
		{name: "round 3 with bonus", round: 3, bonus: true, want: true},
		{name: "round 3 without bonus", round: 3, bonus: false, want: false},
		{name: "round 4 never starts", round: 4, bonus: true, want: false},
		{name: "round 0 is not a round", round: 0, bonus: true, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldContinue(tc.round, func() bool { return tc.bonus })
			if got != tc.want {
				t.Fatalf("ShouldContinue(%d, %v): got %v, want %v", tc.round, tc.bonus, got, tc.want)
			}
		})
	}
}

func TestShouldContinue_BonusIsLazy(t *testing.T) {
	calls := 0
	bonus := func() bool { calls++; return false }

	for round := 1; round <= 2; round++ {
		ShouldContinue(round, bonus)
	}
	if calls != 0 {
		t.Fatalf("bonus evaluated %d times before round 3", calls)
	}

	ShouldContinue(3, bonus)
	if calls != 1 {
		t.Fatalf("want one bonus evaluation at round 3, got %d", calls)
	}
}

func TestEnemiesFor(t *testing.T) {
	for round := 1; round <= 3; round++ {
		r, err := EnemiesFor(round)
		if err != nil {
			t.Fatalf("round %d: unexpected err %v", round, err)
		}
		if r.Min != 1 || r.Max != 3 {
			t.Fatalf("round %d: got %+v, want 1..3", round, r)
		}
	}

	r, err := EnemiesFor(4)
	if err != nil || r.Min != 4 || r.Max != 4 {
		t.Fatalf("round 4: got %+v, %v", r, err)
	}

	if _, err := EnemiesFor(5); err == nil {
		t.Fatalf("expected error for round 5")
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		got, err := ParseRole(role.String())
		if err != nil || got != role {
			t.Fatalf("ParseRole(%q): got %v, %v", role.String(), got, err)
		}
	}

	_, err := ParseRole("earth")
	if err == nil || !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("want ErrUnknownRole, got %v", err)
	}
}

func TestRoleMask(t *testing.T) {
	if RoleFire.Mask() != 1 || RoleWater.Mask() != 2 || RoleSnow.Mask() != 4 {
		t.Fatalf("unexpected masks: fire=%d water=%d snow=%d", RoleFire.Mask(), RoleWater.Mask(), RoleSnow.Mask())
	}
}

func TestParseBattleMode(t *testing.T) {
	if m, err := ParseBattleMode(1); err != nil || m != ModeCoop {
		t.Fatalf("got %v, %v", m, err)
	}
	if _, err := ParseBattleMode(7); !errors.Is(err, ErrUnknownBattleMode) {
		t.Fatalf("want ErrUnknownBattleMode, got %v", err)
	}
}

func TestRoster(t *testing.T) {
	var r Roster
	if err := r.Set(stubParticipant{id: "w", role: RoleWater}); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if err := r.Set(stubParticipant{id: "f", role: RoleFire}); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if err := r.Set(stubParticipant{id: "f2", role: RoleFire}); !errors.Is(err, ErrRoleTaken) {
		t.Fatalf("want ErrRoleTaken, got %v", err)
	}

	if r.Complete() {
		t.Fatalf("roster with two seats reported complete")
	}
	missing := r.Missing()
	if len(missing) != 1 || missing[0] != RoleSnow {
		t.Fatalf("missing: got %v", missing)
	}

	_ = r.Set(stubParticipant{id: "bot", role: RoleSnow, bot: true})
	members := r.Members()
	if len(members) != 3 || members[0].ID() != "f" || members[1].ID() != "bot" || members[2].ID() != "w" {
		t.Fatalf("members not in canonical order: %v", members)
	}
	if len(r.Humans()) != 2 {
		t.Fatalf("want 2 humans, got %d", len(r.Humans()))
	}
	if !r.Contains("w") || r.Contains("nobody") {
		t.Fatalf("Contains mismatch")
	}
}
