package engine

// Participant is what the matchmaker and the round engine need from a squad
// member, whether it is a connected player or an AI stand-in.
type Participant interface {
	ID() string
	Name() string
	Role() Role
	BattleMode() BattleMode
	Rank() int
	Bot() bool

	Queued() bool
	SetQueued(bool)

	// Claim binds the participant to a session. It reports false when the
	// participant already belongs to one.
	Claim(sessionID string) bool
	SessionID() string
	// Release returns the participant to the neutral state: not queued and
	// not in a session.
	Release()

	// Ready is closed once the participant has finished loading the session.
	Ready() <-chan struct{}
	KnockedOut() bool
	MarkKnockedOut()
}

// Roster holds one participant per role, indexed by Role.
type Roster [RoleCount]Participant

func (r *Roster) Set(p Participant) error {
	if !p.Role().Valid() {
		return ErrUnknownRole
	}
	if r[p.Role()] != nil {
		return ErrRoleTaken
	}
	r[p.Role()] = p
	return nil
}

func (r Roster) Get(role Role) Participant {
	if !role.Valid() {
		return nil
	}
	return r[role]
}

func (r Roster) Complete() bool {
	for _, p := range r {
		if p == nil {
			return false
		}
	}
	return true
}

// Missing returns the unfilled roles in canonical order.
func (r Roster) Missing() []Role {
	var out []Role
	for _, role := range Roles {
		if r[role] == nil {
			out = append(out, role)
		}
	}
	return out
}

// Members returns the filled seats in canonical role order.
func (r Roster) Members() []Participant {
	out := make([]Participant, 0, RoleCount)
	for _, p := range r {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (r Roster) Humans() []Participant {
	out := make([]Participant, 0, RoleCount)
	for _, p := range r {
		if p != nil && !p.Bot() {
			out = append(out, p)
		}
	}
	return out
}

func (r Roster) Contains(id string) bool {
	for _, p := range r {
		if p != nil && p.ID() == id {
			return true
		}
	}
	return false
}
