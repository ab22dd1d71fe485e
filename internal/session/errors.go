package session

import (
	"errors"
	"fmt"
	"time"
)

var ErrIncompleteRoster = errors.New("roster is missing a role")
var ErrReadyTimeout = errors.New("participants did not finish loading")
var ErrInputClosed = errors.New("input is not accepted right now")
var ErrSessionEnded = errors.New("session has ended")
var ErrUnknownParticipant = errors.New("participant not in session")

// FatalError aborts a session. It carries enough context to diagnose the
// failure from a single log line.
type FatalError struct {
	SessionID    string
	Round        int
	Elapsed      time.Duration
	Participants []string
	Err          error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("session %s aborted in round %d after %s: %v", e.SessionID, e.Round, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
