package models

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageLanding  Stage = "landing"
	StageInput    Stage = "input"
	StageDebating Stage = "debating"
	StageResult   Stage = "result"
)

// Typing tracks the character reveal of the most recent message.
type Typing struct {
	Index int
	Shown int // runes visible so far
	Total int
}

func (t *Typing) Done() bool {
	return t == nil || t.Shown >= t.Total
}

// Session is the whole state of one workshop. Playback fields (Revealed, Active,
// Finished, Typing) are written only by the sequencer, Selected only by the role
// filter. Everything is read and written under Mu.
type Session struct {
	ID               uuid.UUID
	Stage            Stage
	Prompt           string
	Image            *InlineImage
	Constraints      Constraints
	Result           *DesignResult
	Revealed         Transcript
	Active           *Role
	Selected         *Role
	Finished         bool
	Typing           *Typing
	Notice           string
	SelectedSolution int
	Viewers          map[uuid.UUID]*Viewer

	// LastSeen is when a request or viewer last touched the session.
	LastSeen time.Time

	// Epoch identifies the current run. Writes carrying an older epoch are stale.
	Epoch  uint64
	cancel context.CancelFunc
	Mu     sync.Mutex
}

func NewSession() *Session {
	return &Session{
		ID:          uuid.New(),
		Stage:       StageLanding,
		Constraints: DefaultConstraints(),
		Viewers:     make(map[uuid.UUID]*Viewer),
		LastSeen:    time.Now(),
	}
}

// Reset starts a new run: it cancels the previous run's timers, clears
// everything a run produces, and returns the new epoch together with a context
// that is cancelled by the next Reset. Callers hold Mu.
func (s *Session) Reset(parent context.Context) (uint64, context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	s.Epoch++
	s.Result = nil
	s.Revealed = nil
	s.Active = nil
	s.Selected = nil
	s.Finished = false
	s.Typing = nil
	s.Notice = ""
	s.SelectedSolution = 0

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return s.Epoch, ctx
}

// Stop cancels the current run without starting a new one. Writes still in
// flight from that run are rejected by the epoch check. Callers hold Mu.
func (s *Session) Stop() {
	s.Epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// CurrentSolution returns the solution picked on the result page, if any.
// Callers hold Mu.
func (s *Session) CurrentSolution() (DesignSolution, bool) {
	if s.Result == nil || s.SelectedSolution < 0 || s.SelectedSolution >= len(s.Result.Solutions) {
		return DesignSolution{}, false
	}
	return s.Result.Solutions[s.SelectedSolution], true
}

type SessionManager struct {
	Sessions map[uuid.UUID]*Session
	Mu       sync.Mutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{Sessions: make(map[uuid.UUID]*Session)}
}
