// Package playback drives step-by-step playback of a workflow: bounded
// navigation through the step sequence, a per-step countdown timer, and the
// page-alignment state tying the current step to the source document.
//
// Session is the pure state machine. It performs no I/O, spawns no
// goroutines, and is not safe for concurrent use. Runner wraps a Session
// with a wall-clock ticker and serializes access for live playback.
package playback

import (
	"github.com/stepguide/backend/pkg/models"
)

// TimerPhase is the countdown sub-state of the current step.
type TimerPhase string

const (
	// TimerIdle means the current step has no countdown.
	TimerIdle TimerPhase = "idle"
	// TimerRunning means the countdown is active.
	TimerRunning TimerPhase = "running"
	// TimerExpired means the countdown reached zero and stopped. It never
	// restarts without leaving and re-entering the step.
	TimerExpired TimerPhase = "expired"
)

// State is a value snapshot of a session, safe to hand to observers.
type State struct {
	StepIndex  int
	Step       models.Step
	Timer      TimerPhase
	Remaining  int
	Aligned    bool
	ActivePage int // 0 until a page has ever been shown
}

// Session is the playback state machine over an immutable snapshot of a
// workflow's steps. The step index stays within bounds, the countdown never
// goes negative, and the active page moves only on alignment enable or an
// explicit step selection, never on plain navigation.
type Session struct {
	steps      []models.Step
	idx        int
	timer      TimerPhase
	remaining  int
	aligned    bool
	activePage int
}

// NewSession copies the steps and enters the first one. Canonical workflows
// always carry at least one step; an empty slice yields an inert session.
func NewSession(steps []models.Step) *Session {
	s := &Session{
		steps: append([]models.Step(nil), steps...),
		timer: TimerIdle,
	}
	if len(s.steps) > 0 {
		s.enter(0)
	}
	return s
}

// Len returns the number of steps loaded into the session.
func (s *Session) Len() int { return len(s.steps) }

// CanNext reports whether a following step exists.
func (s *Session) CanNext() bool { return s.idx < len(s.steps)-1 }

// CanPrev reports whether a preceding step exists.
func (s *Session) CanPrev() bool { return s.idx > 0 }

// Next advances to the following step and reports whether the session
// moved. At the last step navigation is disabled and nothing changes.
func (s *Session) Next() bool {
	if !s.CanNext() {
		return false
	}
	s.enter(s.idx + 1)
	return true
}

// Prev moves back to the preceding step and reports whether the session
// moved. Re-entering a step re-arms its full countdown.
func (s *Session) Prev() bool {
	if !s.CanPrev() {
		return false
	}
	s.enter(s.idx - 1)
	return true
}

// enter moves to step i and arms the countdown from that step's duration.
func (s *Session) enter(i int) {
	s.idx = i
	if d := s.steps[i].DurationSec; d > 0 {
		s.timer = TimerRunning
		s.remaining = d
	} else {
		s.timer = TimerIdle
		s.remaining = 0
	}
}

// Tick applies one second of countdown. It does nothing unless the timer is
// running; on the last remaining second the timer expires and stays expired.
func (s *Session) Tick() {
	if s.timer != TimerRunning {
		return
	}
	if s.remaining > 1 {
		s.remaining--
		return
	}
	s.remaining = 0
	s.timer = TimerExpired
}

// ToggleAlign flips page alignment. On enable the current step's page
// becomes active; when the current step has no page and no page was ever
// active, the first step that has one seeds the viewer. Disabling keeps the
// last active page so re-enabling does not blank the viewer.
func (s *Session) ToggleAlign() {
	s.aligned = !s.aligned
	if !s.aligned {
		return
	}
	if cur, ok := s.current(); ok && cur.Page >= 1 {
		s.activePage = cur.Page
		return
	}
	if s.activePage != 0 {
		return
	}
	for _, st := range s.steps {
		if st.Page >= 1 {
			s.activePage = st.Page
			return
		}
	}
}

// SelectStep points the viewer at step i's page. Selection only applies
// while aligned, and selecting a step without a page leaves the viewer where
// it is. Selection never moves the current step.
func (s *Session) SelectStep(i int) {
	if !s.aligned || i < 0 || i >= len(s.steps) {
		return
	}
	if p := s.steps[i].Page; p >= 1 {
		s.activePage = p
	}
}

// Snapshot returns a value copy of the current state.
func (s *Session) Snapshot() State {
	cur, _ := s.current()
	return State{
		StepIndex:  s.idx,
		Step:       cur,
		Timer:      s.timer,
		Remaining:  s.remaining,
		Aligned:    s.aligned,
		ActivePage: s.activePage,
	}
}

func (s *Session) current() (models.Step, bool) {
	if s.idx < 0 || s.idx >= len(s.steps) {
		return models.Step{}, false
	}
	return s.steps[s.idx], true
}
