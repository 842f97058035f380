// Package timer implements the inactivity auto-logout state machine and its
// warning countdown display.
package timer

import (
	"sync"
	"time"

	"github.com/manav03panchal/tidytodo/internal/logging"
	"github.com/manav03panchal/tidytodo/internal/validate"
)

// State is the inactivity timer state.
type State int

const (
	// Idle means no session is active and nothing is scheduled.
	Idle State = iota
	// Running means a warning is scheduled (timeout - 1) minutes out.
	Running
	// Warning means the final countdown is ticking.
	Warning
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Signal is a user interaction that counts as activity.
type Signal int

const (
	SignalPointerPress Signal = iota
	SignalPointerMove
	SignalKeyPress
	SignalScroll
	SignalTouchStart
	SignalClick
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalPointerPress:
		return "pointer_press"
	case SignalPointerMove:
		return "pointer_move"
	case SignalKeyPress:
		return "key_press"
	case SignalScroll:
		return "scroll"
	case SignalTouchStart:
		return "touch_start"
	case SignalClick:
		return "click"
	default:
		return "unknown"
	}
}

// LogoutReason tells the logout callback why the session ends.
type LogoutReason int

const (
	// ReasonTimeout means the warning expired unacknowledged.
	ReasonTimeout LogoutReason = iota
	// ReasonManual means the user chose to log out from the warning.
	ReasonManual
)

// String returns the reason name.
func (r LogoutReason) String() string {
	if r == ReasonManual {
		return "manual"
	}
	return "timeout"
}

// Snapshot is a consistent view of the timer's observable fields.
type Snapshot struct {
	State            State     `json:"state"`
	SecondsRemaining int       `json:"seconds_remaining"`
	TimeoutMinutes   int       `json:"timeout_minutes"`
	WarningAt        time.Time `json:"warning_at,omitzero"`
}

// Config configures an Inactivity timer.
type Config struct {
	TimeoutMinutes  int
	WarningSeconds  int
	AllowedTimeouts []int
	Clock           Clock
	// OnLogout destroys the session. It is called without the timer's lock
	// held, after the timer is already Idle.
	OnLogout func(LogoutReason)
}

// Inactivity is the auto-logout state machine. All transitions are
// serialized by one mutex; every scheduled callback carries the generation
// it was created in and does nothing once the generation has moved on, so a
// cancelled warning or tick can never act.
type Inactivity struct {
	mu sync.Mutex

	clock          Clock
	allowed        []int
	timeoutMinutes int
	warningSeconds int
	onLogout       func(LogoutReason)

	state     State
	remaining int
	warningAt time.Time
	gen       uint64
	deferred  Stopper
	tick      Stopper

	observers map[int]func(Snapshot)
	nextObs   int
}

// NewInactivity creates an Idle timer.
func NewInactivity(cfg Config) *Inactivity {
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	if cfg.WarningSeconds <= 0 {
		cfg.WarningSeconds = 60
	}
	if len(cfg.AllowedTimeouts) == 0 {
		cfg.AllowedTimeouts = []int{5, 10, 15, 30, 60}
	}
	if cfg.TimeoutMinutes <= 0 {
		cfg.TimeoutMinutes = 10
	}

	return &Inactivity{
		clock:          cfg.Clock,
		allowed:        cfg.AllowedTimeouts,
		timeoutMinutes: cfg.TimeoutMinutes,
		warningSeconds: cfg.WarningSeconds,
		onLogout:       cfg.OnLogout,
		observers:      make(map[int]func(Snapshot)),
	}
}

// SetLogoutFunc replaces the logout callback.
func (t *Inactivity) SetLogoutFunc(fn func(LogoutReason)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onLogout = fn
}

// OnChange registers fn to receive a snapshot after every transition and
// countdown tick. The returned function unregisters it.
func (t *Inactivity) OnChange(fn func(Snapshot)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.observers, id)
	}
}

// Start enters Running when a session becomes active. Calling Start on an
// active timer restarts the schedule.
func (t *Inactivity) Start() {
	t.mu.Lock()
	t.scheduleWarningLocked()
	t.unlockAndNotify()
}

// Activity handles an interaction signal. Only a Running timer reacts;
// activity during Warning does not cancel the pending logout.
func (t *Inactivity) Activity(sig Signal) {
	t.mu.Lock()
	if t.state != Running {
		t.mu.Unlock()
		return
	}
	t.scheduleWarningLocked()
	logging.DebugLog("activity reset", "signal", sig.String())
	t.unlockAndNotify()
}

// ResetTimer reschedules the warning from now. In Warning it behaves like
// StayLoggedIn. It does nothing when Idle.
func (t *Inactivity) ResetTimer() {
	t.mu.Lock()
	if t.state == Idle {
		t.mu.Unlock()
		return
	}
	t.scheduleWarningLocked()
	t.unlockAndNotify()
}

// StayLoggedIn cancels the countdown and returns to Running with a fresh
// full-length schedule.
func (t *Inactivity) StayLoggedIn() {
	t.ResetTimer()
}

// LogoutNow cancels everything, enters Idle and destroys the session.
func (t *Inactivity) LogoutNow() {
	t.mu.Lock()
	t.cancelLocked()
	t.state = Idle
	logout := t.onLogout
	t.unlockAndNotify()

	if logout != nil {
		logout(ReasonManual)
	}
}

// UpdateTimeoutDuration changes the timeout. An active timer restarts in
// Running with the new schedule; an Idle timer keeps the value for the next
// Start.
func (t *Inactivity) UpdateTimeoutDuration(minutes int) error {
	t.mu.Lock()
	if err := validate.TimeoutMinutes(minutes, t.allowed); err != nil {
		t.mu.Unlock()
		return err
	}

	t.timeoutMinutes = minutes
	if t.state == Idle {
		t.mu.Unlock()
		return nil
	}
	t.scheduleWarningLocked()
	logging.DebugLog("timeout updated", logging.KeyTimeout, minutes)
	t.unlockAndNotify()
	return nil
}

// Stop cancels all scheduled work and enters Idle without logging out.
func (t *Inactivity) Stop() {
	t.mu.Lock()
	if t.state == Idle && t.deferred == nil && t.tick == nil {
		t.mu.Unlock()
		return
	}
	t.cancelLocked()
	t.state = Idle
	t.unlockAndNotify()
}

// State returns the current state.
func (t *Inactivity) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SecondsRemaining returns the countdown value. It is zero outside Warning.
func (t *Inactivity) SecondsRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// TimeoutMinutes returns the configured timeout.
func (t *Inactivity) TimeoutMinutes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeoutMinutes
}

// Snapshot returns all observable fields at once.
func (t *Inactivity) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Inactivity) snapshotLocked() Snapshot {
	s := Snapshot{
		State:          t.state,
		TimeoutMinutes: t.timeoutMinutes,
	}
	switch t.state {
	case Running:
		s.WarningAt = t.warningAt
	case Warning:
		s.SecondsRemaining = t.remaining
	}
	return s
}

// cancelLocked stops the deferred action and the tick and invalidates any
// callback already in flight.
func (t *Inactivity) cancelLocked() {
	t.gen++
	if t.deferred != nil {
		t.deferred.Stop()
		t.deferred = nil
	}
	if t.tick != nil {
		t.tick.Stop()
		t.tick = nil
	}
	t.remaining = 0
	t.warningAt = time.Time{}
}

func (t *Inactivity) scheduleWarningLocked() {
	t.cancelLocked()
	t.state = Running

	delay := time.Duration(t.timeoutMinutes-1) * time.Minute
	gen := t.gen
	t.warningAt = t.clock.Now().Add(delay)
	t.deferred = t.clock.AfterFunc(delay, func() { t.enterWarning(gen) })
}

func (t *Inactivity) enterWarning(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != Running {
		t.mu.Unlock()
		return
	}
	t.deferred = nil
	t.warningAt = time.Time{}
	t.state = Warning
	t.remaining = t.warningSeconds
	t.tick = t.clock.AfterFunc(time.Second, func() { t.onTick(gen) })
	logging.Info("inactivity warning", logging.KeyRemaining, t.remaining)
	t.unlockAndNotify()
}

func (t *Inactivity) onTick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != Warning {
		t.mu.Unlock()
		return
	}

	if t.remaining > 1 {
		t.remaining--
		t.tick = t.clock.AfterFunc(time.Second, func() { t.onTick(gen) })
		t.unlockAndNotify()
		return
	}

	t.tick = nil
	t.cancelLocked()
	t.state = Idle
	logout := t.onLogout
	logging.Info("inactivity timeout, logging out")
	t.unlockAndNotify()

	if logout != nil {
		logout(ReasonTimeout)
	}
}

// unlockAndNotify releases the lock and delivers the snapshot taken while
// it was held.
func (t *Inactivity) unlockAndNotify() {
	snap := t.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(t.observers))
	for _, fn := range t.observers {
		observers = append(observers, fn)
	}
	t.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}
