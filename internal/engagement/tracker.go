package engagement

import "time"

const (
	// InactivityThreshold is how long without activity counts as inactive.
	// The host polls IdleFor against this at a fixed interval.
	InactivityThreshold = 5 * time.Minute

	scoreFloor = 0.1
	scoreCap   = 1.0

	completionBoost = 0.10
	creationBoost   = 0.05
	inactivityDecay = 0.02
)

// State is the session-scoped engagement record. It is never persisted.
type State struct {
	SessionStart         time.Time
	LastActivityAt       time.Time
	LastCompletionAt     time.Time
	CompletedInSession   int
	MotivationShown      int
	AvgCompletionLatency time.Duration
	Score                float64
}

// Tracker owns the engagement state machine. All transitions are explicit
// events; the score only decays on an inactivity signal.
type Tracker struct {
	state State
}

func NewTracker(now time.Time) *Tracker {
	return &Tracker{state: State{
		SessionStart:   now,
		LastActivityAt: now,
		Score:          0.5,
	}}
}

// State returns a copy of the current engagement state.
func (t *Tracker) State() State { return t.state }

// RecordTaskCompleted folds a completion into the session: completion
// count, last-completion time, the running latency average, and a score
// boost capped at 1.0.
func (t *Tracker) RecordTaskCompleted(now, createdAt time.Time) {
	t.state.CompletedInSession++
	t.state.LastCompletionAt = now
	t.state.LastActivityAt = now

	latency := now.Sub(createdAt)
	if latency < 0 {
		latency = 0
	}
	if t.state.AvgCompletionLatency == 0 {
		t.state.AvgCompletionLatency = latency
	} else {
		t.state.AvgCompletionLatency = (t.state.AvgCompletionLatency + latency) / 2
	}

	t.state.Score = capScore(t.state.Score + completionBoost)
}

func (t *Tracker) RecordTaskCreated(now time.Time) {
	t.state.LastActivityAt = now
	t.state.Score = capScore(t.state.Score + creationBoost)
}

// RecordInactivity decays the score toward its floor. The duration is
// informational; a single signal decays one step.
func (t *Tracker) RecordInactivity(now time.Time, inactiveFor time.Duration) {
	score := t.state.Score - inactivityDecay
	if score < scoreFloor {
		score = scoreFloor
	}
	t.state.Score = score
}

// RecordActivity stamps raw user activity (keys, pointer, visibility).
func (t *Tracker) RecordActivity(now time.Time) {
	t.state.LastActivityAt = now
}

// RecordMotivationShown counts an emitted encouragement message.
func (t *Tracker) RecordMotivationShown(now time.Time) {
	t.state.MotivationShown++
}

// IdleFor reports how long the user has been inactive.
func (t *Tracker) IdleFor(now time.Time) time.Duration {
	if t.state.LastActivityAt.IsZero() {
		return 0
	}
	idle := now.Sub(t.state.LastActivityAt)
	if idle < 0 {
		return 0
	}
	return idle
}

// ResetActivityReference re-stamps the activity clock, used when the host
// becomes visible again after backgrounding.
func (t *Tracker) ResetActivityReference(now time.Time) {
	t.state.LastActivityAt = now
}

func capScore(score float64) float64 {
	if score > scoreCap {
		return scoreCap
	}
	return score
}
