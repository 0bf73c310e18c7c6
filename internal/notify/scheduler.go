package notify

import (
	"time"

	"github.com/sandeepkv93/taskpulse/internal/engagement"
	"github.com/sandeepkv93/taskpulse/internal/model"
	"github.com/sandeepkv93/taskpulse/internal/storage"
)

// Config holds the scheduler's timing knobs.
type Config struct {
	// EncouragementCooldown is the minimum gap between two motivation
	// messages, whatever the sampled probability says.
	EncouragementCooldown time.Duration
	// PeriodicTick is the cadence of host-driven periodic evaluations.
	PeriodicTick time.Duration
	// SettledMin gates periodic evaluations: the user must have been quiet
	// at least this long.
	SettledMin time.Duration
	// MotivationDuration is how long a motivation message shows before the
	// auto-conversion to a status banner.
	MotivationDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		EncouragementCooldown: 30 * time.Second,
		PeriodicTick:          5 * time.Minute,
		SettledMin:            2 * time.Minute,
		MotivationDuration:    10 * time.Second,
	}
}

const (
	probFloor = 0.1
	probCeil  = 0.9

	quotePoolChance = 0.10
	heavyBacklogLen = 8
)

// Scheduler decides whether and what to surface. It owns no task or
// engagement data, only its cooldown timestamps. Wall-clock time and the
// random source are injected so every decision is reproducible.
type Scheduler struct {
	cfg   Config
	pools *Pools
	rng   Rand

	lastShownAt time.Time
}

func NewScheduler(cfg Config, pools *Pools, rng Rand) *Scheduler {
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}
	return &Scheduler{cfg: cfg, pools: pools, rng: rng}
}

func (s *Scheduler) Config() Config { return s.cfg }

// EvaluateAction runs the encouragement gate after a user action
// (task created or completed).
func (s *Scheduler) EvaluateAction(tasks []model.Task, es engagement.State, now time.Time) (Directive, bool) {
	return s.evaluate(tasks, es, now, false)
}

// EvaluatePeriodic runs the encouragement gate on the periodic tick. It
// additionally requires the user to have settled: no activity for at least
// SettledMin.
func (s *Scheduler) EvaluatePeriodic(tasks []model.Task, es engagement.State, now time.Time) (Directive, bool) {
	return s.evaluate(tasks, es, now, true)
}

func (s *Scheduler) evaluate(tasks []model.Task, es engagement.State, now time.Time, periodic bool) (Directive, bool) {
	// Probability is always computed so its clamp invariant holds on every
	// path; gates below only decide whether the draw counts.
	probability := s.Probability(tasks, es, now)

	if periodic && now.Sub(es.LastActivityAt) < s.cfg.SettledMin {
		return Directive{}, false
	}
	if !s.cooldownElapsed(now) {
		return Directive{}, false
	}
	if s.rng.Float64() >= probability {
		return Directive{}, false
	}

	message := s.pickMessage(tasks, now)
	s.lastShownAt = now
	return Directive{
		Message:  message,
		Category: CategoryMotivation,
		Urgency:  UrgencyNormal,
		Duration: s.cfg.MotivationDuration,
		Closable: true,
	}, true
}

func (s *Scheduler) cooldownElapsed(now time.Time) bool {
	if s.lastShownAt.IsZero() {
		return true
	}
	return now.Sub(s.lastShownAt) >= s.cfg.EncouragementCooldown
}

// Probability computes the clamped encouragement probability for the given
// snapshot. Exposed separately so the clamp invariant is directly testable.
func (s *Scheduler) Probability(tasks []model.Task, es engagement.State, now time.Time) float64 {
	pending := len(storage.Pending(tasks))
	completedToday := completedOn(tasks, now)
	tod := TimeOfDayAt(now)

	var base float64
	switch {
	case pending == 0 && completedToday >= 1:
		base = 0.85
	case completedToday >= 3:
		base = 0.7
	case pending > heavyBacklogLen:
		base = 0.4
	case tod == Morning:
		base = 0.7
	default:
		base = 0.5
	}

	p := base
	p *= 0.5 + es.Score*0.5

	session := now.Sub(es.SessionStart)
	if session > 2*time.Hour {
		p *= 1.2
	} else if session < 30*time.Minute {
		p *= 0.8
	}

	if !es.LastCompletionAt.IsZero() && now.Sub(es.LastCompletionAt) > 30*time.Minute {
		p *= 1.3
	}

	if shownRatePerHour(es, now) > 3 {
		p *= 0.7
	}

	hour := now.Hour()
	switch {
	case (hour >= 9 && hour < 11) || (hour >= 14 && hour < 16):
		p *= 1.1
	case hour >= 23 || hour < 6:
		p *= 0.8
	}

	if p < probFloor {
		return probFloor
	}
	if p > probCeil {
		return probCeil
	}
	return p
}

func shownRatePerHour(es engagement.State, now time.Time) float64 {
	if es.MotivationShown == 0 {
		return 0
	}
	hours := now.Sub(es.SessionStart).Hours()
	if hours < 1 {
		hours = 1
	}
	return float64(es.MotivationShown) / hours
}

// pickMessage selects uniformly from the pool matching the task state and
// time of day; a small fixed chance widens the draw with generic quotes.
func (s *Scheduler) pickMessage(tasks []model.Task, now time.Time) string {
	pending := len(storage.Pending(tasks))

	var pool []string
	switch {
	case pending == 0 && len(tasks) > 0:
		pool = s.pools.AllDone
	case pending > heavyBacklogLen:
		pool = s.pools.HeavyBacklog
	default:
		pool = s.pools.forTimeOfDay(TimeOfDayAt(now))
	}

	if s.rng.Float64() < quotePoolChance {
		merged := make([]string, 0, len(pool)+len(s.pools.Quotes))
		merged = append(merged, pool...)
		merged = append(merged, s.pools.Quotes...)
		pool = merged
	}
	return pool[s.rng.Intn(len(pool))]
}

func completedOn(tasks []model.Task, now time.Time) int {
	y, m, d := now.Date()
	count := 0
	for _, task := range tasks {
		if task.CompletedAt == nil {
			continue
		}
		cy, cm, cd := task.CompletedAt.In(now.Location()).Date()
		if cy == y && cm == m && cd == d {
			count++
		}
	}
	return count
}
