package pulse

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrInvalidFireTime = errors.New("pulse: invalid fire time")

type Kind string

const (
	// KindEncouragement drives the periodic encouragement evaluation.
	KindEncouragement Kind = "encouragement"
	// KindPresenter drives the message display state machine.
	KindPresenter Kind = "presenter"
	// KindInactivity drives the idle-detection poll.
	KindInactivity Kind = "inactivity"
)

// Pulse is a due tick the host consumes and acts on.
type Pulse struct {
	Kind Kind
	At   time.Time
}

type queueItem struct {
	pulse Pulse
}

type pulseQueue []queueItem

func (pq pulseQueue) Len() int { return len(pq) }

func (pq pulseQueue) Less(i, j int) bool {
	return pq[i].pulse.At.Before(pq[j].pulse.At)
}

func (pq pulseQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *pulseQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *pulseQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine arms one pending pulse per kind and emits each when due. It is
// the host's single timer facility: scheduling a kind that is already
// pending replaces it, so auto-hide and periodic timers restart instead of
// stacking. Pause parks the engine while the view is backgrounded; Resume
// picks the queue back up.
type Engine struct {
	mu      sync.Mutex
	queue   pulseQueue
	out     chan Pulse
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	paused  bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(pulseQueue, 0),
		out:    make(chan Pulse, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Pulse {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule arms a pulse of the given kind. An already-pending pulse of the
// same kind is replaced.
func (e *Engine) Schedule(kind Kind, at time.Time) error {
	if at.IsZero() {
		return ErrInvalidFireTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return errors.New("pulse: engine stopped")
	}

	e.removeKindLocked(kind)
	heap.Push(&e.queue, queueItem{pulse: Pulse{Kind: kind, At: at}})
	e.signalWakeup()
	return nil
}

// Cancel drops any pending pulse of the given kind.
func (e *Engine) Cancel(kind Kind) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeKindLocked(kind)
	e.signalWakeup()
}

// Pause parks the engine: pending pulses stay queued but nothing fires.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
	e.signalWakeup()
}

// Resume lets queued pulses fire again. Pulses that came due while paused
// fire immediately.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
	e.signalWakeup()
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) removeKindLocked(kind Kind) {
	for i := 0; i < len(e.queue); i++ {
		if e.queue[i].pulse.Kind == kind {
			heap.Remove(&e.queue, i)
			return
		}
	}
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.At)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now().UTC())
			for _, p := range due {
				select {
				case e.out <- p:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

// peek returns the next due pulse; a paused engine reports no work.
func (e *Engine) peek() (Pulse, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused || len(e.queue) == 0 {
		return Pulse{}, false
	}
	return e.queue[0].pulse, true
}

func (e *Engine) popDue(now time.Time) []Pulse {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Pulse, 0)
	if e.paused {
		return out
	}
	for len(e.queue) > 0 {
		next := e.queue[0].pulse
		if next.At.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		out = append(out, item.pulse)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
