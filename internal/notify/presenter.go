package notify

import (
	"time"

	"github.com/sandeepkv93/taskpulse/internal/model"
)

type DisplayState string

const (
	StateHidden            DisplayState = "hidden"
	StateShowingMotivation DisplayState = "showing_motivation"
	StateShowingBanner     DisplayState = "showing_banner"
)

// Presenter is the display state machine for the one message slot. A
// motivation message that is never dismissed converts into a status banner
// when it expires; a banner only ever hides. The host drives it with
// Tick(now); there is no internal timer, so re-showing replaces the expiry
// deadline instead of stacking a second one.
type Presenter struct {
	state    DisplayState
	current  Directive
	deadline time.Time
}

func NewPresenter() *Presenter {
	return &Presenter{state: StateHidden}
}

func (p *Presenter) State() DisplayState { return p.state }

// Current returns the directive on display, if any.
func (p *Presenter) Current() (Directive, bool) {
	if p.state == StateHidden {
		return Directive{}, false
	}
	return p.current, true
}

// Show puts a directive on display, replacing whatever was showing and
// re-arming the expiry deadline.
func (p *Presenter) Show(d Directive, now time.Time) {
	p.current = d
	if d.Category == CategoryMotivation {
		p.state = StateShowingMotivation
	} else {
		p.state = StateShowingBanner
	}
	if d.Duration > 0 {
		p.deadline = now.Add(d.Duration)
	} else {
		p.deadline = time.Time{}
	}
}

// Close is the user dismissing the message: any state goes to hidden.
func (p *Presenter) Close() {
	p.state = StateHidden
	p.current = Directive{}
	p.deadline = time.Time{}
}

// Tick advances the machine. When a motivation message expires it converts
// into the status banner for the current task state (or hides when no rule
// fires); an expired banner hides. The returned directive, when present, is
// the newly shown banner.
func (p *Presenter) Tick(tasks []model.Task, now time.Time) (Directive, bool) {
	if p.state == StateHidden {
		return Directive{}, false
	}
	if p.deadline.IsZero() || now.Before(p.deadline) {
		return Directive{}, false
	}

	switch p.state {
	case StateShowingMotivation:
		banner, ok := Classify(tasks, now)
		if !ok {
			p.Close()
			return Directive{}, false
		}
		p.Show(banner, now)
		return banner, true
	default:
		p.Close()
		return Directive{}, false
	}
}
