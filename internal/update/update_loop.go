package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskpulse/internal/engagement"
	"github.com/sandeepkv93/taskpulse/internal/notify"
	"github.com/sandeepkv93/taskpulse/internal/pulse"
	"github.com/sandeepkv93/taskpulse/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.engine != nil {
		return waitForPulseCmd(m.engine.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.tracker != nil {
			m.tracker.RecordActivity(m.now())
		}

		if m.Palette.Active {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}
		if m.captureMode {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m.handleQuickAddKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, nil
		case m.Keys.Tasks:
			m.CurrentView = ViewTasks
			return m, nil
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, nil
		case m.Keys.Add:
			m.captureMode = true
			m.quickAddInput.Focus()
			m.quickAddInput.SetValue("")
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		if m.CurrentView == ViewTasks {
			return m.handleTaskKey(typed), nil
		}
		return m, nil

	case tea.FocusMsg:
		now := m.now()
		if m.engine != nil {
			m.engine.Resume()
		}
		if m.tracker != nil {
			m.tracker.ResetActivityReference(now)
		}
		return m, nil

	case tea.BlurMsg:
		if m.engine != nil {
			m.engine.Pause()
		}
		return m, nil

	case PulseMsg:
		m.handlePulse(typed.Pulse)
		if m.engine != nil {
			return m, waitForPulseCmd(m.engine.C())
		}
		return m, nil

	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil

	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil

	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handlePulse(p pulse.Pulse) {
	now := m.now()
	switch p.Kind {
	case pulse.KindEncouragement:
		if m.scheduler != nil && m.tracker != nil {
			if d, ok := m.scheduler.EvaluatePeriodic(m.tasks, m.tracker.State(), now); ok {
				m.showDirective(d, now)
			} else {
				m.refreshBanner(now)
			}
			if m.engine != nil {
				if err := m.engine.Schedule(pulse.KindEncouragement, now.Add(m.scheduler.Config().PeriodicTick)); err != nil {
					m.log.Warn("rearm encouragement timer failed", zap.Error(err))
				}
			}
		}
	case pulse.KindPresenter:
		if m.presenter != nil {
			banner, shown := m.presenter.Tick(m.tasks, now)
			if shown && banner.Duration > 0 && m.engine != nil {
				if err := m.engine.Schedule(pulse.KindPresenter, now.Add(banner.Duration)); err != nil {
					m.log.Warn("rearm presenter timer failed", zap.Error(err))
				}
			}
		}
	case pulse.KindInactivity:
		if m.tracker != nil {
			if idle := m.tracker.IdleFor(now); idle >= engagement.InactivityThreshold {
				m.tracker.RecordInactivity(now, idle)
			}
		}
		if m.engine != nil {
			if err := m.engine.Schedule(pulse.KindInactivity, now.Add(inactivityPoll)); err != nil {
				m.log.Warn("rearm inactivity timer failed", zap.Error(err))
			}
		}
	}
}

// refreshBanner surfaces the contextual status banner for the current task
// state. A motivation message on display keeps its slot; banners only
// replace banners.
func (m *Model) refreshBanner(now time.Time) {
	if m.presenter == nil || m.presenter.State() == notify.StateShowingMotivation {
		return
	}
	if d, ok := notify.Classify(m.tasks, now); ok {
		m.showDirective(d, now)
	}
}

// showDirective puts a message on display and arms its auto-hide timer.
func (m *Model) showDirective(d notify.Directive, now time.Time) {
	if m.presenter == nil {
		return
	}
	m.presenter.Show(d, now)
	if d.Category == notify.CategoryMotivation && m.tracker != nil {
		m.tracker.RecordMotivationShown(now)
	}
	if d.Duration > 0 && m.engine != nil {
		if err := m.engine.Schedule(pulse.KindPresenter, now.Add(d.Duration)); err != nil {
			m.log.Warn("arm presenter timer failed", zap.Error(err))
		}
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	switch m.CurrentView {
	case ViewStats:
		leftPane = m.renderStatsView()
	default:
		leftPane = m.renderTaskView()
	}
	rightPane := m.renderCommandPalette() + m.renderHelpIfVisible()

	message := ""
	if m.presenter != nil {
		if d, ok := m.presenter.Current(); ok {
			message = views.RenderDirective(d)
		}
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("taskpulse | view: %s | selected: %s", m.CurrentView, shortID(m.SelectedTaskID)),
		LeftPane:   leftPane,
		RightPane:  rightPane,
		StatusLine: status,
		Message:    message,
		Footer: fmt.Sprintf("keys: %s tasks | %s stats | %s add | / cmd | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Stats, m.Keys.Add, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderTaskView() string {
	degraded := false
	if m.store != nil {
		degraded = m.store.Degraded()
	}
	return views.RenderTaskPanel(views.TaskPanelData{
		QuickAddView:  m.quickAddInput.View(),
		Tasks:         m.filteredTasks(),
		SelectedID:    m.SelectedTaskID,
		ShowCompleted: m.showCompleted && m.Filter.State != "pending",
		Degraded:      degraded,
	})
}

func (m Model) renderStatsView() string {
	data := views.StatsPanelData{}
	if m.store != nil {
		data.Stats = m.store.Stats()
	}
	if m.tracker != nil {
		state := m.tracker.State()
		data.Score = state.Score
		data.SessionTasks = state.CompletedInSession
	}
	return views.RenderStatsPanel(data)
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func waitForPulseCmd(ch <-chan pulse.Pulse) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return PulseMsg{Pulse: p}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
