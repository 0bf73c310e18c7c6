package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskpulse/internal/engagement"
	"github.com/sandeepkv93/taskpulse/internal/model"
	"github.com/sandeepkv93/taskpulse/internal/notify"
	"github.com/sandeepkv93/taskpulse/internal/pulse"
	"github.com/sandeepkv93/taskpulse/internal/storage"
)

type View string

const (
	ViewTasks View = "Tasks"
	ViewStats View = "Stats"
)

// inactivityPoll is how often the host checks idle time against the
// engagement threshold.
const inactivityPoll = 30 * time.Second

type FilterState struct {
	Priority model.Priority
	State    string
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks string
	Stats string
	Add   string
	Help  string
	Quit  string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// PulseMsg carries a due timer tick into the bubbletea loop.
type PulseMsg struct {
	Pulse pulse.Pulse
}

// Deps are the wired domain services the host drives. Now defaults to
// time.Now; tests inject a fixed clock.
type Deps struct {
	Store     *storage.TaskStore
	Tracker   *engagement.Tracker
	Scheduler *notify.Scheduler
	Presenter *notify.Presenter
	Engine    *pulse.Engine
	Log       *zap.Logger
	Now       func() time.Time
}

type Model struct {
	CurrentView    View
	SelectedTaskID string
	Filter         FilterState
	Palette        CommandPaletteState
	HelpVisible    bool
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error

	store     *storage.TaskStore
	tracker   *engagement.Tracker
	scheduler *notify.Scheduler
	presenter *notify.Presenter
	engine    *pulse.Engine
	log       *zap.Logger
	now       func() time.Time

	tasks         []model.Task
	settings      model.Settings
	showCompleted bool
	cursor        int

	quickAddInput textinput.Model
	commandInput  textinput.Model
	helpModel     help.Model
	captureMode   bool
}

func NewModel(deps Deps) Model {
	m := Model{
		CurrentView: ViewTasks,
		store:       deps.Store,
		tracker:     deps.Tracker,
		scheduler:   deps.Scheduler,
		presenter:   deps.Presenter,
		engine:      deps.Engine,
		log:         deps.Log,
		now:         deps.Now,
		Keys: GlobalKeyMap{
			Tasks: "1",
			Stats: "2",
			Add:   "a",
			Help:  "?",
			Quit:  "q",
		},
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.initBubbleComponents()

	// Local instants throughout: the daily reset keys on the local calendar
	// day and the banner rules on the local hour.
	now := m.now()
	if m.store != nil {
		if reset, err := m.store.ApplyDailyReset(now); err != nil {
			m.log.Warn("daily reset failed", zap.Error(err))
		} else if reset > 0 {
			m.Status = StatusBar{Text: fmt.Sprintf("reset %d daily task(s)", reset), IsError: false}
		}
		m.tasks = m.store.Load()
		m.settings = m.store.Settings()
		m.showCompleted = m.settings.ShowCompleted
		if m.store.Degraded() {
			m.Status = StatusBar{Text: "storage unavailable, running in memory", IsError: true}
		}
	}
	m.armTimers(now)
	m.syncCursor()
	return m
}

func (m *Model) initBubbleComponents() {
	m.quickAddInput = textinput.New()
	m.quickAddInput.Prompt = "add> "
	m.quickAddInput.CharLimit = 256
	m.quickAddInput.Width = 42

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}

func (m *Model) armTimers(now time.Time) {
	if m.engine == nil || m.scheduler == nil {
		return
	}
	cfg := m.scheduler.Config()
	if err := m.engine.Schedule(pulse.KindEncouragement, now.Add(cfg.PeriodicTick)); err != nil {
		m.log.Warn("arm encouragement timer failed", zap.Error(err))
	}
	if err := m.engine.Schedule(pulse.KindInactivity, now.Add(inactivityPoll)); err != nil {
		m.log.Warn("arm inactivity timer failed", zap.Error(err))
	}
}

// filteredTasks applies the active view filter to the full snapshot.
func (m Model) filteredTasks() []model.Task {
	tasks := m.tasks
	if m.Filter.Priority != "" {
		tasks = storage.ByPriority(tasks, m.Filter.Priority)
	}
	switch m.Filter.State {
	case "pending":
		tasks = storage.Pending(tasks)
	case "completed":
		tasks = storage.Completed(tasks)
	}
	return tasks
}

// visibleTasks flattens the grouped view in display order so the cursor can
// walk it: pending buckets by priority, then the completed section.
func (m Model) visibleTasks() []model.Task {
	tasks := m.filteredTasks()
	out := make([]model.Task, 0, len(tasks))
	grouped := storage.GroupedByPriority(storage.Pending(tasks))
	for _, p := range model.Priorities() {
		out = append(out, grouped[p]...)
	}
	if m.showCompleted && m.Filter.State != "pending" {
		out = append(out, storage.CompletedSection(tasks)...)
	}
	return out
}

func (m *Model) syncCursor() {
	visible := m.visibleTasks()
	if len(visible) == 0 {
		m.cursor = 0
		m.SelectedTaskID = ""
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(visible) {
		m.cursor = len(visible) - 1
	}
	m.SelectedTaskID = visible[m.cursor].ID
}

func (m *Model) refreshTasks() {
	if m.store == nil {
		return
	}
	m.tasks = m.store.Load()
	m.syncCursor()
}

func (m Model) selectedTask() (model.Task, bool) {
	visible := m.visibleTasks()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Task{}, false
	}
	return visible[m.cursor], true
}
