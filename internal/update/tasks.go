package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskpulse/internal/model"
	"github.com/sandeepkv93/taskpulse/internal/storage"
)

func (m Model) handleTaskKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.cursor++
		m.syncCursor()
	case "k", "up":
		m.cursor--
		m.syncCursor()
	case " ":
		m = m.toggleSelected()
	case "d":
		m = m.removeSelected()
	case "c":
		m = m.toggleShowCompleted()
	case "x", "esc":
		if m.presenter != nil {
			m.presenter.Close()
		}
	}
	return m
}

func (m Model) handleQuickAddKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.captureMode = false
		m.quickAddInput.Blur()
		m.quickAddInput.SetValue("")
	case "enter":
		text := strings.TrimSpace(m.quickAddInput.Value())
		m.quickAddInput.SetValue("")
		if text != "" {
			m = m.addTask(text, model.PriorityGeneral)
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.quickAddInput.SetValue(m.quickAddInput.Value() + string(msg.Runes))
			return m
		}
		var cmd tea.Cmd
		m.quickAddInput, cmd = m.quickAddInput.Update(msg)
		_ = cmd
	}
	return m
}

func (m Model) addTask(text string, priority model.Priority) Model {
	if m.store == nil {
		return m
	}
	now := m.now()
	task, err := storage.NewTask(text, priority, now)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if err := m.store.Add(task, now); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if m.tracker != nil {
		m.tracker.RecordTaskCreated(now)
	}
	m.refreshTasks()
	m.Status = StatusBar{Text: fmt.Sprintf("added: %s", task.Text), IsError: false}
	m.evaluateAction(now)
	return m
}

func (m Model) toggleSelected() Model {
	task, ok := m.selectedTask()
	if !ok || m.store == nil {
		return m
	}
	now := m.now()
	if err := m.store.Toggle(task.ID, now); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	if !task.Completed {
		if m.tracker != nil {
			m.tracker.RecordTaskCompleted(now, task.CreatedAt)
		}
		m.Status = StatusBar{Text: fmt.Sprintf("completed: %s", task.Text), IsError: false}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("reopened: %s", task.Text), IsError: false}
	}
	m.refreshTasks()
	m.evaluateAction(now)
	return m
}

func (m Model) removeSelected() Model {
	task, ok := m.selectedTask()
	if !ok || m.store == nil {
		return m
	}
	now := m.now()
	if err := m.store.Remove(task.ID, now); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.refreshTasks()
	m.Status = StatusBar{Text: fmt.Sprintf("removed: %s", task.Text), IsError: false}
	m.refreshBanner(now)
	return m
}

func (m Model) toggleShowCompleted() Model {
	m.showCompleted = !m.showCompleted
	m.settings.ShowCompleted = m.showCompleted
	if m.store != nil {
		if err := m.store.SaveSettings(m.settings); err != nil {
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
	}
	state := "hidden"
	if m.showCompleted {
		state = "shown"
	}
	m.Status = StatusBar{Text: fmt.Sprintf("completed section %s", state), IsError: false}
	m.syncCursor()
	return m
}

// evaluateAction gives the scheduler a chance to react to a task action.
// When the encouragement gate declines, the contextual status banner takes
// the slot instead.
func (m *Model) evaluateAction(now time.Time) {
	if m.scheduler == nil || m.tracker == nil {
		return
	}
	if d, ok := m.scheduler.EvaluateAction(m.tasks, m.tracker.State(), now); ok {
		m.showDirective(d, now)
		return
	}
	m.refreshBanner(now)
}

// resolveTaskID matches a task by id prefix, requiring a unique hit.
func (m Model) resolveTaskID(prefix string) (model.Task, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return model.Task{}, fmt.Errorf("empty task id")
	}
	var matches []model.Task
	for _, task := range m.tasks {
		if strings.HasPrefix(strings.ToLower(task.ID), prefix) {
			matches = append(matches, task)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("no task matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", prefix, len(matches))
	}
}
