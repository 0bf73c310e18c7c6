package update

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskpulse/internal/commands"
	"github.com/sandeepkv93/taskpulse/internal/storage"
)

const defaultExportPath = "taskpulse-backup.json"

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			m = m.addTask(a.Text, a.Priority)
			if m.Status.IsError {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: m.Status.Text}
			}
			return commands.Result{Message: fmt.Sprintf("added task: %s", a.Text)}, nil
		},
		Done: func(d commands.DoneArgs) (commands.Result, error) {
			task, err := m.resolveTaskID(d.Target)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			if task.Completed {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("task already completed: %s", task.Text)}
			}
			now := m.now()
			if err := m.store.Toggle(task.ID, now); err != nil {
				return commands.Result{}, err
			}
			if m.tracker != nil {
				m.tracker.RecordTaskCompleted(now, task.CreatedAt)
			}
			m.refreshTasks()
			m.evaluateAction(now)
			return commands.Result{Message: fmt.Sprintf("completed: %s", task.Text)}, nil
		},
		Remove: func(r commands.RemoveArgs) (commands.Result, error) {
			task, err := m.resolveTaskID(r.Target)
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			now := m.now()
			if err := m.store.Remove(task.ID, now); err != nil {
				return commands.Result{}, err
			}
			m.refreshTasks()
			m.refreshBanner(now)
			return commands.Result{Message: fmt.Sprintf("removed: %s", task.Text)}, nil
		},
		Show: func(s commands.ShowArgs) (commands.Result, error) {
			switch s.Subject {
			case "stats":
				m.CurrentView = ViewStats
				return commands.Result{Message: "showing stats"}, nil
			case "pending", "completed":
				m.CurrentView = ViewTasks
				m.Filter = FilterState{Priority: s.Priority, State: s.Subject}
			default:
				m.CurrentView = ViewTasks
				m.Filter = FilterState{Priority: s.Priority}
			}
			m.syncCursor()
			if s.Priority != "" {
				return commands.Result{Message: fmt.Sprintf("showing %s (%s)", s.Subject, s.Priority)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("showing %s", s.Subject)}, nil
		},
		Export: func(e commands.ExportArgs) (commands.Result, error) {
			path := strings.TrimSpace(e.Path)
			if path == "" {
				path = defaultExportPath
			}
			now := m.now()
			blob, err := m.store.ExportSnapshot(now)
			if err != nil {
				return commands.Result{}, err
			}
			if err := os.WriteFile(path, blob, 0o644); err != nil {
				return commands.Result{}, err
			}
			m.settings.LastBackupAt = &now
			if err := m.store.SaveSettings(m.settings); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("exported %d task(s) to %s", len(m.tasks), path)}, nil
		},
		Import: func(i commands.ImportArgs) (commands.Result, error) {
			blob, err := os.ReadFile(i.Path)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.store.ImportSnapshot(blob, m.now()); err != nil {
				if errors.Is(err, storage.ErrInvalidBlob) {
					return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "file is not a valid backup"}
				}
				return commands.Result{}, err
			}
			m.refreshTasks()
			m.settings = m.store.Settings()
			m.showCompleted = m.settings.ShowCompleted
			return commands.Result{Message: fmt.Sprintf("imported %d task(s) from %s", len(m.tasks), i.Path)}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
	}

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	return m
}
