package views

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/taskpulse/internal/model"
	"github.com/sandeepkv93/taskpulse/internal/storage"
)

type TaskPanelData struct {
	QuickAddView  string
	Tasks         []model.Task
	SelectedID    string
	ShowCompleted bool
	Degraded      bool
}

type StatsPanelData struct {
	Stats        storage.Stats
	Score        float64
	SessionTasks int
}

// RenderTaskPanel draws the grouped task list: four priority buckets with
// pending tasks first, then the completed section when enabled.
func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	if data.Degraded {
		b.WriteString("storage unavailable, changes will not survive restart\n")
	}
	b.WriteString(data.QuickAddView + "\n")
	b.WriteString("actions: [enter]add [space]toggle [d]delete [/]command [?]help\n")

	grouped := storage.GroupedByPriority(storage.Pending(data.Tasks))
	for _, p := range model.Priorities() {
		renderBucket(&b, p, grouped[p], data.SelectedID)
	}

	if data.ShowCompleted {
		b.WriteString("\nCompleted:\n")
		done := storage.CompletedSection(data.Tasks)
		if len(done) == 0 {
			b.WriteString("  (none)\n")
		}
		for _, task := range done {
			cursor := " "
			if data.SelectedID == task.ID {
				cursor = ">"
			}
			b.WriteString(fmt.Sprintf("%s [x] %s (%s)\n", cursor, task.Text, shortID(task.ID)))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("total: %d | pending: %d | completed: %d\n",
		data.Stats.Total, data.Stats.Pending, data.Stats.Completed))
	for _, p := range model.Priorities() {
		b.WriteString(fmt.Sprintf("%-10s %d\n", strings.ToLower(string(p))+":", data.Stats.PerPriority[p]))
	}
	b.WriteString(fmt.Sprintf("storage: %d bytes\n", data.Stats.StorageSizeBytes))
	if !data.Stats.LastModified.IsZero() {
		b.WriteString(fmt.Sprintf("last modified: %s\n", data.Stats.LastModified.Format("2006-01-02 15:04")))
	}
	b.WriteString(fmt.Sprintf("\nsession: %d completed | engagement %.0f%%", data.SessionTasks, data.Score*100))
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func renderBucket(b *strings.Builder, p model.Priority, tasks []model.Task, selectedID string) {
	b.WriteString(fmt.Sprintf("\n%s:\n", p))
	if len(tasks) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, task := range tasks {
		cursor := " "
		if selectedID == task.ID {
			cursor = ">"
		}
		box := "[ ]"
		if task.Completed {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s %s %s (%s)\n", cursor, box, task.Text, shortID(task.ID)))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
