package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrEmptyText       = errors.New("model: task text is required")
)

type Priority string

const (
	PriorityImportant Priority = "Important"
	PriorityDaily     Priority = "Daily"
	PrioritySecondary Priority = "Secondary"
	PriorityGeneral   Priority = "General"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityImportant, PriorityDaily, PrioritySecondary, PriorityGeneral:
		return true
	default:
		return false
	}
}

// Priorities returns the buckets in display order.
func Priorities() []Priority {
	return []Priority{PriorityImportant, PriorityDaily, PrioritySecondary, PriorityGeneral}
}

type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.UpdatedAt.IsZero() {
		return errors.New("model: task updated_at is required")
	}
	if t.Completed && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task is completed")
	}
	if !t.Completed && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task is not completed")
	}
	return nil
}
