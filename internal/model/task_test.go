package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Text:      "Write weekly report",
		Priority:  PriorityImportant,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateCompletedRequiresCompletedAt(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Text:      "Completed task",
		Priority:  PriorityGeneral,
		Completed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := task.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "model: completed_at is required when task is completed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskValidateCompletedAtMustBeNilWhenPending(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	done := now.Add(time.Hour)
	task := Task{
		ID:          "task-1",
		Text:        "Pending task",
		Priority:    PriorityDaily,
		CreatedAt:   now,
		UpdatedAt:   now,
		CompletedAt: &done,
	}
	if err := task.Validate(); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestTaskValidateRejectsBlankText(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Text:      "   ",
		Priority:  PrioritySecondary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := task.Validate()
	if err == nil || !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got: %v", err)
	}
}

func TestTaskValidateInvalidPriority(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "task-1",
		Text:      "Bad priority",
		Priority:  Priority("Urgent"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := task.Validate()
	if err == nil || !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}
}

func TestPrioritiesOrder(t *testing.T) {
	got := Priorities()
	want := []Priority{PriorityImportant, PriorityDaily, PrioritySecondary, PriorityGeneral}
	if len(got) != len(want) {
		t.Fatalf("expected %d priorities, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("priority %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
