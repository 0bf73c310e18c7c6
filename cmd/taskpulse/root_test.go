package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskpulse/internal/model"
	"github.com/sandeepkv93/taskpulse/internal/storage"
)

// seedStore opens a file-backed store under dir the same way the CLI does.
func seedStore(t *testing.T, dir string) *storage.TaskStore {
	t.Helper()
	kv, err := storage.NewFileKV(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open file kv: %v", err)
	}
	return storage.NewTaskStore(kv, zap.NewNop())
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out.String()
}

func TestListSweepsStaleDailyTasks(t *testing.T) {
	dir := t.TempDir()
	yesterday := time.Now().AddDate(0, 0, -1)

	store := seedStore(t, dir)
	task, err := storage.NewTask("morning stretch", model.PriorityDaily, yesterday)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := store.Add(task, yesterday); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.ApplyDailyReset(yesterday); err != nil {
		t.Fatalf("stamp reset marker: %v", err)
	}
	if err := store.Toggle(task.ID, yesterday); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out := runCommand(t, "list", "--data-dir", dir, "--backend", "file")
	if !strings.Contains(out, "[ ] morning stretch") {
		t.Fatalf("daily task completed yesterday should be pending again, got:\n%s", out)
	}
	if strings.Contains(out, "[x] morning stretch") {
		t.Fatalf("daily task should not stay completed across days, got:\n%s", out)
	}
}

func TestAddAndListRoundTrip(t *testing.T) {
	dir := t.TempDir()

	runCommand(t, "add", "pay rent", "--priority", "important", "--data-dir", dir, "--backend", "file")
	out := runCommand(t, "list", "--data-dir", dir, "--backend", "file")

	if !strings.Contains(out, "Important:") {
		t.Fatalf("expected Important bucket, got:\n%s", out)
	}
	if !strings.Contains(out, "[ ] pay rent") {
		t.Fatalf("expected the added task, got:\n%s", out)
	}
}
