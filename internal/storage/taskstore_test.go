package storage

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/taskpulse/internal/model"
)

func newTestStore(t *testing.T) *TaskStore {
	t.Helper()
	return NewTaskStore(NewMemoryKV(), nil)
}

func mustNewTask(t *testing.T, text string, p model.Priority, now time.Time) model.Task {
	t.Helper()
	task, err := NewTask(text, p, now)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	first := mustNewTask(t, "Write weekly report", model.PriorityImportant, now)
	second := mustNewTask(t, "Water the plants", model.PriorityDaily, now.Add(time.Minute))
	if err := store.Save([]model.Task{first, second}, now); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := store.Load()
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("ids did not round trip: %s %s", got[0].ID, got[1].ID)
	}
	if !got[0].CreatedAt.Equal(first.CreatedAt) || got[0].Text != first.Text || got[0].Priority != first.Priority {
		t.Fatalf("fields did not round trip: %+v", got[0])
	}
}

func TestLoadDegradesToEmpty(t *testing.T) {
	kv := NewMemoryKV()
	store := NewTaskStore(kv, nil)

	if got := store.Load(); len(got) != 0 {
		t.Fatalf("absent storage: expected empty, got %d", len(got))
	}

	if err := kv.Set("tasks", []byte("not json")); err != nil {
		t.Fatalf("seed kv: %v", err)
	}
	if got := store.Load(); len(got) != 0 {
		t.Fatalf("unreadable blob: expected empty, got %d", len(got))
	}

	if err := kv.Set("tasks", []byte(`{"tasks": {"oops": true}}`)); err != nil {
		t.Fatalf("seed kv: %v", err)
	}
	if got := store.Load(); len(got) != 0 {
		t.Fatalf("non-list tasks field: expected empty, got %d", len(got))
	}

	if err := kv.Set("tasks", []byte(`{"lastModified": "2026-02-09T12:00:00Z"}`)); err != nil {
		t.Fatalf("seed kv: %v", err)
	}
	if got := store.Load(); len(got) != 0 {
		t.Fatalf("missing tasks field: expected empty, got %d", len(got))
	}
}

func TestUpdateUnknownIDIsNoOp(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := mustNewTask(t, "Only task", model.PriorityGeneral, now)
	if err := store.Add(task, now); err != nil {
		t.Fatalf("add: %v", err)
	}

	text := "changed"
	if err := store.Update("no-such-id", Patch{Text: &text}, now); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
	if err := store.Remove("no-such-id", now); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}

	got := store.Load()
	if len(got) != 1 || got[0].Text != "Only task" {
		t.Fatalf("collection changed on unknown-id update: %+v", got)
	}
}

func TestUpdateRejectsBlankText(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := mustNewTask(t, "Keep me", model.PriorityGeneral, now)
	if err := store.Add(task, now); err != nil {
		t.Fatalf("add: %v", err)
	}

	blank := "   "
	if err := store.Update(task.ID, Patch{Text: &blank}, now); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if got := store.Load(); got[0].Text != "Keep me" {
		t.Fatalf("text changed on rejected patch: %q", got[0].Text)
	}
}

func TestToggleTwiceRestoresPending(t *testing.T) {
	store := newTestStore(t)
	created := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := mustNewTask(t, "Flip me", model.PrioritySecondary, created)
	if err := store.Add(task, created); err != nil {
		t.Fatalf("add: %v", err)
	}

	first := created.Add(time.Minute)
	if err := store.Toggle(task.ID, first); err != nil {
		t.Fatalf("toggle complete: %v", err)
	}
	got := store.Load()[0]
	if !got.Completed || got.CompletedAt == nil {
		t.Fatalf("expected completed with completed_at, got %+v", got)
	}
	afterFirst := got.UpdatedAt

	second := created.Add(2 * time.Minute)
	if err := store.Toggle(task.ID, second); err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	got = store.Load()[0]
	if got.Completed || got.CompletedAt != nil {
		t.Fatalf("expected pending with nil completed_at, got %+v", got)
	}
	if !got.UpdatedAt.After(afterFirst) {
		t.Fatalf("updated_at did not increase: %v then %v", afterFirst, got.UpdatedAt)
	}
}

func TestImportSnapshotAtomicOnBadBlob(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := mustNewTask(t, "Survivor", model.PriorityImportant, now)
	if err := store.Add(task, now); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, blob := range []string{
		`{"settings": {}}`,
		`{"tasks": "not-a-list"}`,
		`{"tasks": null}`,
		`{"tasks": 42}`,
		`garbage`,
	} {
		if err := store.ImportSnapshot([]byte(blob), now); !errors.Is(err, ErrInvalidBlob) {
			t.Fatalf("blob %q: expected ErrInvalidBlob, got %v", blob, err)
		}
	}

	got := store.Load()
	if len(got) != 1 || got[0].ID != task.ID {
		t.Fatalf("collection changed after rejected imports: %+v", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	source := newTestStore(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := mustNewTask(t, "Ship release", model.PriorityImportant, now)
	if err := source.Add(task, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	settings := model.Settings{Theme: "light", Autosave: false, ShowCompleted: true}
	if err := source.SaveSettings(settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	blob, err := source.ExportSnapshot(now)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		t.Fatalf("export blob not json: %v", err)
	}
	if snap.Version != "1.0" || snap.BackupDate.IsZero() {
		t.Fatalf("export envelope malformed: %+v", snap)
	}

	dest := newTestStore(t)
	if err := dest.ImportSnapshot(blob, now); err != nil {
		t.Fatalf("import: %v", err)
	}
	got := dest.Load()
	if len(got) != 1 || got[0].ID != task.ID {
		t.Fatalf("tasks did not survive round trip: %+v", got)
	}
	if dest.Settings().Theme != "light" {
		t.Fatalf("settings did not survive round trip: %+v", dest.Settings())
	}
}

func TestImportSnapshotToleratesMissingSettings(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	if err := store.ImportSnapshot([]byte(`{"tasks": []}`), now); err != nil {
		t.Fatalf("import without settings: %v", err)
	}
}

func TestDailyResetSweepsOncePerDay(t *testing.T) {
	store := newTestStore(t)
	dayOne := time.Date(2026, 2, 9, 20, 0, 0, 0, time.UTC)

	daily := mustNewTask(t, "Stretch", model.PriorityDaily, dayOne)
	other := mustNewTask(t, "File taxes", model.PriorityImportant, dayOne)
	if err := store.Save([]model.Task{daily, other}, dayOne); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Toggle(daily.ID, dayOne); err != nil {
		t.Fatalf("toggle daily: %v", err)
	}
	if err := store.Toggle(other.ID, dayOne); err != nil {
		t.Fatalf("toggle other: %v", err)
	}

	// Same day: nothing to sweep even though the marker is unset; after the
	// first call the marker pins the date.
	if _, err := store.ApplyDailyReset(dayOne.Add(time.Hour)); err != nil {
		t.Fatalf("same-day reset: %v", err)
	}
	got := store.Load()
	if !taskByID(got, daily.ID).Completed {
		t.Fatalf("daily task reset on its completion day")
	}

	dayTwo := dayOne.Add(12 * time.Hour) // 08:00 next day
	swept, err := store.ApplyDailyReset(dayTwo)
	if err != nil {
		t.Fatalf("next-day reset: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept task, got %d", swept)
	}
	got = store.Load()
	reset := taskByID(got, daily.ID)
	if reset.Completed || reset.CompletedAt != nil {
		t.Fatalf("daily task not reset: %+v", reset)
	}
	kept := taskByID(got, other.ID)
	if !kept.Completed {
		t.Fatalf("non-daily task was reset: %+v", kept)
	}

	// Second evaluation the same day is a no-op.
	swept, err = store.ApplyDailyReset(dayTwo.Add(time.Hour))
	if err != nil {
		t.Fatalf("repeat reset: %v", err)
	}
	if swept != 0 {
		t.Fatalf("expected no-op, swept %d", swept)
	}
}

func TestStatsCountsAndSize(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	a := mustNewTask(t, "One", model.PriorityImportant, now)
	b := mustNewTask(t, "Two", model.PriorityImportant, now)
	c := mustNewTask(t, "Three", model.PriorityGeneral, now)
	if err := store.Save([]model.Task{a, b, c}, now); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Toggle(c.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	stats := store.Stats()
	if stats.Total != 3 || stats.Completed != 1 || stats.Pending != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.PerPriority[model.PriorityImportant] != 2 || stats.PerPriority[model.PriorityGeneral] != 1 {
		t.Fatalf("unexpected per-priority counts: %+v", stats.PerPriority)
	}
	if stats.PerPriority[model.PriorityDaily] != 0 {
		t.Fatalf("expected zero entry for empty bucket, got %+v", stats.PerPriority)
	}
	if stats.StorageSizeBytes == 0 {
		t.Fatalf("expected non-zero storage size")
	}
	if stats.LastModified.IsZero() {
		t.Fatalf("expected last modified stamp")
	}
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, bool, error) { return nil, false, ErrUnavailable }
func (failingKV) Set(string, []byte) error         { return ErrUnavailable }
func (failingKV) Delete(string) error              { return ErrUnavailable }
func (failingKV) Close() error                     { return nil }

func TestBrokenBackendFallsBackToMemory(t *testing.T) {
	store := NewTaskStore(failingKV{}, nil)
	if !store.Degraded() {
		t.Fatal("expected degraded store")
	}

	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := mustNewTask(t, "In memory only", model.PriorityGeneral, now)
	if err := store.Add(task, now); err != nil {
		t.Fatalf("add on degraded store: %v", err)
	}
	if got := store.Load(); len(got) != 1 {
		t.Fatalf("expected 1 task in memory, got %d", len(got))
	}
}

func taskByID(tasks []model.Task, id string) model.Task {
	for _, task := range tasks {
		if task.ID == id {
			return task
		}
	}
	return model.Task{}
}
