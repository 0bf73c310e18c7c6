package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskpulse/internal/model"
)

const (
	keyTasks          = "tasks"
	keySettings       = "settings"
	keyLastDailyReset = "last_daily_reset"
	probeKey          = "startup_probe"

	envelopeVersion = "1.0"
	dateLayout      = "2006-01-02"
)

var (
	ErrEmptyText    = model.ErrEmptyText
	ErrInvalidBlob  = fmt.Errorf("storage: invalid snapshot blob")
	ErrUnknownID    = fmt.Errorf("storage: unknown task id")
	ErrInvalidPatch = fmt.Errorf("storage: invalid patch")
)

// taskEnvelope is the persisted shape of the task collection.
type taskEnvelope struct {
	Tasks        []model.Task `json:"tasks"`
	LastModified time.Time    `json:"lastModified"`
	Version      string       `json:"version"`
}

// Snapshot is the export/import blob. Settings may be absent on import.
type Snapshot struct {
	Tasks      []model.Task    `json:"tasks"`
	Settings   *model.Settings `json:"settings"`
	BackupDate time.Time       `json:"backupDate"`
	Version    string          `json:"version"`
}

// Patch describes a partial task update. Nil fields are left untouched.
type Patch struct {
	Text      *string
	Priority  *model.Priority
	Completed *bool
}

// TaskStore owns the persisted task collection and the settings sidecar.
// Every failure degrades: a broken backend is swapped for MemoryKV at
// construction, malformed persisted data reads as empty, and write errors
// are reported to the caller instead of crashing the host.
type TaskStore struct {
	kv       KV
	log      *zap.Logger
	degraded bool
}

func NewTaskStore(kv KV, log *zap.Logger) *TaskStore {
	if log == nil {
		log = zap.NewNop()
	}
	store := &TaskStore{kv: kv, log: log}
	if err := probe(kv); err != nil {
		log.Warn("storage backend unavailable, falling back to memory", zap.Error(err))
		store.kv = NewMemoryKV()
		store.degraded = true
	}
	return store
}

// probe does a write/delete round trip so unavailability is caught once at
// startup rather than on the first user action.
func probe(kv KV) error {
	if kv == nil {
		return ErrUnavailable
	}
	if err := kv.Set(probeKey, []byte("ok")); err != nil {
		return err
	}
	return kv.Delete(probeKey)
}

// Degraded reports whether the store fell back to in-memory storage.
func (s *TaskStore) Degraded() bool { return s.degraded }

func (s *TaskStore) Close() error { return s.kv.Close() }

// Load returns the persisted collection. Absent, unreadable, or
// structurally invalid data reads as an empty list; Load never fails.
func (s *TaskStore) Load() []model.Task {
	raw, found, err := s.kv.Get(keyTasks)
	if err != nil {
		s.log.Warn("read tasks failed, treating as empty", zap.Error(err))
		return []model.Task{}
	}
	if !found {
		return []model.Task{}
	}
	tasks, ok := decodeTaskList(raw)
	if !ok {
		s.log.Warn("persisted tasks malformed, treating as empty")
		return []model.Task{}
	}
	return tasks
}

// decodeTaskList enforces the envelope contract: a "tasks" field that is
// present and list-typed. Anything else is invalid.
func decodeTaskList(raw []byte) ([]model.Task, bool) {
	var probe struct {
		Tasks json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}
	if !isJSONList(probe.Tasks) {
		return nil, false
	}
	var tasks []model.Task
	if err := json.Unmarshal(probe.Tasks, &tasks); err != nil {
		return nil, false
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, true
}

// Save persists the full collection with a last-modified stamp.
func (s *TaskStore) Save(tasks []model.Task, now time.Time) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	payload, err := json.Marshal(taskEnvelope{
		Tasks:        tasks,
		LastModified: now.UTC(),
		Version:      envelopeVersion,
	})
	if err != nil {
		return err
	}
	if err := s.kv.Set(keyTasks, payload); err != nil {
		s.log.Warn("save tasks failed", zap.Error(err))
		return err
	}
	return nil
}

// NewTask builds a validated task with a fresh id and creation stamps.
func NewTask(text string, priority model.Priority, now time.Time) (model.Task, error) {
	task := model.Task{
		ID:        uuid.NewString(),
		Text:      strings.TrimSpace(text),
		Priority:  priority,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// Add appends the task to the collection and persists it.
func (s *TaskStore) Add(task model.Task, now time.Time) error {
	if err := task.Validate(); err != nil {
		return err
	}
	tasks := s.Load()
	tasks = append(tasks, task)
	return s.Save(tasks, now)
}

// Update applies the patch to the task with the given id. Unknown ids and
// blank-text patches leave the collection untouched.
func (s *TaskStore) Update(id string, patch Patch, now time.Time) error {
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return ErrEmptyText
	}
	if patch.Priority != nil && !patch.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPatch, *patch.Priority)
	}
	tasks := s.Load()
	idx := indexOf(tasks, id)
	if idx < 0 {
		return ErrUnknownID
	}
	task := tasks[idx]
	if patch.Text != nil {
		task.Text = strings.TrimSpace(*patch.Text)
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Completed != nil {
		setCompleted(&task, *patch.Completed, now)
	}
	task.UpdatedAt = now.UTC()
	tasks[idx] = task
	return s.Save(tasks, now)
}

// Toggle flips completion for the task with the given id.
func (s *TaskStore) Toggle(id string, now time.Time) error {
	tasks := s.Load()
	idx := indexOf(tasks, id)
	if idx < 0 {
		return ErrUnknownID
	}
	task := tasks[idx]
	setCompleted(&task, !task.Completed, now)
	task.UpdatedAt = now.UTC()
	tasks[idx] = task
	return s.Save(tasks, now)
}

// Remove deletes the task with the given id.
func (s *TaskStore) Remove(id string, now time.Time) error {
	tasks := s.Load()
	idx := indexOf(tasks, id)
	if idx < 0 {
		return ErrUnknownID
	}
	tasks = append(tasks[:idx], tasks[idx+1:]...)
	return s.Save(tasks, now)
}

func setCompleted(task *model.Task, completed bool, now time.Time) {
	task.Completed = completed
	if completed {
		at := now.UTC()
		task.CompletedAt = &at
	} else {
		task.CompletedAt = nil
	}
}

// isJSONList reports whether raw is a JSON array (missing and null fields
// both fail the check).
func isJSONList(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b == '['
		}
	}
	return false
}

func indexOf(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Settings returns the persisted settings record, or defaults when the
// record is absent or unreadable.
func (s *TaskStore) Settings() model.Settings {
	raw, found, err := s.kv.Get(keySettings)
	if err != nil || !found {
		return model.DefaultSettings()
	}
	var settings model.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.log.Warn("persisted settings malformed, using defaults", zap.Error(err))
		return model.DefaultSettings()
	}
	return settings
}

func (s *TaskStore) SaveSettings(settings model.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.kv.Set(keySettings, payload)
}

// ExportSnapshot produces the round-trippable backup blob, pretty-printed.
func (s *TaskStore) ExportSnapshot(now time.Time) ([]byte, error) {
	settings := s.Settings()
	snap := Snapshot{
		Tasks:      s.Load(),
		Settings:   &settings,
		BackupDate: now.UTC(),
		Version:    envelopeVersion,
	}
	return json.MarshalIndent(snap, "", "  ")
}

// ImportSnapshot atomically replaces the stored collection from the blob.
// A blob whose "tasks" field is missing or not a list is rejected with no
// partial write. Settings are applied only when present.
func (s *TaskStore) ImportSnapshot(blob []byte, now time.Time) error {
	var probe struct {
		Tasks    json.RawMessage `json:"tasks"`
		Settings *model.Settings `json:"settings"`
	}
	if err := json.Unmarshal(blob, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	if !isJSONList(probe.Tasks) {
		return fmt.Errorf("%w: tasks field missing or not a list", ErrInvalidBlob)
	}
	var tasks []model.Task
	if err := json.Unmarshal(probe.Tasks, &tasks); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlob, err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	if err := s.Save(tasks, now); err != nil {
		return err
	}
	if probe.Settings != nil {
		if err := s.SaveSettings(*probe.Settings); err != nil {
			s.log.Warn("import: settings write failed", zap.Error(err))
		}
	}
	return nil
}

// Stats summarizes the stored collection.
type Stats struct {
	Total            int
	Completed        int
	Pending          int
	PerPriority      map[model.Priority]int
	StorageSizeBytes int
	LastModified     time.Time
}

func (s *TaskStore) Stats() Stats {
	tasks := s.Load()
	out := Stats{
		Total:       len(tasks),
		PerPriority: make(map[model.Priority]int, 4),
	}
	for _, p := range model.Priorities() {
		out.PerPriority[p] = 0
	}
	for _, task := range tasks {
		if task.Completed {
			out.Completed++
		} else {
			out.Pending++
		}
		out.PerPriority[task.Priority]++
	}
	if raw, found, err := s.kv.Get(keyTasks); err == nil && found {
		out.StorageSizeBytes = len(raw)
		var env taskEnvelope
		if err := json.Unmarshal(raw, &env); err == nil {
			out.LastModified = env.LastModified
		}
	}
	return out
}

// ApplyDailyReset un-completes every Daily task once per local calendar
// day. The marker key is written only after the swept collection saved, so
// a crash in between means the sweep re-runs and finds nothing left to do.
func (s *TaskStore) ApplyDailyReset(now time.Time) (int, error) {
	today := now.Format(dateLayout)
	raw, found, err := s.kv.Get(keyLastDailyReset)
	if err == nil && found && string(raw) == today {
		return 0, nil
	}

	tasks := s.Load()
	swept := 0
	for i := range tasks {
		if tasks[i].Priority != model.PriorityDaily || !tasks[i].Completed {
			continue
		}
		setCompleted(&tasks[i], false, now)
		tasks[i].UpdatedAt = now.UTC()
		swept++
	}
	if swept > 0 {
		if err := s.Save(tasks, now); err != nil {
			return 0, err
		}
	}
	if err := s.kv.Set(keyLastDailyReset, []byte(today)); err != nil {
		s.log.Warn("daily reset marker write failed", zap.Error(err))
	}
	return swept, nil
}
