package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func runKVContract(t *testing.T, kv KV) {
	t.Helper()

	if _, found, err := kv.Get("missing"); err != nil || found {
		t.Fatalf("missing key: found=%v err=%v", found, err)
	}

	if err := kv.Set("tasks", []byte(`{"tasks": []}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := kv.Get("tasks")
	if err != nil || !found {
		t.Fatalf("get after set: found=%v err=%v", found, err)
	}
	if string(value) != `{"tasks": []}` {
		t.Fatalf("unexpected value: %s", value)
	}

	if err := kv.Set("tasks", []byte(`{"tasks": [1]}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, _, _ = kv.Get("tasks")
	if string(value) != `{"tasks": [1]}` {
		t.Fatalf("overwrite not visible: %s", value)
	}

	if err := kv.Delete("tasks"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := kv.Get("tasks"); found {
		t.Fatal("key still present after delete")
	}
	if err := kv.Delete("tasks"); err != nil {
		t.Fatalf("delete of absent key should be a no-op: %v", err)
	}
}

func TestMemoryKVContract(t *testing.T) {
	runKVContract(t, NewMemoryKV())
}

func TestFileKVContract(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	runKVContract(t, kv)
}

func TestSQLiteKVContract(t *testing.T) {
	kv, err := OpenSQLiteKV(filepath.Join(t.TempDir(), "taskpulse.db"))
	if err != nil {
		t.Fatalf("open sqlite kv: %v", err)
	}
	defer kv.Close()
	runKVContract(t, kv)
}

func TestFileKVRejectsEmptyDir(t *testing.T) {
	if _, err := NewFileKV("   "); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestFileKVWritesAreAtomicFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}
	if err := kv.Set("settings", []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.json")); err != nil {
		t.Fatalf("expected settings.json on disk: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "settings.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}
