package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	stores := map[string]Store{}
	for driver, path := range map[string]string{
		DriverFile:   filepath.Join(dir, "file"),
		DriverBolt:   filepath.Join(dir, "mood.bolt"),
		DriverSQLite: filepath.Join(dir, "mood.db"),
		DriverMemory: "",
	} {
		s, err := Open(driver, path)
		if err != nil {
			t.Fatalf("Open(%s): %v", driver, err)
		}
		t.Cleanup(func() { s.Close() })
		stores[driver] = s
	}
	return stores
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	for driver, s := range openAll(t) {
		value := []byte(`[{"date":"2024-01-01","emoji":"😊"}]`)
		if err := s.Set(ctx, "moodEntries", value); err != nil {
			t.Fatalf("%s: Set: %v", driver, err)
		}
		got, err := s.Get(ctx, "moodEntries")
		if err != nil {
			t.Fatalf("%s: Get: %v", driver, err)
		}
		if string(got) != string(value) {
			t.Errorf("%s: got %q, want %q", driver, got, value)
		}
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	for driver, s := range openAll(t) {
		if _, err := s.Get(ctx, "absent"); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", driver, err)
		}
	}
}

func TestSetOverwrites(t *testing.T) {
	ctx := context.Background()
	for driver, s := range openAll(t) {
		_ = s.Set(ctx, "k", []byte("v1"))
		if err := s.Set(ctx, "k", []byte("v2")); err != nil {
			t.Fatalf("%s: Set: %v", driver, err)
		}
		got, _ := s.Get(ctx, "k")
		if string(got) != "v2" {
			t.Errorf("%s: got %q, want v2", driver, got)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for driver, s := range openAll(t) {
		if err := s.Set(ctx, "k", []byte("v")); err == nil {
			t.Errorf("%s: Set with cancelled ctx should fail", driver)
		}
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestFile_KeyTraversalBlocked(t *testing.T) {
	s, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"../escape", "a/b", "", `..\x`} {
		if err := s.Set(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestFile_AtomicWriteLeavesNoTemp(t *testing.T) {
	s, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = s.Set(ctx, "moodEntries", []byte("original"))
	if err := s.Set(ctx, "moodEntries", []byte("updated")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.Root(), FileName("moodEntries")))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "updated" {
		t.Errorf("content = %q", data)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), tmpPattern))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFile_RootIsFile(t *testing.T) {
	f, _ := os.CreateTemp("", "moodlog-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFile(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestBolt_ReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mood.bolt")
	s, err := OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(context.Background(), "k", []byte("kept")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenBolt(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(context.Background(), "k")
	if err != nil || string(got) != "kept" {
		t.Errorf("after reopen got %q, %v", got, err)
	}
}
