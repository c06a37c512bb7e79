package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/todo/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "tasks.csv"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func at(min int) time.Time {
	return time.Date(2024, 3, 1, 9, min, 0, 0, time.Local)
}

func TestNewMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	if got := s.List(); len(got) != 0 {
		t.Fatalf("Expected empty store, got %v", got)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("Expected no file to be created on load, stat err: %v", err)
	}
}

func TestAddRemoveScenario(t *testing.T) {
	s := newTestStore(t)
	milk := model.NewTaskAt("Buy milk", "2% milk", "high", at(0))
	mom := model.NewTaskAt("Call mom", "weekly check-in", "medium", at(1))

	if err := s.Add(milk); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add(mom); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := s.List(); !reflect.DeepEqual(got, []model.Task{milk, mom}) {
		t.Fatalf("Expected [milk mom], got %v", got)
	}

	ok, err := s.Remove("Buy milk")
	if err != nil || !ok {
		t.Fatalf("Expected Remove to succeed, got %v, %v", ok, err)
	}
	if got := s.List(); !reflect.DeepEqual(got, []model.Task{mom}) {
		t.Fatalf("Expected [mom], got %v", got)
	}

	ok, err = s.Remove("Buy milk")
	if err != nil || ok {
		t.Fatalf("Expected second Remove to fail, got %v, %v", ok, err)
	}
	if got := s.List(); len(got) != 1 {
		t.Errorf("Expected store unchanged, got %v", got)
	}
}

func TestRemoveUnknownLeavesFileUntouched(t *testing.T) {
	s := newTestStore(t)
	if err := s.Add(model.NewTaskAt("a", "b", "low", at(0))); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	before, _ := os.ReadFile(s.Path())
	info, _ := os.Stat(s.Path())

	ok, err := s.Remove("nope")
	if err != nil || ok {
		t.Fatalf("Expected not found, got %v, %v", ok, err)
	}
	after, _ := os.ReadFile(s.Path())
	info2, _ := os.Stat(s.Path())
	if string(before) != string(after) || !info.ModTime().Equal(info2.ModTime()) {
		t.Errorf("Expected file untouched")
	}
}

func TestRemoveFirstDuplicateOnly(t *testing.T) {
	s := newTestStore(t)
	first := model.NewTaskAt("dup", "first", "high", at(0))
	second := model.NewTaskAt("dup", "second", "low", at(1))
	s.Add(first)
	s.Add(second)

	if ok, _ := s.Remove("dup"); !ok {
		t.Fatal("Expected Remove to succeed")
	}
	got := s.List()
	if len(got) != 1 || got[0].Description != "second" {
		t.Errorf("Expected only second duplicate left, got %v", got)
	}
}

func TestReloadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	want := []model.Task{
		model.NewTaskAt("one", "with, comma", "high", at(0)),
		model.NewTaskAt("two", "with \"quotes\"\nand newline", "medium", at(1)),
		model.NewTaskAt("three", "", "", at(2)),
	}
	for _, task := range want {
		if err := s.Add(task); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	reloaded, err := New(s.Path())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := reloaded.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}

	// Loading again with no mutation is idempotent.
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := reloaded.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v after second load, got %v", want, got)
	}
}

func TestFileFormat(t *testing.T) {
	s := newTestStore(t)
	s.Add(model.Task{Name: "Buy milk", Description: "2% milk", Priority: "high", Timestamp: "2024-03-01 09:00"})

	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := "Name,Description,Priority,Timestamp\nBuy milk,2% milk,high,2024-03-01 09:00\n"
	if string(b) != want {
		t.Errorf("Expected file %q, got %q", want, string(b))
	}
}

func TestLoadLegacyAndReorderedHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []model.Task
	}{
		{
			name:  "three columns",
			input: "Name,Description,Priority\nBuy milk,2% milk,high\n",
			want:  []model.Task{{Name: "Buy milk", Description: "2% milk", Priority: "high"}},
		},
		{
			name:  "reordered",
			input: "Priority,Timestamp,Name,Description\nlow,2024-01-02 03:04,x,y\n",
			want:  []model.Task{{Name: "x", Description: "y", Priority: "low", Timestamp: "2024-01-02 03:04"}},
		},
		{
			name:  "bom",
			input: "\ufeffName,Description,Priority\na,b,c\n",
			want:  []model.Task{{Name: "a", Description: "b", Priority: "c"}},
		},
		{
			name:  "header only",
			input: "Name,Description,Priority,Timestamp\n",
			want:  nil,
		},
		{
			name:  "empty file",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLoadForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.csv")
	if err := os.WriteFile(path, []byte("id,title\n1,x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := New(path)
	if !errors.Is(err, ErrBadHeader) {
		t.Errorf("Expected ErrBadHeader, got %v", err)
	}
}

func TestSaveCreatesDirectoryAndLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	s, err := New(filepath.Join(dir, "tasks.csv"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Add(model.NewTask("a", "b", "low")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "tasks.csv" {
		t.Errorf("Expected only tasks.csv, got %v", entries)
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	s.Add(model.NewTask("a", "b", "low"))
	got := s.List()
	got[0].Name = "mutated"
	if task, ok := s.Find("a"); !ok || task.Name != "a" {
		t.Errorf("Expected store to be unaffected by caller mutation")
	}
}
