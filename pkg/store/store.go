package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrisonrobin/todo/pkg/model"
)

const (
	ColName        = "Name"
	ColDescription = "Description"
	ColPriority    = "Priority"
	ColTimestamp   = "Timestamp"
)

// Header is the row written at the top of every task file.
var Header = []string{ColName, ColDescription, ColPriority, ColTimestamp}

var ErrBadHeader = errors.New("task file header is missing a required column")

// Store keeps an ordered list of tasks in sync with a CSV file.
// Every mutation rewrites the whole file. It is not safe for concurrent use.
type Store struct {
	path  string
	tasks []model.Task
}

// New opens the store at path, loading any existing tasks.
func New(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

// Load replaces the in-memory tasks with the file contents.
// A missing file yields an empty store.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.tasks = nil
			return nil
		}
		return fmt.Errorf("failed to open task file: %w", err)
	}
	defer f.Close()

	tasks, err := Decode(f)
	if err != nil {
		return fmt.Errorf("failed to read task file %s: %w", s.path, err)
	}
	s.tasks = tasks
	return nil
}

// Add appends a task and persists the store.
func (s *Store) Add(task model.Task) error {
	s.tasks = append(s.tasks, task)
	return s.save()
}

// Remove deletes the first task named name. It reports false, without
// touching the file, when no task matches.
func (s *Store) Remove(name string) (bool, error) {
	for i, t := range s.tasks {
		if t.Name == name {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return true, s.save()
		}
	}
	return false, nil
}

// List returns a copy of the tasks in insertion order.
func (s *Store) List() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Find returns the first task named name.
func (s *Store) Find(name string) (model.Task, bool) {
	for _, t := range s.tasks {
		if t.Name == name {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create task directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tasks-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp task file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, s.tasks); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write tasks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp task file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace task file: %w", err)
	}
	return nil
}

// Encode writes the header and one row per task.
func Encode(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write([]string{t.Name, t.Description, t.Priority, t.Timestamp}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads tasks written by Encode. Columns are located by header name,
// so files without a Timestamp column load with empty timestamps.
func Decode(r io.Reader) ([]model.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		// Excel and friends prepend a BOM.
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[h] = i
	}
	for _, required := range []string{ColName, ColDescription, ColPriority} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadHeader, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var tasks []model.Task
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, model.Task{
			Name:        field(row, ColName),
			Description: field(row, ColDescription),
			Priority:    field(row, ColPriority),
			Timestamp:   field(row, ColTimestamp),
		})
	}
	return tasks, nil
}
