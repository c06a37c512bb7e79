package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// TimestampLayout is the sortable date-and-minute layout used for Task.Timestamp.
const TimestampLayout = "2006-01-02 15:04"

// namespace for IDs derived from name and timestamp.
var idNamespace = uuid.MustParse("6f1c2a5e-9b7d-4c1e-8a0f-3d2b7e4c9a10")

// Task is a single to-do entry.
type Task struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Timestamp   string `json:"timestamp"`
}

// NewTask creates a task stamped with the current local time.
func NewTask(name, description, priority string) Task {
	return NewTaskAt(name, description, priority, time.Now())
}

func NewTaskAt(name, description, priority string, at time.Time) Task {
	return Task{
		Name:        name,
		Description: description,
		Priority:    priority,
		Timestamp:   at.Format(TimestampLayout),
	}
}

// ID returns a stable identifier derived from the name and timestamp.
// It is not persisted; two tasks with the same name and timestamp share an ID.
func (t Task) ID() string {
	return uuid.NewSHA1(idNamespace, []byte(t.Name+"\x00"+t.Timestamp)).String()
}

// Time parses the creation timestamp in local time.
func (t Task) Time() (time.Time, error) {
	if t.Timestamp == "" {
		return time.Time{}, fmt.Errorf("task %q has no timestamp", t.Name)
	}
	return time.ParseInLocation(TimestampLayout, t.Timestamp, time.Local)
}

func (t Task) String() string {
	s := fmt.Sprintf("%s | %s | %s", t.Name, t.Description, t.Priority)
	if t.Timestamp != "" {
		s += " | " + t.Timestamp
	}
	return s
}
