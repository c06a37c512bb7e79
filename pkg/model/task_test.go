package model

import (
	"testing"
	"time"
)

func TestNewTaskAtStampsTimestamp(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 59, 0, time.Local)
	task := NewTaskAt("Buy milk", "2% milk", PriorityHigh, at)

	if task.Timestamp != "2024-05-06 07:08" {
		t.Errorf("Expected timestamp '2024-05-06 07:08', got '%s'", task.Timestamp)
	}
	parsed, err := task.Time()
	if err != nil {
		t.Fatalf("Time failed: %v", err)
	}
	if !parsed.Equal(at.Truncate(time.Minute)) {
		t.Errorf("Expected %v, got %v", at.Truncate(time.Minute), parsed)
	}
}

func TestIDIsStable(t *testing.T) {
	a := Task{Name: "x", Timestamp: "2024-01-01 00:00"}
	b := Task{Name: "x", Description: "other", Timestamp: "2024-01-01 00:00"}
	c := Task{Name: "x", Timestamp: "2024-01-01 00:01"}

	if a.ID() != b.ID() {
		t.Errorf("Expected equal IDs for same name and timestamp")
	}
	if a.ID() == c.ID() {
		t.Errorf("Expected different IDs for different timestamps")
	}
}

func TestString(t *testing.T) {
	task := Task{Name: "a", Description: "b", Priority: "low"}
	if got := task.String(); got != "a | b | low" {
		t.Errorf("Expected 'a | b | low', got '%s'", got)
	}
	task.Timestamp = "2024-01-01 00:00"
	if got := task.String(); got != "a | b | low | 2024-01-01 00:00" {
		t.Errorf("unexpected rendering: %s", got)
	}
}

func TestTimeWithoutTimestamp(t *testing.T) {
	if _, err := (Task{Name: "legacy"}).Time(); err == nil {
		t.Error("Expected error for empty timestamp")
	}
}
