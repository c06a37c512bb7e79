package util

import (
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/todo/pkg/colors"
	"github.com/harrisonrobin/todo/pkg/model"
	"google.golang.org/api/calendar/v3"
)

func testTask() model.Task {
	return model.NewTaskAt("Buy milk", "2% milk", model.PriorityHigh, time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestConvertTaskToCalendarEvent(t *testing.T) {
	task := testTask()
	event, err := ConvertTaskToCalendarEvent(task, colors.NewPalette(nil))
	if err != nil {
		t.Fatalf("ConvertTaskToCalendarEvent failed: %v", err)
	}

	if event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		t.Fatal("ExtendedProperties or Private map is nil")
	}
	if val, ok := event.ExtendedProperties.Private[PropertyTaskID]; !ok || val != task.ID() {
		t.Errorf("Expected %s %s, got %v", PropertyTaskID, task.ID(), val)
	}
	if event.Summary != "Buy milk" {
		t.Errorf("Expected summary 'Buy milk', got %s", event.Summary)
	}
	if event.ColorId != colors.Tomato {
		t.Errorf("Expected tomato color for high priority, got %s", event.ColorId)
	}
	if !strings.Contains(event.Description, "2% milk") || !strings.Contains(event.Description, "Priority: high") {
		t.Errorf("Expected description and priority in event description, got: %s", event.Description)
	}

	start, _ := time.Parse(time.RFC3339, event.Start.DateTime)
	end, _ := time.Parse(time.RFC3339, event.End.DateTime)
	if end.Sub(start) != EventDuration {
		t.Errorf("Expected %v event, got %v", EventDuration, end.Sub(start))
	}

	id, ok := GetTaskIDFromEvent(&calendar.Event{Description: event.Description})
	if !ok || id != task.ID() {
		t.Errorf("Expected to recover ID %s from description, got %s", task.ID(), id)
	}
}

func TestConvertTaskWithoutTimestamp(t *testing.T) {
	if _, err := ConvertTaskToCalendarEvent(model.Task{Name: "legacy"}, nil); err == nil {
		t.Error("Expected error for task without timestamp")
	}
}

func TestEventNeedsUpdate(t *testing.T) {
	task := testTask()
	existing, _ := ConvertTaskToCalendarEvent(task, nil)
	target, _ := ConvertTaskToCalendarEvent(task, nil)

	patch, err := EventNeedsUpdate(existing, target)
	if err != nil || patch != nil {
		t.Fatalf("Expected no patch for identical events, got %v, %v", patch, err)
	}

	task.Priority = model.PriorityLow
	target, _ = ConvertTaskToCalendarEvent(task, nil)
	patch, err = EventNeedsUpdate(existing, target)
	if err != nil || patch == nil {
		t.Fatalf("Expected patch, got %v, %v", patch, err)
	}
	if patch.ColorId != colors.Sage || patch.Summary != "" || patch.Start != nil {
		t.Errorf("Expected only color and description in patch, got %+v", patch)
	}
}
