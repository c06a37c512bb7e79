package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/todo/pkg/colors"
	"github.com/harrisonrobin/todo/pkg/model"
	"google.golang.org/api/calendar/v3"
)

// PropertyTaskID is the private extended property linking an event to a task.
const PropertyTaskID = "todo_id"

// EventDuration is the length of the calendar block created for a task.
const EventDuration = 30 * time.Minute

var taskIDRegex = regexp.MustCompile(`ID: ([a-f0-9\-]+)`)

// EventNeedsUpdate returns a patch event if the fields shared between the
// existing event and the target event differ, or nil if they match.
func EventNeedsUpdate(existingEvent *calendar.Event, targetEvent *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existingEvent.Summary != targetEvent.Summary {
		patch.Summary = targetEvent.Summary
		needsUpdate = true
	}
	if existingEvent.Description != targetEvent.Description {
		patch.Description = targetEvent.Description
		needsUpdate = true
	}
	if existingEvent.ColorId != targetEvent.ColorId {
		patch.ColorId = targetEvent.ColorId
		needsUpdate = true
	}
	if privateTaskID(existingEvent) != privateTaskID(targetEvent) {
		patch.ExtendedProperties = targetEvent.ExtendedProperties
		needsUpdate = true
	}

	if existingEvent.Start == nil || existingEvent.End == nil {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		return patch, nil
	}
	existingStartTime, err := time.Parse(time.RFC3339, existingEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	targetStartTime, err := time.Parse(time.RFC3339, targetEvent.Start.DateTime)
	if err != nil {
		return nil, err
	}
	existingEndTime, err := time.Parse(time.RFC3339, existingEvent.End.DateTime)
	if err != nil {
		return nil, err
	}
	targetEndTime, err := time.Parse(time.RFC3339, targetEvent.End.DateTime)
	if err != nil {
		return nil, err
	}

	if !existingStartTime.Equal(targetStartTime) || !existingEndTime.Equal(targetEndTime) {
		patch.Start = targetEvent.Start
		patch.End = targetEvent.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

// ConvertTaskToCalendarEvent builds the event for a task: a block starting at
// the task's creation time, colored by priority.
func ConvertTaskToCalendarEvent(task model.Task, palette *colors.Palette) (*calendar.Event, error) {
	start, err := task.Time()
	if err != nil {
		return nil, fmt.Errorf("task %q cannot be placed on the calendar: %w", task.Name, err)
	}
	end := start.Add(EventDuration)

	var desc strings.Builder
	if task.Description != "" {
		desc.WriteString(task.Description)
		desc.WriteString("\n\n")
	}
	desc.WriteString(fmt.Sprintf("Priority: %s\n", task.Priority))
	desc.WriteString(fmt.Sprintf("Created: %s\n", task.Timestamp))
	desc.WriteString(fmt.Sprintf("ID: %s\n", task.ID()))

	event := &calendar.Event{
		Summary: task.Name,
		ColorId: palette.ForPriority(task.Priority),
		Start: &calendar.EventDateTime{
			DateTime: start.UTC().Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.UTC().Format(time.RFC3339),
		},
		Description: desc.String(),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				PropertyTaskID: task.ID(),
			},
		},
	}
	return event, nil
}

func privateTaskID(event *calendar.Event) string {
	if event.ExtendedProperties == nil {
		return ""
	}
	return event.ExtendedProperties.Private[PropertyTaskID]
}

// GetTaskIDFromEvent returns the task ID recorded on an event, falling back
// to the ID line in the description for events edited by hand.
func GetTaskIDFromEvent(event *calendar.Event) (string, bool) {
	if id := privateTaskID(event); id != "" {
		return id, true
	}
	matches := taskIDRegex.FindStringSubmatch(event.Description)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}
