package google

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harrisonrobin/todo/pkg/colors"
	"github.com/harrisonrobin/todo/pkg/index"
	"github.com/harrisonrobin/todo/pkg/model"
	"github.com/harrisonrobin/todo/pkg/util"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// searchWindow is how far before a task's creation time the description
// search looks for a moved event.
const searchWindow = 30 * 24 * time.Hour

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionUnchanged = "unchanged"
)

// CalendarClient is a Google Calendar API client.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	palette    *colors.Palette
}

// SyncReport counts what a Sync did.
type SyncReport struct {
	Created   int
	Updated   int
	Unchanged int
	Deleted   int
	Skipped   int
}

func (r SyncReport) String() string {
	return fmt.Sprintf("%d created, %d updated, %d unchanged, %d deleted, %d skipped",
		r.Created, r.Updated, r.Unchanged, r.Deleted, r.Skipped)
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex, palette *colors.Palette) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, palette: palette}
}

// Sync pushes every task to the calendar and deletes events whose task is
// gone from the list. Tasks without a timestamp are skipped.
func (c *CalendarClient) Sync(tasks []model.Task) (SyncReport, error) {
	var report SyncReport
	live := make(map[string]bool, len(tasks))

	for _, task := range tasks {
		if task.Timestamp == "" {
			report.Skipped++
			continue
		}
		live[task.ID()] = true

		_, action, err := c.SyncEvent(task)
		if err != nil {
			return report, fmt.Errorf("error syncing task %q: %w", task.Name, err)
		}
		switch action {
		case ActionCreated:
			report.Created++
		case ActionUpdated:
			report.Updated++
		default:
			report.Unchanged++
		}
	}

	if c.index == nil {
		return report, nil
	}
	for _, taskID := range c.index.TaskIDs() {
		if live[taskID] {
			continue
		}
		if err := c.DeleteEvent(c.index.Get(taskID)); err != nil {
			return report, fmt.Errorf("error deleting event for removed task: %w", err)
		}
		c.index.Remove(taskID)
		report.Deleted++
	}
	return report, nil
}

// SyncEvent creates a new event or updates an existing one.
func (c *CalendarClient) SyncEvent(task model.Task) (*calendar.Event, string, error) {
	event, err := util.ConvertTaskToCalendarEvent(task, c.palette)
	if err != nil {
		return nil, "", err
	}
	taskID := task.ID()

	var existingEvent *calendar.Event
	// 1. Try local index first
	if c.index != nil {
		if eventID := c.index.Get(taskID); eventID != "" {
			existingEvent, err = c.srv.Events.Get(c.calendarID, eventID).Do()
			if err != nil || existingEvent.Status == "cancelled" {
				existingEvent = nil
			}
		}
	}

	// 2. Fallback to API search if not found in index
	if existingEvent == nil {
		existingEvent, err = c.GetEventByTaskID(taskID)
		if err != nil {
			return nil, "", fmt.Errorf("error searching for event: %w", err)
		}
	}

	// 3. Events edited by hand may have lost their private property but still
	// carry the ID line in their description.
	if existingEvent == nil {
		created, _ := task.Time()
		existingEvent, err = c.FindEventByDescriptionID(taskID, created.Add(-searchWindow))
		if err != nil {
			return nil, "", fmt.Errorf("error searching for event: %w", err)
		}
	}

	if existingEvent != nil {
		patch, err := util.EventNeedsUpdate(existingEvent, event)
		if err != nil {
			log.Printf("could not compare task with its calendar event: %v", err)
			return nil, "", err
		}
		if c.index != nil {
			c.index.Set(taskID, existingEvent.Id)
		}
		if patch == nil {
			return existingEvent, ActionUnchanged, nil
		}
		updatedEvent, err := c.PatchEvent(existingEvent.Id, patch)
		if err != nil {
			return nil, "", err
		}
		return updatedEvent, ActionUpdated, nil
	}

	createdEvent, err := c.srv.Events.Insert(c.calendarID, event).Do()
	if err != nil {
		return nil, "", err
	}
	if c.index != nil {
		c.index.Set(taskID, createdEvent.Id)
	}
	return createdEvent, ActionCreated, nil
}

// PatchEvent performs a partial update on an event.
func (c *CalendarClient) PatchEvent(eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Do()
}

// DeleteEvent deletes an event from the calendar. Events already gone are not an error.
func (c *CalendarClient) DeleteEvent(eventID string) error {
	err := c.srv.Events.Delete(c.calendarID, eventID).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return nil
	}
	return err
}

// ListEvents fetches events from the calendar starting at timeMin.
func (c *CalendarClient) ListEvents(timeMin time.Time) ([]*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).TimeMin(timeMin.Format(time.RFC3339)).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return events.Items, nil
}

// GetEventByTaskID searches for an event carrying the task ID in its private properties.
func (c *CalendarClient) GetEventByTaskID(taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", util.PropertyTaskID, taskID)).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

// FindEventByDescriptionID lists events from timeMin on and returns the first
// one whose recorded task ID matches taskID.
func (c *CalendarClient) FindEventByDescriptionID(taskID string, timeMin time.Time) (*calendar.Event, error) {
	events, err := c.ListEvents(timeMin)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if id, ok := util.GetTaskIDFromEvent(e); ok && id == taskID {
			return e, nil
		}
	}
	return nil, nil
}
