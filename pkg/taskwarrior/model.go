package taskwarrior

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/todo/pkg/model"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, 'Z' indicates UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// Task is the subset of a `task export` record that maps onto a to-do entry.
type Task struct {
	UUID        string      `json:"uuid"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority,omitempty"`
	Project     string      `json:"project,omitempty"`
	Entry       *CustomTime `json:"entry,omitempty"`
	Annotations []struct {
		Description string      `json:"description"`
		Entry       *CustomTime `json:"entry"`
	} `json:"annotations,omitempty"`
}

// ToModel converts an exported task. The taskwarrior description becomes the
// name and the annotations become the description. Entry time is shown in loc.
func (t Task) ToModel(loc *time.Location) model.Task {
	var notes []string
	for _, ann := range t.Annotations {
		notes = append(notes, ann.Description)
	}
	desc := strings.Join(notes, "; ")
	if desc == "" && t.Project != "" {
		desc = "project: " + t.Project
	}

	out := model.Task{
		Name:        t.Description,
		Description: desc,
		Priority:    mapPriority(t.Priority),
	}
	if t.Entry != nil && !t.Entry.IsZero() {
		out.Timestamp = t.Entry.In(loc).Format(model.TimestampLayout)
	}
	return out
}

func mapPriority(p string) string {
	switch strings.ToUpper(p) {
	case "H":
		return model.PriorityHigh
	case "L":
		return model.PriorityLow
	default:
		return model.PriorityMedium
	}
}
