package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/todo/pkg/auth"
	"github.com/harrisonrobin/todo/pkg/colors"
	"github.com/harrisonrobin/todo/pkg/index"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// NewClient creates a Calendar client for the calendar named calendarName,
// authenticating with the token stored in configDir.
func NewClient(ctx context.Context, configDir, calendarName string, idx *index.EventIndex, palette *colors.Palette) (*CalendarClient, error) {
	client, err := auth.GetClient(ctx, configDir, auth.Scopes)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %v", err)
	}

	calendarID, err := FindCalendarID(srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, idx, palette), nil
}

// FindCalendarID looks up a calendar in the user's list by its summary.
func FindCalendarID(srv *calendar.Service, calendarName string) (string, error) {
	calendarList, err := srv.CalendarList.List().Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %v", err)
	}

	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", calendarName)
}
