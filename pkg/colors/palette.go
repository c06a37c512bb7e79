package colors

import (
	"strings"

	"github.com/harrisonrobin/todo/pkg/model"
)

// Google Calendar event color IDs.
const (
	Lavender  = "1"
	Sage      = "2"
	Grape     = "3"
	Flamingo  = "4"
	Banana    = "5"
	Tangerine = "6"
	Peacock   = "7"
	Graphite  = "8"
	Blueberry = "9"
	Basil     = "10"
	Tomato    = "11"
)

var defaults = map[string]string{
	model.PriorityHigh:   Tomato,
	model.PriorityMedium: Banana,
	model.PriorityLow:    Sage,
}

// Palette maps priorities to event colors. Overrides come from config and may
// name a color ("tomato") or give its ID ("11").
type Palette struct {
	overrides map[string]string
}

func NewPalette(overrides map[string]string) *Palette {
	p := &Palette{overrides: make(map[string]string)}
	for priority, color := range overrides {
		if id, ok := resolve(color); ok {
			p.overrides[strings.ToLower(priority)] = id
		}
	}
	return p
}

// ForPriority returns the color ID for a task priority.
func (p *Palette) ForPriority(priority string) string {
	key := strings.ToLower(strings.TrimSpace(priority))
	if p != nil {
		if id, ok := p.overrides[key]; ok {
			return id
		}
	}
	if id, ok := defaults[key]; ok {
		return id
	}
	return Graphite
}

func resolve(color string) (string, bool) {
	names := map[string]string{
		"lavender": Lavender, "sage": Sage, "grape": Grape, "flamingo": Flamingo,
		"banana": Banana, "tangerine": Tangerine, "peacock": Peacock, "graphite": Graphite,
		"blueberry": Blueberry, "basil": Basil, "tomato": Tomato,
	}
	c := strings.ToLower(strings.TrimSpace(color))
	if id, ok := names[c]; ok {
		return id, true
	}
	for _, id := range names {
		if id == c {
			return id, true
		}
	}
	return "", false
}
