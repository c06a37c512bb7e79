package orgmode

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/todo/pkg/model"
)

var (
	starsRegex    = regexp.MustCompile(`^\*+\s`)
	headlineRegex = regexp.MustCompile(`^\*+\s+TODO\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(?:[\w@]+:)+))?\s*$`)
	createdRegex  = regexp.MustCompile(`^:CREATED:\s+\[(\d{4}-\d{2}-\d{2})(?:\s+[A-Za-z]{3})?(?:\s+(\d{2}:\d{2}))?\]`)
	drawerRegex   = regexp.MustCompile(`^:[A-Z_]+:`)
	scheduleRegex = regexp.MustCompile(`^(DEADLINE|SCHEDULED|CLOSED):`)
)

// Item is a TODO headline with its tags; tags are only used for filtering.
type Item struct {
	Task model.Task
	Tags []string
}

// ParseFile parses an Org-mode file.
func ParseFile(filePath string, now time.Time) ([]Item, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file, now)
}

// Parse turns TODO headlines into tasks. Body lines under a headline become the
// description; a :CREATED: property sets the timestamp, otherwise now is used.
// DONE headlines are skipped.
func Parse(r io.Reader, now time.Time) ([]Item, error) {
	scanner := bufio.NewScanner(r)
	var items []Item
	var current *Item
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Task.Description = strings.Join(body, " ")
		if current.Task.Name != "" {
			items = append(items, *current)
		}
		current = nil
		body = nil
	}

	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		// Headlines start at column 0; indented stars are body markup.
		if starsRegex.MatchString(raw) {
			flush()
			matches := headlineRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &Item{Task: model.Task{
				Name:      strings.TrimSpace(matches[2]),
				Priority:  priorityFromCookie(matches[1]),
				Timestamp: now.Format(model.TimestampLayout),
			}}
			if matches[3] != "" {
				current.Tags = strings.Split(strings.Trim(matches[3], ":"), ":")
			}
			continue
		}
		if current == nil || line == "" {
			continue
		}

		if matches := createdRegex.FindStringSubmatch(line); matches != nil {
			stamp := matches[1] + " 00:00"
			if matches[2] != "" {
				stamp = matches[1] + " " + matches[2]
			}
			current.Task.Timestamp = stamp
			continue
		}
		if drawerRegex.MatchString(line) || scheduleRegex.MatchString(line) {
			continue
		}
		body = append(body, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func priorityFromCookie(cookie string) string {
	switch cookie {
	case "A":
		return model.PriorityHigh
	case "C":
		return model.PriorityLow
	default:
		return model.PriorityMedium
	}
}

// FilterItems keeps the items carrying tag. An empty tag keeps all items.
func FilterItems(items []Item, tag string) []Item {
	if tag == "" {
		return items
	}
	var filtered []Item
	for _, item := range items {
		for _, t := range item.Tags {
			if t == tag {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}
