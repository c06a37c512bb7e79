package orgmode

import (
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/todo/pkg/model"
)

const sampleOrg = `#+TITLE: inbox
* TODO [#A] Buy milk :errand:shop:
  :PROPERTIES:
  :CREATED:  [2024-02-03 Sat 10:15]
  :END:
  2% milk
  from the corner store
* DONE Old thing
  ignored body
** TODO Call mom
   DEADLINE: <2024-02-10 Sat>
   weekly check-in
* TODO [#C] Water plants :home:
`

func TestParse(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 30, 0, 0, time.Local)
	items, err := Parse(strings.NewReader(sampleOrg), now)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d: %v", len(items), items)
	}

	want := []model.Task{
		{Name: "Buy milk", Description: "2% milk from the corner store", Priority: "high", Timestamp: "2024-02-03 10:15"},
		{Name: "Call mom", Description: "weekly check-in", Priority: "medium", Timestamp: "2024-05-01 08:30"},
		{Name: "Water plants", Description: "", Priority: "low", Timestamp: "2024-05-01 08:30"},
	}
	for i, w := range want {
		if items[i].Task != w {
			t.Errorf("item %d: expected %+v, got %+v", i, w, items[i].Task)
		}
	}
	if len(items[0].Tags) != 2 || items[0].Tags[1] != "shop" {
		t.Errorf("Expected tags [errand shop], got %v", items[0].Tags)
	}
}

func TestFilterItems(t *testing.T) {
	items, _ := Parse(strings.NewReader(sampleOrg), time.Now())
	got := FilterItems(items, "home")
	if len(got) != 1 || got[0].Task.Name != "Water plants" {
		t.Errorf("Expected only 'Water plants', got %v", got)
	}
	if len(FilterItems(items, "")) != len(items) {
		t.Errorf("Expected empty tag to keep all items")
	}
}

func TestParseEmphasisedBodyLine(t *testing.T) {
	input := "* TODO Buy milk\n  *urgent* get 2% milk\n  from the corner shop\n*bold* at column zero\n"
	items, err := Parse(strings.NewReader(input), time.Now())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d: %v", len(items), items)
	}
	want := "*urgent* get 2% milk from the corner shop *bold* at column zero"
	if items[0].Task.Description != want {
		t.Errorf("Expected description %q, got %q", want, items[0].Task.Description)
	}
}
