package colors

import "testing"

func TestForPriority(t *testing.T) {
	p := NewPalette(map[string]string{"Low": "peacock", "medium": "4", "high": "not-a-color"})

	tests := []struct {
		priority string
		want     string
	}{
		{"high", Tomato},
		{"HIGH", Tomato},
		{"medium", Flamingo},
		{"low", Peacock},
		{"someday", Graphite},
	}
	for _, tt := range tests {
		if got := p.ForPriority(tt.priority); got != tt.want {
			t.Errorf("ForPriority(%q) = %s, want %s", tt.priority, got, tt.want)
		}
	}

	var nilPalette *Palette
	if got := nilPalette.ForPriority("low"); got != Sage {
		t.Errorf("Expected default Sage for nil palette, got %s", got)
	}
}
