package portal

import "testing"

func TestAccelToTrigger(t *testing.T) {
	tests := []struct {
		accel string
		want  string
	}{
		{"ctrl+alt+space", "CTRL+ALT+space"},
		{"ctrl+shift+y", "CTRL+SHIFT+y"},
		{"super+f2", "LOGO+F2"},
		{"cmd+enter", "LOGO+Return"},
		{"alt+escape", "ALT+Escape"},
		{"ctrl+alt+shift+p", "CTRL+ALT+SHIFT+p"},
		{"x", "x"},
	}

	for _, tt := range tests {
		if got := accelToTrigger(tt.accel); got != tt.want {
			t.Errorf("accelToTrigger(%q) = %q, want %q", tt.accel, got, tt.want)
		}
	}
}

func TestFailAllCoversWholeBatch(t *testing.T) {
	batch := []Shortcut{
		{ID: "quick_open", Accelerator: "ctrl+alt+space"},
		{ID: "voice_input", Accelerator: "ctrl+shift+m"},
	}

	results := failAll(batch, "portal unreachable")
	if len(results) != len(batch) {
		t.Fatalf("failAll returned %d results, want %d", len(results), len(batch))
	}
	for i, r := range results {
		if r.OK {
			t.Errorf("result %d unexpectedly OK", i)
		}
		if r.ID != batch[i].ID {
			t.Errorf("result %d id = %q, want %q", i, r.ID, batch[i].ID)
		}
		if r.Err != "portal unreachable" {
			t.Errorf("result %d err = %q", i, r.Err)
		}
	}
}
