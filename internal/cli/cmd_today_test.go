package cli

import "testing"

func TestClockTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-06-01T09:00:00", "09:00"},
		{"2024-06-01T17:45:00", "17:45"},
		{"not a timestamp", "not a timestamp"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := clockTime(tt.in); got != tt.want {
			t.Errorf("clockTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderScheduleNil(t *testing.T) {
	// Must not panic or error on an empty day.
	if err := renderSchedule("2024-06-01", nil); err != nil {
		t.Fatalf("renderSchedule(nil) = %v", err)
	}
}
