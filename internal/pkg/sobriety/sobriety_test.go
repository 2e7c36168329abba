package sobriety

import (
	"testing"
	"time"
)

func TestDescribe(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	daysAgo := func(n int) time.Time {
		return now.AddDate(0, 0, -n)
	}

	tests := []struct {
		name      string
		cleanDate time.Time
		want      string
	}{
		{"same day", now, "0 days"},
		{"one day", daysAgo(1), "1 day"},
		{"under a month", daysAgo(29), "29 days"},
		{"exactly a month", daysAgo(30), "1 month"},
		{"two months", daysAgo(61), "2 months"},
		{"almost a year stays in months", daysAgo(364), "12 months"},
		{"a full year", daysAgo(366), "1 year"},
		{"year with remainder", daysAgo(366 + 90), "1 year, 3 months"},
		{"two years", daysAgo(731), "2 years"},
		{"future clean date", now.AddDate(0, 0, 1), ""},
		{"zero clean date", time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.cleanDate, now); got != tt.want {
				t.Errorf("Describe(%v) = %q, want %q", tt.cleanDate, got, tt.want)
			}
		})
	}
}
