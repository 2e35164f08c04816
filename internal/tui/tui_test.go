package tui

import "testing"

func TestPadToWidth(t *testing.T) {
	if got := padToWidth("ab", 5); got != "ab   " {
		t.Fatalf("padToWidth = %q", got)
	}
	if got := padToWidth("abcdef", 3); got != "abcdef" {
		t.Fatalf("padToWidth should not cut: %q", got)
	}
}

func TestTruncateToWidth(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"世界", 4, "世界"},
		// A double-width rune cannot half-fit.
		{"世界", 3, "世"},
		{"", 5, ""},
	}
	for _, tc := range cases {
		if got := truncateToWidth(tc.in, tc.width); got != tc.want {
			t.Errorf("truncateToWidth(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestFmtRemaining(t *testing.T) {
	cases := []struct {
		secs int64
		want string
	}{
		{0, "closed"},
		{-5, "closed"},
		{59, "0m"},
		{300, "5m"},
		{3600, "1h0m"},
		{5400, "1h30m"},
		{86400, "1d0h"},
		{93600, "1d2h"},
	}
	for _, tc := range cases {
		if got := fmtRemaining(tc.secs); got != tc.want {
			t.Errorf("fmtRemaining(%d) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestFormatInfoLine(t *testing.T) {
	got := formatInfoLine("hi", 6)
	if got != "│hi  │" {
		t.Fatalf("formatInfoLine = %q", got)
	}
	long := formatInfoLine("overflowing text", 6)
	if long != "│over│" {
		t.Fatalf("formatInfoLine with overflow = %q", long)
	}
}
