package services

import "testing"

func TestFormatBabyCountSymbols(t *testing.T) {
	cases := []struct {
		count int
		want  string
	}{
		{0, "🌟x0"},
		{5, "🌟x5"},
		{10, "🌙x1"},
		{42, "🌙x4🌟x2"},
		{100, "☀️x1"},
		{305, "☀️x3🌟x5"},
		{1000, "👑x1"},
		{1234, "👑x1☀️x2🌙x3🌟x4"},
		{12034, "👑x12🌙x3🌟x4"},
	}

	for _, tc := range cases {
		if got := FormatBabyCountSymbols(tc.count); got != tc.want {
			t.Errorf("FormatBabyCountSymbols(%d) = %q, want %q", tc.count, got, tc.want)
		}
	}
}

func TestFormatBabyDisplay(t *testing.T) {
	got := FormatBabyDisplay("Alice", "Bob", 2, "2026-08-01", 1)
	if got != "1. Alice & Bob's babies 🌟x2 - 2026-08-01" {
		t.Errorf("unexpected indexed display: %q", got)
	}

	got = FormatBabyDisplay("Alice", "Bob", 0, "2026-08-01", 0)
	if got != "Alice & Bob's babies 🌟x0 - 2026-08-01" {
		t.Errorf("unexpected unindexed display: %q", got)
	}
}
