package service

import (
	"testing"
	"time"
)

func TestMarketOpenRegularHours(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		open bool
	}{
		// Wednesday 2024-06-12, EDT (UTC-4): session is 13:30-20:00 UTC.
		{"open at bell", time.Date(2024, 6, 12, 13, 30, 0, 0, time.UTC), true},
		{"closed one second before bell", time.Date(2024, 6, 12, 13, 29, 59, 0, time.UTC), false},
		{"open last second", time.Date(2024, 6, 12, 19, 59, 59, 0, time.UTC), true},
		{"closed at close", time.Date(2024, 6, 12, 20, 0, 0, 0, time.UTC), false},
		{"open midday", time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC), true},
		// Wednesday 2024-01-10, EST (UTC-5): session is 14:30-21:00 UTC.
		{"winter open at bell", time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC), true},
		{"winter closed before bell", time.Date(2024, 1, 10, 14, 29, 59, 0, time.UTC), false},
		{"winter closed at close", time.Date(2024, 1, 10, 21, 0, 0, 0, time.UTC), false},
		// Weekend.
		{"saturday closed", time.Date(2024, 6, 8, 15, 0, 0, 0, time.UTC), false},
		{"sunday closed", time.Date(2024, 6, 9, 15, 0, 0, 0, time.UTC), false},
		// Overnight.
		{"after hours closed", time.Date(2024, 6, 12, 22, 0, 0, 0, time.UTC), false},
		{"pre market closed", time.Date(2024, 6, 12, 11, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketOpen(tt.ts); got != tt.open {
				t.Fatalf("MarketOpen(%s) = %v, want %v", tt.ts, got, tt.open)
			}
		})
	}
}

func TestMarketOpenDaylightSavingBoundary(t *testing.T) {
	// DST 2024 runs from the second Sunday of March (Mar 10) to the
	// first Sunday of November (Nov 3).

	// Friday 2024-03-08 is still EST: 13:30 UTC is 08:30 local, closed.
	if MarketOpen(time.Date(2024, 3, 8, 13, 30, 0, 0, time.UTC)) {
		t.Fatal("expected closed before DST at 13:30 UTC")
	}
	if !MarketOpen(time.Date(2024, 3, 8, 14, 30, 0, 0, time.UTC)) {
		t.Fatal("expected open before DST at 14:30 UTC")
	}

	// Monday 2024-03-11 is EDT: 13:30 UTC is 09:30 local, open.
	if !MarketOpen(time.Date(2024, 3, 11, 13, 30, 0, 0, time.UTC)) {
		t.Fatal("expected open after DST switch at 13:30 UTC")
	}

	// Monday 2024-11-04 is back on EST.
	if MarketOpen(time.Date(2024, 11, 4, 13, 30, 0, 0, time.UTC)) {
		t.Fatal("expected closed after DST end at 13:30 UTC")
	}
	if !MarketOpen(time.Date(2024, 11, 4, 14, 30, 0, 0, time.UTC)) {
		t.Fatal("expected open after DST end at 14:30 UTC")
	}
}

func TestNthWeekday(t *testing.T) {
	secondSundayMarch := nthWeekday(2024, time.March, time.Sunday, 2)
	if !secondSundayMarch.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("second Sunday of March 2024 = %s, want 2024-03-10", secondSundayMarch)
	}

	firstSundayNovember := nthWeekday(2024, time.November, time.Sunday, 1)
	if !firstSundayNovember.Equal(time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first Sunday of November 2024 = %s, want 2024-11-03", firstSundayNovember)
	}
}
