package timebucket

import (
	"testing"
	"time"
)

func TestWeekKey_SpansMondayToSunday(t *testing.T) {
	// 2024-03-13 is a Wednesday.
	d := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)
	got := WeekKey(d)
	want := "2024-03-11_2024-03-17"
	if got != want {
		t.Errorf("WeekKey(%v) = %q, want %q", d, got, want)
	}
}

func TestWeekKey_MondayMapsToItself(t *testing.T) {
	d := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if got := WeekKey(d); got != "2024-03-11_2024-03-17" {
		t.Errorf("WeekKey(Monday) = %q", got)
	}
}

func TestWeekKey_SundayBelongsToPrecedingMonday(t *testing.T) {
	d := time.Date(2024, 3, 17, 23, 59, 59, 0, time.UTC)
	if got := WeekKey(d); got != "2024-03-11_2024-03-17" {
		t.Errorf("WeekKey(Sunday) = %q", got)
	}
}

func TestWeekKey_CrossesMonthBoundary(t *testing.T) {
	// 2024-04-01 is a Monday; 2024-03-31 (Sunday) belongs to the week
	// starting Monday 2024-03-25.
	d := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	if got := WeekKey(d); got != "2024-03-25_2024-03-31" {
		t.Errorf("WeekKey(month-end Sunday) = %q", got)
	}
}

func TestWeekStart_AlwaysMondayAndNotAfterInput(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		d := start.AddDate(0, 0, i)
		ws := WeekStart(d)
		if ws.Weekday() != time.Monday {
			t.Fatalf("WeekStart(%v) = %v, not a Monday", d, ws)
		}
		if ws.After(d) {
			t.Fatalf("WeekStart(%v) = %v is after input", d, ws)
		}
		if d.Sub(ws) >= 7*24*time.Hour {
			t.Fatalf("WeekStart(%v) = %v is more than 6 days back", d, ws)
		}
	}
}

func TestMonthKey(t *testing.T) {
	d := time.Date(2024, 11, 3, 8, 0, 0, 0, time.UTC)
	if got := MonthKey(d); got != "2024-11" {
		t.Errorf("MonthKey = %q, want 2024-11", got)
	}
}

func TestParseWeekKey_RoundTrip(t *testing.T) {
	d := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)
	key := WeekKey(d)
	start, err := ParseWeekKey(key, time.UTC)
	if err != nil {
		t.Fatalf("ParseWeekKey(%q): %v", key, err)
	}
	if !start.Equal(WeekStart(d)) {
		t.Errorf("ParseWeekKey(%q) = %v, want %v", key, start, WeekStart(d))
	}
}

func TestParseWeekKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "2024-06-17", "2024-06-17_garbage!!", "x"} {
		if _, err := ParseWeekKey(key, time.UTC); err == nil {
			t.Errorf("ParseWeekKey(%q): expected error", key)
		}
	}
}

func TestParseTimestamp_NaiveUsesReportingLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseTimestamp("2024-03-13T22:30:00", loc)
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if got.Location() != loc {
		t.Errorf("expected naive timestamp to stay in reporting location, got %v", got.Location())
	}
	// Still Wednesday in the reporting zone even though it is Thursday UTC.
	if WeekKey(got) != "2024-03-11_2024-03-17" {
		t.Errorf("WeekKey = %q", WeekKey(got))
	}
}

func TestParseTimestamp_RFC3339(t *testing.T) {
	got, err := ParseTimestamp("2024-03-13T10:00:00Z", time.UTC)
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}
}

func TestParseTimestamp_Unparsable(t *testing.T) {
	if _, err := ParseTimestamp("not-a-date", time.UTC); err == nil {
		t.Error("expected error")
	}
	if _, err := ParseTimestamp("", time.UTC); err == nil {
		t.Error("expected error for empty string")
	}
}
