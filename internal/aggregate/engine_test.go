package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/Franna88/medwave-sub001/internal/funnel"
)

var testNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(Config{
		RetentionWindow:     180 * 24 * time.Hour,
		DefaultDepositCents: 50000,
		Now:                 func() time.Time { return testNow },
	})
}

func TestAggregate_LatestStateWins(t *testing.T) {
	// O1 appears as a Monday lead and a Wednesday deposit (value 0) in the
	// same week: one lead, one deposit, default deposit amount, not two
	// leads.
	mon := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	wed := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	weeks, stats := testEngine().Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.Lead, Timestamp: mon},
		{OpportunityID: "o-1", Category: funnel.Deposit, ValueCents: 0, Timestamp: wed},
	})

	agg := weeks["2024-03-11_2024-03-17"]
	if agg == nil {
		t.Fatalf("missing expected week, got %v", weeks)
	}
	if agg.Leads != 1 {
		t.Errorf("Leads = %d, want 1 (no double count)", agg.Leads)
	}
	if agg.Deposits != 1 {
		t.Errorf("Deposits = %d, want 1", agg.Deposits)
	}
	if agg.CashAmountCents != 50000 {
		t.Errorf("CashAmountCents = %d, want default 50000", agg.CashAmountCents)
	}
	if stats.Opportunities != 1 || stats.Counted != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAggregate_CumulativeLadder(t *testing.T) {
	ts := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	weeks, _ := testEngine().Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.CashCollected, ValueCents: 250000, Timestamp: ts},
	})

	agg := weeks["2024-03-11_2024-03-17"]
	if agg.Leads != 1 || agg.BookedAppointments != 1 || agg.Deposits != 1 || agg.CashCollected != 1 {
		t.Errorf("cash-collected opportunity must increment the whole ladder, got %+v", agg)
	}
	if agg.CashAmountCents != 250000 {
		t.Errorf("CashAmountCents = %d", agg.CashAmountCents)
	}
}

func TestAggregate_BookingDoesNotCountDeposit(t *testing.T) {
	ts := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	weeks, _ := testEngine().Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.Booking, Timestamp: ts},
	})
	agg := weeks["2024-03-11_2024-03-17"]
	if agg.BookedAppointments != 1 {
		t.Errorf("BookedAppointments = %d", agg.BookedAppointments)
	}
	if agg.Deposits != 0 || agg.CashCollected != 0 || agg.CashAmountCents != 0 {
		t.Errorf("booking must not count further rungs: %+v", agg)
	}
}

func TestAggregate_LostStillCountsAsLead(t *testing.T) {
	ts := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	weeks, _ := testEngine().Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.Lost, Timestamp: ts},
	})
	agg := weeks["2024-03-11_2024-03-17"]
	if agg.Leads != 1 {
		t.Errorf("Leads = %d, want 1", agg.Leads)
	}
	if agg.BookedAppointments != 0 || agg.Deposits != 0 {
		t.Errorf("lost must not climb the ladder: %+v", agg)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	records := []Record{
		{OpportunityID: "o-1", Category: funnel.Lead, Timestamp: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)},
		{OpportunityID: "o-1", Category: funnel.Deposit, Timestamp: time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)},
		{OpportunityID: "o-2", Category: funnel.Booking, ValueCents: 1000, Timestamp: time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)},
		{OpportunityID: "o-3", Category: funnel.CashCollected, ValueCents: 99900, Timestamp: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
	}

	e := testEngine()
	run1, stats1 := e.Aggregate(records)
	run2, stats2 := e.Aggregate(records)

	if !reflect.DeepEqual(run1, run2) {
		t.Errorf("identical input produced different aggregates:\nrun1=%v\nrun2=%v", run1, run2)
	}
	if stats1 != stats2 {
		t.Errorf("stats diverged: %+v vs %+v", stats1, stats2)
	}
}

func TestAggregate_AtMostOneContribution(t *testing.T) {
	// Five states for one opportunity across three weeks: exactly one
	// record contributes, in the week of the newest timestamp.
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var records []Record
	for i := 0; i < 5; i++ {
		records = append(records, Record{
			OpportunityID: "o-1",
			Category:      funnel.Category(i % 4),
			Timestamp:     base.AddDate(0, 0, i*4),
		})
	}
	weeks, stats := testEngine().Aggregate(records)

	var totalLeads int64
	for _, agg := range weeks {
		totalLeads += agg.Leads
	}
	if totalLeads != 1 {
		t.Errorf("total leads across weeks = %d, want 1", totalLeads)
	}
	if stats.Opportunities != 1 || stats.Counted != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAggregate_TimestampTiesKeepFirstSeen(t *testing.T) {
	ts := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	weeks, _ := testEngine().Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.Deposit, ValueCents: 111, Timestamp: ts},
		{OpportunityID: "o-1", Category: funnel.Booking, Timestamp: ts},
	})
	agg := weeks["2024-03-11_2024-03-17"]
	// First record seen at the tied timestamp stays the latest state.
	if agg.Deposits != 1 || agg.CashAmountCents != 111 {
		t.Errorf("tie break must keep first seen: %+v", agg)
	}
}

func TestAggregate_RetentionWindowExcludes(t *testing.T) {
	old := testNow.Add(-181 * 24 * time.Hour)
	weeks, stats := testEngine().Aggregate([]Record{
		{OpportunityID: "o-old", Category: funnel.CashCollected, ValueCents: 100000, Timestamp: old},
	})
	if len(weeks) != 0 {
		t.Errorf("expected no weeks, got %v", weeks)
	}
	if stats.ExcludedByAge != 1 {
		t.Errorf("ExcludedByAge = %d, want 1", stats.ExcludedByAge)
	}
	if stats.Counted != 0 {
		t.Errorf("Counted = %d, want 0", stats.Counted)
	}
}

func TestAggregate_RetentionAppliesToLatestStateOnly(t *testing.T) {
	// The opportunity's older state is within the window but its latest
	// state is too old: the opportunity is excluded entirely, not counted
	// at its older state.
	within := testNow.Add(-10 * 24 * time.Hour)
	e := NewEngine(Config{
		RetentionWindow:     30 * 24 * time.Hour,
		DefaultDepositCents: 50000,
		Now:                 func() time.Time { return testNow },
	})
	// Latest by timestamp is outside the window, contrived but possible
	// with clock-skewed CRM data.
	weeks, stats := e.Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.Lead, Timestamp: within},
		{OpportunityID: "o-1", Category: funnel.Deposit, Timestamp: testNow.Add(31 * 24 * time.Hour * -1)},
	})
	if stats.Counted != 1 {
		// within is newer than the -31d record, so it IS the latest state
		// and counts.
		t.Errorf("stats = %+v, latest in-window state should count", stats)
	}
	if len(weeks) != 1 {
		t.Errorf("weeks = %v", weeks)
	}
}

func TestAggregate_SkipsRecordsWithoutTimestamp(t *testing.T) {
	weeks, stats := testEngine().Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.Lead},
		{OpportunityID: "o-2", Category: funnel.Lead, Timestamp: time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)},
	})
	if stats.SkippedNoTime != 1 {
		t.Errorf("SkippedNoTime = %d, want 1", stats.SkippedNoTime)
	}
	if len(weeks) != 1 {
		t.Errorf("the good record must still aggregate, weeks = %v", weeks)
	}
}

func TestAggregate_RealValueNotSubstituted(t *testing.T) {
	ts := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	weeks, _ := testEngine().Aggregate([]Record{
		{OpportunityID: "o-1", Category: funnel.Deposit, ValueCents: 12345, Timestamp: ts},
	})
	agg := weeks["2024-03-11_2024-03-17"]
	if agg.CashAmountCents != 12345 {
		t.Errorf("CashAmountCents = %d, want actual value 12345", agg.CashAmountCents)
	}
}

func TestWeeklyAggregate_Add(t *testing.T) {
	a := &WeeklyAggregate{WeekKey: "w", Leads: 1, BookedAppointments: 1, Deposits: 1, CashCollected: 0, CashAmountCents: 100}
	b := &WeeklyAggregate{WeekKey: "w", Leads: 2, BookedAppointments: 0, Deposits: 1, CashCollected: 1, CashAmountCents: 900}
	a.Add(b)
	if a.Leads != 3 || a.BookedAppointments != 1 || a.Deposits != 2 || a.CashCollected != 1 || a.CashAmountCents != 1000 {
		t.Errorf("Add result = %+v", a)
	}
}
