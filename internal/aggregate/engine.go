// Package aggregate folds classified opportunity states into per-ad,
// per-week funnel counters and monetary sums. Counting is cumulative down
// the funnel ladder and each opportunity contributes through its latest
// known state only, so repeated backfills converge instead of
// double-counting stage transitions.
package aggregate

import (
	"time"

	"github.com/Franna88/medwave-sub001/internal/funnel"
	"github.com/Franna88/medwave-sub001/internal/timebucket"
)

// Record is one classified, timestamped observation of an opportunity,
// already resolved to the ad being aggregated.
type Record struct {
	OpportunityID string
	Category      funnel.Category
	ValueCents    int64
	Timestamp     time.Time
}

// WeeklyAggregate is the per-ad, per-week derived entity persisted to the
// dashboard hierarchy.
type WeeklyAggregate struct {
	WeekKey            string `firestore:"weekKey"`
	Leads              int64  `firestore:"leads"`
	BookedAppointments int64  `firestore:"bookedAppointments"`
	Deposits           int64  `firestore:"deposits"`
	CashCollected      int64  `firestore:"cashCollected"`
	CashAmountCents    int64  `firestore:"cashAmountCents"`
}

// Add accumulates other into a, for rollup summation.
func (a *WeeklyAggregate) Add(other *WeeklyAggregate) {
	a.Leads += other.Leads
	a.BookedAppointments += other.BookedAppointments
	a.Deposits += other.Deposits
	a.CashCollected += other.CashCollected
	a.CashAmountCents += other.CashAmountCents
}

// Stats are the diagnostic tallies from one aggregation pass.
type Stats struct {
	Opportunities int // distinct opportunity ids seen
	Counted       int // latest states that reached a week bucket
	ExcludedByAge int // latest states older than the retention window
	SkippedNoTime int // records with no resolvable timestamp
}

// Config carries the product's counting rules.
type Config struct {
	// RetentionWindow bounds how far back a latest state may be and still
	// count. Zero disables the cutoff.
	RetentionWindow time.Duration
	// DefaultDepositCents substitutes for a zero monetary value on deposit
	// and cash stages; the CRM frequently omits the value there. This is a
	// business rule, not data repair.
	DefaultDepositCents int64
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Engine folds records into weekly aggregates.
type Engine struct {
	cfg Config
}

// NewEngine creates an aggregation engine with the given rules.
func NewEngine(cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg}
}

// Aggregate folds one ad's records into a map keyed by week bucket.
// Callers merge-write each week independently. The fold is deterministic:
// identical input always produces identical output, which combined with
// merge writes makes repeated runs idempotent.
func (e *Engine) Aggregate(records []Record) (map[string]*WeeklyAggregate, Stats) {
	var stats Stats
	latest := e.latestStates(records, &stats)

	cutoff := time.Time{}
	if e.cfg.RetentionWindow > 0 {
		cutoff = e.cfg.Now().Add(-e.cfg.RetentionWindow)
	}

	weeks := make(map[string]*WeeklyAggregate)
	for _, rec := range latest {
		if !cutoff.IsZero() && rec.Timestamp.Before(cutoff) {
			stats.ExcludedByAge++
			continue
		}
		stats.Counted++

		key := timebucket.WeekKey(rec.Timestamp)
		agg := weeks[key]
		if agg == nil {
			agg = &WeeklyAggregate{WeekKey: key}
			weeks[key] = agg
		}
		e.apply(agg, rec)
	}
	return weeks, stats
}

// latestStates reduces the record set to one record per opportunity id:
// the one with the maximum timestamp. Ties keep the first record seen at
// that timestamp, so the result depends only on input order, never on map
// iteration.
func (e *Engine) latestStates(records []Record, stats *Stats) []Record {
	byOpp := make(map[string]int) // opportunity id -> index into latest
	var latest []Record

	for _, rec := range records {
		if rec.Timestamp.IsZero() {
			stats.SkippedNoTime++
			continue
		}
		i, seen := byOpp[rec.OpportunityID]
		if !seen {
			byOpp[rec.OpportunityID] = len(latest)
			latest = append(latest, rec)
			continue
		}
		if rec.Timestamp.After(latest[i].Timestamp) {
			latest[i] = rec
		}
	}
	stats.Opportunities = len(byOpp)
	return latest
}

// apply increments the funnel ladder cumulatively: a deposit is also a
// booking and a lead; cash collected is all four.
func (e *Engine) apply(agg *WeeklyAggregate, rec Record) {
	agg.Leads++
	if rec.Category.AtLeast(funnel.Booking) {
		agg.BookedAppointments++
	}
	if rec.Category.AtLeast(funnel.Deposit) {
		agg.Deposits++
		agg.CashAmountCents += e.monetary(rec)
	}
	if rec.Category.AtLeast(funnel.CashCollected) {
		agg.CashCollected++
	}
}

// monetary returns the record's value, substituting the configured default
// when the CRM omitted it.
func (e *Engine) monetary(rec Record) int64 {
	if rec.ValueCents > 0 {
		return rec.ValueCents
	}
	return e.cfg.DefaultDepositCents
}
