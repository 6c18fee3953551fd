// Package backfill drives the historical migration: fetch everything,
// resolve attribution, aggregate per week, merge-write the dashboard
// hierarchy. Runs are resumable through JSON checkpoints and safe to
// repeat because every write converges.
package backfill

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
	"github.com/Franna88/medwave-sub001/internal/attribution"
	"github.com/Franna88/medwave-sub001/internal/funnel"
	"github.com/Franna88/medwave-sub001/internal/ghl"
	"github.com/Franna88/medwave-sub001/internal/meta"
	"github.com/Franna88/medwave-sub001/internal/store"
	"github.com/Franna88/medwave-sub001/internal/timebucket"
)

// OpportunitySource is the CRM surface the driver needs.
type OpportunitySource interface {
	SearchOpportunities(ctx context.Context, pipelineID string) ([]ghl.Opportunity, error)
	GetPipelines(ctx context.Context) ([]ghl.Pipeline, error)
}

// AdSource is the ads-platform surface the driver needs.
type AdSource interface {
	ListAds(ctx context.Context) ([]meta.Ad, error)
	GetAdInsights(ctx context.Context, adID string, since, until time.Time) ([]meta.Insight, error)
}

// Options controls a single run.
type Options struct {
	PipelineID string
	// Months restricts which YYYY-MM buckets get written. Empty means
	// every month the data touches.
	Months []string
	// DryRun computes and reports everything but performs no writes.
	DryRun bool
	// ResumeJobID picks up a previous job's checkpoint; completed months
	// are skipped.
	ResumeJobID string
	// WithInsights also fetches and writes Meta weekly insights.
	WithInsights bool
	// CheckpointEvery saves the checkpoint after this many weekly writes.
	CheckpointEvery int
}

// Driver orchestrates one backfill job.
type Driver struct {
	ghl         OpportunitySource
	meta        AdSource
	classifier  *funnel.Classifier
	engine      *aggregate.Engine
	store       store.Store
	checkpoints *Checkpoints
	loc         *time.Location
	opts        Options
}

// NewDriver wires a driver from its dependencies.
func NewDriver(crm OpportunitySource, ads AdSource, classifier *funnel.Classifier, engine *aggregate.Engine, st store.Store, checkpoints *Checkpoints, loc *time.Location, opts Options) *Driver {
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 50
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Driver{
		ghl:         crm,
		meta:        ads,
		classifier:  classifier,
		engine:      engine,
		store:       st,
		checkpoints: checkpoints,
		loc:         loc,
		opts:        opts,
	}
}

// adPlan is everything to be written for one ad.
type adPlan struct {
	ad    meta.Ad
	weeks map[string]*aggregate.WeeklyAggregate
}

// Run executes the job to completion or context cancellation and returns
// the final checkpoint. Per-record failures are logged and tallied, never
// fatal; the run ends FAILED_PARTIAL when any occurred.
func (d *Driver) Run(ctx context.Context) (*Checkpoint, error) {
	cp, err := d.openCheckpoint()
	if err != nil {
		return nil, err
	}
	log.Printf("[Backfill] job %s starting (dryRun=%v, resume=%v)", cp.JobID, d.opts.DryRun, d.opts.ResumeJobID != "")

	// A resumed job refetches and re-resolves everything, so the coverage
	// tallies restart rather than stack on the previous attempt's.
	cp.Coverage = newCoverage()

	cp.State = StateFetching
	d.save(cp)
	ads, opps, stages, err := d.fetch(ctx, cp)
	if err != nil {
		cp.State = StateFailedPartial
		d.save(cp)
		return cp, err
	}

	cp.State = StateResolving
	d.save(cp)
	idx := attribution.NewIndex(ads)
	byAd := d.resolve(opps, stages, idx, cp)

	cp.State = StateAggregating
	d.save(cp)
	months := d.aggregate(byAd, idx, cp)

	cp.State = StateWriting
	d.save(cp)
	if err := d.write(ctx, months, cp); err != nil {
		cp.State = StateFailedPartial
		d.save(cp)
		return cp, err
	}

	if cp.Coverage.Errors > 0 {
		cp.State = StateFailedPartial
	} else {
		cp.State = StateDone
	}
	d.save(cp)
	d.report(cp)
	return cp, nil
}

func (d *Driver) openCheckpoint() (*Checkpoint, error) {
	if d.opts.ResumeJobID != "" {
		cp, err := d.checkpoints.Load(d.opts.ResumeJobID)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		log.Printf("[Backfill] resuming job %s from %s, %d months already complete",
			cp.JobID, cp.State, len(cp.CompletedMonths))
		return cp, nil
	}
	return &Checkpoint{
		JobID:     uuid.NewString(),
		State:     StateNotStarted,
		DryRun:    d.opts.DryRun,
		StartedAt: time.Now(),
		Coverage:  newCoverage(),
	}, nil
}

func (d *Driver) save(cp *Checkpoint) {
	if err := d.checkpoints.Save(cp); err != nil {
		// A lost checkpoint degrades resumability, not correctness.
		log.Printf("[Backfill] checkpoint save failed: %v", err)
	}
}

// fetch pulls ads, opportunities and pipeline metadata. Both paginated
// sources return partial results alongside a later-page error; those are
// tallied and the fetched records still flow through the run. Only an
// empty result with an error (page 1 exhausted its retries) is fatal:
// with no page 1 there is nothing to do.
func (d *Driver) fetch(ctx context.Context, cp *Checkpoint) ([]meta.Ad, []ghl.Opportunity, funnel.StageIndex, error) {
	ads, err := d.meta.ListAds(ctx)
	if err != nil {
		if len(ads) == 0 {
			return nil, nil, nil, fmt.Errorf("fetching ads: %w", err)
		}
		log.Printf("[Backfill] ads fetch incomplete, continuing with %d records: %v", len(ads), err)
		cp.Coverage.Errors++
	}
	log.Printf("[Backfill] fetched %d ads", len(ads))

	opps, err := d.ghl.SearchOpportunities(ctx, d.opts.PipelineID)
	if err != nil {
		if len(opps) == 0 {
			return nil, nil, nil, fmt.Errorf("fetching opportunities: %w", err)
		}
		log.Printf("[Backfill] opportunity fetch incomplete, continuing with %d records: %v", len(opps), err)
		cp.Coverage.Errors++
	}
	log.Printf("[Backfill] fetched %d opportunities", len(opps))

	pipelines, err := d.ghl.GetPipelines(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetching pipelines: %w", err)
	}
	stages := make(funnel.StageIndex)
	for _, p := range pipelines {
		for _, s := range p.Stages {
			stages[s.ID] = s.Name
		}
	}
	return ads, opps, stages, nil
}

// resolve attributes each opportunity to an ad and classifies its stage,
// producing per-ad record sets for the engine.
func (d *Driver) resolve(opps []ghl.Opportunity, stages funnel.StageIndex, idx *attribution.Index, cp *Checkpoint) map[string][]aggregate.Record {
	byAd := make(map[string][]aggregate.Record)
	cp.Coverage.Opportunities = len(opps)

	for i := range opps {
		opp := &opps[i]
		res := attribution.Resolve(opp, idx)
		if !res.Attributed() {
			cp.Coverage.Unattributed++
			cp.Coverage.ByMethod[attribution.MethodNone]++
			continue
		}
		cp.Coverage.Attributed++
		cp.Coverage.ByMethod[res.Method]++

		stageName := opp.StageName
		if stageName == "" {
			stageName = stages.Name(opp.PipelineStageID)
		}
		byAd[res.AdID] = append(byAd[res.AdID], aggregate.Record{
			OpportunityID: opp.ID,
			Category:      d.classifier.Classify(stageName),
			ValueCents:    opp.ValueCents(),
			Timestamp:     d.timestampFor(opp),
		})
	}
	log.Printf("[Backfill] resolved %d/%d opportunities across %d ads",
		cp.Coverage.Attributed, len(opps), len(byAd))
	return byAd
}

// timestampFor prefers the last stage change over creation time. Both
// missing or unparsable yields the zero time, which the engine tallies as
// skipped rather than guessing a bucket.
func (d *Driver) timestampFor(opp *ghl.Opportunity) time.Time {
	for _, raw := range []string{opp.LastStageChangeAt, opp.CreatedAt} {
		if raw == "" {
			continue
		}
		t, err := timebucket.ParseTimestamp(raw, d.loc)
		if err != nil {
			log.Printf("[Backfill] opportunity %s: unparsable timestamp %q", opp.ID, raw)
			continue
		}
		return t
	}
	return time.Time{}
}

// aggregate runs the engine per ad and groups the resulting weekly docs
// into month buckets keyed by the week's Monday.
func (d *Driver) aggregate(byAd map[string][]aggregate.Record, idx *attribution.Index, cp *Checkpoint) map[string]map[string]*adPlan {
	months := make(map[string]map[string]*adPlan)
	for adID, records := range byAd {
		weeks, stats := d.engine.Aggregate(records)
		cp.Coverage.SkippedNoTime += stats.SkippedNoTime
		cp.Coverage.ExcludedByAge += stats.ExcludedByAge

		for weekKey, agg := range weeks {
			monday, err := timebucket.ParseWeekKey(weekKey, d.loc)
			if err != nil {
				// Engine-produced keys always parse; guard anyway.
				log.Printf("[Backfill] ad %s: bad week key %q: %v", adID, weekKey, err)
				cp.Coverage.Errors++
				continue
			}
			month := timebucket.MonthKey(monday)
			if !d.wantMonth(month) {
				continue
			}
			if months[month] == nil {
				months[month] = make(map[string]*adPlan)
			}
			plan := months[month][adID]
			if plan == nil {
				plan = &adPlan{weeks: make(map[string]*aggregate.WeeklyAggregate)}
				plan.ad, _ = idx.Ad(adID)
				months[month][adID] = plan
			}
			plan.weeks[weekKey] = agg
		}
	}
	log.Printf("[Backfill] aggregated into %d month buckets", len(months))
	return months
}

func (d *Driver) wantMonth(month string) bool {
	if len(d.opts.Months) == 0 {
		return true
	}
	for _, m := range d.opts.Months {
		if m == month {
			return true
		}
	}
	return false
}

// write flushes the plans month by month. Months complete in a previous
// run of this job are skipped; within a month every write is a merge, so
// an interrupted month simply re-runs.
func (d *Driver) write(ctx context.Context, months map[string]map[string]*adPlan, cp *Checkpoint) error {
	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	for _, month := range keys {
		if cp.monthDone(month) {
			log.Printf("[Backfill] month %s already complete, skipping", month)
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted before month %s: %w", month, err)
		}
		if err := d.writeMonth(ctx, month, months[month], cp); err != nil {
			return err
		}
		cp.CompletedMonths = append(cp.CompletedMonths, month)
		d.save(cp)
	}
	return nil
}

func (d *Driver) writeMonth(ctx context.Context, month string, plans map[string]*adPlan, cp *Checkpoint) error {
	adIDs := make([]string, 0, len(plans))
	for id := range plans {
		adIDs = append(adIDs, id)
	}
	sort.Strings(adIDs)
	log.Printf("[Backfill] writing month %s: %d ads", month, len(adIDs))

	adSets := make(map[string]bool)
	campaigns := make(map[string]bool)

	for _, adID := range adIDs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted in month %s: %w", month, err)
		}
		plan := plans[adID]
		d.writeAd(ctx, month, adID, plan, cp)
		if plan.ad.AdSetID != "" {
			adSets[plan.ad.AdSetID] = true
		}
		if plan.ad.CampaignID != "" {
			campaigns[plan.ad.CampaignID] = true
		}
	}

	if d.opts.DryRun {
		log.Printf("[Backfill] dry run: month %s would update %d ad-set and %d campaign rollups",
			month, len(adSets), len(campaigns))
		return nil
	}

	for id := range adSets {
		if _, err := d.store.RollupAdSet(ctx, month, id); err != nil {
			log.Printf("[Backfill] rollup ad set %s: %v", id, err)
			cp.Coverage.Errors++
		}
	}
	for id := range campaigns {
		if _, err := d.store.RollupCampaign(ctx, month, id); err != nil {
			log.Printf("[Backfill] rollup campaign %s: %v", id, err)
			cp.Coverage.Errors++
		}
	}
	if _, err := d.store.UpdateMonthSummary(ctx, month); err != nil {
		log.Printf("[Backfill] month summary %s: %v", month, err)
		cp.Coverage.Errors++
	}
	return nil
}

// writeAd persists one ad's metadata, weekly aggregates and (optionally)
// insights. Each failure is tallied and the rest of the ad still writes.
func (d *Driver) writeAd(ctx context.Context, month, adID string, plan *adPlan, cp *Checkpoint) {
	if d.opts.DryRun {
		log.Printf("[Backfill] dry run: %s/%s would write %d weekly docs", month, adID, len(plan.weeks))
		cp.RecordsWritten += len(plan.weeks)
		return
	}

	if err := d.store.UpsertAd(ctx, month, adDocFrom(adID, plan.ad)); err != nil {
		log.Printf("[Backfill] upsert ad %s: %v", adID, err)
		cp.Coverage.Errors++
	}

	weekKeys := make([]string, 0, len(plan.weeks))
	for k := range plan.weeks {
		weekKeys = append(weekKeys, k)
	}
	sort.Strings(weekKeys)

	wrote := 0
	for _, weekKey := range weekKeys {
		if err := d.store.UpsertWeekly(ctx, month, adID, weekKey, plan.weeks[weekKey]); err != nil {
			log.Printf("[Backfill] upsert weekly %s/%s/%s: %v", month, adID, weekKey, err)
			cp.Coverage.Errors++
			continue
		}
		wrote++
		cp.RecordsWritten++
		if cp.RecordsWritten%d.opts.CheckpointEvery == 0 {
			d.save(cp)
		}
	}

	insights := 0
	if d.opts.WithInsights {
		insights = d.writeInsights(ctx, month, adID, weekKeys, cp)
	}

	if err := d.store.SetAdFlags(ctx, month, adID, wrote > 0, insights > 0); err != nil {
		log.Printf("[Backfill] set flags %s/%s: %v", month, adID, err)
		cp.Coverage.Errors++
	}
}

// writeInsights fetches Meta weekly metrics spanning the ad's buckets and
// stores each under its week key.
func (d *Driver) writeInsights(ctx context.Context, month, adID string, weekKeys []string, cp *Checkpoint) int {
	if len(weekKeys) == 0 {
		return 0
	}
	first, err := timebucket.ParseWeekKey(weekKeys[0], d.loc)
	if err != nil {
		cp.Coverage.Errors++
		return 0
	}
	last, err := timebucket.ParseWeekKey(weekKeys[len(weekKeys)-1], d.loc)
	if err != nil {
		cp.Coverage.Errors++
		return 0
	}

	rows, err := d.meta.GetAdInsights(ctx, adID, first, last.AddDate(0, 0, 6))
	if err != nil {
		log.Printf("[Backfill] insights %s: %v", adID, err)
		cp.Coverage.Errors++
		return 0
	}

	wrote := 0
	for _, row := range rows {
		start, err := time.ParseInLocation("2006-01-02", row.DateStart, d.loc)
		if err != nil {
			log.Printf("[Backfill] insight %s: bad date_start %q", adID, row.DateStart)
			cp.Coverage.Errors++
			continue
		}
		weekKey := timebucket.WeekKey(start)
		if err := d.store.UpsertInsight(ctx, month, adID, weekKey, store.NewInsightDoc(weekKey, row)); err != nil {
			log.Printf("[Backfill] upsert insight %s/%s/%s: %v", month, adID, weekKey, err)
			cp.Coverage.Errors++
			continue
		}
		wrote++
	}
	return wrote
}

func adDocFrom(adID string, ad meta.Ad) store.AdDoc {
	doc := store.AdDoc{
		ID:           adID,
		Name:         ad.Name,
		AdSetID:      ad.AdSetID,
		AdSetName:    ad.AdSetName,
		CampaignID:   ad.CampaignID,
		CampaignName: ad.CampaignName,
		Status:       ad.Status,
	}
	if doc.Name == "" {
		// Attributed via an id the ads listing no longer contains
		// (deleted or archived ad); keep the id as the only metadata.
		doc.Status = "UNKNOWN"
	}
	return doc
}

func (d *Driver) report(cp *Checkpoint) {
	log.Printf("[Backfill] job %s finished: state=%s written=%d", cp.JobID, cp.State, cp.RecordsWritten)
	log.Printf("[Backfill] coverage: %d opportunities, %d attributed, %d unattributed",
		cp.Coverage.Opportunities, cp.Coverage.Attributed, cp.Coverage.Unattributed)
	for method, n := range cp.Coverage.ByMethod {
		log.Printf("[Backfill]   %-14s %d", method, n)
	}
	log.Printf("[Backfill] skippedNoTime=%d excludedByAge=%d errors=%d",
		cp.Coverage.SkippedNoTime, cp.Coverage.ExcludedByAge, cp.Coverage.Errors)
}
