// sync re-runs aggregation for the recent window: the current and
// previous month buckets, with Meta insights refreshed. Intended to run
// on a schedule; all writes are merges, so overlapping runs converge.
//
// Usage:
//
//	go run ./cmd/sync/ -pipeline <pipelineID> [-window 2]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
	"github.com/Franna88/medwave-sub001/internal/backfill"
	"github.com/Franna88/medwave-sub001/internal/config"
	"github.com/Franna88/medwave-sub001/internal/funnel"
	"github.com/Franna88/medwave-sub001/internal/ghl"
	"github.com/Franna88/medwave-sub001/internal/meta"
	"github.com/Franna88/medwave-sub001/internal/store"
	"github.com/Franna88/medwave-sub001/internal/timebucket"
)

func main() {
	pipeline := flag.String("pipeline", "", "GHL pipeline id to sync (required)")
	window := flag.Int("window", 2, "number of trailing month buckets to refresh")
	flag.Parse()

	if *pipeline == "" {
		log.Fatal("[Sync] -pipeline is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Sync] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.NewFirestoreClient(ctx, cfg)
	if err != nil {
		log.Fatalf("[Sync] firestore: %v", err)
	}
	st := store.NewFirestoreStore(client)
	defer st.Close()

	checkpoints, err := backfill.NewCheckpoints(cfg.CheckpointDir)
	if err != nil {
		log.Fatalf("[Sync] checkpoints: %v", err)
	}

	months := trailingMonths(time.Now().In(cfg.ReportingLocation), *window)
	log.Printf("[Sync] refreshing months %v", months)

	driver := backfill.NewDriver(
		ghl.NewClient(cfg.GHLBaseURL, cfg.GHLAPIKey, cfg.GHLLocationID, cfg.GHLPageSize),
		meta.NewClient(cfg.MetaBaseURL, cfg.MetaAccessToken, cfg.MetaAdAccountID),
		funnel.NewClassifier(cfg.CashStageWords),
		aggregate.NewEngine(aggregate.Config{
			RetentionWindow:     cfg.RetentionWindow,
			DefaultDepositCents: cfg.DefaultDepositCents,
		}),
		st,
		checkpoints,
		cfg.ReportingLocation,
		backfill.Options{
			PipelineID:      *pipeline,
			Months:          months,
			WithInsights:    true,
			CheckpointEvery: cfg.CheckpointEvery,
		},
	)

	cp, err := driver.Run(ctx)
	if err != nil {
		log.Fatalf("[Sync] run failed: %v", err)
	}
	if cp.State == backfill.StateFailedPartial {
		log.Printf("[Sync] completed with %d errors", cp.Coverage.Errors)
		os.Exit(1)
	}
}

// trailingMonths returns the n month keys ending at now's month, oldest
// first.
func trailingMonths(now time.Time, n int) []string {
	if n < 1 {
		n = 1
	}
	// Anchor to the first of the month so month-end dates don't skip a
	// bucket when subtracting.
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, timebucket.MonthKey(first.AddDate(0, -i, 0)))
	}
	return months
}
