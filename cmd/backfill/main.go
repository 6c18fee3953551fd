// backfill runs the full historical migration: fetch every opportunity
// and ad, resolve attribution, aggregate weekly funnel metrics and
// merge-write the adPerformance hierarchy.
//
// The run checkpoints to a JSON file keyed by a job id and is resumable;
// every write is an idempotent merge, so repeating a run (or a month) is
// always safe.
//
// Usage:
//
//	export GHL_API_KEY=... GHL_LOCATION_ID=... META_ACCESS_TOKEN=... \
//	       META_AD_ACCOUNT_ID=... GOOGLE_CLOUD_PROJECT=...
//	go run ./cmd/backfill/ -pipeline <pipelineID> [-dry-run] \
//	       [-months 2025-05,2025-06] [-resume <jobID>] [-insights=false]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
	"github.com/Franna88/medwave-sub001/internal/backfill"
	"github.com/Franna88/medwave-sub001/internal/config"
	"github.com/Franna88/medwave-sub001/internal/funnel"
	"github.com/Franna88/medwave-sub001/internal/ghl"
	"github.com/Franna88/medwave-sub001/internal/meta"
	"github.com/Franna88/medwave-sub001/internal/store"
)

func main() {
	pipeline := flag.String("pipeline", "", "GHL pipeline id to backfill (required)")
	months := flag.String("months", "", "comma-separated YYYY-MM buckets to write; empty means all")
	dryRun := flag.Bool("dry-run", false, "compute and report without writing")
	resume := flag.String("resume", "", "job id of a checkpoint to resume")
	insights := flag.Bool("insights", true, "also fetch and write Meta weekly insights")
	flag.Parse()

	if *pipeline == "" {
		log.Fatal("[Backfill] -pipeline is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Backfill] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := config.NewFirestoreClient(ctx, cfg)
	if err != nil {
		log.Fatalf("[Backfill] firestore: %v", err)
	}
	st := store.NewFirestoreStore(client)
	defer st.Close()

	checkpoints, err := backfill.NewCheckpoints(cfg.CheckpointDir)
	if err != nil {
		log.Fatalf("[Backfill] checkpoints: %v", err)
	}

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
			Months:          splitMonths(*months),
			DryRun:          *dryRun,
			ResumeJobID:     *resume,
			WithInsights:    *insights,
			CheckpointEvery: cfg.CheckpointEvery,
		},
	)

	cp, err := driver.Run(ctx)
	if err != nil {
		log.Fatalf("[Backfill] run failed: %v", err)
	}
	if cp.State == backfill.StateFailedPartial {
		log.Printf("[Backfill] completed with %d errors; resume with -resume %s", cp.Coverage.Errors, cp.JobID)
		os.Exit(1)
	}
}

func splitMonths(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}
