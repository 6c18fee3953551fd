// verify checks the adPerformance hierarchy for internal consistency:
// cached hasGHLData/hasInsights flags versus actual subcollection
// contents, and optionally recomputes ad-set/campaign rollups and the
// month summary so they match the weekly aggregates beneath them.
//
// Usage:
//
//	go run ./cmd/verify/ -month 2025-06 [-fix] [-rollups]
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Franna88/medwave-sub001/internal/config"
	"github.com/Franna88/medwave-sub001/internal/store"
)

func main() {
	month := flag.String("month", "", "YYYY-MM bucket to verify (required)")
	fix := flag.Bool("fix", false, "rewrite flags that disagree with the data")
	rollups := flag.Bool("rollups", false, "recompute ad-set/campaign rollups and month summary")
	flag.Parse()

	if *month == "" {
		log.Fatal("[Verify] -month is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Verify] config: %v", err)
	}

	ctx := context.Background()
	client, err := config.NewFirestoreClient(ctx, cfg)
	if err != nil {
		log.Fatalf("[Verify] firestore: %v", err)
	}
	st := store.NewFirestoreStore(client)
	defer st.Close()

	mismatches, err := st.VerifyFlags(ctx, *month)
	if err != nil {
		log.Fatalf("[Verify] flag check: %v", err)
	}
	for _, m := range mismatches {
		log.Printf("[Verify] ad %s: %s=%v but %d docs present", m.AdID, m.Flag, m.FlagValue, m.ActualDocs)
	}
	log.Printf("[Verify] %s: %d flag mismatches", *month, len(mismatches))

	if *fix && len(mismatches) > 0 {
		fixFlags(ctx, st, *month, mismatches)
	}
	if *rollups {
		recomputeRollups(ctx, st, *month)
	}

	if len(mismatches) > 0 && !*fix {
		os.Exit(1)
	}
}

// fixFlags rewrites both flags for every mismatched ad from the actual
// subcollection counts.
func fixFlags(ctx context.Context, st store.Store, month string, mismatches []store.FlagMismatch) {
	fixed := make(map[string]bool)
	for _, m := range mismatches {
		if fixed[m.AdID] {
			continue
		}
		fixed[m.AdID] = true

		weeks, err := st.ListWeekly(ctx, month, m.AdID)
		if err != nil {
			log.Printf("[Verify] ad %s: %v", m.AdID, err)
			continue
		}
		insights, err := st.ListInsights(ctx, month, m.AdID)
		if err != nil {
			log.Printf("[Verify] ad %s: %v", m.AdID, err)
			continue
		}
		if err := st.SetAdFlags(ctx, month, m.AdID, len(weeks) > 0, len(insights) > 0); err != nil {
			log.Printf("[Verify] ad %s: fixing flags: %v", m.AdID, err)
			continue
		}
		log.Printf("[Verify] ad %s: flags corrected", m.AdID)
	}
}

// recomputeRollups rebuilds every ad-set and campaign rollup in the month
// from the weekly aggregates, then refreshes the month summary. Rollups
// are always full recomputations, so this also clears any drift left by
// interrupted runs.
func recomputeRollups(ctx context.Context, st store.Store, month string) {
	ads, err := st.ListAds(ctx, month)
	if err != nil {
		log.Fatalf("[Verify] listing ads: %v", err)
	}

	adSets := make(map[string]bool)
	campaigns := make(map[string]bool)
	for _, ad := range ads {
		if ad.AdSetID != "" {
			adSets[ad.AdSetID] = true
		}
		if ad.CampaignID != "" {
			campaigns[ad.CampaignID] = true
		}
	}

	for id := range adSets {
		if _, err := st.RollupAdSet(ctx, month, id); err != nil {
			log.Printf("[Verify] ad set %s: %v", id, err)
		}
	}
	for id := range campaigns {
		if _, err := st.RollupCampaign(ctx, month, id); err != nil {
			log.Printf("[Verify] campaign %s: %v", id, err)
		}
	}

	summary, err := st.UpdateMonthSummary(ctx, month)
	if err != nil {
		log.Fatalf("[Verify] month summary: %v", err)
	}
	log.Printf("[Verify] %s: %d ads, %d with GHL data, %d with insights; %d ad-set and %d campaign rollups recomputed",
		month, summary.TotalAds, summary.AdsWithGHLData, summary.AdsWithInsights, len(adSets), len(campaigns))
}
