// seed-demo populates one month of the adPerformance hierarchy with
// synthetic ads, weekly funnel aggregates and insights so the dashboard
// can be developed against the Firestore emulator without live API
// credentials.
//
// Usage:
//
//	export FIRESTORE_EMULATOR_HOST=localhost:8080
//	export GOOGLE_CLOUD_PROJECT=demo-project
//	go run ./scripts/seed-demo/ [-month 2025-06]
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
	"github.com/Franna88/medwave-sub001/internal/config"
	"github.com/Franna88/medwave-sub001/internal/store"
	"github.com/Franna88/medwave-sub001/internal/timebucket"
)

type demoAd struct {
	doc   store.AdDoc
	leads []int64 // per demo week
}

func main() {
	month := flag.String("month", timebucket.MonthKey(time.Now()), "YYYY-MM bucket to seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Seed] config: %v", err)
	}

	ctx := context.Background()
	client, err := config.NewFirestoreClient(ctx, cfg)
	if err != nil {
		log.Fatalf("[Seed] firestore: %v", err)
	}
	st := store.NewFirestoreStore(client)
	defer st.Close()

	firstOfMonth, err := time.ParseInLocation("2006-01", *month, cfg.ReportingLocation)
	if err != nil {
		log.Fatalf("[Seed] bad month %q: %v", *month, err)
	}

	ads := []demoAd{
		{doc: store.AdDoc{ID: "demo-ad-1", Name: "Knee Relief - Video", AdSetID: "demo-set-1", AdSetName: "Knee Retargeting", CampaignID: "demo-camp-1", CampaignName: "Knee Q3", Status: "ACTIVE"}, leads: []int64{14, 11, 9, 16}},
		{doc: store.AdDoc{ID: "demo-ad-2", Name: "Knee Relief - Carousel", AdSetID: "demo-set-1", AdSetName: "Knee Retargeting", CampaignID: "demo-camp-1", CampaignName: "Knee Q3", Status: "ACTIVE"}, leads: []int64{8, 12, 7, 10}},
		{doc: store.AdDoc{ID: "demo-ad-3", Name: "Back Pain - Static", AdSetID: "demo-set-2", AdSetName: "Back Broad", CampaignID: "demo-camp-1", CampaignName: "Knee Q3", Status: "PAUSED"}, leads: []int64{5, 3, 0, 4}},
	}

	for _, ad := range ads {
		if err := st.UpsertAd(ctx, *month, ad.doc); err != nil {
			log.Fatalf("[Seed] upsert ad: %v", err)
		}

		week := timebucket.WeekStart(firstOfMonth)
		for i, leads := range ad.leads {
			key := timebucket.WeekKey(week)
			agg := &aggregate.WeeklyAggregate{
				WeekKey:            key,
				Leads:              leads,
				BookedAppointments: leads / 2,
				Deposits:           leads / 4,
				CashCollected:      leads / 5,
				CashAmountCents:    (leads / 4) * 50000,
			}
			if err := st.UpsertWeekly(ctx, *month, ad.doc.ID, key, agg); err != nil {
				log.Fatalf("[Seed] upsert weekly: %v", err)
			}

			ins := store.InsightDoc{
				WeekKey:     key,
				SpendCents:  20000 + int64(i)*3500 + leads*800,
				Impressions: 4000 + leads*120,
				Clicks:      leads * 9,
				Reach:       3000 + leads*90,
			}
			if ins.Impressions > 0 {
				ins.CPMCents = ins.SpendCents * 1000 / ins.Impressions
				ins.CTR = float64(ins.Clicks) / float64(ins.Impressions) * 100
			}
			if ins.Clicks > 0 {
				ins.CPCCents = ins.SpendCents / ins.Clicks
			}
			if err := st.UpsertInsight(ctx, *month, ad.doc.ID, key, ins); err != nil {
				log.Fatalf("[Seed] upsert insight: %v", err)
			}
			week = week.AddDate(0, 0, 7)
		}

		if err := st.SetAdFlags(ctx, *month, ad.doc.ID, true, true); err != nil {
			log.Fatalf("[Seed] set flags: %v", err)
		}
	}

	for _, id := range []string{"demo-set-1", "demo-set-2"} {
		if _, err := st.RollupAdSet(ctx, *month, id); err != nil {
			log.Fatalf("[Seed] rollup ad set: %v", err)
		}
	}
	if _, err := st.RollupCampaign(ctx, *month, "demo-camp-1"); err != nil {
		log.Fatalf("[Seed] rollup campaign: %v", err)
	}

	summary, err := st.UpdateMonthSummary(ctx, *month)
	if err != nil {
		log.Fatalf("[Seed] month summary: %v", err)
	}
	log.Printf("[Seed] %s: %d ads seeded with weekly data and insights", *month, summary.TotalAds)
}
