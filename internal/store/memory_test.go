package store

import (
	"context"
	"testing"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
)

func TestUpsertAdPreservesFlags(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.UpsertAd(ctx, "2025-06", AdDoc{ID: "ad1", Name: "Spring Promo"}); err != nil {
		t.Fatalf("UpsertAd failed: %v", err)
	}
	if err := s.SetAdFlags(ctx, "2025-06", "ad1", true, false); err != nil {
		t.Fatalf("SetAdFlags failed: %v", err)
	}

	// A metadata refresh must not clobber the flags.
	if err := s.UpsertAd(ctx, "2025-06", AdDoc{ID: "ad1", Name: "Spring Promo v2"}); err != nil {
		t.Fatalf("UpsertAd failed: %v", err)
	}

	ad, err := s.GetAd(ctx, "2025-06", "ad1")
	if err != nil {
		t.Fatalf("GetAd failed: %v", err)
	}
	if ad.Name != "Spring Promo v2" {
		t.Errorf("expected refreshed name, got %q", ad.Name)
	}
	if !ad.HasGHLData {
		t.Error("hasGHLData flag lost on metadata refresh")
	}
	if ad.HasInsights {
		t.Error("hasInsights flag should still be false")
	}
}

func TestUpsertWeeklyIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	agg := &aggregate.WeeklyAggregate{
		Leads:           3,
		Deposits:        1,
		CashAmountCents: 50000,
	}
	for i := 0; i < 3; i++ {
		if err := s.UpsertWeekly(ctx, "2025-06", "ad1", "2025-06-02_2025-06-08", agg); err != nil {
			t.Fatalf("UpsertWeekly failed: %v", err)
		}
	}

	weeks, err := s.ListWeekly(ctx, "2025-06", "ad1")
	if err != nil {
		t.Fatalf("ListWeekly failed: %v", err)
	}
	if len(weeks) != 1 {
		t.Fatalf("expected 1 weekly doc after repeated upserts, got %d", len(weeks))
	}
	if weeks[0].Leads != 3 || weeks[0].CashAmountCents != 50000 {
		t.Errorf("weekly doc drifted: %+v", weeks[0])
	}
}

func TestRollupsRecomputedFromWeeklies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	month := "2025-06"

	ads := []AdDoc{
		{ID: "ad1", AdSetID: "set1", CampaignID: "camp1"},
		{ID: "ad2", AdSetID: "set1", CampaignID: "camp1"},
		{ID: "ad3", AdSetID: "set2", CampaignID: "camp1"},
	}
	for _, ad := range ads {
		if err := s.UpsertAd(ctx, month, ad); err != nil {
			t.Fatalf("UpsertAd failed: %v", err)
		}
	}

	week := "2025-06-02_2025-06-08"
	put := func(adID string, leads, deposits int64) {
		t.Helper()
		err := s.UpsertWeekly(ctx, month, adID, week, &aggregate.WeeklyAggregate{
			Leads:    leads,
			Deposits: deposits,
		})
		if err != nil {
			t.Fatalf("UpsertWeekly failed: %v", err)
		}
	}
	put("ad1", 5, 1)
	put("ad2", 3, 0)
	put("ad3", 2, 2)

	setRollup, err := s.RollupAdSet(ctx, month, "set1")
	if err != nil {
		t.Fatalf("RollupAdSet failed: %v", err)
	}
	if setRollup.Totals.Leads != 8 || setRollup.Totals.Deposits != 1 {
		t.Errorf("ad set rollup totals = %+v, want 8 leads / 1 deposit", setRollup.Totals)
	}
	if setRollup.Weeks[week] == nil || setRollup.Weeks[week].Leads != 8 {
		t.Errorf("ad set rollup week %s = %+v", week, setRollup.Weeks[week])
	}

	campRollup, err := s.RollupCampaign(ctx, month, "camp1")
	if err != nil {
		t.Fatalf("RollupCampaign failed: %v", err)
	}
	if campRollup.Totals.Leads != 10 || campRollup.Totals.Deposits != 3 {
		t.Errorf("campaign rollup totals = %+v, want 10 leads / 3 deposits", campRollup.Totals)
	}

	// Re-running one ad's upsert with corrected numbers and recomputing
	// must replace, not accumulate.
	put("ad1", 4, 1)
	setRollup, err = s.RollupAdSet(ctx, month, "set1")
	if err != nil {
		t.Fatalf("RollupAdSet failed: %v", err)
	}
	if setRollup.Totals.Leads != 7 {
		t.Errorf("rollup after recompute = %d leads, want 7", setRollup.Totals.Leads)
	}
}

func TestUpdateMonthSummary(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	month := "2025-06"

	for _, id := range []string{"ad1", "ad2", "ad3"} {
		if err := s.UpsertAd(ctx, month, AdDoc{ID: id}); err != nil {
			t.Fatalf("UpsertAd failed: %v", err)
		}
	}
	if err := s.SetAdFlags(ctx, month, "ad1", true, true); err != nil {
		t.Fatalf("SetAdFlags failed: %v", err)
	}
	if err := s.SetAdFlags(ctx, month, "ad2", true, false); err != nil {
		t.Fatalf("SetAdFlags failed: %v", err)
	}

	summary, err := s.UpdateMonthSummary(ctx, month)
	if err != nil {
		t.Fatalf("UpdateMonthSummary failed: %v", err)
	}
	if summary.TotalAds != 3 {
		t.Errorf("TotalAds = %d, want 3", summary.TotalAds)
	}
	if summary.AdsWithGHLData != 2 {
		t.Errorf("AdsWithGHLData = %d, want 2", summary.AdsWithGHLData)
	}
	if summary.AdsWithInsights != 1 {
		t.Errorf("AdsWithInsights = %d, want 1", summary.AdsWithInsights)
	}
}

func TestVerifyFlagsDetectsDrift(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	month := "2025-06"

	// ad1: flag says data but subcollection is empty.
	if err := s.UpsertAd(ctx, month, AdDoc{ID: "ad1"}); err != nil {
		t.Fatalf("UpsertAd failed: %v", err)
	}
	if err := s.SetAdFlags(ctx, month, "ad1", true, false); err != nil {
		t.Fatalf("SetAdFlags failed: %v", err)
	}

	// ad2: data exists but flags never set.
	if err := s.UpsertAd(ctx, month, AdDoc{ID: "ad2"}); err != nil {
		t.Fatalf("UpsertAd failed: %v", err)
	}
	err := s.UpsertWeekly(ctx, month, "ad2", "2025-06-02_2025-06-08", &aggregate.WeeklyAggregate{Leads: 1})
	if err != nil {
		t.Fatalf("UpsertWeekly failed: %v", err)
	}

	mismatches, err := s.VerifyFlags(ctx, month)
	if err != nil {
		t.Fatalf("VerifyFlags failed: %v", err)
	}
	if len(mismatches) != 2 {
		t.Fatalf("expected 2 mismatches, got %d: %+v", len(mismatches), mismatches)
	}
	if mismatches[0].AdID != "ad1" || mismatches[0].Flag != "hasGHLData" || mismatches[0].ActualDocs != 0 {
		t.Errorf("unexpected first mismatch: %+v", mismatches[0])
	}
	if mismatches[1].AdID != "ad2" || mismatches[1].Flag != "hasGHLData" || mismatches[1].ActualDocs != 1 {
		t.Errorf("unexpected second mismatch: %+v", mismatches[1])
	}
}

func TestDeleteLegacyLayout(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.SeedLegacy("adDailyStats", 1234)

	deleted, err := s.DeleteLegacyLayout(ctx, "adDailyStats")
	if err != nil {
		t.Fatalf("DeleteLegacyLayout failed: %v", err)
	}
	if deleted != 1234 {
		t.Errorf("deleted = %d, want 1234", deleted)
	}

	// Second pass finds nothing.
	deleted, err = s.DeleteLegacyLayout(ctx, "adDailyStats")
	if err != nil {
		t.Fatalf("DeleteLegacyLayout failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("second delete = %d, want 0", deleted)
	}
}
