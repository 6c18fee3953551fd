package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
)

// MemoryStore is an in-memory implementation of the Store interface for
// testing and dry runs. It mirrors FirestoreStore's merge semantics:
// upserts converge on repeat, rollups are recomputed from scratch.
type MemoryStore struct {
	mu       sync.RWMutex
	ads      map[string]map[string]*AdDoc                                // month -> adID
	weekly   map[string]map[string]map[string]*aggregate.WeeklyAggregate // month -> adID -> weekKey
	insights map[string]map[string]map[string]InsightDoc                 // month -> adID -> weekKey
	rollups  map[string]map[string]*Rollup                               // "adset"/"campaign" -> id
	legacy   map[string]int                                              // collection -> doc count
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ads:      make(map[string]map[string]*AdDoc),
		weekly:   make(map[string]map[string]map[string]*aggregate.WeeklyAggregate),
		insights: make(map[string]map[string]map[string]InsightDoc),
		rollups:  make(map[string]map[string]*Rollup),
		legacy:   make(map[string]int),
	}
}

// SeedLegacy registers a legacy collection with a document count, for
// exercising DeleteLegacyLayout in tests.
func (s *MemoryStore) SeedLegacy(collection string, docs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy[collection] = docs
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) UpsertAd(ctx context.Context, month string, ad AdDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ads[month] == nil {
		s.ads[month] = make(map[string]*AdDoc)
	}
	existing := s.ads[month][ad.ID]
	ad.LastSyncedAt = time.Now()
	if existing != nil {
		// Flags belong to SetAdFlags, same as the Firestore merge.
		ad.HasGHLData = existing.HasGHLData
		ad.HasInsights = existing.HasInsights
	}
	s.ads[month][ad.ID] = &ad
	return nil
}

func (s *MemoryStore) GetAd(ctx context.Context, month, adID string) (*AdDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ad := s.ads[month][adID]
	if ad == nil {
		return nil, fmt.Errorf("ad not found: %s/%s", month, adID)
	}
	copied := *ad
	return &copied, nil
}

func (s *MemoryStore) ListAds(ctx context.Context, month string) ([]AdDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ads := make([]AdDoc, 0, len(s.ads[month]))
	for _, ad := range s.ads[month] {
		ads = append(ads, *ad)
	}
	sort.Slice(ads, func(i, j int) bool { return ads[i].ID < ads[j].ID })
	return ads, nil
}

func (s *MemoryStore) SetAdFlags(ctx context.Context, month, adID string, hasGHLData, hasInsights bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ad := s.ads[month][adID]
	if ad == nil {
		if s.ads[month] == nil {
			s.ads[month] = make(map[string]*AdDoc)
		}
		ad = &AdDoc{ID: adID}
		s.ads[month][adID] = ad
	}
	ad.HasGHLData = hasGHLData
	ad.HasInsights = hasInsights
	return nil
}

func (s *MemoryStore) UpsertWeekly(ctx context.Context, month, adID, weekKey string, agg *aggregate.WeeklyAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.weekly[month] == nil {
		s.weekly[month] = make(map[string]map[string]*aggregate.WeeklyAggregate)
	}
	if s.weekly[month][adID] == nil {
		s.weekly[month][adID] = make(map[string]*aggregate.WeeklyAggregate)
	}
	copied := *agg
	copied.WeekKey = weekKey
	s.weekly[month][adID][weekKey] = &copied
	return nil
}

func (s *MemoryStore) ListWeekly(ctx context.Context, month, adID string) ([]*aggregate.WeeklyAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	aggs := make([]*aggregate.WeeklyAggregate, 0, len(s.weekly[month][adID]))
	for _, agg := range s.weekly[month][adID] {
		copied := *agg
		aggs = append(aggs, &copied)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].WeekKey < aggs[j].WeekKey })
	return aggs, nil
}

func (s *MemoryStore) UpsertInsight(ctx context.Context, month, adID, weekKey string, ins InsightDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insights[month] == nil {
		s.insights[month] = make(map[string]map[string]InsightDoc)
	}
	if s.insights[month][adID] == nil {
		s.insights[month][adID] = make(map[string]InsightDoc)
	}
	ins.WeekKey = weekKey
	s.insights[month][adID][weekKey] = ins
	return nil
}

func (s *MemoryStore) ListInsights(ctx context.Context, month, adID string) ([]InsightDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	insights := make([]InsightDoc, 0, len(s.insights[month][adID]))
	for _, ins := range s.insights[month][adID] {
		insights = append(insights, ins)
	}
	sort.Slice(insights, func(i, j int) bool { return insights[i].WeekKey < insights[j].WeekKey })
	return insights, nil
}

func (s *MemoryStore) RollupAdSet(ctx context.Context, month, adSetID string) (*Rollup, error) {
	rollup, err := s.recompute(ctx, month, adSetID, func(ad AdDoc) bool { return ad.AdSetID == adSetID })
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rollups["adset"] == nil {
		s.rollups["adset"] = make(map[string]*Rollup)
	}
	s.rollups["adset"][adSetID] = rollup
	return rollup, nil
}

func (s *MemoryStore) RollupCampaign(ctx context.Context, month, campaignID string) (*Rollup, error) {
	rollup, err := s.recompute(ctx, month, campaignID, func(ad AdDoc) bool { return ad.CampaignID == campaignID })
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rollups["campaign"] == nil {
		s.rollups["campaign"] = make(map[string]*Rollup)
	}
	s.rollups["campaign"][campaignID] = rollup
	return rollup, nil
}

func (s *MemoryStore) recompute(ctx context.Context, month, id string, match func(AdDoc) bool) (*Rollup, error) {
	ads, err := s.ListAds(ctx, month)
	if err != nil {
		return nil, err
	}

	rollup := &Rollup{
		ID:    id,
		Weeks: make(map[string]*aggregate.WeeklyAggregate),
	}
	for _, ad := range ads {
		if !match(ad) {
			continue
		}
		weeks, err := s.ListWeekly(ctx, month, ad.ID)
		if err != nil {
			return nil, err
		}
		for _, agg := range weeks {
			wk := rollup.Weeks[agg.WeekKey]
			if wk == nil {
				wk = &aggregate.WeeklyAggregate{WeekKey: agg.WeekKey}
				rollup.Weeks[agg.WeekKey] = wk
			}
			wk.Add(agg)
			rollup.Totals.Add(agg)
		}
	}
	return rollup, nil
}

func (s *MemoryStore) UpdateMonthSummary(ctx context.Context, month string) (*MonthSummary, error) {
	ads, err := s.ListAds(ctx, month)
	if err != nil {
		return nil, err
	}

	summary := &MonthSummary{
		Month:        month,
		TotalAds:     len(ads),
		LastSyncedAt: time.Now(),
	}
	for _, ad := range ads {
		if ad.HasGHLData {
			summary.AdsWithGHLData++
		}
		if ad.HasInsights {
			summary.AdsWithInsights++
		}
	}
	return summary, nil
}

func (s *MemoryStore) VerifyFlags(ctx context.Context, month string) ([]FlagMismatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.ads[month]))
	for id := range s.ads[month] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var mismatches []FlagMismatch
	for _, id := range ids {
		ad := s.ads[month][id]
		ghlCount := len(s.weekly[month][id])
		if ad.HasGHLData != (ghlCount > 0) {
			mismatches = append(mismatches, FlagMismatch{
				AdID: id, Flag: "hasGHLData", FlagValue: ad.HasGHLData, ActualDocs: ghlCount,
			})
		}
		insightCount := len(s.insights[month][id])
		if ad.HasInsights != (insightCount > 0) {
			mismatches = append(mismatches, FlagMismatch{
				AdID: id, Flag: "hasInsights", FlagValue: ad.HasInsights, ActualDocs: insightCount,
			})
		}
	}
	return mismatches, nil
}

func (s *MemoryStore) DeleteLegacyLayout(ctx context.Context, collection string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := s.legacy[collection]
	delete(s.legacy, collection)
	return deleted, nil
}
