package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
)

// Firestore layout:
//
//	adPerformance/{YYYY-MM}                     month doc (MonthSummary fields)
//	adPerformance/{YYYY-MM}/ads/{adID}          AdDoc
//	adPerformance/{YYYY-MM}/ads/{adID}/ghlWeekly/{weekKey}   WeeklyAggregate
//	adPerformance/{YYYY-MM}/ads/{adID}/insights/{weekKey}    InsightDoc
//	adPerformance/{YYYY-MM}/adSetRollups/{adSetID}           Rollup
//	adPerformance/{YYYY-MM}/campaignRollups/{campaignID}     Rollup
const monthCollection = "adPerformance"

// maxBatchOps is Firestore's per-batch operation ceiling.
const maxBatchOps = 500

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) monthDoc(month string) *firestore.DocumentRef {
	return s.client.Collection(monthCollection).Doc(month)
}

func (s *FirestoreStore) adDoc(month, adID string) *firestore.DocumentRef {
	return s.monthDoc(month).Collection("ads").Doc(adID)
}

// UpsertAd merges the ad's metadata into its document. The completeness
// flags are deliberately not part of this write so a metadata refresh
// never clobbers them; SetAdFlags owns those fields.
func (s *FirestoreStore) UpsertAd(ctx context.Context, month string, ad AdDoc) error {
	_, err := s.adDoc(month, ad.ID).Set(ctx, map[string]interface{}{
		"id":           ad.ID,
		"name":         ad.Name,
		"adSetId":      ad.AdSetID,
		"adSetName":    ad.AdSetName,
		"campaignId":   ad.CampaignID,
		"campaignName": ad.CampaignName,
		"status":       ad.Status,
		"lastSyncedAt": time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("upsert ad %s/%s: %w", month, ad.ID, err)
	}
	return nil
}

// GetAd retrieves an ad document.
func (s *FirestoreStore) GetAd(ctx context.Context, month, adID string) (*AdDoc, error) {
	doc, err := s.adDoc(month, adID).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("ad not found: %w", err)
	}
	var ad AdDoc
	if err := doc.DataTo(&ad); err != nil {
		return nil, fmt.Errorf("failed to parse ad: %w", err)
	}
	return &ad, nil
}

// ListAds lists all ad documents for a month.
func (s *FirestoreStore) ListAds(ctx context.Context, month string) ([]AdDoc, error) {
	docs, err := s.monthDoc(month).Collection("ads").Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list ads for %s: %w", month, err)
	}

	ads := make([]AdDoc, 0, len(docs))
	for _, doc := range docs {
		var ad AdDoc
		if err := doc.DataTo(&ad); err != nil {
			return nil, fmt.Errorf("failed to parse ad %s: %w", doc.Ref.ID, err)
		}
		ads = append(ads, ad)
	}
	return ads, nil
}

// SetAdFlags updates the cached completeness flags on an ad document.
func (s *FirestoreStore) SetAdFlags(ctx context.Context, month, adID string, hasGHLData, hasInsights bool) error {
	_, err := s.adDoc(month, adID).Set(ctx, map[string]interface{}{
		"hasGHLData":  hasGHLData,
		"hasInsights": hasInsights,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("set ad flags %s/%s: %w", month, adID, err)
	}
	return nil
}

// UpsertWeekly merge-writes one week's aggregate under an ad. Field-level
// merge keyed by (ad, week) means repeated or overlapping backfills land
// on the same totals instead of double-counting.
func (s *FirestoreStore) UpsertWeekly(ctx context.Context, month, adID, weekKey string, agg *aggregate.WeeklyAggregate) error {
	_, err := s.adDoc(month, adID).Collection("ghlWeekly").Doc(weekKey).Set(ctx, map[string]interface{}{
		"weekKey":            weekKey,
		"leads":              agg.Leads,
		"bookedAppointments": agg.BookedAppointments,
		"deposits":           agg.Deposits,
		"cashCollected":      agg.CashCollected,
		"cashAmountCents":    agg.CashAmountCents,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("upsert weekly %s/%s/%s: %w", month, adID, weekKey, err)
	}
	return nil
}

// ListWeekly returns all weekly aggregates for an ad.
func (s *FirestoreStore) ListWeekly(ctx context.Context, month, adID string) ([]*aggregate.WeeklyAggregate, error) {
	docs, err := s.adDoc(month, adID).Collection("ghlWeekly").Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly aggregates for %s/%s: %w", month, adID, err)
	}

	aggs := make([]*aggregate.WeeklyAggregate, 0, len(docs))
	for _, doc := range docs {
		var agg aggregate.WeeklyAggregate
		if err := doc.DataTo(&agg); err != nil {
			return nil, fmt.Errorf("failed to parse weekly aggregate %s: %w", doc.Ref.ID, err)
		}
		aggs = append(aggs, &agg)
	}
	return aggs, nil
}

// UpsertInsight merge-writes one week of Meta delivery metrics under an ad.
func (s *FirestoreStore) UpsertInsight(ctx context.Context, month, adID, weekKey string, ins InsightDoc) error {
	_, err := s.adDoc(month, adID).Collection("insights").Doc(weekKey).Set(ctx, map[string]interface{}{
		"weekKey":     weekKey,
		"spendCents":  ins.SpendCents,
		"impressions": ins.Impressions,
		"clicks":      ins.Clicks,
		"reach":       ins.Reach,
		"cpmCents":    ins.CPMCents,
		"cpcCents":    ins.CPCCents,
		"ctr":         ins.CTR,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("upsert insight %s/%s/%s: %w", month, adID, weekKey, err)
	}
	return nil
}

// ListInsights returns all weekly insights for an ad.
func (s *FirestoreStore) ListInsights(ctx context.Context, month, adID string) ([]InsightDoc, error) {
	docs, err := s.adDoc(month, adID).Collection("insights").Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list insights for %s/%s: %w", month, adID, err)
	}

	insights := make([]InsightDoc, 0, len(docs))
	for _, doc := range docs {
		var ins InsightDoc
		if err := doc.DataTo(&ins); err != nil {
			return nil, fmt.Errorf("failed to parse insight %s: %w", doc.Ref.ID, err)
		}
		insights = append(insights, ins)
	}
	return insights, nil
}

// RollupAdSet recomputes an ad-set rollup from scratch by summing the
// current weekly aggregates of every ad in the set, then overwrites the
// rollup document. Full recomputation prevents drift between hierarchy
// levels after partial re-runs.
func (s *FirestoreStore) RollupAdSet(ctx context.Context, month, adSetID string) (*Rollup, error) {
	rollup, err := s.recomputeRollup(ctx, month, "adSetId", adSetID)
	if err != nil {
		return nil, fmt.Errorf("rollup ad set %s/%s: %w", month, adSetID, err)
	}
	if _, err := s.monthDoc(month).Collection("adSetRollups").Doc(adSetID).Set(ctx, rollup); err != nil {
		return nil, fmt.Errorf("write ad set rollup %s/%s: %w", month, adSetID, err)
	}
	return rollup, nil
}

// RollupCampaign recomputes a campaign rollup from scratch, like
// RollupAdSet one level higher.
func (s *FirestoreStore) RollupCampaign(ctx context.Context, month, campaignID string) (*Rollup, error) {
	rollup, err := s.recomputeRollup(ctx, month, "campaignId", campaignID)
	if err != nil {
		return nil, fmt.Errorf("rollup campaign %s/%s: %w", month, campaignID, err)
	}
	if _, err := s.monthDoc(month).Collection("campaignRollups").Doc(campaignID).Set(ctx, rollup); err != nil {
		return nil, fmt.Errorf("write campaign rollup %s/%s: %w", month, campaignID, err)
	}
	return rollup, nil
}

func (s *FirestoreStore) recomputeRollup(ctx context.Context, month, field, value string) (*Rollup, error) {
	docs, err := s.monthDoc(month).Collection("ads").Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("querying ads by %s: %w", field, err)
	}

	rollup := &Rollup{
		ID:    value,
		Weeks: make(map[string]*aggregate.WeeklyAggregate),
	}
	for _, doc := range docs {
		weeks, err := s.ListWeekly(ctx, month, doc.Ref.ID)
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

// UpdateMonthSummary recounts the month's ads and completeness flags and
// caches the totals on the month document.
func (s *FirestoreStore) UpdateMonthSummary(ctx context.Context, month string) (*MonthSummary, error) {
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

	_, err = s.monthDoc(month).Set(ctx, map[string]interface{}{
		"month":           summary.Month,
		"totalAds":        summary.TotalAds,
		"adsWithGHLData":  summary.AdsWithGHLData,
		"adsWithInsights": summary.AdsWithInsights,
		"lastSyncedAt":    summary.LastSyncedAt,
	}, firestore.MergeAll)
	if err != nil {
		return nil, fmt.Errorf("update month summary %s: %w", month, err)
	}
	return summary, nil
}

// VerifyFlags compares each ad's cached completeness flags against its
// actual subcollection contents and reports every mismatch. Mismatched
// flags were a recurring failure mode before this check existed.
func (s *FirestoreStore) VerifyFlags(ctx context.Context, month string) ([]FlagMismatch, error) {
	ads, err := s.ListAds(ctx, month)
	if err != nil {
		return nil, err
	}

	var mismatches []FlagMismatch
	for _, ad := range ads {
		ghlCount, err := s.countDocs(ctx, s.adDoc(month, ad.ID).Collection("ghlWeekly"))
		if err != nil {
			return nil, fmt.Errorf("counting ghlWeekly for %s: %w", ad.ID, err)
		}
		if ad.HasGHLData != (ghlCount > 0) {
			mismatches = append(mismatches, FlagMismatch{
				AdID: ad.ID, Flag: "hasGHLData", FlagValue: ad.HasGHLData, ActualDocs: ghlCount,
			})
		}

		insightCount, err := s.countDocs(ctx, s.adDoc(month, ad.ID).Collection("insights"))
		if err != nil {
			return nil, fmt.Errorf("counting insights for %s: %w", ad.ID, err)
		}
		if ad.HasInsights != (insightCount > 0) {
			mismatches = append(mismatches, FlagMismatch{
				AdID: ad.ID, Flag: "hasInsights", FlagValue: ad.HasInsights, ActualDocs: insightCount,
			})
		}
	}
	return mismatches, nil
}

func (s *FirestoreStore) countDocs(ctx context.Context, col *firestore.CollectionRef) (int, error) {
	iter := col.Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// DeleteLegacyLayout deletes every document in a superseded top-level
// collection, chunked under Firestore's per-batch operation ceiling.
// Callers gate this behind an explicit operator confirmation; it is never
// invoked by the run that performed a migration.
func (s *FirestoreStore) DeleteLegacyLayout(ctx context.Context, collection string) (int, error) {
	docs, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", collection, err)
	}

	deleted := 0
	for i := 0; i < len(docs); i += maxBatchOps {
		batch := s.client.Batch()
		end := i + maxBatchOps
		if end > len(docs) {
			end = len(docs)
		}
		for _, doc := range docs[i:end] {
			batch.Delete(doc.Ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return deleted, fmt.Errorf("batch delete %s: %w", collection, err)
		}
		deleted += end - i
	}
	return deleted, nil
}
