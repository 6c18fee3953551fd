package store

import (
	"context"
	"time"

	"github.com/Franna88/medwave-sub001/internal/aggregate"
	"github.com/Franna88/medwave-sub001/internal/meta"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// AdDoc is the per-ad document inside a month bucket. The Has* flags cache
// whether the ad's subcollections are non-empty so dashboard overview
// queries avoid subcollection scans; VerifyFlags detects drift between the
// flags and reality.
type AdDoc struct {
	ID           string    `firestore:"id"`
	Name         string    `firestore:"name"`
	AdSetID      string    `firestore:"adSetId"`
	AdSetName    string    `firestore:"adSetName"`
	CampaignID   string    `firestore:"campaignId"`
	CampaignName string    `firestore:"campaignName"`
	Status       string    `firestore:"status"`
	HasGHLData   bool      `firestore:"hasGHLData"`
	HasInsights  bool      `firestore:"hasInsights"`
	LastSyncedAt time.Time `firestore:"lastSyncedAt"`
}

// InsightDoc is one week of Meta delivery metrics under an ad.
type InsightDoc struct {
	WeekKey     string  `firestore:"weekKey"`
	SpendCents  int64   `firestore:"spendCents"`
	Impressions int64   `firestore:"impressions"`
	Clicks      int64   `firestore:"clicks"`
	Reach       int64   `firestore:"reach"`
	CPMCents    int64   `firestore:"cpmCents"`
	CPCCents    int64   `firestore:"cpcCents"`
	CTR         float64 `firestore:"ctr"`
}

// NewInsightDoc maps an API insight row onto the persisted shape.
func NewInsightDoc(weekKey string, ins meta.Insight) InsightDoc {
	return InsightDoc{
		WeekKey:     weekKey,
		SpendCents:  ins.SpendCents,
		Impressions: ins.Impressions,
		Clicks:      ins.Clicks,
		Reach:       ins.Reach,
		CPMCents:    ins.CPMCents,
		CPCCents:    ins.CPCCents,
		CTR:         ins.CTR,
	}
}

// Rollup is a fully recomputed ad-set or campaign summary: per-week sums
// over the constituent ads plus grand totals. Rollups never hold anything
// not derivable from the weekly aggregates beneath them.
type Rollup struct {
	ID     string                                `firestore:"id"`
	Weeks  map[string]*aggregate.WeeklyAggregate `firestore:"weeks"`
	Totals aggregate.WeeklyAggregate             `firestore:"totals"`
}

// MonthSummary caches month-level counts on the month document.
type MonthSummary struct {
	Month           string    `firestore:"month"`
	TotalAds        int       `firestore:"totalAds"`
	AdsWithGHLData  int       `firestore:"adsWithGHLData"`
	AdsWithInsights int       `firestore:"adsWithInsights"`
	LastSyncedAt    time.Time `firestore:"lastSyncedAt"`
}

// FlagMismatch reports an ad whose cached completeness flag disagrees with
// its actual subcollection contents.
type FlagMismatch struct {
	AdID       string
	Flag       string // "hasGHLData" or "hasInsights"
	FlagValue  bool
	ActualDocs int
}

// Store defines the persistence operations used by the sync, backfill and
// verification tooling. All weekly writes are merges keyed by (ad, week)
// so overlapping or repeated runs converge rather than double-count.
type Store interface {
	// Ad metadata
	UpsertAd(ctx context.Context, month string, ad AdDoc) error
	GetAd(ctx context.Context, month, adID string) (*AdDoc, error)
	ListAds(ctx context.Context, month string) ([]AdDoc, error)
	SetAdFlags(ctx context.Context, month, adID string, hasGHLData, hasInsights bool) error

	// Weekly GHL aggregates
	UpsertWeekly(ctx context.Context, month, adID, weekKey string, agg *aggregate.WeeklyAggregate) error
	ListWeekly(ctx context.Context, month, adID string) ([]*aggregate.WeeklyAggregate, error)

	// Weekly Meta insights
	UpsertInsight(ctx context.Context, month, adID, weekKey string, ins InsightDoc) error
	ListInsights(ctx context.Context, month, adID string) ([]InsightDoc, error)

	// Rollups: always recomputed in full from the weekly aggregates.
	RollupAdSet(ctx context.Context, month, adSetID string) (*Rollup, error)
	RollupCampaign(ctx context.Context, month, campaignID string) (*Rollup, error)

	// Month summary cache
	UpdateMonthSummary(ctx context.Context, month string) (*MonthSummary, error)

	// Verification and migration
	VerifyFlags(ctx context.Context, month string) ([]FlagMismatch, error)
	DeleteLegacyLayout(ctx context.Context, collection string) (int, error)

	Close() error
}
