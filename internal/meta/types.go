package meta

// Ad is a Meta (Facebook) ad with its ad-set and campaign context.
type Ad struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AdSetID      string `json:"adset_id"`
	AdSetName    string `json:"adset_name"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Status       string `json:"status"`
}

// Insight is one time bucket of delivery metrics for an ad. Spend is kept
// in cents; CPM/CPC are derived, also in cents, CTR as a percentage.
type Insight struct {
	AdID        string
	DateStart   string // YYYY-MM-DD
	DateStop    string // YYYY-MM-DD
	SpendCents  int64
	Impressions int64
	Clicks      int64
	Reach       int64
	CPMCents    int64
	CPCCents    int64
	CTR         float64
}
