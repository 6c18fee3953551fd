package ghl

// Opportunity is a CRM deal/lead record. Read-only from our side; the CRM
// mutates it and we re-fetch the full set on every run.
type Opportunity struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	ContactID         string   `json:"contactId"`
	PipelineID        string   `json:"pipelineId"`
	PipelineStageID   string   `json:"pipelineStageId"`
	StageName         string   `json:"stageName"`
	Status            string   `json:"status"`
	MonetaryValue     float64  `json:"monetaryValue"`
	CreatedAt         string   `json:"createdAt"`
	LastStageChangeAt string   `json:"lastStageChangeAt"`
	Contact           *Contact `json:"contact,omitempty"`

	// Attribution entries in temporal order, oldest first.
	Attributions []AttributionEntry `json:"attributions"`
}

// ValueCents returns the monetary value in integer cents. Absent values
// are zero.
func (o *Opportunity) ValueCents() int64 {
	if o.MonetaryValue <= 0 {
		return 0
	}
	return int64(o.MonetaryValue*100 + 0.5)
}

// Contact carries the subset of contact data that matters for attribution.
type Contact struct {
	ID           string        `json:"id"`
	CustomFields []CustomField `json:"customFields"`
}

// CustomField is an arbitrary name/value pair attached by funnel forms.
type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AttributionEntry is one recorded marketing touch. The same concept
// appears under several field spellings depending on which funnel or
// integration wrote it; none are guaranteed present and entries may
// disagree with each other.
type AttributionEntry struct {
	// Ad identifier spellings, in documented priority order.
	AdID      string `json:"ad_id"`   // snake_case legacy
	UTMAdID   string `json:"utmAdId"` // utm-prefixed camelCase
	AdIDCamel string `json:"adId"`    // camelCase
	AdIDHuman string `json:"Ad Id"`   // human-readable capitalized

	// Ad-set identifier spellings.
	AdSetID      string `json:"ad_set_id"`
	UTMAdSetID   string `json:"utmAdSetId"`
	AdSetIDCamel string `json:"adSetId"`

	CampaignID string `json:"campaignId"`

	UTMSource   string `json:"utmSource"`
	UTMMedium   string `json:"utmMedium"`
	UTMCampaign string `json:"utmCampaign"`

	// Nested object repeating the identifiers under differently-cased
	// keys; shape varies by funnel version, so it stays a map.
	PageDetails map[string]string `json:"pageDetails,omitempty"`

	// Arbitrary extra key/value fields.
	Extra map[string]string `json:"extra,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
}

// Pipeline is CRM pipeline metadata used to resolve stage ids to names.
type Pipeline struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Stages []PipelineStage `json:"stages"`
}

// PipelineStage is one stage within a pipeline.
type PipelineStage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
