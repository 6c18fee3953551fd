// Package attribution resolves CRM opportunities to the Meta ad that
// produced them. Attribution metadata is inconsistent: the same identifier
// appears under several field spellings, nested objects and arbitrary
// custom fields, and entries may disagree. Resolution is an ordered chain
// of typed lookup strategies; first match wins.
package attribution

import (
	"strings"

	"github.com/Franna88/medwave-sub001/internal/ghl"
	"github.com/Franna88/medwave-sub001/internal/meta"
)

// Method identifies which strategy produced a match, so coverage reports
// can break attribution down by source.
type Method string

const (
	MethodDirect      Method = "direct"
	MethodPageDetails Method = "page_details"
	MethodCustomField Method = "custom_field"
	MethodAdSet       Method = "ad_set"
	MethodNone        Method = "unattributed"
)

// Known alias spellings for the ad and ad-set identifiers. Order matters
// for the struct fields; map/custom-field lookups are case-insensitive.
var (
	adIDAliases    = []string{"ad_id", "utmadid", "adid", "ad id", "fb_ad_id"}
	adSetIDAliases = []string{"ad_set_id", "utmadsetid", "adsetid", "ad set id", "fb_adset_id"}
)

// Index is a read-only view over the known ads, keyed for the lookups the
// resolver performs.
type Index struct {
	byID    map[string]meta.Ad
	byAdSet map[string][]meta.Ad
}

// NewIndex builds the resolver's ad index from the fetched ad list.
func NewIndex(ads []meta.Ad) *Index {
	idx := &Index{
		byID:    make(map[string]meta.Ad, len(ads)),
		byAdSet: make(map[string][]meta.Ad),
	}
	for _, ad := range ads {
		idx.byID[ad.ID] = ad
		if ad.AdSetID != "" {
			idx.byAdSet[ad.AdSetID] = append(idx.byAdSet[ad.AdSetID], ad)
		}
	}
	return idx
}

// Ad returns the ad with the given id, if known.
func (idx *Index) Ad(id string) (meta.Ad, bool) {
	ad, ok := idx.byID[id]
	return ad, ok
}

// AdsInSet returns the ads belonging to an ad-set.
func (idx *Index) AdsInSet(adSetID string) []meta.Ad {
	return idx.byAdSet[adSetID]
}

// Result is the outcome of resolving one opportunity.
type Result struct {
	AdID   string
	Method Method
}

// Attributed reports whether a strategy produced an ad id.
func (r Result) Attributed() bool {
	return r.Method != MethodNone && r.AdID != ""
}

// strategy is one rung of the lookup chain: a named way of pulling an
// identifier out of an attribution entry.
type strategy struct {
	method Method
	lookup func(*ghl.AttributionEntry, []string) string
}

var strategies = []strategy{
	{MethodDirect, directField},
	{MethodPageDetails, pageDetailsField},
	{MethodCustomField, customField},
}

// Resolve runs the strategy chain over the opportunity's attribution
// entries, newest entry first. It is a pure function of its inputs; an
// unattributed opportunity is an expected outcome, not an error.
func Resolve(opp *ghl.Opportunity, idx *Index) Result {
	entries := newestFirst(opp)

	// Strategies 1–3: find an ad id directly.
	for _, s := range strategies {
		for i := range entries {
			if v := s.lookup(entries[i], adIDAliases); v != "" {
				return Result{AdID: v, Method: s.method}
			}
		}
	}
	// Contact-level custom fields are scanned after entry-level ones.
	if v := contactCustomField(opp, adIDAliases); v != "" {
		return Result{AdID: v, Method: MethodCustomField}
	}

	// Strategy 4: fall back through the ad-set.
	if r, ok := resolveViaAdSet(opp, entries, idx); ok {
		return r
	}

	return Result{Method: MethodNone}
}

// newestFirst returns pointers to the opportunity's attribution entries in
// reverse temporal order: the most recent touch is checked first.
func newestFirst(opp *ghl.Opportunity) []*ghl.AttributionEntry {
	entries := make([]*ghl.AttributionEntry, 0, len(opp.Attributions))
	for i := len(opp.Attributions) - 1; i >= 0; i-- {
		entries = append(entries, &opp.Attributions[i])
	}
	return entries
}

// directField checks the typed identifier fields in their documented
// priority order. First non-empty wins; nothing is overwritten once found.
// The alias slice selects which identifier family is being looked up.
func directField(e *ghl.AttributionEntry, aliases []string) string {
	var candidates []string
	if aliases[0] == "ad_set_id" {
		candidates = []string{e.AdSetID, e.UTMAdSetID, e.AdSetIDCamel}
	} else {
		candidates = []string{e.AdID, e.UTMAdID, e.AdIDCamel, e.AdIDHuman}
	}
	for _, v := range candidates {
		if v != "" {
			return v
		}
	}
	return ""
}

// pageDetailsField scans the nested page-details map, whose keys repeat
// the identifier spellings under varying cases.
func pageDetailsField(e *ghl.AttributionEntry, aliases []string) string {
	if len(e.PageDetails) == 0 {
		return ""
	}
	return lookupAliases(e.PageDetails, aliases)
}

// customField scans the entry's arbitrary extra fields.
func customField(e *ghl.AttributionEntry, aliases []string) string {
	if len(e.Extra) == 0 {
		return ""
	}
	return lookupAliases(e.Extra, aliases)
}

// contactCustomField scans the opportunity contact's custom-field list.
func contactCustomField(opp *ghl.Opportunity, aliases []string) string {
	if opp.Contact == nil {
		return ""
	}
	for _, cf := range opp.Contact.CustomFields {
		name := normalizeKey(cf.Name)
		for _, alias := range aliases {
			if name == normalizeKey(alias) && cf.Value != "" {
				return cf.Value
			}
		}
	}
	return ""
}

// lookupAliases finds the first alias present in the map, matching keys
// case-insensitively and ignoring separators.
func lookupAliases(m map[string]string, aliases []string) string {
	for _, alias := range aliases {
		want := normalizeKey(alias)
		for k, v := range m {
			if normalizeKey(k) == want && v != "" {
				return v
			}
		}
	}
	return ""
}

// normalizeKey lowercases a field name and strips the separators that vary
// between spellings ("Ad Id", "ad_id", "adId" all normalize to "adid").
func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, " ", "")
	k = strings.ReplaceAll(k, "-", "")
	return k
}

// resolveViaAdSet applies the ad-set fallback: when only an ad-set id is
// present, a single ad in that set wins outright; multiple ads are
// disambiguated by a fuzzy match between the opportunity's UTM medium and
// each candidate's ad-set name. Only a unique match assigns.
func resolveViaAdSet(opp *ghl.Opportunity, entries []*ghl.AttributionEntry, idx *Index) (Result, bool) {
	var adSetID string
	for _, s := range strategies {
		for i := range entries {
			if v := s.lookup(entries[i], adSetIDAliases); v != "" {
				adSetID = v
				break
			}
		}
		if adSetID != "" {
			break
		}
	}
	if adSetID == "" {
		if opp.Contact != nil {
			adSetID = contactCustomField(opp, adSetIDAliases)
		}
		if adSetID == "" {
			return Result{}, false
		}
	}

	candidates := idx.AdsInSet(adSetID)
	if len(candidates) == 0 {
		return Result{}, false
	}
	if len(candidates) == 1 {
		return Result{AdID: candidates[0].ID, Method: MethodAdSet}, true
	}

	medium := utmMedium(entries)
	if medium == "" {
		return Result{}, false
	}
	var match string
	for _, ad := range candidates {
		if fuzzyContains(medium, ad.AdSetName) {
			if match != "" {
				// Ambiguous: more than one candidate matches.
				return Result{}, false
			}
			match = ad.ID
		}
	}
	if match == "" {
		return Result{}, false
	}
	return Result{AdID: match, Method: MethodAdSet}, true
}

func utmMedium(entries []*ghl.AttributionEntry) string {
	for _, e := range entries {
		if e.UTMMedium != "" {
			return e.UTMMedium
		}
	}
	return ""
}

// fuzzyContains reports a case-insensitive substring match in either
// direction.
func fuzzyContains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}
