package attribution

import (
	"testing"

	"github.com/Franna88/medwave-sub001/internal/ghl"
	"github.com/Franna88/medwave-sub001/internal/meta"
)

func testIndex() *Index {
	return NewIndex([]meta.Ad{
		{ID: "ad-1", Name: "Ad One", AdSetID: "as-1", AdSetName: "Retarget medium-x audience"},
		{ID: "ad-2", Name: "Ad Two", AdSetID: "as-1", AdSetName: "Broad audience"},
		{ID: "ad-3", Name: "Ad Three", AdSetID: "as-solo", AdSetName: "Solo Set"},
	})
}

func TestResolve_DirectFieldVariants(t *testing.T) {
	cases := []struct {
		name  string
		entry ghl.AttributionEntry
	}{
		{"snake_case", ghl.AttributionEntry{AdID: "ad-1"}},
		{"utm camelCase", ghl.AttributionEntry{UTMAdID: "ad-1"}},
		{"camelCase", ghl.AttributionEntry{AdIDCamel: "ad-1"}},
		{"human readable", ghl.AttributionEntry{AdIDHuman: "ad-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opp := &ghl.Opportunity{ID: "o-1", Attributions: []ghl.AttributionEntry{tc.entry}}
			r := Resolve(opp, testIndex())
			if !r.Attributed() || r.AdID != "ad-1" {
				t.Errorf("Resolve = %+v, want ad-1", r)
			}
			if r.Method != MethodDirect {
				t.Errorf("Method = %v, want direct", r.Method)
			}
		})
	}
}

func TestResolve_DirectBeatsPageDetails(t *testing.T) {
	// An entry with both a direct adId and a conflicting nested "Ad Id"
	// resolves to the direct field's value.
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{{
			AdIDCamel:   "ad-1",
			PageDetails: map[string]string{"Ad Id": "ad-2"},
		}},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-1" || r.Method != MethodDirect {
		t.Errorf("Resolve = %+v, want direct ad-1", r)
	}
}

func TestResolve_NewestEntryFirst(t *testing.T) {
	// Attribution list is oldest-first; the resolver must prefer the most
	// recent entry's value.
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{
			{AdID: "ad-2"}, // older
			{AdID: "ad-1"}, // newest
		},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-1" {
		t.Errorf("Resolve = %+v, want newest entry's ad-1", r)
	}
}

func TestResolve_PageDetailsFallback(t *testing.T) {
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{{
			PageDetails: map[string]string{"AD_ID": "ad-3"},
		}},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-3" || r.Method != MethodPageDetails {
		t.Errorf("Resolve = %+v, want page_details ad-3", r)
	}
}

func TestResolve_CustomFieldFallback(t *testing.T) {
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{{
			Extra: map[string]string{"FB Ad ID": "ad-3"},
		}},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-3" || r.Method != MethodCustomField {
		t.Errorf("Resolve = %+v, want custom_field ad-3", r)
	}
}

func TestResolve_ContactCustomField(t *testing.T) {
	opp := &ghl.Opportunity{
		ID:      "o-1",
		Contact: &ghl.Contact{CustomFields: []ghl.CustomField{{Name: "ad id", Value: "ad-3"}}},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-3" || r.Method != MethodCustomField {
		t.Errorf("Resolve = %+v, want custom_field ad-3 via contact", r)
	}
}

func TestResolve_AdSetFallback_SingleAd(t *testing.T) {
	opp := &ghl.Opportunity{
		ID:           "o-1",
		Attributions: []ghl.AttributionEntry{{AdSetID: "as-solo"}},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-3" || r.Method != MethodAdSet {
		t.Errorf("Resolve = %+v, want ad_set ad-3", r)
	}
}

func TestResolve_AdSetFallback_FuzzyMediumDisambiguates(t *testing.T) {
	// Two ads share as-1; only ad-1's ad-set name contains "medium-x".
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{{
			AdSetIDCamel: "as-1",
			UTMMedium:    "medium-x",
		}},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-1" || r.Method != MethodAdSet {
		t.Errorf("Resolve = %+v, want ad_set ad-1", r)
	}
}

func TestResolve_AdSetFallback_SubstringEitherDirection(t *testing.T) {
	// The UTM medium may be longer than the ad-set name.
	idx := NewIndex([]meta.Ad{
		{ID: "ad-a", AdSetID: "as-2", AdSetName: "warm"},
		{ID: "ad-b", AdSetID: "as-2", AdSetName: "cold"},
	})
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{{
			AdSetID:   "as-2",
			UTMMedium: "WARM-audience-retarget",
		}},
	}
	r := Resolve(opp, idx)
	if r.AdID != "ad-a" {
		t.Errorf("Resolve = %+v, want ad-a", r)
	}
}

func TestResolve_AdSetFallback_AmbiguousDoesNotAssign(t *testing.T) {
	idx := NewIndex([]meta.Ad{
		{ID: "ad-a", AdSetID: "as-2", AdSetName: "warm audience"},
		{ID: "ad-b", AdSetID: "as-2", AdSetName: "warm retarget"},
	})
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{{
			AdSetID:   "as-2",
			UTMMedium: "warm",
		}},
	}
	r := Resolve(opp, idx)
	if r.Attributed() {
		t.Errorf("ambiguous fuzzy match must not assign, got %+v", r)
	}
	if r.Method != MethodNone {
		t.Errorf("Method = %v, want unattributed", r.Method)
	}
}

func TestResolve_AdSetFallback_NoMediumNoAssign(t *testing.T) {
	opp := &ghl.Opportunity{
		ID:           "o-1",
		Attributions: []ghl.AttributionEntry{{AdSetID: "as-1"}},
	}
	r := Resolve(opp, testIndex())
	if r.Attributed() {
		t.Errorf("multiple candidates without medium must not assign, got %+v", r)
	}
}

func TestResolve_Unattributed(t *testing.T) {
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{{
			UTMSource: "google",
			UTMMedium: "organic",
		}},
	}
	r := Resolve(opp, testIndex())
	if r.Attributed() {
		t.Errorf("expected unattributed, got %+v", r)
	}
	if r.Method != MethodNone {
		t.Errorf("Method = %v, want unattributed", r.Method)
	}
}

func TestResolve_NoEntriesAtAll(t *testing.T) {
	r := Resolve(&ghl.Opportunity{ID: "o-1"}, testIndex())
	if r.Attributed() {
		t.Errorf("expected unattributed for empty opportunity, got %+v", r)
	}
}

func TestResolve_EarlierStrategyAcrossAllEntriesWins(t *testing.T) {
	// A direct field on an older entry beats a page-details field on the
	// newest entry: strategy order outranks entry order.
	opp := &ghl.Opportunity{
		ID: "o-1",
		Attributions: []ghl.AttributionEntry{
			{AdID: "ad-2"}, // older, direct
			{PageDetails: map[string]string{"adId": "ad-1"}}, // newest, nested only
		},
	}
	r := Resolve(opp, testIndex())
	if r.AdID != "ad-2" || r.Method != MethodDirect {
		t.Errorf("Resolve = %+v, want direct ad-2", r)
	}
}

func TestNormalizeKey(t *testing.T) {
	for _, k := range []string{"Ad Id", "ad_id", "adId", "AD-ID"} {
		if got := normalizeKey(k); got != "adid" {
			t.Errorf("normalizeKey(%q) = %q", k, got)
		}
	}
}
