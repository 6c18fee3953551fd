// Package funnel classifies CRM pipeline stages into the coarse lifecycle
// categories the dashboard counts: lead, booking, deposit, cash collected,
// lost.
package funnel

import "strings"

// Category is a rung on the funnel ladder. The numeric order matters:
// counting is cumulative, so an opportunity at CashCollected also counts
// as a booking and a deposit. Lost sits outside the ladder.
type Category int

const (
	Lead Category = iota
	Booking
	Deposit
	CashCollected
	Lost
)

func (c Category) String() string {
	switch c {
	case Lead:
		return "lead"
	case Booking:
		return "booking"
	case Deposit:
		return "deposit"
	case CashCollected:
		return "cash_collected"
	case Lost:
		return "lost"
	default:
		return "lead"
	}
}

// AtLeast reports whether c has progressed to rung r or beyond. Lost never
// satisfies any rung above Lead.
func (c Category) AtLeast(r Category) bool {
	if c == Lost {
		return r == Lead
	}
	return c >= r
}

// keywordRule matches when every keyword appears in the stage name.
type keywordRule struct {
	keywords []string
	category Category
}

// Classifier maps stage names to categories by ordered case-insensitive
// substring matching. The rule order is significant: "deposit paid" must
// classify as deposit before the cash vocabulary gets a chance.
type Classifier struct {
	rules []keywordRule
}

// NewClassifier builds a classifier with the default stage vocabulary.
// cashWords extends the words that, combined with "collected"-style intent,
// mean money in the door; pass nil for the default of "collected".
func NewClassifier(cashWords []string) *Classifier {
	if len(cashWords) == 0 {
		cashWords = []string{"collected"}
	}
	rules := []keywordRule{
		{keywords: []string{"lost"}, category: Lost},
		{keywords: []string{"disqualified"}, category: Lost},
		{keywords: []string{"dnd"}, category: Lost},
		{keywords: []string{"deposit"}, category: Deposit},
	}
	for _, w := range cashWords {
		rules = append(rules, keywordRule{keywords: []string{"cash", w}, category: CashCollected})
	}
	rules = append(rules,
		keywordRule{keywords: []string{"appointment"}, category: Booking},
		keywordRule{keywords: []string{"booked"}, category: Booking},
	)
	return &Classifier{rules: rules}
}

// Classify maps a stage name (or raw stage id when the name is unknown) to
// a category. Total: anything unmatched is a Lead, never an error.
func (c *Classifier) Classify(stageName string) Category {
	name := strings.ToLower(stageName)
	for _, rule := range c.rules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(name, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.category
		}
	}
	return Lead
}

// StageIndex resolves stage ids to human-readable names using pipeline
// metadata fetched ahead of a run. Missing ids fall through to the raw id,
// which the classifier then defaults to Lead.
type StageIndex map[string]string

// Name returns the stage name for id, or id itself when unknown.
func (idx StageIndex) Name(id string) string {
	if name, ok := idx[id]; ok {
		return name
	}
	return id
}
