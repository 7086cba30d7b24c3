package bot

import "strings"

// Intent is a global keyword command reachable from the idle state.
type Intent string

const (
	IntentHelp   Intent = "help"
	IntentOrder  Intent = "order"
	IntentCredit Intent = "credit"
	IntentNone   Intent = ""
)

// globalIntents is checked in order; the first matching keyword set wins.
// Each set carries the trigger words in all three supported languages.
var globalIntents = []struct {
	intent   Intent
	keywords []string
}{
	{IntentHelp, []string{"help", "እገዛ", "gargaarsa"}},
	{IntentOrder, []string{"order", "reorder", "ትዕዛዝ", "ድገም", "ajaja", "irra"}},
	{IntentCredit, []string{"credit", "ክሬዲት", "liqii"}},
}

var (
	checkoutKeywords = []string{"checkout", "ክፍያ", "kafaltii"}
	cancelKeywords   = []string{"cancel", "ይቅር", "haquu"}
	cartWords        = []string{"cart", "ጋሪ", "gaarii"}
	affirmativeWords = []string{"yes", "አዎ", "eeyyee"}
	editWords        = []string{"edit", "አርም", "sirreessi"}
)

// matchIntent resolves lower-cased free text against the global keyword
// sets by substring containment.
func matchIntent(lower string) Intent {
	for _, g := range globalIntents {
		if containsAny(lower, g.keywords) {
			return g.intent
		}
	}
	return IntentNone
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isAny(lower string, words []string) bool {
	for _, w := range words {
		if lower == w {
			return true
		}
	}
	return false
}
