// Package intent classifies raw chat queries into a fixed intent set and
// extracts structured entities such as a product phrase or a maximum price.
// Classification is a data-driven ordered rule table evaluated with early
// exit: patterns overlap, so the order carries meaning.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Intents.
const (
	SearchProduct  = "search_product"
	PriceQuery     = "price_query"
	PolicyQuery    = "policy_query"
	Comparison     = "comparison"
	Recommendation = "recommendation"
	Greeting       = "greeting"
	Thanks         = "thanks"
)

// Entities are the structured constraints extracted from a query.
type Entities struct {
	// Product is the product phrase for search and price intents.
	Product string
	// Topic is the subject of a policy query.
	Topic string
	// MaxPrice is the upper price bound in whole currency units; zero means
	// no constraint.
	MaxPrice int
}

// Result is the outcome of classifying one query.
type Result struct {
	// Intent is one of the intent constants.
	Intent string
	// Query is the normalized phrase extracted for the intent.
	Query string
	// Entities holds optional structured constraints.
	Entities Entities
}

// rule pairs a pattern with its intent and entity extractor. Extractors
// receive the submatches of the pattern against the normalized query.
type rule struct {
	pattern *regexp.Regexp
	intent  string
	extract func(m []string) (query string, e Entities)
}

func productRule(intentName, pattern string) rule {
	return rule{
		pattern: regexp.MustCompile(pattern),
		intent:  intentName,
		extract: func(m []string) (string, Entities) {
			return m[1], Entities{Product: m[1]}
		},
	}
}

func policyRule(pattern string) rule {
	return rule{
		pattern: regexp.MustCompile(pattern),
		intent:  PolicyQuery,
		extract: func(m []string) (string, Entities) {
			return m[1], Entities{Topic: m[1]}
		},
	}
}

// comparisonRule captures the two compared subjects and joins them into one
// retrieval phrase; the operator word itself carries no signal.
func comparisonRule(pattern string) rule {
	return rule{
		pattern: regexp.MustCompile(pattern),
		intent:  Comparison,
		extract: func(m []string) (string, Entities) {
			return m[1] + " " + m[2], Entities{}
		},
	}
}

// searchVerbPrefix is the optional leading search/recommendation verb
// stripped by the price-constrained rule, so "recommend a phone under 10000"
// extracts the product "a phone" rather than the whole clause.
const searchVerbPrefix = `(?:show (?:me )?|find (?:me )?|search (?:for )?|looking for |i want |need |recommend (?:me )?|suggest (?:me )?|buy )?`

// rules is evaluated top to bottom; the first match wins. Within an intent
// the patterns are themselves ordered, so a query matching several is
// extracted by the earliest.
var rules = []rule{
	{
		pattern: regexp.MustCompile(`\b(hi|hello|hey|greetings|namaste|good morning|good evening|good afternoon)\b`),
		intent:  Greeting,
		extract: func(m []string) (string, Entities) { return m[1], Entities{} },
	},
	{
		pattern: regexp.MustCompile(`\b(?:thanks|thank you|thankyou)\b|appreciate it|\bhelpful\b`),
		intent:  Thanks,
		extract: func(m []string) (string, Entities) { return m[0], Entities{} },
	},

	// Price queries.
	productRule(PriceQuery, `how much (?:is|are|does|do|cost) (.+)`),
	productRule(PriceQuery, `(?:price|cost) of (.+)`),

	// Policy queries.
	policyRule(`(?:what(?:'s| is) )?(?:the )?(.+?) policy\b`),
	policyRule(`how (?:do|can) i (.+)`),
	policyRule(`tell me about (.+)`),
	policyRule(`information about (.+)`),
	policyRule(`\b(?:explain|describe) (.+)`),

	// Price-constrained search outranks comparison, recommendation, and the
	// general search verbs: a stated budget always wins.
	{
		pattern: regexp.MustCompile(searchVerbPrefix + `(.+?)\s+(?:under|below|less than|within)\s+(?:rs\.?\s*|₹\s*)?(\d+)`),
		intent:  SearchProduct,
		extract: func(m []string) (string, Entities) {
			price, _ := strconv.Atoi(m[2])
			return m[1], Entities{Product: m[1], MaxPrice: price}
		},
	},

	// Comparisons.
	comparisonRule(`compare (.+) (?:and|vs|versus) (.+)`),
	comparisonRule(`difference between (.+) and (.+)`),
	comparisonRule(`which is better (.+) or (.+)`),

	// Recommendations.
	productRule(Recommendation, `recommend (?:me )?(.+)`),
	productRule(Recommendation, `suggest (?:me )?(.+)`),
	productRule(Recommendation, `what should i (?:buy|get) for (.+)`),

	// General search verbs and qualifiers.
	productRule(SearchProduct, `show (?:me )?(.+)`),
	productRule(SearchProduct, `find (?:me )?(.+)`),
	productRule(SearchProduct, `search (?:for )?(.+)`),
	productRule(SearchProduct, `looking for (.+)`),
	productRule(SearchProduct, `i want (.+)`),
	productRule(SearchProduct, `need (.+)`),
	productRule(SearchProduct, `best (.+)`),
	productRule(SearchProduct, `top (.+)`),
	productRule(SearchProduct, `cheap(?:est)? (.+)`),
	productRule(SearchProduct, `good (.+)`),
	productRule(SearchProduct, `buy (.+)`),
}

// Classify matches the query against the rule table in priority order. When
// no rule matches, the whole query becomes a product search.
func Classify(raw string) Result {
	query := strings.ToLower(strings.TrimSpace(raw))
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		extracted, entities := r.extract(m)
		return Result{Intent: r.intent, Query: extracted, Entities: entities}
	}
	return Result{
		Intent:   SearchProduct,
		Query:    query,
		Entities: Entities{Product: query},
	}
}

// synonymExpansion maps a product-type keyword to the terms appended by
// Enhance. Order matters: only the first keyword found in the query applies,
// so "phone" shadows "headphone" the way the reference rules do.
var synonymExpansion = []struct {
	keyword  string
	expanded string
}{
	{"phone", "smartphone mobile"},
	{"laptop", "laptop notebook computer"},
	{"shoe", "shoes footwear"},
	{"dress", "dress kurti clothing"},
	{"watch", "watch smartwatch"},
	{"headphone", "headphones earphones audio"},
	{"tablet", "tablet ipad"},
}

// Enhance appends category synonym keywords when the query contains a known
// product-type keyword. Only the first matching rule applies.
func Enhance(query string) string {
	lower := strings.ToLower(query)
	for _, s := range synonymExpansion {
		if strings.Contains(lower, s.keyword) {
			return query + " " + s.expanded
		}
	}
	return query
}
