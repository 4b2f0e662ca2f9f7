// Package query classifies free-text questions and answers them either with
// a deterministic database handler or through the generative backend.
package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Category is the routing class of a question.
type Category string

const (
	CategoryCount          Category = "simple_count"
	CategoryTopN           Category = "simple_top_n"
	CategoryFilter         Category = "simple_filter"
	CategoryPlayerInfo     Category = "player_info"
	CategoryComparison     Category = "comparison"
	CategoryRecommendation Category = "recommendation"
	CategoryComplex        Category = "complex"
)

// Handler names of the deterministic handlers.
const (
	HandlerCount          = "count_players"
	HandlerTop            = "top_players"
	HandlerRatingAbove    = "rating_above"
	HandlerYoung          = "young_players"
	HandlerAgeBelow       = "age_below"
	HandlerOld            = "old_players"
	HandlerHighPotential  = "high_potential"
	HandlerPotentialAbove = "potential_above"
	HandlerPlayerInfo     = "player_info"
)

// Classification is the outcome of classifying one question.
type Classification struct {
	Category Category
	Handler  string // empty for generative categories
	Number   int    // captured numeric parameter, if any
	HasNum   bool
	Name     string // captured player name for player_info
	Worst    bool   // ranking asks for the lowest rated players
	Rule     string // rule that matched, for logging
}

// Deterministic reports whether the classification targets a database
// handler.
func (c Classification) Deterministic() bool {
	return c.Handler != ""
}

// rule is one entry of the ordered classification table. match returns the
// classification and true when the rule applies.
type rule struct {
	name  string
	match func(q string) (Classification, bool)
}

// Keyword rules are plain substring tests, so "top5" and "tops" count as
// ranking words and any digit counts as a number token.
var (
	countWords          = regexp.MustCompile(`quantos|quantidade|total de`)
	rankingWords        = regexp.MustCompile(`top|melhores|piores|maiores|menores`)
	smallNumber         = regexp.MustCompile(`\d`)
	numberWords         = regexp.MustCompile(`cinco|dez|quinze|vinte`)
	comparisonWords     = regexp.MustCompile(`comparar|compare|diferença|vs|versus`)
	recommendationWords = regexp.MustCompile(`devo|deveria|recomend|suger|melhor para`)

	ageBelowPattern       = regexp.MustCompile(`com menos de (\d+) anos`)
	potentialAbovePattern = regexp.MustCompile(`potencial acima de (\d+)`)
	firstNumber           = regexp.MustCompile(`\d+`)
)

var numberWordValues = map[string]int{"cinco": 5, "dez": 10, "quinze": 15, "vinte": 20}

// patternRule is one entry of the phrase table. Capture group 1, when
// present, is the numeric parameter or the player name.
type patternRule struct {
	re       *regexp.Regexp
	category Category
	handler  string
	name     bool // capture is a name rather than a number
}

var patternRules = []patternRule{
	{regexp.MustCompile(`número de jogadores`), CategoryCount, HandlerCount, false},
	{regexp.MustCompile(`melhor jogador`), CategoryTopN, HandlerTop, false},
	{regexp.MustCompile(`top \d+ jogadores`), CategoryTopN, HandlerTop, false},
	{regexp.MustCompile(`jogadores acima de (\d+)`), CategoryFilter, HandlerRatingAbove, false},
	{regexp.MustCompile(`jogadores jovens`), CategoryFilter, HandlerYoung, false},
	{regexp.MustCompile(`jogadores com menos de (\d+) anos`), CategoryFilter, HandlerAgeBelow, false},
	{regexp.MustCompile(`jogadores mais velhos`), CategoryFilter, HandlerOld, false},
	{regexp.MustCompile(`alto potencial`), CategoryFilter, HandlerHighPotential, false},
	{regexp.MustCompile(`potencial acima de (\d+)`), CategoryFilter, HandlerPotentialAbove, false},
	{regexp.MustCompile(`informações sobre ([\p{L}\p{N}_]+)`), CategoryPlayerInfo, HandlerPlayerInfo, true},
	{regexp.MustCompile(`dados do ([\p{L}\p{N}_]+)`), CategoryPlayerInfo, HandlerPlayerInfo, true},
}

// rules is the single ordered classification table; the first match wins.
var rules = []rule{
	{"count", func(q string) (Classification, bool) {
		if !countWords.MatchString(q) {
			return Classification{}, false
		}
		c := Classification{Category: CategoryCount, Handler: HandlerCount}
		if n, ok := capturedInt(ageBelowPattern, q); ok {
			c.Handler, c.Number, c.HasNum = HandlerAgeBelow, n, true
		} else if n, ok := capturedInt(potentialAbovePattern, q); ok {
			c.Handler, c.Number, c.HasNum = HandlerPotentialAbove, n, true
		}
		return c, true
	}},
	{"top_n", func(q string) (Classification, bool) {
		if !rankingWords.MatchString(q) {
			return Classification{}, false
		}
		if !smallNumber.MatchString(q) && !numberWords.MatchString(q) && !strings.Contains(q, "jogadores") {
			return Classification{}, false
		}
		c := Classification{Category: CategoryTopN, Handler: HandlerTop, Worst: strings.Contains(q, "piores")}
		c.Number, c.HasNum = rankingSize(q)
		return c, true
	}},
	{"comparison", keywordRule(comparisonWords, CategoryComparison)},
	{"recommendation", keywordRule(recommendationWords, CategoryRecommendation)},
	{"patterns", func(q string) (Classification, bool) {
		for _, p := range patternRules {
			m := p.re.FindStringSubmatch(q)
			if m == nil {
				continue
			}
			c := Classification{Category: p.category, Handler: p.handler, Rule: p.re.String()}
			switch {
			case len(m) > 1 && p.name:
				c.Name = m[1]
			case len(m) > 1:
				if n, err := strconv.Atoi(m[1]); err == nil {
					c.Number, c.HasNum = n, true
				}
			case p.handler == HandlerTop:
				c.Number, c.HasNum = rankingSize(q)
				if !c.HasNum && !strings.Contains(q, "melhores") {
					c.Number, c.HasNum = 1, true
				}
			}
			return c, true
		}
		return Classification{}, false
	}},
}

func keywordRule(re *regexp.Regexp, cat Category) func(string) (Classification, bool) {
	return func(q string) (Classification, bool) {
		if re.MatchString(q) {
			return Classification{Category: cat}, true
		}
		return Classification{}, false
	}
}

// Classify assigns a category and handler to a question. It is pure and
// deterministic.
func Classify(question string) Classification {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, r := range rules {
		if c, ok := r.match(q); ok {
			if c.Rule == "" {
				c.Rule = r.name
			}
			return c
		}
	}
	return Classification{Category: CategoryComplex, Rule: "default"}
}

func capturedInt(re *regexp.Regexp, q string) (int, bool) {
	m := re.FindStringSubmatch(q)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// rankingSize extracts the list size from the first number or number word.
func rankingSize(q string) (int, bool) {
	if s := firstNumber.FindString(q); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	if w := numberWords.FindString(q); w != "" {
		return numberWordValues[w], true
	}
	return 0, false
}
