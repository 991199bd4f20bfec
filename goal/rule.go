/*
rule.go - Prerequisite statement parsing

PURPOSE:
  Bonus definitions carry free-text prerequisite statements ("Store must
  reach the monthly target", "Vendedor deve bater a super meta semanal").
  This file parses one statement into a typed Rule so the rest of the
  system operates on a closed set of shapes, not on text.

LEXICON:
  The recognized keywords are domain vocabulary, not engine vocabulary: a
  small fixed bilingual lexicon (English plus the Portuguese phrasing the
  retail back office actually writes). A statement must simultaneously
  carry:
    (a) a scope keyword      - store/loja vs salesperson/vendedor
    (b) a period keyword     - monthly/mensal vs weekly/semanal
    (c) a target keyword     - target/meta, optionally stretch/super meta
    (d) an achievement verb  - reach/hit/achieve/bater/atingir/alcancar

  Two scopes x two periods x two metrics = eight recognized shapes.
  Anything else fails with ErrUnrecognizedPrerequisite. This is deliberate
  fail-closed design: an unrecognized prerequisite never silently passes.

SEE ALSO:
  - evaluator.go: Evaluates parsed rules
  - errors.go: UnrecognizedPrerequisiteError
*/
package goal

import "strings"

// =============================================================================
// RULE - Typed prerequisite descriptor
// =============================================================================

// Rule is the parsed form of one prerequisite statement. Rules are derived
// and ephemeral, never persisted.
type Rule struct {
	Scope  Scope
	Period RulePeriod
	Metric Metric
}

// Describe returns the target description used in verdict reasons,
// e.g. "monthly stretch target".
func (r Rule) Describe() string {
	return string(r.Period) + " " + r.Metric.Describe()
}

// =============================================================================
// LEXICON
// =============================================================================

var (
	storeWords      = []string{"store", "loja"}
	individualWords = []string{"salesperson", "seller", "individual", "vendedor", "vendedora"}
	monthlyWords    = []string{"monthly", "mensal", "do mes"}
	weeklyWords     = []string{"weekly", "semanal", "da semana"}
	stretchWords    = []string{"stretch", "super meta"}
	targetWords     = []string{"target", "meta"}
	verbWords       = []string{"reach", "hit", "achieve", "meet", "bater", "bata", "atingir", "atinja", "alcancar", "alcance"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// normalize lowercases the statement and strips the accents the Portuguese
// phrasing commonly carries, so "alcançar a meta do mês" matches the
// unaccented lexicon entries.
func normalize(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	replacer := strings.NewReplacer(
		"á", "a", "â", "a", "ã", "a", "à", "a",
		"é", "e", "ê", "e",
		"í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u",
		"ç", "c",
	)
	return replacer.Replace(lower)
}

// =============================================================================
// PARSER
// =============================================================================

// ParsePrerequisite parses one free-text prerequisite statement into a Rule.
// It fails with ErrUnrecognizedPrerequisite unless the statement
// unambiguously matches one of the eight supported shapes.
func ParsePrerequisite(text string) (Rule, error) {
	t := normalize(text)
	if t == "" {
		return Rule{}, &UnrecognizedPrerequisiteError{Text: text, Missing: "empty statement"}
	}

	storeHit := containsAny(t, storeWords)
	individualHit := containsAny(t, individualWords)
	switch {
	case storeHit && individualHit:
		return Rule{}, &UnrecognizedPrerequisiteError{Text: text, Missing: "ambiguous scope keyword"}
	case !storeHit && !individualHit:
		return Rule{}, &UnrecognizedPrerequisiteError{Text: text, Missing: "scope keyword"}
	}
	scope := ScopeStore
	if individualHit {
		scope = ScopeIndividual
	}

	monthlyHit := containsAny(t, monthlyWords)
	weeklyHit := containsAny(t, weeklyWords)
	switch {
	case monthlyHit && weeklyHit:
		return Rule{}, &UnrecognizedPrerequisiteError{Text: text, Missing: "ambiguous period keyword"}
	case !monthlyHit && !weeklyHit:
		return Rule{}, &UnrecognizedPrerequisiteError{Text: text, Missing: "period keyword"}
	}
	period := PeriodMonthly
	if weeklyHit {
		period = PeriodWeekly
	}

	if !containsAny(t, targetWords) {
		return Rule{}, &UnrecognizedPrerequisiteError{Text: text, Missing: "target keyword"}
	}
	metric := MetricTarget
	if containsAny(t, stretchWords) {
		metric = MetricStretchTarget
	}

	if !containsAny(t, verbWords) {
		return Rule{}, &UnrecognizedPrerequisiteError{Text: text, Missing: "achievement verb"}
	}

	return Rule{Scope: scope, Period: period, Metric: metric}, nil
}
