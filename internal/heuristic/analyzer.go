// Package heuristic implements the local toxicity estimator that screens
// review text before the AI backend is consulted. It is deterministic,
// performs no I/O, and never fails on valid string input.
package heuristic

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	matchWeight        = 0.4
	severityMultiplier = 1.5
	shortInputRunes    = 3
	allCapsMinLength   = 10
)

var (
	// leetRegex catches digit/symbol substitution inside a word ("id10t", "stup1d").
	leetRegex = regexp.MustCompile(`[a-z]+[0-9@$]+[a-z]+`)
	// censoredRegex catches masking-symbol runs after a short standalone
	// token ("f***") or inside a word ("bull**it"). Trailing punctuation on
	// a full word ("great!!!") is not a censored token.
	censoredRegex = regexp.MustCompile(`\b[a-z]{1,3}[*#@$%&!]{2,}|[a-z]+[*#@$%&!]{2,}[a-z]+`)

	collapseRegex = regexp.MustCompile(`\s+`)

	// stripMarks removes combining marks so accented characters match
	// their plain vocabulary forms.
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Result is the outcome of a heuristic pass over a single text.
type Result struct {
	BadTermCount       int      `json:"bad_term_count"`
	MatchedTerms       []string `json:"matched_terms"`
	PatternCount       int      `json:"pattern_count"`
	SeverityMultiplier float64  `json:"severity_multiplier"`
	Score              float64  `json:"score"`
}

// Analyzer scores text against the fixed vocabulary and suspicious-pattern set.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze scores text in [0.0, 1.0]. Blank input yields a zero result.
// Each vocabulary hit and each detected pattern counts as one match;
// base = min(1, matches*0.4), escalated 1.5x when a high-severity term hit.
func (a *Analyzer) Analyze(text string) Result {
	result := Result{
		MatchedTerms:       []string{},
		SeverityMultiplier: 1.0,
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return result
	}

	normalized := normalize(trimmed)
	compact := strings.ReplaceAll(normalized, " ", "")

	for _, term := range vocabulary {
		if strings.Contains(normalized, term) ||
			strings.Contains(compact, strings.ReplaceAll(term, " ", "")) {
			result.MatchedTerms = append(result.MatchedTerms, term)
			result.BadTermCount++
			if highSeverity[term] {
				result.SeverityMultiplier = severityMultiplier
			}
		}
	}

	result.PatternCount = countPatterns(trimmed)

	base := min(1.0, float64(result.BadTermCount+result.PatternCount)*matchWeight)
	result.Score = min(1.0, base*result.SeverityMultiplier)

	return result
}

// countPatterns detects suspicious shapes independent of the vocabulary:
// leetspeak substitution, censored tokens, very short inputs, and shouted
// all-caps inputs. Each contributes one match.
func countPatterns(trimmed string) int {
	count := 0
	lowered := strings.ToLower(trimmed)

	if leetRegex.MatchString(lowered) {
		count++
	}
	if censoredRegex.MatchString(lowered) {
		count++
	}
	if utf8.RuneCountInString(trimmed) < shortInputRunes {
		count++
	}
	if isShouted(trimmed) {
		count++
	}

	return count
}

func isShouted(text string) bool {
	if utf8.RuneCountInString(text) <= allCapsMinLength {
		return false
	}

	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// normalize lowercases, folds diacritics, strips punctuation to spaces,
// and collapses whitespace for vocabulary matching.
func normalize(text string) string {
	lowered := strings.ToLower(text)

	if folded, _, err := transform.String(stripMarks, lowered); err == nil {
		lowered = folded
	}

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.TrimSpace(collapseRegex.ReplaceAllString(b.String(), " "))
}
