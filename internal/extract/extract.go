// Package extract derives concept and fact candidates from unstructured text.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Candidate limits and bounds of the heuristic extractor.
const (
	MaxConcepts       = 10
	MaxFacts          = 5
	MinConceptLength  = 4
	MinSentenceLength = 20
	MaxSentenceLength = 200
)

// Fact is a candidate factual sentence and the concepts it mentions verbatim.
type Fact struct {
	Statement string
	Concepts  []string
}

// Extraction is the output of a TextExtractor.
type Extraction struct {
	Concepts []string
	Facts    []Fact
	Method   string
}

// TextExtractor turns text from a named source into candidates.
type TextExtractor interface {
	Extract(text, source string) Extraction
}

var (
	sentenceSplit = regexp.MustCompile(`[.!?]`)
	indicators    = regexp.MustCompile(`(?i)\b(?:is a|are|was|were|will be|can be|should be|has|have|had|contains|includes|consists of|enables|requires|supports|contradicts)\b`)
)

// stopWords are capitalized words that never name a concept on their own.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true, "these": true, "those": true,
	"it": true, "its": true, "they": true, "them": true, "their": true, "we": true, "our": true,
	"you": true, "your": true, "he": true, "she": true, "his": true, "her": true, "i": true,
	"there": true, "here": true, "what": true, "which": true, "who": true, "when": true,
	"where": true, "why": true, "how": true, "some": true, "any": true, "each": true,
	"every": true, "all": true, "both": true, "many": true, "most": true, "such": true,
	"however": true, "also": true, "then": true, "than": true,
}

// Heuristic is the pattern-based TextExtractor.
type Heuristic struct{}

// Extract implements TextExtractor.
func (Heuristic) Extract(text, _ string) Extraction {
	concepts := Concepts(text)
	return Extraction{
		Concepts: concepts,
		Facts:    Facts(text, concepts),
		Method:   "heuristic",
	}
}

// Concepts returns runs of capitalized words in first-seen order, without
// leading stop words or duplicates, at least MinConceptLength characters
// long, truncated to MaxConcepts.
func Concepts(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, run := range capitalizedRuns(text) {
		for len(run) > 0 && stopWords[strings.ToLower(run[0])] {
			run = run[1:]
		}
		if len(run) == 0 {
			continue
		}
		m := strings.Join(run, " ")
		if seen[m] {
			continue
		}
		seen[m] = true
		if utf8.RuneCountInString(m) < MinConceptLength {
			continue
		}
		out = append(out, m)
		if len(out) == MaxConcepts {
			break
		}
	}
	return out
}

// capitalizedRuns splits text into words of letters, marks and digits and
// groups consecutive capitalized words separated only by spaces or tabs.
func capitalizedRuns(text string) [][]string {
	var runs [][]string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isWordRune(r) {
			if r != ' ' && r != '\t' {
				flush()
			}
			i += size
			continue
		}
		j := i + size
		for j < len(text) {
			next, n := utf8.DecodeRuneInString(text[j:])
			if !isWordRune(next) {
				break
			}
			j += n
		}
		if unicode.IsUpper(r) {
			cur = append(cur, text[i:j])
		} else {
			flush()
		}
		i = j
	}
	flush()
	return runs
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

// Facts returns up to MaxFacts sentences of acceptable length carrying an
// indicator phrase, in original order, each with the concepts it contains.
func Facts(text string, concepts []string) []Fact {
	var out []Fact
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		n := utf8.RuneCountInString(s)
		if n < MinSentenceLength || n > MaxSentenceLength {
			continue
		}
		if !indicators.MatchString(s) {
			continue
		}
		f := Fact{Statement: s}
		for _, c := range concepts {
			if strings.Contains(s, c) {
				f.Concepts = append(f.Concepts, c)
			}
		}
		out = append(out, f)
		if len(out) == MaxFacts {
			break
		}
	}
	return out
}
