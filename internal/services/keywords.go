package services

import (
	"sort"
	"strings"

	"github.com/meliscope/meliscope-go/internal/models"
)

const (
	minTokenLength = 4
	maxTerms       = 10
)

// Spanish marketplace title lexicons for the sentiment heuristic.
var (
	positiveLexicon = map[string]struct{}{
		"nuevo":     {},
		"nueva":     {},
		"original":  {},
		"oficial":   {},
		"premium":   {},
		"garantia":  {},
		"garantía":  {},
		"sellado":   {},
		"excelente": {},
	}
	negativeLexicon = map[string]struct{}{
		"usado":    {},
		"usada":    {},
		"roto":     {},
		"rota":     {},
		"defecto":  {},
		"detalle":  {},
		"reparar":  {},
		"repuesto": {},
	}
)

// KeywordAnalyzer extracts the most frequent title terms and scores the
// listing set's overall title sentiment against a small lexicon.
type KeywordAnalyzer struct{}

func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Analyze lowercases and whitespace-tokenizes all titles, discards short
// tokens, and returns the top terms by frequency (ties keep first-seen
// order) plus the lexicon sentiment score.
func (a *KeywordAnalyzer) Analyze(listings []models.Listing) models.KeywordReport {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	totalTokens := 0
	positive := 0
	negative := 0

	for _, l := range listings {
		for _, token := range strings.Fields(strings.ToLower(l.Title)) {
			if len(token) < minTokenLength {
				continue
			}
			totalTokens++
			if _, ok := firstSeen[token]; !ok {
				firstSeen[token] = totalTokens
			}
			counts[token]++
			if _, ok := positiveLexicon[token]; ok {
				positive++
			}
			if _, ok := negativeLexicon[token]; ok {
				negative++
			}
		}
	}

	terms := make([]models.TermFrequency, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, models.TermFrequency{Term: term, Count: count})
	}
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return firstSeen[terms[i].Term] < firstSeen[terms[j].Term]
	})
	if len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}

	report := models.KeywordReport{Terms: terms}
	if totalTokens > 0 {
		report.Sentiment = float64(positive-negative) / float64(totalTokens)
	}
	return report
}
