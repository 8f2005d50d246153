package services

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliscope/meliscope-go/internal/models"
)

func titled(titles ...string) []models.Listing {
	listings := make([]models.Listing, len(titles))
	for i, title := range titles {
		listings[i] = models.Listing{ID: "MLA" + strconv.Itoa(i), Title: title}
	}
	return listings
}

func TestKeywords_TopTermsByFrequency(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled(
		"iPhone 15 Pro Max Nuevo Sellado",
		"iPhone 15 Plus Liberado",
		"iPhone 14 Usado",
	)

	report := analyzer.Analyze(listings)
	require.NotEmpty(t, report.Terms)
	assert.Equal(t, "iphone", report.Terms[0].Term)
	assert.Equal(t, 3, report.Terms[0].Count)
}

func TestKeywords_ShortTokensDiscarded(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled("tv 4k de 55 hdr smart android")

	report := analyzer.Analyze(listings)
	for _, term := range report.Terms {
		assert.GreaterOrEqual(t, len(term.Term), 4, "token %q too short", term.Term)
	}
	assert.Len(t, report.Terms, 2)
}

func TestKeywords_CaseInsensitive(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled("SAMSUNG Galaxy", "samsung galaxy", "Samsung GALAXY")

	report := analyzer.Analyze(listings)
	require.Len(t, report.Terms, 2)
	assert.Equal(t, 3, report.Terms[0].Count)
	assert.Equal(t, 3, report.Terms[1].Count)
}

func TestKeywords_TruncatesToTopTen(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled(
		"alpha bravo charlie delta echos foxtrot golfs hotel india juliett kilos limas",
	)

	report := analyzer.Analyze(listings)
	assert.Len(t, report.Terms, 10)
}

func TestKeywords_TiesKeepFirstSeenOrder(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled("zapato bota", "zapato bota")

	report := analyzer.Analyze(listings)
	require.Len(t, report.Terms, 2)
	assert.Equal(t, "zapato", report.Terms[0].Term)
	assert.Equal(t, "bota", report.Terms[1].Term)
}

func TestKeywords_SentimentPositive(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled("celular nuevo original", "celular nuevo sellado")

	report := analyzer.Analyze(listings)
	// 4 sentiment hits out of 6 counted tokens, none negative.
	assert.InDelta(t, 4.0/6.0, report.Sentiment, 1e-9)
}

func TestKeywords_SentimentNegative(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled("celular usado", "celular roto para repuesto")

	report := analyzer.Analyze(listings)
	assert.Negative(t, report.Sentiment)
}

func TestKeywords_NeutralWhenNoLexiconHits(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	listings := titled("notebook lenovo thinkpad")

	report := analyzer.Analyze(listings)
	assert.Zero(t, report.Sentiment)
}

func TestKeywords_EmptyInput(t *testing.T) {
	analyzer := NewKeywordAnalyzer()

	report := analyzer.Analyze(nil)
	assert.Empty(t, report.Terms)
	assert.Zero(t, report.Sentiment)
}
