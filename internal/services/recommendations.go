package services

import (
	"fmt"

	"github.com/meliscope/meliscope-go/internal/models"
)

const (
	lowConversionThreshold = 2.0
	strongGrowthThreshold  = 10.0
)

// RecommendationGenerator turns aggregated metrics into human-readable
// guidance. It is a pure function of its inputs: the same metrics always
// produce the same recommendations in the same order.
type RecommendationGenerator struct{}

func NewRecommendationGenerator() *RecommendationGenerator {
	return &RecommendationGenerator{}
}

// Generate produces zero or more recommendations from the report metrics.
func (g *RecommendationGenerator) Generate(
	listings []models.Listing,
	agg AggregationResult,
	trend models.TrendResult,
	competitionLevel string,
) []string {
	recommendations := make([]string, 0, 4)

	premiumWithSales := 0
	for _, l := range listings {
		if l.Price.GreaterThan(agg.AveragePrice) && l.SoldQuantity > 0 {
			premiumWithSales++
		}
	}
	if premiumWithSales > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"%d listings priced above the market average are still selling; there is room to position above %s %s.",
			premiumWithSales, listings[0].CurrencyID, agg.AveragePrice.StringFixed(2)))
	}

	if agg.TotalViews > 0 && agg.ConversionRate < lowConversionThreshold {
		recommendations = append(recommendations, fmt.Sprintf(
			"Conversion rate is low (%.2f%%); improve listing titles, photos, and shipping options to convert more visits.",
			agg.ConversionRate))
	}

	if competitionLevel == models.CompetitionHigh {
		recommendations = append(recommendations,
			"Competition is high; differentiate on shipping speed, bundles, or official-store branding rather than price alone.")
	}

	if trend.GrowthRate > strongGrowthThreshold {
		recommendations = append(recommendations, fmt.Sprintf(
			"Demand is growing (%.1f%% month over month); consider increasing inventory to avoid stockouts.",
			trend.GrowthRate))
	} else if trend.GrowthRate < -strongGrowthThreshold {
		recommendations = append(recommendations, fmt.Sprintf(
			"Demand is shrinking (%.1f%% month over month); review pricing and consider refreshing the catalog.",
			trend.GrowthRate))
	}

	return recommendations
}
