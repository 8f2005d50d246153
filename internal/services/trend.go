package services

import (
	"math"
	"sort"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"

	"github.com/meliscope/meliscope-go/internal/models"
)

const (
	// trendThreshold is the symmetric dead zone (in percent) around zero
	// growth that keeps noise from flapping the classification.
	trendThreshold = 5.0

	// seasonalityThreshold is the minimum absolute autocorrelation that
	// counts as a seasonal pattern.
	seasonalityThreshold = 0.7

	// minSeasonalitySamples is the shortest series autocorrelation runs on.
	minSeasonalitySamples = 4

	// smoothingPeriod is the SMA window applied to the price-history series.
	smoothingPeriod = 7
)

// TrendAnalyzer classifies the sales trend of a history set and detects
// seasonality via lag autocorrelation.
type TrendAnalyzer struct{}

func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// Analyze groups history points by calendar month, derives the growth rate
// from the two most recent months with data, and classifies the trend.
// Fewer than two distinct months yields growth 0 and a "stable" trend.
func (a *TrendAnalyzer) Analyze(history []models.HistoryPoint) models.TrendResult {
	result := models.TrendResult{Direction: models.TrendStable}

	monthly := make(map[string]float64)
	for _, p := range history {
		monthly[p.Date.Format("2006-01")] += float64(p.VisitCount)
	}
	if len(monthly) >= 2 {
		months := make([]string, 0, len(monthly))
		for m := range monthly {
			months = append(months, m)
		}
		sort.Strings(months)

		previous := monthly[months[len(months)-2]]
		current := monthly[months[len(months)-1]]
		if previous != 0 {
			result.GrowthRate = (current - previous) / previous * 100
		}
	}

	switch {
	case result.GrowthRate > trendThreshold:
		result.Direction = models.TrendUp
	case result.GrowthRate < -trendThreshold:
		result.Direction = models.TrendDown
	}

	series := make([]float64, len(history))
	for i, p := range history {
		series[i] = float64(p.VisitCount)
	}
	result.Autocorrelation = a.autocorrelation(series)
	result.Seasonal = math.Abs(result.Autocorrelation) > seasonalityThreshold

	return result
}

// autocorrelation computes the series autocorrelation at lag N/4. A flat
// series (zero variance) or one shorter than the minimum yields 0.
func (a *TrendAnalyzer) autocorrelation(series []float64) float64 {
	n := len(series)
	if n < minSeasonalitySamples {
		return 0
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range series {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(n)
	if variance == 0 {
		return 0
	}

	lag := n / 4
	if lag == 0 {
		return 0
	}

	sum := 0.0
	for i := 0; i < n-lag; i++ {
		sum += (series[i] - mean) * (series[i+lag] - mean)
	}
	return sum / (float64(n-lag) * variance)
}

// SmoothPriceHistory applies a simple moving average to the price-history
// series for a noise-reduced dashboard trend line. Series shorter than the
// smoothing period return nil.
func (a *TrendAnalyzer) SmoothPriceHistory(history []models.PricePoint) []models.PricePoint {
	if len(history) < smoothingPeriod {
		return nil
	}

	prices := make([]float64, len(history))
	for i, p := range history {
		prices[i], _ = p.Price.Float64()
	}

	sma := trend.NewSmaWithPeriod[float64](smoothingPeriod)
	smoothed := helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices)))

	// The SMA output is shorter than the input by period-1; align it with
	// the tail of the original dates.
	offset := len(history) - len(smoothed)
	points := make([]models.PricePoint, len(smoothed))
	for i, v := range smoothed {
		points[i] = models.PricePoint{
			Date:  history[offset+i].Date,
			Price: decimal.NewFromFloat(v),
		}
	}
	return points
}
