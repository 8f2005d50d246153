package services

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/meliscope/meliscope-go/internal/models"
)

const (
	trainingIterations = 1000
	learningRate       = 0.05
)

// ElasticityEstimator fits a single-variable linear model mapping sales
// volume to price and derives price elasticity from period-over-period
// percentage changes. The fitting is a deliberate heuristic, not a
// statistically rigorous regression.
type ElasticityEstimator struct{}

func NewElasticityEstimator() *ElasticityEstimator {
	return &ElasticityEstimator{}
}

// Estimate returns a suggested price, a confidence score, and the elasticity
// for the listing set. On any numerical failure it falls back to the
// arithmetic mean price with confidence 0.5 and elasticity 0.
func (e *ElasticityEstimator) Estimate(listings []models.Listing) models.PriceEstimate {
	prices := make([]float64, len(listings))
	sales := make([]float64, len(listings))
	for i, l := range listings {
		prices[i], _ = l.Price.Float64()
		sales[i] = float64(l.SoldQuantity)
	}

	suggested, ok := e.train(sales, prices)
	if !ok {
		return e.fallback(prices)
	}

	mean := meanOf(prices)
	stddev := stddevOf(prices, mean)
	confidence := 0.95
	if mean != 0 {
		// Not clamped: very dispersed prices can push this negative.
		confidence = 0.95 - stddev/mean
	}

	return models.PriceEstimate{
		SuggestedPrice: decimal.NewFromFloat(suggested),
		Confidence:     confidence,
		Elasticity:     e.elasticity(sales, prices),
	}
}

// train runs gradient descent on max-normalized (sales, price) pairs and
// predicts the price at the mean sales volume. Returns ok=false on any
// degenerate or non-finite outcome.
func (e *ElasticityEstimator) train(sales, prices []float64) (float64, bool) {
	n := len(prices)
	if n < 2 {
		return 0, false
	}

	maxSales := maxOf(sales)
	maxPrice := maxOf(prices)
	if maxSales == 0 {
		maxSales = 1
	}
	if maxPrice == 0 {
		return 0, false
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = sales[i] / maxSales
		y[i] = prices[i] / maxPrice
	}

	weight, bias := 0.0, 0.0
	for iter := 0; iter < trainingIterations; iter++ {
		gradW, gradB := 0.0, 0.0
		for i := 0; i < n; i++ {
			err := weight*x[i] + bias - y[i]
			gradW += err * x[i]
			gradB += err
		}
		weight -= learningRate * gradW / float64(n)
		bias -= learningRate * gradB / float64(n)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || math.IsNaN(bias) || math.IsInf(bias, 0) {
		return 0, false
	}

	predicted := (weight*(meanOf(sales)/maxSales) + bias) * maxPrice
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) || predicted <= 0 {
		return 0, false
	}
	return predicted, true
}

// elasticity averages (Δsales/sales) / (Δprice/price) over consecutive
// listing pairs, skipping pairs with a zero price change or a non-finite
// ratio. No valid pairs yields 0.
func (e *ElasticityEstimator) elasticity(sales, prices []float64) float64 {
	sum := 0.0
	count := 0
	for i := 1; i < len(prices); i++ {
		priceDelta := prices[i] - prices[i-1]
		if priceDelta == 0 || prices[i-1] == 0 || sales[i-1] == 0 {
			continue
		}
		ratio := ((sales[i] - sales[i-1]) / sales[i-1]) / (priceDelta / prices[i-1])
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			continue
		}
		sum += ratio
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func (e *ElasticityEstimator) fallback(prices []float64) models.PriceEstimate {
	return models.PriceEstimate{
		SuggestedPrice: decimal.NewFromFloat(meanOf(prices)),
		Confidence:     0.5,
		Elasticity:     0,
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddevOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func maxOf(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}
