package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/meliscope/meliscope-go/internal/models"
)

// segmentNames is the fixed ordered label list; clusters beyond it get a
// generic numbered label.
var segmentNames = []string{"Premium", "Mid-Market", "Value"}

// MarketSegmenter clusters listings into a fixed number of named market
// segments over normalized price/sales/stock features. Assignment is a
// single pass against evenly spaced seed centroids; there is no centroid
// recomputation, which keeps the segmentation cheap and deterministic.
type MarketSegmenter struct {
	segments int
	caser    cases.Caser
}

func NewMarketSegmenter(segments int) *MarketSegmenter {
	if segments <= 0 {
		segments = len(segmentNames)
	}
	return &MarketSegmenter{
		segments: segments,
		caser:    cases.Title(language.English),
	}
}

type featureVector struct {
	price float64
	sales float64
	stock float64
}

// Segment always returns exactly k segments (possibly empty) for a non-empty
// listing set, even when k exceeds the number of distinguishable clusters.
func (s *MarketSegmenter) Segment(listings []models.Listing) []models.MarketSegment {
	if len(listings) == 0 {
		return nil
	}

	features := s.normalize(listings)

	k := s.segments
	if k > len(listings) {
		k = len(listings)
	}

	// Seed centroids from evenly spaced listings of the normalized set.
	centroids := make([]featureVector, k)
	for i := 0; i < k; i++ {
		centroids[i] = features[i*len(listings)/k]
	}

	segments := make([]models.MarketSegment, s.segments)
	for i := range segments {
		segments[i] = models.MarketSegment{
			ID:       i,
			Name:     s.segmentName(i),
			Listings: []models.Listing{},
		}
	}

	for i, f := range features {
		idx := s.nearest(f, centroids)
		segments[idx].Listings = append(segments[idx].Listings, listings[i])
	}

	for i := range segments {
		s.fillDerived(&segments[i])
	}
	return segments
}

func (s *MarketSegmenter) normalize(listings []models.Listing) []featureVector {
	maxPrice, maxSales, maxStock := 0.0, 0.0, 0.0
	for _, l := range listings {
		price, _ := l.Price.Float64()
		maxPrice = math.Max(maxPrice, price)
		maxSales = math.Max(maxSales, float64(l.SoldQuantity))
		maxStock = math.Max(maxStock, float64(l.AvailableQuantity))
	}
	// A zero max would divide out the feature entirely; substitute 1.
	if maxPrice == 0 {
		maxPrice = 1
	}
	if maxSales == 0 {
		maxSales = 1
	}
	if maxStock == 0 {
		maxStock = 1
	}

	features := make([]featureVector, len(listings))
	for i, l := range listings {
		price, _ := l.Price.Float64()
		features[i] = featureVector{
			price: price / maxPrice,
			sales: float64(l.SoldQuantity) / maxSales,
			stock: float64(l.AvailableQuantity) / maxStock,
		}
	}
	return features
}

func (s *MarketSegmenter) nearest(f featureVector, centroids []featureVector) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		dp := f.price - c.price
		ds := f.sales - c.sales
		dq := f.stock - c.stock
		dist := math.Sqrt(dp*dp + ds*ds + dq*dq)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

func (s *MarketSegmenter) segmentName(index int) string {
	if index < len(segmentNames) {
		return segmentNames[index]
	}
	return s.caser.String(fmt.Sprintf("segment %d", index+1))
}

func (s *MarketSegmenter) fillDerived(segment *models.MarketSegment) {
	if len(segment.Listings) == 0 {
		segment.CenterPrice = decimal.Zero
		return
	}
	sum := decimal.Zero
	totalSales := 0
	for _, l := range segment.Listings {
		sum = sum.Add(l.Price)
		totalSales += l.SoldQuantity
	}
	segment.CenterPrice = sum.Div(decimal.NewFromInt(int64(len(segment.Listings))))
	segment.AverageSales = float64(totalSales) / float64(len(segment.Listings))
}
