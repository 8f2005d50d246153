package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meliscope/meliscope-go/internal/models"
)

// AggregationResult bundles the price, seller, and conversion statistics
// computed over one request's listing set.
type AggregationResult struct {
	AveragePrice      decimal.Decimal
	PriceRange        models.PriceRange
	TotalSellers      int
	OfficialStores    models.OfficialStoreSummary
	PriceDistribution []models.PriceBucket
	TopSellers        []models.SellerRanking
	TotalViews        int
	TotalSales        int
	ConversionRate    float64
}

// AggregationEngine computes market statistics from a listing set and the
// detailed top-N subset. It never refetches: all inputs come from the same
// request's snapshot.
type AggregationEngine struct {
	priceSegments int
	topSellers    int
}

func NewAggregationEngine(priceSegments, topSellers int) *AggregationEngine {
	if priceSegments <= 0 {
		priceSegments = 5
	}
	if topSellers <= 0 {
		topSellers = 5
	}
	return &AggregationEngine{priceSegments: priceSegments, topSellers: topSellers}
}

// Aggregate computes the full statistics set. Listings must be non-empty.
func (e *AggregationEngine) Aggregate(listings []models.Listing, details []models.ItemDetail) AggregationResult {
	result := AggregationResult{
		AveragePrice:      e.averagePrice(listings),
		PriceRange:        e.priceRange(listings),
		TotalSellers:      e.countSellers(listings),
		OfficialStores:    e.groupOfficialStores(listings),
		PriceDistribution: e.PriceDistribution(listings),
		TopSellers:        e.rankSellers(listings, details),
	}

	for _, d := range details {
		result.TotalViews += d.Visits
		result.TotalSales += d.SoldQuantity
	}
	if result.TotalViews > 0 {
		result.ConversionRate = float64(result.TotalSales) / float64(result.TotalViews) * 100
	}

	return result
}

func (e *AggregationEngine) averagePrice(listings []models.Listing) decimal.Decimal {
	if len(listings) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, l := range listings {
		sum = sum.Add(l.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(listings))))
}

func (e *AggregationEngine) priceRange(listings []models.Listing) models.PriceRange {
	if len(listings) == 0 {
		return models.PriceRange{}
	}
	min := listings[0].Price
	max := listings[0].Price
	for _, l := range listings[1:] {
		if l.Price.LessThan(min) {
			min = l.Price
		}
		if l.Price.GreaterThan(max) {
			max = l.Price
		}
	}
	return models.PriceRange{Min: min, Max: max}
}

func (e *AggregationEngine) countSellers(listings []models.Listing) int {
	sellers := make(map[int64]struct{})
	for _, l := range listings {
		sellers[l.SellerID] = struct{}{}
	}
	return len(sellers)
}

// PriceDistribution partitions [min, max] into equal-width contiguous
// buckets. Every price falls into exactly one bucket; the last bucket is
// inclusive of the maximum.
func (e *AggregationEngine) PriceDistribution(listings []models.Listing) []models.PriceBucket {
	if len(listings) == 0 {
		return nil
	}

	priceRange := e.priceRange(listings)
	width := priceRange.Max.Sub(priceRange.Min).Div(decimal.NewFromInt(int64(e.priceSegments)))

	buckets := make([]models.PriceBucket, e.priceSegments)
	for i := range buckets {
		buckets[i].RangeMin = priceRange.Min.Add(width.Mul(decimal.NewFromInt(int64(i))))
		buckets[i].RangeMax = priceRange.Min.Add(width.Mul(decimal.NewFromInt(int64(i + 1))))
	}
	// Pin the top boundary to the true max so rounding in the width cannot
	// leave the most expensive listing outside every bucket.
	buckets[e.priceSegments-1].RangeMax = priceRange.Max

	for _, l := range listings {
		buckets[e.bucketIndex(l.Price, priceRange, width)].Count++
	}
	for i := range buckets {
		buckets[i].Percentage = float64(buckets[i].Count) / float64(len(listings)) * 100
	}
	return buckets
}

func (e *AggregationEngine) bucketIndex(price decimal.Decimal, r models.PriceRange, width decimal.Decimal) int {
	if width.IsZero() {
		return 0
	}
	idx := int(price.Sub(r.Min).Div(width).IntPart())
	if idx >= e.priceSegments {
		// A price exactly at max lands in the last bucket.
		idx = e.priceSegments - 1
	}
	return idx
}

func (e *AggregationEngine) groupOfficialStores(listings []models.Listing) models.OfficialStoreSummary {
	type storeAcc struct {
		count int
		sum   decimal.Decimal
	}
	stores := make(map[int64]*storeAcc)
	order := make([]int64, 0)
	officialListings := 0

	for _, l := range listings {
		if l.OfficialStoreID == nil {
			continue
		}
		officialListings++
		acc, ok := stores[*l.OfficialStoreID]
		if !ok {
			acc = &storeAcc{sum: decimal.Zero}
			stores[*l.OfficialStoreID] = acc
			order = append(order, *l.OfficialStoreID)
		}
		acc.count++
		acc.sum = acc.sum.Add(l.Price)
	}

	summary := models.OfficialStoreSummary{
		Count:  len(stores),
		Stores: make([]models.OfficialStoreStats, 0, len(stores)),
	}
	for _, id := range order {
		acc := stores[id]
		summary.Stores = append(summary.Stores, models.OfficialStoreStats{
			StoreID:      id,
			ListingCount: acc.count,
			AveragePrice: acc.sum.Div(decimal.NewFromInt(int64(acc.count))),
		})
	}
	if len(listings) > 0 {
		summary.Percentage = float64(officialListings) / float64(len(listings)) * 100
	}
	return summary
}

// rankSellers groups the detailed subset by seller, sums sales, and returns
// the top sellers in descending order. Ties keep input encounter order.
func (e *AggregationEngine) rankSellers(listings []models.Listing, details []models.ItemDetail) []models.SellerRanking {
	sellerByItem := make(map[string]int64, len(listings))
	for _, l := range listings {
		sellerByItem[l.ID] = l.SellerID
	}

	totals := make(map[int64]*models.SellerRanking)
	order := make([]int64, 0)
	for _, d := range details {
		sellerID, ok := sellerByItem[d.ItemID]
		if !ok {
			continue
		}
		r, exists := totals[sellerID]
		if !exists {
			r = &models.SellerRanking{SellerID: sellerID}
			totals[sellerID] = r
			order = append(order, sellerID)
		}
		r.TotalSales += d.SoldQuantity
		r.ListingCount++
	}

	ranking := make([]models.SellerRanking, 0, len(order))
	for _, id := range order {
		ranking = append(ranking, *totals[id])
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalSales > ranking[j].TotalSales
	})
	if len(ranking) > e.topSellers {
		ranking = ranking[:e.topSellers]
	}
	return ranking
}
