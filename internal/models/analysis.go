package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend directions as reported by the trend analyzer.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Competition levels derived from the seller count.
const (
	CompetitionLow    = "low"
	CompetitionMedium = "medium"
	CompetitionHigh   = "high"
)

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// PriceBucket is one equal-width slice of the price distribution. Buckets
// partition [min, max] contiguously; the last bucket includes the maximum.
type PriceBucket struct {
	RangeMin   decimal.Decimal `json:"range_min"`
	RangeMax   decimal.Decimal `json:"range_max"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
}

type OfficialStoreStats struct {
	StoreID      int64           `json:"store_id"`
	Name         string          `json:"name"`
	ListingCount int             `json:"listing_count"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

type OfficialStoreSummary struct {
	Count      int                  `json:"count"`
	Stores     []OfficialStoreStats `json:"stores"`
	Percentage float64              `json:"percentage"`
}

type SellerRanking struct {
	SellerID     int64  `json:"seller_id"`
	Nickname     string `json:"nickname,omitempty"`
	TotalSales   int    `json:"total_sales"`
	ListingCount int    `json:"listing_count"`
}

type TrendResult struct {
	Direction       string  `json:"direction"`
	GrowthRate      float64 `json:"growth_rate"`
	Seasonal        bool    `json:"seasonal"`
	Autocorrelation float64 `json:"autocorrelation"`
}

// PriceEstimate is the output of the elasticity estimator. Confidence is
// 0.95 minus the price coefficient of variation and is deliberately not
// clamped; very dispersed prices can push it negative.
type PriceEstimate struct {
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	Confidence     float64         `json:"confidence"`
	Elasticity     float64         `json:"elasticity"`
}

// MarketSegment groups listings by normalized price/sales/stock similarity.
type MarketSegment struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Listings     []Listing       `json:"listings"`
	CenterPrice  decimal.Decimal `json:"center_price"`
	AverageSales float64         `json:"average_sales"`
}

type TermFrequency struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type KeywordReport struct {
	Terms     []TermFrequency `json:"terms"`
	Sentiment float64         `json:"sentiment"`
}

type PricePoint struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// MarketAnalysis is the full report produced once per (query, official-store
// filter) pair. It is held in caller memory and superseded, never merged, by
// the next report for the same query.
type MarketAnalysis struct {
	ID                 string               `json:"id"`
	Query              string               `json:"query"`
	OfficialStoresOnly bool                 `json:"official_stores_only"`
	TotalListings      int                  `json:"total_listings"`
	TotalAvailable     int                  `json:"total_available"`
	AveragePrice       decimal.Decimal      `json:"average_price"`
	PriceRange         PriceRange           `json:"price_range"`
	TotalSellers       int                  `json:"total_sellers"`
	OfficialStores     OfficialStoreSummary `json:"official_stores"`
	PriceHistory       []PricePoint         `json:"price_history"`
	SmoothedHistory    []PricePoint         `json:"smoothed_history,omitempty"`
	SalesTrend         TrendResult          `json:"sales_trend"`
	CompetitionLevel   string               `json:"competition_level"`
	PriceDistribution  []PriceBucket        `json:"price_distribution"`
	TopSellers         []SellerRanking      `json:"top_sellers"`
	TotalViews         int                  `json:"total_views"`
	TotalSales         int                  `json:"total_sales"`
	ConversionRate     float64              `json:"conversion_rate"`
	PriceEstimate      PriceEstimate        `json:"price_estimate"`
	Segments           []MarketSegment      `json:"segments"`
	Keywords           KeywordReport        `json:"keywords"`
	Recommendations    []string             `json:"recommendations"`
	GeneratedAt        time.Time            `json:"generated_at"`
}
