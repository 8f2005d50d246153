package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/meliscope/meliscope-go/internal/config"
	"github.com/meliscope/meliscope-go/internal/models"
)

// Seller-count thresholds for the competition level classification.
const (
	mediumCompetitionSellers = 5
	highCompetitionSellers   = 15
)

// StoreClient is the subset of the marketplace client the analyzer needs for
// official-store lookups.
type StoreClient interface {
	GetStore(ctx context.Context, storeID int64, token string) (*models.StoreInfo, error)
}

// MarketAnalyzer sequences fetching, aggregation, and the analysis engines
// into one MarketAnalysis report per query. It holds no state between runs;
// every report is built from a fresh snapshot and supersedes the previous
// one for the same query.
type MarketAnalyzer struct {
	listings    *ListingFetcher
	details     *ItemDetailFetcher
	sellers     *SellerDetailFetcher
	stores      StoreClient
	aggregation *AggregationEngine
	trend       *TrendAnalyzer
	elasticity  *ElasticityEstimator
	segmenter   *MarketSegmenter
	keywords    *KeywordAnalyzer
	recommender *RecommendationGenerator
	cfg         config.AnalysisConfig
	logger      *logrus.Logger
}

func NewMarketAnalyzer(
	listings *ListingFetcher,
	details *ItemDetailFetcher,
	sellers *SellerDetailFetcher,
	stores StoreClient,
	cfg config.AnalysisConfig,
	logger *logrus.Logger,
) *MarketAnalyzer {
	return &MarketAnalyzer{
		listings:    listings,
		details:     details,
		sellers:     sellers,
		stores:      stores,
		aggregation: NewAggregationEngine(cfg.PriceSegments, cfg.TopSellers),
		trend:       NewTrendAnalyzer(),
		elasticity:  NewElasticityEstimator(),
		segmenter:   NewMarketSegmenter(cfg.MarketSegments),
		keywords:    NewKeywordAnalyzer(),
		recommender: NewRecommendationGenerator(),
		cfg:         cfg,
		logger:      logger,
	}
}

// AnalyzeMarket produces the full report for a query. The only error it
// surfaces is *models.NoDataError (or a failure of the initial search);
// every other remote failure degrades the report's precision instead.
func (a *MarketAnalyzer) AnalyzeMarket(ctx context.Context, query string, officialStoresOnly bool, token string) (*models.MarketAnalysis, error) {
	listings, total, err := a.listings.FetchListings(ctx, query, officialStoresOnly, a.cfg.MaxListings, token)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, &models.NoDataError{Query: query}
	}

	details := a.fetchDetails(ctx, listings, token)
	reputations := a.fetchReputations(ctx, listings, details, token)

	agg := a.aggregation.Aggregate(listings, details)
	for i := range agg.TopSellers {
		if rep, ok := reputations[agg.TopSellers[i].SellerID]; ok {
			agg.TopSellers[i].Nickname = rep.Nickname
		}
	}
	a.fillStoreNames(ctx, &agg.OfficialStores, token)

	history := a.mergeHistories(details)
	priceHistory := a.priceHistory(details)

	trendResult := a.trend.Analyze(history)
	competition := competitionLevel(agg.TotalSellers)

	report := &models.MarketAnalysis{
		ID:                 uuid.New().String(),
		Query:              query,
		OfficialStoresOnly: officialStoresOnly,
		TotalListings:      len(listings),
		TotalAvailable:     total,
		AveragePrice:       agg.AveragePrice,
		PriceRange:         agg.PriceRange,
		TotalSellers:       agg.TotalSellers,
		OfficialStores:     agg.OfficialStores,
		PriceHistory:       priceHistory,
		SmoothedHistory:    a.trend.SmoothPriceHistory(priceHistory),
		SalesTrend:         trendResult,
		CompetitionLevel:   competition,
		PriceDistribution:  agg.PriceDistribution,
		TopSellers:         agg.TopSellers,
		TotalViews:         agg.TotalViews,
		TotalSales:         agg.TotalSales,
		ConversionRate:     agg.ConversionRate,
		PriceEstimate:      a.elasticity.Estimate(listings),
		Segments:           a.segmenter.Segment(listings),
		Keywords:           a.keywords.Analyze(listings),
		GeneratedAt:        time.Now().UTC(),
	}
	report.Recommendations = a.recommender.Generate(listings, agg, trendResult, competition)

	a.logger.WithFields(logrus.Fields{
		"query":          query,
		"listings":       len(listings),
		"total_upstream": total,
		"details":        len(details),
		"sellers":        agg.TotalSellers,
	}).Info("Market analysis completed")

	return report, nil
}

// fetchDetails fans out detail fetches for a bounded top-N subset. Each
// fetch writes to its own slot; a failed item is logged and skipped.
func (a *MarketAnalyzer) fetchDetails(ctx context.Context, listings []models.Listing, token string) []models.ItemDetail {
	sample := a.cfg.DetailSampleSize
	if sample <= 0 {
		sample = 10
	}
	if sample > len(listings) {
		sample = len(listings)
	}

	results := make([]*models.ItemDetail, sample)
	var wg sync.WaitGroup
	for i := 0; i < sample; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			detail, err := a.details.FetchDetail(ctx, listings[slot].ID, token)
			if err != nil {
				perr := &models.PartialFetchError{Scope: "item " + listings[slot].ID, Err: err}
				a.logger.WithError(perr).Warn("Item detail failed, excluding from detailed subset")
				return
			}
			results[slot] = detail
		}(i)
	}
	wg.Wait()

	details := make([]models.ItemDetail, 0, sample)
	for _, d := range results {
		if d != nil {
			details = append(details, *d)
		}
	}
	return details
}

// fetchReputations looks up the sellers behind the detailed subset. The
// batch is atomic by design; if it fails the report simply carries fewer
// reputation samples.
func (a *MarketAnalyzer) fetchReputations(ctx context.Context, listings []models.Listing, details []models.ItemDetail, token string) map[int64]models.SellerReputation {
	sellerByItem := make(map[string]int64, len(listings))
	for _, l := range listings {
		sellerByItem[l.ID] = l.SellerID
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(details))
	for _, d := range details {
		id, ok := sellerByItem[d.ItemID]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	reputations, err := a.sellers.FetchSellers(ctx, ids, token)
	if err != nil {
		a.logger.WithError(err).Warn("Seller reputation batch failed, report proceeds without reputations")
		return nil
	}
	return reputations
}

func (a *MarketAnalyzer) fillStoreNames(ctx context.Context, summary *models.OfficialStoreSummary, token string) {
	for i := range summary.Stores {
		store, err := a.stores.GetStore(ctx, summary.Stores[i].StoreID, token)
		if err != nil {
			a.logger.WithField("store_id", summary.Stores[i].StoreID).WithError(err).
				Warn("Official store lookup failed, keeping generic name")
			continue
		}
		summary.Stores[i].Name = store.Name
	}
}

func (a *MarketAnalyzer) mergeHistories(details []models.ItemDetail) []models.HistoryPoint {
	merged := make([]models.HistoryPoint, 0)
	for _, d := range details {
		merged = append(merged, d.History...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged
}

// priceHistory averages the per-day prices across the detailed subset's
// histories into one market-level series.
func (a *MarketAnalyzer) priceHistory(details []models.ItemDetail) []models.PricePoint {
	type dayAcc struct {
		date  time.Time
		sum   decimal.Decimal
		count int
	}
	byDay := make(map[string]*dayAcc)
	for _, d := range details {
		for _, p := range d.History {
			key := p.Date.Format("2006-01-02")
			acc, ok := byDay[key]
			if !ok {
				acc = &dayAcc{date: p.Date, sum: decimal.Zero}
				byDay[key] = acc
			}
			acc.sum = acc.sum.Add(p.Price)
			acc.count++
		}
	}

	points := make([]models.PricePoint, 0, len(byDay))
	for _, acc := range byDay {
		points = append(points, models.PricePoint{
			Date:  acc.date,
			Price: acc.sum.Div(decimal.NewFromInt(int64(acc.count))),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

func competitionLevel(totalSellers int) string {
	switch {
	case totalSellers < mediumCompetitionSellers:
		return models.CompetitionLow
	case totalSellers < highCompetitionSellers:
		return models.CompetitionMedium
	default:
		return models.CompetitionHigh
	}
}
