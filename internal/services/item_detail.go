package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meliscope/meliscope-go/internal/meli"
	"github.com/meliscope/meliscope-go/internal/models"
)

// DetailClient is the subset of the marketplace client the detail fetchers need.
type DetailClient interface {
	GetItem(ctx context.Context, itemID, token string) (*models.Listing, error)
	GetItemVisits(ctx context.Context, itemID string, windowDays int, token string) ([]meli.VisitPoint, error)
	GetItemStats(ctx context.Context, itemID, token string) (*meli.ItemStats, error)
}

// ItemDetailFetcher retrieves per-item counters and a reconstructed trailing
// history for one listing at a time.
type ItemDetailFetcher struct {
	client      DetailClient
	historyDays int
	logger      *logrus.Logger
}

func NewItemDetailFetcher(client DetailClient, historyDays int, logger *logrus.Logger) *ItemDetailFetcher {
	if historyDays <= 0 {
		historyDays = 30
	}
	return &ItemDetailFetcher{client: client, historyDays: historyDays, logger: logger}
}

// FetchDetail returns the view/sale counters and history for a listing. The
// two stats calls are issued concurrently and a failure of either fails the
// whole item; history reconstruction failures degrade to an empty history
// instead, which callers must treat as "unknown", not "zero activity".
func (f *ItemDetailFetcher) FetchDetail(ctx context.Context, itemID, token string) (*models.ItemDetail, error) {
	var (
		visits   []meli.VisitPoint
		stats    *meli.ItemStats
		visitErr error
		statsErr error
	)

	done := make(chan struct{})
	go func() {
		visits, visitErr = f.client.GetItemVisits(ctx, itemID, f.historyDays, token)
		done <- struct{}{}
	}()
	go func() {
		stats, statsErr = f.client.GetItemStats(ctx, itemID, token)
		done <- struct{}{}
	}()
	<-done
	<-done

	if visitErr != nil {
		return nil, &models.DependencyError{Endpoint: "item visits", Err: visitErr}
	}
	if statsErr != nil {
		return nil, &models.DependencyError{Endpoint: "item stats", Err: statsErr}
	}

	totalVisits := stats.Visits
	if totalVisits == 0 {
		for _, v := range visits {
			totalVisits += v.Total
		}
	}

	return &models.ItemDetail{
		ItemID:       itemID,
		Visits:       totalVisits,
		SoldQuantity: stats.SoldQuantity,
		History:      f.reconstructHistory(ctx, itemID, visits, token),
	}, nil
}

// reconstructHistory builds the trailing daily history for an item. Price and
// stock are back-filled with the current listing values for every day; that
// is a known approximation of the real record, not something to correct here.
func (f *ItemDetailFetcher) reconstructHistory(ctx context.Context, itemID string, visits []meli.VisitPoint, token string) []models.HistoryPoint {
	listing, err := f.client.GetItem(ctx, itemID, token)
	if err != nil {
		f.logger.WithField("item_id", itemID).WithError(err).Warn("Item lookup failed, returning empty history")
		return []models.HistoryPoint{}
	}

	visitsByDay := make(map[string]int, len(visits))
	for _, v := range visits {
		visitsByDay[v.Date.Format("2006-01-02")] = v.Total
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]models.HistoryPoint, 0, f.historyDays)
	for i := f.historyDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		points = append(points, models.HistoryPoint{
			Date:              day,
			Price:             listing.Price,
			AvailableQuantity: listing.AvailableQuantity,
			VisitCount:        visitsByDay[day.Format("2006-01-02")],
		})
	}
	return points
}
