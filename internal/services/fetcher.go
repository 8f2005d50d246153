package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/meliscope/meliscope-go/internal/meli"
	"github.com/meliscope/meliscope-go/internal/models"
)

// maxListingFetch bounds the page fan-out regardless of what the caller asks for.
const maxListingFetch = 100

// SearchClient is the subset of the marketplace client the listing fetcher needs.
type SearchClient interface {
	Search(ctx context.Context, query string, limit, offset int, officialStoresOnly bool, token string) (*meli.SearchResponse, error)
}

// ListingFetcher retrieves paged search results. A failing page contributes
// zero listings rather than aborting the whole fetch, so the returned count
// may be less than requested.
type ListingFetcher struct {
	client SearchClient
	logger *logrus.Logger
}

func NewListingFetcher(client SearchClient, logger *logrus.Logger) *ListingFetcher {
	return &ListingFetcher{client: client, logger: logger}
}

// FetchListings returns up to limit listings for the query plus the true
// total available upstream. The first page is fetched synchronously; any
// remaining pages are fetched concurrently.
func (f *ListingFetcher) FetchListings(ctx context.Context, query string, officialStoresOnly bool, limit int, token string) ([]models.Listing, int, error) {
	if limit <= 0 || limit > maxListingFetch {
		limit = maxListingFetch
	}

	firstLimit := limit
	if firstLimit > meli.MaxPageSize {
		firstLimit = meli.MaxPageSize
	}

	first, err := f.client.Search(ctx, query, firstLimit, 0, officialStoresOnly, token)
	if err != nil {
		return nil, 0, &models.DependencyError{Endpoint: "search", Err: err}
	}

	total := first.Paging.Total
	listings := first.Listings()
	if total == 0 || len(listings) >= limit || len(listings) >= total {
		return listings, total, nil
	}

	// Remaining pages, fetched concurrently. Each page writes into its own
	// slot so no locking is needed on the data path.
	remaining := limit - len(listings)
	if rest := total - len(listings); rest < remaining {
		remaining = rest
	}
	pageCount := (remaining + meli.MaxPageSize - 1) / meli.MaxPageSize

	pages := make([][]models.Listing, pageCount)
	var wg sync.WaitGroup
	for i := 0; i < pageCount; i++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()

			offset := len(first.Results) + page*meli.MaxPageSize
			pageLimit := remaining - page*meli.MaxPageSize
			if pageLimit > meli.MaxPageSize {
				pageLimit = meli.MaxPageSize
			}

			resp, err := f.client.Search(ctx, query, pageLimit, offset, officialStoresOnly, token)
			if err != nil {
				perr := &models.PartialFetchError{Scope: fmt.Sprintf("search page offset=%d", offset), Err: err}
				f.logger.WithFields(logrus.Fields{
					"query":  query,
					"offset": offset,
				}).WithError(perr).Warn("Search page failed, continuing with partial results")
				return
			}
			pages[page] = resp.Listings()
		}(i)
	}
	wg.Wait()

	for _, page := range pages {
		listings = append(listings, page...)
	}
	if len(listings) > limit {
		listings = listings[:limit]
	}

	return listings, total, nil
}
