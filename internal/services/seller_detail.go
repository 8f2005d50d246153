package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/meliscope/meliscope-go/internal/models"
)

// SellerClient is the subset of the marketplace client the seller fetcher needs.
type SellerClient interface {
	GetSeller(ctx context.Context, sellerID int64, token string) (*models.SellerReputation, error)
}

// SellerDetailFetcher looks up reputation metrics per seller. Unlike listing
// pages and item details, a single failed lookup fails the whole batch:
// seller detail feeds eligibility computations downstream and a partially
// populated batch would skew them.
type SellerDetailFetcher struct {
	client SellerClient
	logger *logrus.Logger
}

func NewSellerDetailFetcher(client SellerClient, logger *logrus.Logger) *SellerDetailFetcher {
	return &SellerDetailFetcher{client: client, logger: logger}
}

// FetchSellers retrieves reputations for all given seller ids concurrently.
func (f *SellerDetailFetcher) FetchSellers(ctx context.Context, sellerIDs []int64, token string) (map[int64]models.SellerReputation, error) {
	results := make([]*models.SellerReputation, len(sellerIDs))
	errs := make([]error, len(sellerIDs))

	var wg sync.WaitGroup
	for i, id := range sellerIDs {
		wg.Add(1)
		go func(slot int, sellerID int64) {
			defer wg.Done()
			results[slot], errs[slot] = f.client.GetSeller(ctx, sellerID, token)
		}(i, id)
	}
	wg.Wait()

	reputations := make(map[int64]models.SellerReputation, len(sellerIDs))
	for i, err := range errs {
		if err != nil {
			return nil, &models.DependencyError{Endpoint: "seller detail", Err: err}
		}
		reputations[sellerIDs[i]] = *results[i]
	}
	return reputations, nil
}
