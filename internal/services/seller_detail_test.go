package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliscope/meliscope-go/internal/models"
)

type mockSellerClient struct {
	getSeller func(ctx context.Context, sellerID int64, token string) (*models.SellerReputation, error)
}

func (m *mockSellerClient) GetSeller(ctx context.Context, sellerID int64, token string) (*models.SellerReputation, error) {
	return m.getSeller(ctx, sellerID, token)
}

func TestFetchSellers_AllSucceed(t *testing.T) {
	client := &mockSellerClient{
		getSeller: func(_ context.Context, sellerID int64, _ string) (*models.SellerReputation, error) {
			return &models.SellerReputation{
				SellerID:          sellerID,
				Nickname:          "seller",
				PowerSellerStatus: "gold",
				TotalTransactions: int(sellerID) * 10,
			}, nil
		},
	}
	fetcher := NewSellerDetailFetcher(client, logrus.New())

	reputations, err := fetcher.FetchSellers(context.Background(), []int64{1, 2, 3}, "")
	require.NoError(t, err)
	require.Len(t, reputations, 3)
	assert.Equal(t, 20, reputations[2].TotalTransactions)
	assert.Equal(t, "gold", reputations[3].PowerSellerStatus)
}

func TestFetchSellers_SingleFailureFailsBatch(t *testing.T) {
	client := &mockSellerClient{
		getSeller: func(_ context.Context, sellerID int64, _ string) (*models.SellerReputation, error) {
			if sellerID == 2 {
				return nil, errors.New("seller not found")
			}
			return &models.SellerReputation{SellerID: sellerID}, nil
		},
	}
	fetcher := NewSellerDetailFetcher(client, logrus.New())

	reputations, err := fetcher.FetchSellers(context.Background(), []int64{1, 2, 3}, "")
	require.Error(t, err)
	assert.Nil(t, reputations, "a partial seller batch must not leak out")
	var depErr *models.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "seller detail", depErr.Endpoint)
}

func TestFetchSellers_Empty(t *testing.T) {
	client := &mockSellerClient{
		getSeller: func(_ context.Context, _ int64, _ string) (*models.SellerReputation, error) {
			t.Fatal("no lookups expected for an empty id list")
			return nil, nil
		},
	}
	fetcher := NewSellerDetailFetcher(client, logrus.New())

	reputations, err := fetcher.FetchSellers(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, reputations)
}
