package meli

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meliscope/meliscope-go/internal/models"
)

// Paging mirrors the marketplace search paging block.
type Paging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	SiteID  string           `json:"site_id"`
	Query   string           `json:"query"`
	Paging  Paging           `json:"paging"`
	Results []listingPayload `json:"results"`
}

// Listings converts the page's raw results to model listings.
func (r *SearchResponse) Listings() []models.Listing {
	listings := make([]models.Listing, len(r.Results))
	for i, p := range r.Results {
		listings[i] = p.toModel()
	}
	return listings
}

// listingPayload is the wire shape of a listing as sent by the marketplace.
type listingPayload struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	CurrencyID        string          `json:"currency_id"`
	AvailableQuantity int             `json:"available_quantity"`
	SoldQuantity      int             `json:"sold_quantity"`
	Condition         string          `json:"condition"`
	Seller            struct {
		ID int64 `json:"id"`
	} `json:"seller"`
	OfficialStoreID *int64 `json:"official_store_id"`
	Shipping        struct {
		FreeShipping bool `json:"free_shipping"`
	} `json:"shipping"`
}

func (p listingPayload) toModel() models.Listing {
	return models.Listing{
		ID:                p.ID,
		Title:             p.Title,
		Price:             p.Price,
		CurrencyID:        p.CurrencyID,
		AvailableQuantity: p.AvailableQuantity,
		SoldQuantity:      p.SoldQuantity,
		Condition:         p.Condition,
		SellerID:          p.Seller.ID,
		OfficialStoreID:   p.OfficialStoreID,
		FreeShipping:      p.Shipping.FreeShipping,
	}
}

// VisitPoint is one day of visit counts for an item.
type VisitPoint struct {
	Date  time.Time `json:"date"`
	Total int       `json:"total"`
}

type visitsResponse struct {
	ItemID  string       `json:"item_id"`
	Results []VisitPoint `json:"results"`
}

// ItemStats carries the per-item counters returned by the stats endpoint.
type ItemStats struct {
	ItemID       string `json:"item_id"`
	SoldQuantity int    `json:"sold_quantity"`
	Visits       int    `json:"visits"`
}

// sellerPayload is the wire shape of a seller lookup.
type sellerPayload struct {
	ID               int64  `json:"id"`
	Nickname         string `json:"nickname"`
	SellerReputation struct {
		PowerSellerStatus string `json:"power_seller_status"`
		Transactions      struct {
			Total int `json:"total"`
		} `json:"transactions"`
		Metrics struct {
			Claims struct {
				Rate float64 `json:"rate"`
			} `json:"claims"`
			Cancellations struct {
				Rate float64 `json:"rate"`
			} `json:"cancellations"`
		} `json:"metrics"`
	} `json:"seller_reputation"`
}

func (p sellerPayload) toModel() models.SellerReputation {
	return models.SellerReputation{
		SellerID:          p.ID,
		Nickname:          p.Nickname,
		PowerSellerStatus: p.SellerReputation.PowerSellerStatus,
		TotalTransactions: p.SellerReputation.Transactions.Total,
		ClaimsRate:        p.SellerReputation.Metrics.Claims.Rate,
		CancellationsRate: p.SellerReputation.Metrics.Cancellations.Rate,
	}
}

// ErrorResponse is the marketplace error envelope.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
