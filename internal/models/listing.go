package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is an immutable snapshot of a single marketplace offer. It is
// fetched once per report and never mutated locally.
type Listing struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	CurrencyID        string          `json:"currency_id"`
	AvailableQuantity int             `json:"available_quantity"`
	SoldQuantity      int             `json:"sold_quantity"`
	Condition         string          `json:"condition"`
	SellerID          int64           `json:"seller_id"`
	OfficialStoreID   *int64          `json:"official_store_id,omitempty"`
	FreeShipping      bool            `json:"free_shipping"`
}

// HistoryPoint is one day of reconstructed listing history. Price and stock
// are back-filled with the listing's current values for every day of the
// window; only the visit count is a true per-day figure.
type HistoryPoint struct {
	Date              time.Time       `json:"date"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	VisitCount        int             `json:"visit_count"`
}

// ItemDetail carries the per-item counters and reconstructed history for one
// listing of the detailed subset. An empty History means "unknown", not
// "zero activity".
type ItemDetail struct {
	ItemID       string         `json:"item_id"`
	Visits       int            `json:"visits"`
	SoldQuantity int            `json:"sold_quantity"`
	History      []HistoryPoint `json:"history"`
}

// SellerReputation holds the reputation metrics fetched per seller. It is
// read on demand and never cached across report runs.
type SellerReputation struct {
	SellerID          int64   `json:"seller_id"`
	Nickname          string  `json:"nickname"`
	PowerSellerStatus string  `json:"power_seller_status"`
	TotalTransactions int     `json:"total_transactions"`
	ClaimsRate        float64 `json:"claims_rate"`
	CancellationsRate float64 `json:"cancellations_rate"`
}

// StoreInfo is the official-store detail returned by the marketplace.
type StoreInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
