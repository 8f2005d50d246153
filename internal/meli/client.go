package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/meliscope/meliscope-go/internal/config"
	"github.com/meliscope/meliscope-go/internal/models"
)

// MaxPageSize is the largest page the marketplace search endpoint serves.
const MaxPageSize = 50

// Client talks to the reverse proxy fronting the marketplace API. It holds no
// credential state; an optional bearer token is injected per call.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
	siteID     string
	logger     *logrus.Logger
}

// NewClient creates a new marketplace client instance.
func NewClient(cfg *config.MeliConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		siteID:  cfg.SiteID,
		logger:  logger,
	}
}

// Search retrieves one page of search results for a query. The limit is
// capped at MaxPageSize by the upstream API.
func (c *Client) Search(ctx context.Context, query string, limit, offset int, officialStoresOnly bool, token string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	if officialStoresOnly {
		params.Set("official_store", "all")
	}

	path := fmt.Sprintf("/sites/%s/search?%s", c.siteID, params.Encode())
	var response SearchResponse
	err := c.makeRequest(ctx, http.MethodGet, path, token, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetItem retrieves the current snapshot of a single listing.
func (c *Client) GetItem(ctx context.Context, itemID, token string) (*models.Listing, error) {
	path := fmt.Sprintf("/items/%s", itemID)
	var payload listingPayload
	if err := c.makeRequest(ctx, http.MethodGet, path, token, &payload); err != nil {
		return nil, err
	}
	listing := payload.toModel()
	return &listing, nil
}

// GetItemVisits retrieves per-day visit counts for an item over a trailing
// window of days.
func (c *Client) GetItemVisits(ctx context.Context, itemID string, windowDays int, token string) ([]VisitPoint, error) {
	path := fmt.Sprintf("/items/%s/visits/time_window?last=%d&unit=day", itemID, windowDays)
	var response visitsResponse
	if err := c.makeRequest(ctx, http.MethodGet, path, token, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// GetItemStats retrieves the aggregate view/sale counters for an item.
func (c *Client) GetItemStats(ctx context.Context, itemID, token string) (*ItemStats, error) {
	path := fmt.Sprintf("/items/%s/stats", itemID)
	var stats ItemStats
	if err := c.makeRequest(ctx, http.MethodGet, path, token, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetSeller retrieves reputation metrics for a seller.
func (c *Client) GetSeller(ctx context.Context, sellerID int64, token string) (*models.SellerReputation, error) {
	path := fmt.Sprintf("/users/%d", sellerID)
	var payload sellerPayload
	if err := c.makeRequest(ctx, http.MethodGet, path, token, &payload); err != nil {
		return nil, err
	}
	reputation := payload.toModel()
	return &reputation, nil
}

// GetStore retrieves the official-store detail for a store id.
func (c *Client) GetStore(ctx context.Context, storeID int64, token string) (*models.StoreInfo, error) {
	path := fmt.Sprintf("/stores/%d", storeID)
	var store models.StoreInfo
	if err := c.makeRequest(ctx, http.MethodGet, path, token, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// BaseURL returns the base URL of the marketplace proxy.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// makeRequest is a helper method to make HTTP requests to the marketplace proxy
func (c *Client) makeRequest(ctx context.Context, method, path, token string, result interface{}) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Meliscope/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.WithError(err).Warn("Error closing response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("marketplace error (%d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("marketplace error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
