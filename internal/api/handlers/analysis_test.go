package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliscope/meliscope-go/internal/models"
)

type mockAnalyzer struct {
	analyze func(ctx context.Context, query string, officialStoresOnly bool, token string) (*models.MarketAnalysis, error)
}

func (m *mockAnalyzer) AnalyzeMarket(ctx context.Context, query string, officialStoresOnly bool, token string) (*models.MarketAnalysis, error) {
	return m.analyze(ctx, query, officialStoresOnly, token)
}

type mockCache struct {
	get  func(ctx context.Context, query string, officialOnly bool) (*models.MarketAnalysis, bool)
	sets []*models.MarketAnalysis
}

func (m *mockCache) Get(ctx context.Context, query string, officialOnly bool) (*models.MarketAnalysis, bool) {
	if m.get == nil {
		return nil, false
	}
	return m.get(ctx, query, officialOnly)
}

func (m *mockCache) Set(_ context.Context, report *models.MarketAnalysis) {
	m.sets = append(m.sets, report)
}

type mockStore struct {
	saved []*models.MarketAnalysis
	err   error
}

func (m *mockStore) SaveReport(_ context.Context, report *models.MarketAnalysis) error {
	m.saved = append(m.saved, report)
	return m.err
}

func serveAnalysis(t *testing.T, handler *AnalysisHandler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/analysis/market", handler.GetMarketAnalysis)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetMarketAnalysis_Success(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyze: func(_ context.Context, query string, officialOnly bool, token string) (*models.MarketAnalysis, error) {
			assert.Equal(t, "iphone", query)
			assert.False(t, officialOnly)
			assert.Empty(t, token)
			return &models.MarketAnalysis{ID: "r1", Query: query, TotalListings: 2}, nil
		},
	}
	cache := &mockCache{}
	store := &mockStore{}
	handler := NewAnalysisHandler(analyzer, cache, store, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=iphone", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report models.MarketAnalysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "r1", report.ID)
	assert.Equal(t, 2, report.TotalListings)

	require.Len(t, store.saved, 1)
	require.Len(t, cache.sets, 1)
	assert.Equal(t, "r1", cache.sets[0].ID)
}

func TestGetMarketAnalysis_MissingQuery(t *testing.T) {
	handler := NewAnalysisHandler(&mockAnalyzer{}, nil, nil, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "q parameter is required")
}

func TestGetMarketAnalysis_InvalidFilter(t *testing.T) {
	handler := NewAnalysisHandler(&mockAnalyzer{}, nil, nil, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=iphone&official_stores_only=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid official_stores_only parameter")
}

func TestGetMarketAnalysis_FilterForwarded(t *testing.T) {
	var gotOfficialOnly bool
	analyzer := &mockAnalyzer{
		analyze: func(_ context.Context, _ string, officialOnly bool, _ string) (*models.MarketAnalysis, error) {
			gotOfficialOnly = officialOnly
			return &models.MarketAnalysis{ID: "r1"}, nil
		},
	}
	handler := NewAnalysisHandler(analyzer, nil, nil, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=iphone&official_stores_only=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotOfficialOnly)
}

func TestGetMarketAnalysis_BearerTokenForwarded(t *testing.T) {
	var gotToken string
	analyzer := &mockAnalyzer{
		analyze: func(_ context.Context, _ string, _ bool, token string) (*models.MarketAnalysis, error) {
			gotToken = token
			return &models.MarketAnalysis{ID: "r1"}, nil
		},
	}
	handler := NewAnalysisHandler(analyzer, nil, nil, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=iphone",
		map[string]string{"Authorization": "Bearer APP_USR-token-123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "APP_USR-token-123", gotToken)
}

func TestGetMarketAnalysis_NoData(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyze: func(_ context.Context, query string, _ bool, _ string) (*models.MarketAnalysis, error) {
			return nil, &models.NoDataError{Query: query}
		},
	}
	handler := NewAnalysisHandler(analyzer, nil, nil, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no listings found")
}

func TestGetMarketAnalysis_InternalError(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyze: func(_ context.Context, _ string, _ bool, _ string) (*models.MarketAnalysis, error) {
			return nil, errors.New("search unavailable")
		},
	}
	handler := NewAnalysisHandler(analyzer, nil, nil, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=iphone", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to analyze market")
	assert.NotContains(t, w.Body.String(), "search unavailable", "internal detail must not leak")
}

func TestGetMarketAnalysis_CacheHitSkipsAnalysis(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyze: func(_ context.Context, _ string, _ bool, _ string) (*models.MarketAnalysis, error) {
			t.Fatal("pipeline must not run on a cache hit")
			return nil, nil
		},
	}
	cache := &mockCache{
		get: func(_ context.Context, query string, _ bool) (*models.MarketAnalysis, bool) {
			return &models.MarketAnalysis{ID: "cached", Query: query}, true
		},
	}
	handler := NewAnalysisHandler(analyzer, cache, nil, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=iphone", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cached"`)
	assert.Empty(t, cache.sets, "a hit is not re-written")
}

func TestGetMarketAnalysis_PersistenceFailureIsNotFatal(t *testing.T) {
	analyzer := &mockAnalyzer{
		analyze: func(_ context.Context, query string, _ bool, _ string) (*models.MarketAnalysis, error) {
			return &models.MarketAnalysis{ID: "r1", Query: query}, nil
		},
	}
	store := &mockStore{err: errors.New("db down")}
	handler := NewAnalysisHandler(analyzer, nil, store, logrus.New())

	w := serveAnalysis(t, handler, "/api/v1/analysis/market?q=iphone", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
