package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/meliscope/meliscope-go/internal/models"
)

// MarketAnalyzer runs the analysis pipeline for a query.
type MarketAnalyzer interface {
	AnalyzeMarket(ctx context.Context, query string, officialStoresOnly bool, token string) (*models.MarketAnalysis, error)
}

// ReportCache is the read-through cache in front of the pipeline.
type ReportCache interface {
	Get(ctx context.Context, query string, officialOnly bool) (*models.MarketAnalysis, bool)
	Set(ctx context.Context, report *models.MarketAnalysis)
}

// ReportStore persists reports after a successful analysis.
type ReportStore interface {
	SaveReport(ctx context.Context, report *models.MarketAnalysis) error
}

type AnalysisHandler struct {
	analyzer MarketAnalyzer
	cache    ReportCache
	store    ReportStore
	logger   *logrus.Logger
}

func NewAnalysisHandler(analyzer MarketAnalyzer, cache ReportCache, store ReportStore, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		cache:    cache,
		store:    store,
		logger:   logger,
	}
}

// GetMarketAnalysis serves GET /api/v1/analysis/market. The bearer token, if
// present, is forwarded to the marketplace boundary per call; the service
// itself holds no credential state.
func (h *AnalysisHandler) GetMarketAnalysis(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q parameter is required"})
		return
	}

	officialOnly := false
	if raw := c.Query("official_stores_only"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid official_stores_only parameter"})
			return
		}
		officialOnly = parsed
	}

	ctx := c.Request.Context()
	if h.cache != nil {
		if report, ok := h.cache.Get(ctx, query, officialOnly); ok {
			c.JSON(http.StatusOK, report)
			return
		}
	}

	token := bearerToken(c.GetHeader("Authorization"))
	report, err := h.analyzer.AnalyzeMarket(ctx, query, officialOnly, token)
	if err != nil {
		var noData *models.NoDataError
		if errors.As(err, &noData) {
			c.JSON(http.StatusNotFound, gin.H{"error": noData.Error()})
			return
		}
		h.logger.WithField("query", query).WithError(err).Error("Market analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze market"})
		return
	}

	// Best-effort persistence and caching; the response never depends on either.
	if h.store != nil {
		if err := h.store.SaveReport(ctx, report); err != nil {
			h.logger.WithField("query", query).WithError(err).Warn("Failed to persist report")
		}
	}
	if h.cache != nil {
		h.cache.Set(ctx, report)
	}

	c.JSON(http.StatusOK, report)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, prefix))
	}
	return ""
}
