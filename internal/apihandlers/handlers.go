package apihandlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"dosug/internal/app"
	"dosug/internal/catalog"
	"dosug/internal/i18n"
	"dosug/internal/llm"
	"dosug/internal/recommend"
	"dosug/internal/services"
	"dosug/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Recommender runs the interests pipeline. Implemented by *recommend.Pipeline.
type Recommender interface {
	Run(ctx context.Context, interests string) (*recommend.Result, error)
}

type APIHandler struct {
	Catalog     *catalog.Catalog
	Recommender Recommender
	Completer   llm.Completer
	Costs       *services.CostService
}

// RecommendRequest is the body of POST /api/v1/recommendations.
type RecommendRequest struct {
	Interests string `json:"interests"`
	Language  string `json:"language"`
}

// RecommendResponse carries the pipeline result and the message the bot
// would send for it.
type RecommendResponse struct {
	*recommend.Result
	Message string `json:"message"`
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{
		Catalog:     a.Catalog,
		Recommender: a.Pipeline,
		Completer:   a.Completer,
		Costs:       a.CostService,
	}
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	resp := gin.H{"status": "ok", "venues": h.Catalog.Len()}
	if h.Completer != nil {
		resp["provider"] = h.Completer.Name()
		resp["model"] = h.Completer.ModelName()
		resp["provider_status"] = h.Completer.Status().String()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *APIHandler) ListCategoriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":     h.Catalog.Categories(),
		"fallback": h.Catalog.FallbackCategory(),
	})
}

// LookupVenuesHandler returns a random selection for a category, falling
// back like the bot does.
func (h *APIHandler) LookupVenuesHandler(c *gin.Context) {
	category := c.Query("category")
	venues := h.Catalog.Lookup(category)
	if venues == nil {
		venues = []catalog.Venue{}
	}
	c.JSON(http.StatusOK, gin.H{
		"category": catalog.NormalizeCategory(category),
		"bucket":   h.Catalog.ResolveCategory(category),
		"data":     venues,
	})
}

func (h *APIHandler) RecommendHandler(c *gin.Context) {
	req, err := parseRecommendRequest(c)
	if err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	texts := i18n.For(req.Language)

	res, err := h.Recommender.Run(c.Request.Context(), req.Interests)
	switch {
	case errors.Is(err, recommend.ErrNoVenues):
		NotFound(c, texts.NoResults)
		return
	case err != nil:
		log.WithError(err).Error("RecommendHandler: pipeline failed")
		BadGateway(c, texts.Error)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": RecommendResponse{
		Result:  res,
		Message: i18n.ComposeResult(texts, res.Text),
	}})
}

func parseRecommendRequest(c *gin.Context) (RecommendRequest, error) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	if strings.TrimSpace(req.Interests) == "" {
		return req, fmt.Errorf("missing required field: interests")
	}
	if req.Language != "" {
		if _, ok := i18n.Lookup(req.Language); !ok {
			return req, fmt.Errorf("unsupported language %q", req.Language)
		}
	}
	return req, nil
}

func (h *APIHandler) ListUsageHandler(c *gin.Context) {
	limit, offset := 20, 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	logs, err := h.Costs.ListUsage(c.Request.Context(), limit, offset)
	if errors.Is(err, store.ErrNotAvailable) {
		ServiceUnavailable(c, "usage tracking is disabled")
		return
	}
	if err != nil {
		log.WithError(err).Error("ListUsageHandler: store failed")
		Internal(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "limit": limit, "offset": offset})
}

func (h *APIHandler) UsageSummaryHandler(c *gin.Context) {
	sum, err := h.Costs.GetSummary(c.Request.Context())
	if errors.Is(err, store.ErrNotAvailable) {
		ServiceUnavailable(c, "usage tracking is disabled")
		return
	}
	if err != nil {
		log.WithError(err).Error("UsageSummaryHandler: store failed")
		Internal(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sum})
}
