package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
	"github.com/lmercier/urlalias/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handlers bundles the services the HTTP layer delegates to. The handlers
// themselves stay thin: bind, call a service, map the error.
type Handlers struct {
	shortURLService *services.ShortURLService
	redirectService *services.RedirectService
	statsService    *services.StatsService
	baseURL         string
}

// NewHandlers creates and returns a new Handlers.
func NewHandlers(
	shortURLService *services.ShortURLService,
	redirectService *services.RedirectService,
	statsService *services.StatsService,
	baseURL string,
) *Handlers {
	return &Handlers{
		shortURLService: shortURLService,
		redirectService: redirectService,
		statsService:    statsService,
		baseURL:         baseURL,
	}
}

// SetupRoutes configures all Gin API routes.
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", HealthCheckHandler)

	api := router.Group("/api/v1")
	{
		api.POST("/short-urls", h.CreateShortURLHandler)
		api.GET("/short-urls", h.ListShortURLsHandler)
		api.GET("/short-urls/stats", h.ListStatsHandler)
		api.GET("/short-urls/stats/:shortKey", h.KeyStatsHandler)
		api.GET("/short-urls/:shortKey", h.GetShortURLHandler)
		api.PATCH("/short-urls/:shortKey/deactivate", h.DeactivateHandler)
	}

	// Redirection lives at root level so short links stay short.
	router.GET("/:shortKey", h.RedirectHandler)
}

// HealthCheckHandler handles /health for load balancers and monitoring.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateShortURLRequest is the JSON body for creating a short URL.
type CreateShortURLRequest struct {
	OriginalURL string `json:"original_url" binding:"required"`
	ExpiresDays int    `json:"expires_days" binding:"omitempty,min=1"`
	CustomKey   string `json:"custom_key" binding:"omitempty,alphanum"`
}

// ShortURLResponse is the JSON representation of a ShortURL record.
type ShortURLResponse struct {
	ID           uint      `json:"id"`
	OriginalURL  string    `json:"original_url"`
	ShortKey     string    `json:"short_key"`
	FullShortURL string    `json:"full_short_url"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsActive     bool      `json:"is_active"`
	ClickCount   *int64    `json:"click_count,omitempty"`
}

func (h *Handlers) toResponse(su *models.ShortURL, clicks *int64) ShortURLResponse {
	return ShortURLResponse{
		ID:           su.ID,
		OriginalURL:  su.OriginalURL,
		ShortKey:     su.ShortKey,
		FullShortURL: h.baseURL + "/" + su.ShortKey,
		CreatedAt:    su.CreatedAt,
		ExpiresAt:    su.ExpiresAt,
		IsActive:     su.IsActive,
		ClickCount:   clicks,
	}
}

// CreateShortURLHandler handles POST /api/v1/short-urls.
func (h *Handlers) CreateShortURLHandler(c *gin.Context) {
	var req CreateShortURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	shortURL, err := h.shortURLService.Create(c.Request.Context(), services.CreateParams{
		OriginalURL: req.OriginalURL,
		CustomKey:   req.CustomKey,
		ExpiresDays: req.ExpiresDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(shortURL, nil))
}

// GetShortURLHandler handles GET /api/v1/short-urls/:shortKey. Inactive and
// expired records are still readable here; only redirection cares about
// resolvability.
func (h *Handlers) GetShortURLHandler(c *gin.Context) {
	shortKey := c.Param("shortKey")

	shortURL, clicks, err := h.shortURLService.GetByKey(c.Request.Context(), shortKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(shortURL, &clicks))
}

// ListShortURLsHandler handles GET /api/v1/short-urls with pagination and
// an explicit ?active=true|false filter. An unparseable active value is
// ignored rather than rejected.
func (h *Handlers) ListShortURLsHandler(c *gin.Context) {
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var active *bool
	if raw, ok := c.GetQuery("active"); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			active = &v
		}
	}

	shortURLs, total, err := h.shortURLService.List(c.Request.Context(), active, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]ShortURLResponse, 0, len(shortURLs))
	for i := range shortURLs {
		results = append(results, h.toResponse(&shortURLs[i], nil))
	}

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// DeactivateHandler handles PATCH /api/v1/short-urls/:shortKey/deactivate.
func (h *Handlers) DeactivateHandler(c *gin.Context) {
	shortKey := c.Param("shortKey")

	if _, err := h.shortURLService.Deactivate(c.Request.Context(), shortKey); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// RedirectHandler handles GET /:shortKey, the actual redirect. The click is
// queued asynchronously inside the resolver; nothing here waits on it.
func (h *Handlers) RedirectHandler(c *gin.Context) {
	shortKey := c.Param("shortKey")

	originalURL, err := h.redirectService.Resolve(c.Request.Context(), shortKey)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrGone):
			c.JSON(http.StatusGone, gin.H{"error": "Short URL is inactive or expired"})
		case errors.Is(err, errs.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
		default:
			log.Printf("Error resolving %s: %v", shortKey, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		}
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

// ListStatsHandler handles GET /api/v1/short-urls/stats.
func (h *Handlers) ListStatsHandler(c *gin.Context) {
	stats, err := h.statsService.ListStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// KeyStatsHandler handles GET /api/v1/short-urls/stats/:shortKey.
func (h *Handlers) KeyStatsHandler(c *gin.Context) {
	stats, err := h.statsService.KeyStats(c.Request.Context(), c.Param("shortKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// respondError maps service errors onto HTTP statuses. ErrGone is redirect
// specific and handled in RedirectHandler.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": "Short key already exists"})
	case errors.Is(err, errs.ErrAlreadyDeactivated):
		c.JSON(http.StatusConflict, gin.H{"error": "Short URL already deactivated"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
	case errors.Is(err, errs.ErrKeyGenerationExhausted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to generate unique short key. Please try again later."})
	case errors.Is(err, errs.ErrStoreUnavailable):
		log.Printf("Store error: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		log.Printf("Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
