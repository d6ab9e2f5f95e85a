package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/kurakani/kurakani/models"
	"github.com/kurakani/kurakani/repository"
)

const (
	cacheKey     = "articles"
	cacheTTL     = 10 * time.Minute
	defaultLimit = 10
	maxLimit     = 100
)

// Fetcher pulls fresh articles from the external news API.
type Fetcher interface {
	Fetch(ctx context.Context, country, topics, query string) ([]models.Article, error)
}

// Clusterer labels a batch of articles with cluster ids.
type Clusterer func([]models.Article) []models.Article

// NewsController serves the fetch pipeline and the stored-article CRUD.
// cache may be nil, in which case the stored listing is always read from the
// database.
type NewsController struct {
	articles  *repository.ArticleRepository
	fetcher   Fetcher
	clusterer Clusterer
	cache     *redis.Client
}

func NewNewsController(articles *repository.ArticleRepository, fetcher Fetcher, clusterer Clusterer, cache *redis.Client) *NewsController {
	return &NewsController{
		articles:  articles,
		fetcher:   fetcher,
		clusterer: clusterer,
		cache:     cache,
	}
}

// GetNews runs the primary pipeline: fetch per topic, cluster, atomically
// replace the stored set, return the fresh articles. No articles from any
// topic is a 404, not an empty 200.
func (n *NewsController) GetNews(c *gin.Context) {
	ctx := c.Request.Context()

	articles, err := n.fetcher.Fetch(ctx, c.Query("country"), c.Query("topics"), c.Query("query"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(articles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no articles found"})
		return
	}

	articles = n.clusterer(articles)

	if err := n.articles.ReplaceAll(ctx, articles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	slog.Info("replaced stored articles", "count", len(articles))
	n.invalidateCache()

	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// GetStoredNews reads the stored set with optional country/category/text
// filters and pagination. An empty result is a 404. The unfiltered first page
// is served through the redis cache when one is configured.
func (n *NewsController) GetStoredNews(c *gin.Context) {
	ctx := c.Request.Context()

	country := c.Query("country")
	category := c.Query("category")
	query := c.Query("query")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	cacheable := country == "" && category == "" && query == "" &&
		limit == defaultLimit && offset == 0

	if cacheable && n.cache != nil {
		if cached, err := n.cache.Get(ctx, cacheKey).Result(); err == nil {
			var articles []models.Article
			if err := json.Unmarshal([]byte(cached), &articles); err == nil && len(articles) > 0 {
				c.JSON(http.StatusOK, gin.H{"articles": articles})
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("article cache read failed", "error", err)
		}
	}

	articles, err := n.articles.Filtered(ctx, country, category, query, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(articles) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no articles found in database"})
		return
	}

	if cacheable && n.cache != nil {
		if data, err := json.Marshal(articles); err == nil {
			if err := n.cache.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
				slog.Warn("article cache write failed", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// CreateNews inserts one article supplied by the caller. Country and category
// stay empty and the cluster id defaults to 0.
func (n *NewsController) CreateNews(c *gin.Context) {
	var req models.ArticleCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article := models.Article{
		Title:       req.Title,
		Content:     req.Content,
		Source:      req.Source,
		PublishedAt: req.PublishedAt,
	}
	if err := n.articles.InsertMany(c.Request.Context(), []models.Article{article}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	n.invalidateCache()

	c.JSON(http.StatusCreated, gin.H{"message": "article created"})
}

// UpdateNews rewrites one article by id; 404 when the id does not exist.
func (n *NewsController) UpdateNews(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	var req models.ArticleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := n.articles.UpdateByID(c.Request.Context(), uint(id), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	n.invalidateCache()

	c.JSON(http.StatusOK, gin.H{"message": "article updated"})
}

// DeleteNews removes one article by id; 404 when the id does not exist.
func (n *NewsController) DeleteNews(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	deleted, err := n.articles.DeleteByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	n.invalidateCache()

	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

// invalidateCache drops the cached listing without blocking the write path.
func (n *NewsController) invalidateCache() {
	if n.cache == nil {
		return
	}
	go func() {
		if err := n.cache.Del(context.Background(), cacheKey).Err(); err != nil {
			slog.Warn("article cache invalidation failed", "error", err)
		}
	}()
}
