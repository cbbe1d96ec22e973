package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// CatalogHandler exposes the categories and genres resources.
type CatalogHandler struct {
	catalog *usecase.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *usecase.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes binds the categories and genres resources behind the
// provided middleware chain.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, chain []gin.HandlerFunc) {
	categories := r.Group("/categories", chain...)
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory)
	categories.DELETE("/:slug", h.DeleteCategory)

	genres := r.Group("/genres", chain...)
	genres.GET("", h.ListGenres)
	genres.POST("", h.CreateGenre)
	genres.DELETE("/:slug", h.DeleteGenre)
}

var catalogErrorCases = []ErrorCase{
	{Err: usecase.ErrCategoryNotFound, Status: http.StatusNotFound, Message: "category not found"},
	{Err: usecase.ErrGenreNotFound, Status: http.StatusNotFound, Message: "genre not found"},
	{Err: usecase.ErrSlugConflict, Status: http.StatusBadRequest, Message: "slug already in use"},
}

// ListCategories returns a paginated category listing with optional name search.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	limit, offset := PageParams(c)

	categories, total, err := h.catalog.ListCategories(c.Request.Context(), port.SlugFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "list categories failed")
		return
	}

	results := make([]SlugPayload, 0, len(categories))
	for _, category := range categories {
		results = append(results, SlugPayload{Name: category.Name, Slug: category.Slug})
	}

	c.JSON(http.StatusOK, NewPageResponse(c, total, limit, offset, results))
}

// CreateCategory registers a category.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req SlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), usecase.SlugInput{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "create category failed")
		return
	}

	c.JSON(http.StatusCreated, SlugPayload{Name: category.Name, Slug: category.Slug})
}

// DeleteCategory removes a category; titles in it keep existing without one.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.catalog.DeleteCategory(c.Request.Context(), c.Param("slug")); err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "delete category failed")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListGenres returns a paginated genre listing with optional name search.
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	limit, offset := PageParams(c)

	genres, total, err := h.catalog.ListGenres(c.Request.Context(), port.SlugFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "list genres failed")
		return
	}

	results := make([]SlugPayload, 0, len(genres))
	for _, genre := range genres {
		results = append(results, SlugPayload{Name: genre.Name, Slug: genre.Slug})
	}

	c.JSON(http.StatusOK, NewPageResponse(c, total, limit, offset, results))
}

// CreateGenre registers a genre.
func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	var req SlugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	genre, err := h.catalog.CreateGenre(c.Request.Context(), usecase.SlugInput{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "create genre failed")
		return
	}

	c.JSON(http.StatusCreated, SlugPayload{Name: genre.Name, Slug: genre.Slug})
}

// DeleteGenre removes a genre and its title links.
func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	if err := h.catalog.DeleteGenre(c.Request.Context(), c.Param("slug")); err != nil {
		RespondWithMappedError(c, err, catalogErrorCases, http.StatusInternalServerError, "delete genre failed")
		return
	}

	c.Status(http.StatusNoContent)
}
