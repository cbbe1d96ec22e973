package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// TitleHandler exposes the titles resource.
type TitleHandler struct {
	catalog *usecase.CatalogService
}

// NewTitleHandler constructs TitleHandler.
func NewTitleHandler(catalog *usecase.CatalogService) *TitleHandler {
	return &TitleHandler{catalog: catalog}
}

// RegisterRoutes binds the titles resource behind the provided middleware chain.
func (h *TitleHandler) RegisterRoutes(r *gin.RouterGroup, chain []gin.HandlerFunc) {
	titles := r.Group("/titles", chain...)
	titles.GET("", h.List)
	titles.POST("", h.Create)
	titles.GET("/:title_id", h.Get)
	titles.PATCH("/:title_id", h.Update)
	titles.DELETE("/:title_id", h.Delete)
}

var titleErrorCases = []ErrorCase{
	{Err: usecase.ErrTitleNotFound, Status: http.StatusNotFound, Message: "title not found"},
}

// List returns a paginated title listing filtered by category, genre, name,
// and year.
func (h *TitleHandler) List(c *gin.Context) {
	limit, offset := PageParams(c)

	filter := port.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
		Limit:        limit,
		Offset:       offset,
	}
	if raw := c.Query("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			filter.Year = year
		}
	}

	titles, total, err := h.catalog.ListTitles(c.Request.Context(), filter)
	if err != nil {
		RespondWithMappedError(c, err, titleErrorCases, http.StatusInternalServerError, "list titles failed")
		return
	}

	results := make([]TitlePayload, 0, len(titles))
	for _, title := range titles {
		results = append(results, NewTitlePayload(title))
	}

	c.JSON(http.StatusOK, NewPageResponse(c, total, limit, offset, results))
}

// Create registers a title.
func (h *TitleHandler) Create(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	title, err := h.catalog.CreateTitle(c.Request.Context(), usecase.TitleInput{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		RespondWithMappedError(c, err, titleErrorCases, http.StatusInternalServerError, "create title failed")
		return
	}

	c.JSON(http.StatusCreated, NewTitlePayload(*title))
}

// Get loads a title with its averaged rating.
func (h *TitleHandler) Get(c *gin.Context) {
	title, err := h.catalog.GetTitle(c.Request.Context(), c.Param("title_id"))
	if err != nil {
		RespondWithMappedError(c, err, titleErrorCases, http.StatusInternalServerError, "get title failed")
		return
	}

	c.JSON(http.StatusOK, NewTitlePayload(*title))
}

// Update replaces a title's fields and genre links.
func (h *TitleHandler) Update(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	title, err := h.catalog.UpdateTitle(c.Request.Context(), c.Param("title_id"), usecase.TitleInput{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		RespondWithMappedError(c, err, titleErrorCases, http.StatusInternalServerError, "update title failed")
		return
	}

	c.JSON(http.StatusOK, NewTitlePayload(*title))
}

// Delete removes a title and its reviews.
func (h *TitleHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteTitle(c.Request.Context(), c.Param("title_id")); err != nil {
		RespondWithMappedError(c, err, titleErrorCases, http.StatusInternalServerError, "delete title failed")
		return
	}

	c.Status(http.StatusNoContent)
}
