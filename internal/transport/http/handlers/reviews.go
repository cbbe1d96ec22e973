package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/transport/http/middleware"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// ReviewHandler exposes the reviews resource nested under titles.
type ReviewHandler struct {
	reviews *usecase.ReviewService
	policy  domain.Policy
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(reviews *usecase.ReviewService, policy domain.Policy) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, policy: policy}
}

// RegisterRoutes binds the reviews resource behind the provided middleware chain.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, chain []gin.HandlerFunc) {
	reviews := r.Group("/titles/:title_id/reviews", chain...)
	reviews.GET("", h.List)
	reviews.POST("", h.Create)
	reviews.GET("/:review_id", h.Get)
	reviews.PATCH("/:review_id", h.Update)
	reviews.DELETE("/:review_id", h.Delete)
}

var reviewErrorCases = []ErrorCase{
	{Err: usecase.ErrTitleNotFound, Status: http.StatusNotFound, Message: "title not found"},
	{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
	{Err: usecase.ErrReviewExists, Status: http.StatusBadRequest, Message: "you have already reviewed this title"},
}

// List returns a paginated review listing for the title.
func (h *ReviewHandler) List(c *gin.Context) {
	limit, offset := PageParams(c)

	reviews, total, err := h.reviews.ListReviews(c.Request.Context(), c.Param("title_id"), port.PageFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		RespondWithMappedError(c, err, reviewErrorCases, http.StatusInternalServerError, "list reviews failed")
		return
	}

	results := make([]ReviewPayload, 0, len(reviews))
	for _, review := range reviews {
		results = append(results, NewReviewPayload(review))
	}

	c.JSON(http.StatusOK, NewPageResponse(c, total, limit, offset, results))
}

// Create posts the caller's review on the title.
func (h *ReviewHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), actor, c.Param("title_id"), usecase.ReviewInput{
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		RespondWithMappedError(c, err, reviewErrorCases, http.StatusInternalServerError, "create review failed")
		return
	}

	c.JSON(http.StatusCreated, NewReviewPayload(*review))
}

// Get loads a single review.
func (h *ReviewHandler) Get(c *gin.Context) {
	review, err := h.reviews.GetReview(c.Request.Context(), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		RespondWithMappedError(c, err, reviewErrorCases, http.StatusInternalServerError, "get review failed")
		return
	}

	c.JSON(http.StatusOK, NewReviewPayload(*review))
}

// Update replaces the review's text and score. Only the author or a
// moderator-privileged actor may modify it.
func (h *ReviewHandler) Update(c *gin.Context) {
	review, err := h.reviews.GetReview(c.Request.Context(), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		RespondWithMappedError(c, err, reviewErrorCases, http.StatusInternalServerError, "get review failed")
		return
	}

	if !h.allowObject(c, review.AuthorID) {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	updated, err := h.reviews.UpdateReview(c.Request.Context(), review.TitleID, review.ID, usecase.ReviewInput{
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		RespondWithMappedError(c, err, reviewErrorCases, http.StatusInternalServerError, "update review failed")
		return
	}

	c.JSON(http.StatusOK, NewReviewPayload(*updated))
}

// Delete removes the review. Only the author or a moderator-privileged actor
// may remove it.
func (h *ReviewHandler) Delete(c *gin.Context) {
	review, err := h.reviews.GetReview(c.Request.Context(), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		RespondWithMappedError(c, err, reviewErrorCases, http.StatusInternalServerError, "get review failed")
		return
	}

	if !h.allowObject(c, review.AuthorID) {
		return
	}

	if err := h.reviews.DeleteReview(c.Request.Context(), review.TitleID, review.ID); err != nil {
		RespondWithMappedError(c, err, reviewErrorCases, http.StatusInternalServerError, "delete review failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) allowObject(c *gin.Context, authorID string) bool {
	actor := middleware.GetActor(c)
	if h.policy.AllowObject(actor, c.Request.Method, authorID) {
		return true
	}

	c.JSON(http.StatusForbidden, NewErrorResponse(c, "you do not have permission to perform this action"))
	return false
}
