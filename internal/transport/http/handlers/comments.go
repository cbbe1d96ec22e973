package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/transport/http/middleware"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// CommentHandler exposes the comments resource nested under reviews.
type CommentHandler struct {
	reviews *usecase.ReviewService
	policy  domain.Policy
}

// NewCommentHandler constructs CommentHandler.
func NewCommentHandler(reviews *usecase.ReviewService, policy domain.Policy) *CommentHandler {
	return &CommentHandler{reviews: reviews, policy: policy}
}

// RegisterRoutes binds the comments resource behind the provided middleware chain.
func (h *CommentHandler) RegisterRoutes(r *gin.RouterGroup, chain []gin.HandlerFunc) {
	comments := r.Group("/titles/:title_id/reviews/:review_id/comments", chain...)
	comments.GET("", h.List)
	comments.POST("", h.Create)
	comments.GET("/:comment_id", h.Get)
	comments.PATCH("/:comment_id", h.Update)
	comments.DELETE("/:comment_id", h.Delete)
}

var commentErrorCases = []ErrorCase{
	{Err: usecase.ErrTitleNotFound, Status: http.StatusNotFound, Message: "title not found"},
	{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
	{Err: usecase.ErrCommentNotFound, Status: http.StatusNotFound, Message: "comment not found"},
}

// List returns a paginated comment listing for the review.
func (h *CommentHandler) List(c *gin.Context) {
	limit, offset := PageParams(c)

	comments, total, err := h.reviews.ListComments(c.Request.Context(), c.Param("title_id"), c.Param("review_id"), port.PageFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		RespondWithMappedError(c, err, commentErrorCases, http.StatusInternalServerError, "list comments failed")
		return
	}

	results := make([]CommentPayload, 0, len(comments))
	for _, comment := range comments {
		results = append(results, NewCommentPayload(comment))
	}

	c.JSON(http.StatusOK, NewPageResponse(c, total, limit, offset, results))
}

// Create posts a reply to the review.
func (h *CommentHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	comment, err := h.reviews.CreateComment(c.Request.Context(), actor, c.Param("title_id"), c.Param("review_id"), usecase.CommentInput{
		Text: req.Text,
	})
	if err != nil {
		RespondWithMappedError(c, err, commentErrorCases, http.StatusInternalServerError, "create comment failed")
		return
	}

	c.JSON(http.StatusCreated, NewCommentPayload(*comment))
}

// Get loads a single comment.
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.reviews.GetComment(c.Request.Context(), c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		RespondWithMappedError(c, err, commentErrorCases, http.StatusInternalServerError, "get comment failed")
		return
	}

	c.JSON(http.StatusOK, NewCommentPayload(*comment))
}

// Update replaces the comment's text. Only the author or a
// moderator-privileged actor may modify it.
func (h *CommentHandler) Update(c *gin.Context) {
	comment, err := h.reviews.GetComment(c.Request.Context(), c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		RespondWithMappedError(c, err, commentErrorCases, http.StatusInternalServerError, "get comment failed")
		return
	}

	if !h.allowObject(c, comment.AuthorID) {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	updated, err := h.reviews.UpdateComment(c.Request.Context(), c.Param("title_id"), c.Param("review_id"), comment.ID, usecase.CommentInput{
		Text: req.Text,
	})
	if err != nil {
		RespondWithMappedError(c, err, commentErrorCases, http.StatusInternalServerError, "update comment failed")
		return
	}

	c.JSON(http.StatusOK, NewCommentPayload(*updated))
}

// Delete removes the comment. Only the author or a moderator-privileged actor
// may remove it.
func (h *CommentHandler) Delete(c *gin.Context) {
	comment, err := h.reviews.GetComment(c.Request.Context(), c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		RespondWithMappedError(c, err, commentErrorCases, http.StatusInternalServerError, "get comment failed")
		return
	}

	if !h.allowObject(c, comment.AuthorID) {
		return
	}

	if err := h.reviews.DeleteComment(c.Request.Context(), c.Param("title_id"), c.Param("review_id"), comment.ID); err != nil {
		RespondWithMappedError(c, err, commentErrorCases, http.StatusInternalServerError, "delete comment failed")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) allowObject(c *gin.Context, authorID string) bool {
	actor := middleware.GetActor(c)
	if h.policy.AllowObject(actor, c.Request.Method, authorID) {
		return true
	}

	c.JSON(http.StatusForbidden, NewErrorResponse(c, "you do not have permission to perform this action"))
	return false
}
