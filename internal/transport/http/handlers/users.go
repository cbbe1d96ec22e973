package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/transport/http/middleware"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// UserHandler exposes account administration and the self-service profile.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds the users resource. adminChain guards the collection;
// selfChain guards the me endpoint.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, adminChain, selfChain []gin.HandlerFunc) {
	me := r.Group("/users/me", selfChain...)
	me.GET("", h.Me)
	me.PATCH("", h.UpdateMe)

	users := r.Group("/users", adminChain...)
	users.GET("", h.List)
	users.POST("", h.Create)
	users.GET("/:username", h.Get)
	users.PATCH("/:username", h.Update)
	users.DELETE("/:username", h.Delete)
}

var userErrorCases = []ErrorCase{
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
	{Err: usecase.ErrSignupConflict, Status: http.StatusBadRequest, Message: "username or email already taken"},
}

// List returns a paginated page of accounts, optionally filtered by a
// username search term.
func (h *UserHandler) List(c *gin.Context) {
	limit, offset := PageParams(c)

	page, err := h.users.ListUsers(c.Request.Context(), port.UserFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "list users failed")
		return
	}

	c.JSON(http.StatusOK, NewPageResponse(c, page.Total, limit, offset, NewUserPayloads(page.Users)))
}

// Create provisions an account administratively.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), usecase.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "create user failed")
		return
	}

	c.JSON(http.StatusCreated, NewUserPayload(*user))
}

// Get loads an account by username.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "get user failed")
		return
	}

	c.JSON(http.StatusOK, NewUserPayload(*user))
}

// Update applies a partial update to an account, role included.
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("username"), usecase.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "update user failed")
		return
	}

	c.JSON(http.StatusOK, NewUserPayload(*user))
}

// Delete removes an account.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "delete user failed")
		return
	}

	c.Status(http.StatusNoContent)
}

// Me returns the authenticated account's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), actor.Username)
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "get profile failed")
		return
	}

	c.JSON(http.StatusOK, NewUserPayload(*user))
}

// UpdateMe applies a partial self-service profile update. A role field in
// the payload is ignored; the role stays read-only here.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	user, err := h.users.UpdateMe(c.Request.Context(), actor, usecase.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "update profile failed")
		return
	}

	c.JSON(http.StatusOK, NewUserPayload(*user))
}
