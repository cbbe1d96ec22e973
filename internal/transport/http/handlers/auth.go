package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// AuthHandler exposes the passwordless signup and token endpoints.
type AuthHandler struct {
	signup *usecase.SignupService
	tokens *usecase.TokenService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(signup *usecase.SignupService, tokens *usecase.TokenService) *AuthHandler {
	return &AuthHandler{signup: signup, tokens: tokens}
}

// RegisterRoutes binds auth routes, applying optional middleware ahead of handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, signupMiddlewares, tokenMiddlewares []gin.HandlerFunc) {
	signupChain := append([]gin.HandlerFunc{}, signupMiddlewares...)
	signupChain = append(signupChain, h.Signup)
	r.POST("/signup", signupChain...)

	tokenChain := append([]gin.HandlerFunc{}, tokenMiddlewares...)
	tokenChain = append(tokenChain, h.Token)
	r.POST("/token", tokenChain...)
}

// Signup registers an account or refreshes its confirmation code. Repeating
// the original username and email pair is always accepted so a lost code can
// be re-requested.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	result, err := h.signup.Signup(c.Request.Context(), usecase.SignupInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSignupConflict, Status: http.StatusBadRequest, Message: "username or email already taken"},
			{Err: usecase.ErrMailDelivery, Status: http.StatusServiceUnavailable, Message: "confirmation email could not be delivered"},
		}, http.StatusInternalServerError, "signup failed")
		return
	}

	c.JSON(http.StatusOK, SignupResponse{Username: result.Username, Email: result.Email})
}

// Token exchanges a username and confirmation code for an access token. An
// unknown username answers 404; a wrong code answers 400 with a field error.
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindError(c, err))
		return
	}

	token, err := h.tokens.IssueToken(c.Request.Context(), usecase.IssueTokenInput{
		Username:         req.Username,
		ConfirmationCode: req.ConfirmationCode,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrConfirmationCodeInvalid) {
			c.JSON(http.StatusBadRequest, FieldErrors{
				"confirmation_code": {"Confirmation_code is invalid."},
			})
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "token issuance failed")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
