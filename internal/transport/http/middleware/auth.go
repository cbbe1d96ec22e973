package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/security"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// ActorKey is the context key holding the authenticated *domain.User.
const ActorKey = "actor"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the Authorization header and loads the account it
// identifies into the request context.
func RequireAuth(tokens *usecase.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := authenticate(c, tokens)
		if !ok {
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth loads the account when a bearer token is present. Requests
// without an Authorization header continue anonymously; a presented but
// invalid token is still rejected.
func OptionalAuth(tokens *usecase.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		actor, ok := authenticate(c, tokens)
		if !ok {
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// RequirePolicy enforces a request-level permission policy. Object-level
// checks stay with the handlers that load the object.
func RequirePolicy(policy domain.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if policy.Allow(actor, c.Request.Method) {
			c.Next()
			return
		}

		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "you do not have permission to perform this action"))
	}
}

func authenticate(c *gin.Context, tokens *usecase.TokenService) (*domain.User, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "missing authorization header"))
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
		return nil, false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			newErrorResponse(c, "missing access token"))
		return nil, false
	}

	actor, err := tokens.Authenticate(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "access token expired"))
		case errors.Is(err, security.ErrTokenInvalid):
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid access token"))
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
		}
		return nil, false
	}

	return actor, true
}

func setActor(c *gin.Context, actor *domain.User) {
	c.Set(ActorKey, actor)
	c.Set(UserIDKey, actor.ID)

	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.UserID = actor.ID
	}
}

// GetActor retrieves the authenticated account from context; nil when the
// request is anonymous.
func GetActor(c *gin.Context) *domain.User {
	val, exists := c.Get(ActorKey)
	if !exists {
		return nil
	}

	actor, ok := val.(*domain.User)
	if !ok {
		return nil
	}
	return actor
}
