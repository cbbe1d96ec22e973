package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// FieldErrors maps each invalid field to its failure messages.
type FieldErrors map[string][]string

// PageResponse is the paginated listing envelope.
type PageResponse struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// NewPageResponse assembles the envelope with next/previous links derived
// from the request URL and the limit/offset pair.
func NewPageResponse(c *gin.Context, count, limit, offset int, results any) PageResponse {
	page := PageResponse{Count: count, Results: results}

	if offset+limit < count {
		page.Next = pageLink(c, limit, offset+limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		page.Previous = pageLink(c, limit, prev)
	}

	return page
}

func pageLink(c *gin.Context, limit, offset int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()

	link := u.String()
	return &link
}

// PageParams extracts limit/offset query parameters with bounds applied.
func PageParams(c *gin.Context) (limit, offset int) {
	limit = defaultPageLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	return limit, offset
}

// SignupRequest defines the payload for the signup endpoint.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignupResponse echoes the accepted identity.
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest defines the payload for the token issuance endpoint.
type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserPayload is the API representation of an account.
type UserPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// NewUserPayload maps a domain user onto its API shape.
func NewUserPayload(user domain.User) UserPayload {
	return UserPayload{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Role:      string(user.Role),
	}
}

// NewUserPayloads maps a user slice, never returning nil.
func NewUserPayloads(users []domain.User) []UserPayload {
	payloads := make([]UserPayload, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, NewUserPayload(user))
	}
	return payloads
}

// CreateUserRequest defines the administrative user creation payload.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// UpdateUserRequest is a partial account update; absent fields stay untouched.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

// SlugPayload is the API representation of a category or genre.
type SlugPayload struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SlugRequest defines category and genre creation payloads.
type SlugRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TitlePayload is the API representation of a title.
type TitlePayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Year        int           `json:"year"`
	Rating      *int          `json:"rating"`
	Description string        `json:"description"`
	Genre       []SlugPayload `json:"genre"`
	Category    *SlugPayload  `json:"category"`
}

// NewTitlePayload maps a domain title onto its API shape.
func NewTitlePayload(title domain.Title) TitlePayload {
	payload := TitlePayload{
		ID:          title.ID,
		Name:        title.Name,
		Year:        title.Year,
		Rating:      title.Rating,
		Description: title.Description,
		Genre:       make([]SlugPayload, 0, len(title.Genres)),
	}

	for _, genre := range title.Genres {
		payload.Genre = append(payload.Genre, SlugPayload{Name: genre.Name, Slug: genre.Slug})
	}

	if title.Category != nil {
		payload.Category = &SlugPayload{Name: title.Category.Name, Slug: title.Category.Slug}
	}

	return payload
}

// TitleRequest defines title creation and update payloads.
type TitleRequest struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Genre       []string `json:"genre"`
	Category    string   `json:"category"`
}

// ReviewPayload is the API representation of a review.
type ReviewPayload struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// NewReviewPayload maps a domain review onto its API shape.
func NewReviewPayload(review domain.Review) ReviewPayload {
	return ReviewPayload{
		ID:      review.ID,
		Author:  review.AuthorUsername,
		Text:    review.Text,
		Score:   review.Score,
		PubDate: review.PubDate,
	}
}

// ReviewRequest defines review creation and update payloads.
type ReviewRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// CommentPayload is the API representation of a comment.
type CommentPayload struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

// NewCommentPayload maps a domain comment onto its API shape.
func NewCommentPayload(comment domain.Comment) CommentPayload {
	return CommentPayload{
		ID:      comment.ID,
		Author:  comment.AuthorUsername,
		Text:    comment.Text,
		PubDate: comment.PubDate,
	}
}

// CommentRequest defines comment creation and update payloads.
type CommentRequest struct {
	Text string `json:"text"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse aggregates per-dependency readiness checks.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func bindError(c *gin.Context, err error) ErrorResponse {
	return NewErrorResponse(c, fmt.Sprintf("invalid request body: %v", err))
}
