package port

import (
	"context"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
)

// PageFilter is plain limit/offset pagination for nested listings.
type PageFilter struct {
	Limit  int
	Offset int
}

// ReviewRepository persists reviews. The schema enforces one review per
// (title, author) with a unique constraint; Create surfaces violations as
// constraint errors.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) error
	GetByID(ctx context.Context, titleID, id string) (*domain.Review, error)
	Update(ctx context.Context, review domain.Review) error
	Delete(ctx context.Context, id string) error
	ListByTitle(ctx context.Context, titleID string, filter PageFilter) ([]domain.Review, error)
	CountByTitle(ctx context.Context, titleID string) (int, error)
	ExistsForAuthor(ctx context.Context, titleID, authorID string) (bool, error)
}

// CommentRepository persists replies to reviews.
type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) error
	GetByID(ctx context.Context, reviewID, id string) (*domain.Comment, error)
	Update(ctx context.Context, comment domain.Comment) error
	Delete(ctx context.Context, id string) error
	ListByReview(ctx context.Context, reviewID string, filter PageFilter) ([]domain.Comment, error)
	CountByReview(ctx context.Context, reviewID string) (int, error)
}
