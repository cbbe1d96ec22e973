package port

import (
	"context"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
)

// SlugFilter scopes category and genre listings.
type SlugFilter struct {
	// Search matches names by substring.
	Search string
	Limit  int
	Offset int
}

// TitleFilter scopes title listings.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int
	Limit        int
	Offset       int
}

// CategoryRepository persists title categories, addressed by slug.
type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, filter SlugFilter) ([]domain.Category, error)
	Count(ctx context.Context, filter SlugFilter) (int, error)
}

// GenreRepository persists title genres, addressed by slug.
type GenreRepository interface {
	Create(ctx context.Context, genre domain.Genre) error
	GetBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
	List(ctx context.Context, filter SlugFilter) ([]domain.Genre, error)
	Count(ctx context.Context, filter SlugFilter) (int, error)
}

// TitleRepository persists reviewable works. Reads include the averaged
// review rating and the linked category and genres.
type TitleRepository interface {
	Create(ctx context.Context, title domain.Title, genreSlugs []string) error
	GetByID(ctx context.Context, id string) (*domain.Title, error)
	Update(ctx context.Context, title domain.Title, genreSlugs []string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TitleFilter) ([]domain.Title, error)
	Count(ctx context.Context, filter TitleFilter) (int, error)
}
