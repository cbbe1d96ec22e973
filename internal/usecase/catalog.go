package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

const (
	maxCatalogNameLength = 256
	maxSlugLength        = 50
)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CatalogService manages categories, genres, and titles.
type CatalogService struct {
	categories port.CategoryRepository
	genres     port.GenreRepository
	titles     port.TitleRepository

	now func() time.Time
}

// NewCatalogService constructs a catalog service.
func NewCatalogService(categories port.CategoryRepository, genres port.GenreRepository, titles port.TitleRepository) *CatalogService {
	return &CatalogService{
		categories: categories,
		genres:     genres,
		titles:     titles,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SlugInput carries a category or genre creation payload.
type SlugInput struct {
	Name string
	Slug string
}

// TitleInput carries a title creation or full-update payload.
type TitleInput struct {
	Name         string
	Year         int
	Description  string
	CategorySlug string
	GenreSlugs   []string
}

// ListCategories returns categories matching the filter plus the unpaged total.
func (s *CatalogService) ListCategories(ctx context.Context, filter port.SlugFilter) ([]domain.Category, int, error) {
	categories, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	total, err := s.categories.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	return categories, total, nil
}

// CreateCategory registers a new category.
func (s *CatalogService) CreateCategory(ctx context.Context, input SlugInput) (*domain.Category, error) {
	if err := validateSlugInput(input); err != nil {
		return nil, err
	}

	category := domain.Category{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(input.Name),
		Slug: input.Slug,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return &category, nil
}

// DeleteCategory removes a category by slug.
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.categories.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// ListGenres returns genres matching the filter plus the unpaged total.
func (s *CatalogService) ListGenres(ctx context.Context, filter port.SlugFilter) ([]domain.Genre, int, error) {
	genres, err := s.genres.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}

	total, err := s.genres.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}

	return genres, total, nil
}

// CreateGenre registers a new genre.
func (s *CatalogService) CreateGenre(ctx context.Context, input SlugInput) (*domain.Genre, error) {
	if err := validateSlugInput(input); err != nil {
		return nil, err
	}

	genre := domain.Genre{
		ID:   uuid.NewString(),
		Name: strings.TrimSpace(input.Name),
		Slug: input.Slug,
	}

	if err := s.genres.Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("create genre: %w", err)
	}

	return &genre, nil
}

// DeleteGenre removes a genre by slug.
func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	if err := s.genres.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGenreNotFound
		}
		return fmt.Errorf("delete genre: %w", err)
	}
	return nil
}

// ListTitles returns titles matching the filter plus the unpaged total,
// ratings included.
func (s *CatalogService) ListTitles(ctx context.Context, filter port.TitleFilter) ([]domain.Title, int, error) {
	titles, err := s.titles.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	total, err := s.titles.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	return titles, total, nil
}

// GetTitle loads a title by id.
func (s *CatalogService) GetTitle(ctx context.Context, id string) (*domain.Title, error) {
	title, err := s.titles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, fmt.Errorf("get title: %w", err)
	}
	return title, nil
}

// CreateTitle registers a new title linked to an existing category and genres.
func (s *CatalogService) CreateTitle(ctx context.Context, input TitleInput) (*domain.Title, error) {
	category, err := s.validateTitleInput(ctx, input)
	if err != nil {
		return nil, err
	}

	title := domain.Title{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Year:        input.Year,
		Description: input.Description,
		Category:    category,
	}

	if err := s.titles.Create(ctx, title, input.GenreSlugs); err != nil {
		return nil, fmt.Errorf("create title: %w", err)
	}

	return s.GetTitle(ctx, title.ID)
}

// UpdateTitle replaces a title's fields and genre links.
func (s *CatalogService) UpdateTitle(ctx context.Context, id string, input TitleInput) (*domain.Title, error) {
	existing, err := s.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	category, err := s.validateTitleInput(ctx, input)
	if err != nil {
		return nil, err
	}

	title := domain.Title{
		ID:          existing.ID,
		Name:        strings.TrimSpace(input.Name),
		Year:        input.Year,
		Description: input.Description,
		Category:    category,
	}

	if err := s.titles.Update(ctx, title, input.GenreSlugs); err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}

	return s.GetTitle(ctx, id)
}

// DeleteTitle removes a title and its reviews.
func (s *CatalogService) DeleteTitle(ctx context.Context, id string) error {
	if _, err := s.GetTitle(ctx, id); err != nil {
		return err
	}

	if err := s.titles.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTitleNotFound
		}
		return fmt.Errorf("delete title: %w", err)
	}
	return nil
}

// validateTitleInput checks field constraints and resolves the referenced
// category and genres, reporting unknown slugs as field errors.
func (s *CatalogService) validateTitleInput(ctx context.Context, input TitleInput) (*domain.Category, error) {
	verr := NewValidationError()

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		verr.Add("name", "This field is required.")
	case len(name) > maxCatalogNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxCatalogNameLength))
	}

	if input.Year > s.now().Year() {
		verr.Add("year", "Year cannot be in the future.")
	}

	var category *domain.Category
	if input.CategorySlug == "" {
		verr.Add("category", "This field is required.")
	} else {
		found, err := s.categories.GetBySlug(ctx, input.CategorySlug)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			verr.Add("category", fmt.Sprintf("Category %q does not exist.", input.CategorySlug))
		case err != nil:
			return nil, fmt.Errorf("resolve category: %w", err)
		default:
			category = found
		}
	}

	for _, slug := range input.GenreSlugs {
		if _, err := s.genres.GetBySlug(ctx, slug); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				verr.Add("genre", fmt.Sprintf("Genre %q does not exist.", slug))
				continue
			}
			return nil, fmt.Errorf("resolve genre: %w", err)
		}
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	return category, nil
}

func validateSlugInput(input SlugInput) error {
	verr := NewValidationError()

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		verr.Add("name", "This field is required.")
	case len(name) > maxCatalogNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxCatalogNameLength))
	}

	switch {
	case input.Slug == "":
		verr.Add("slug", "This field is required.")
	case len(input.Slug) > maxSlugLength:
		verr.Add("slug", fmt.Sprintf("Ensure this field has no more than %d characters.", maxSlugLength))
	case !slugRegex.MatchString(input.Slug):
		verr.Add("slug", "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}

	return verr.ErrOrNil()
}
