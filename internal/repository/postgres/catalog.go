package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

// CategoryRepository implements port.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCategoryRepository wires a PostgreSQL-backed category repository.
func NewCategoryRepository(exec pgExecutor) *CategoryRepository {
	return &CategoryRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a category; a slug collision surfaces as repository.ErrConflict.
func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) error {
	return insertSlugRow(ctx, r.exec, r.builder, "categories", category.ID, category.Name, category.Slug)
}

// GetBySlug retrieves a category by its slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	if err := getSlugRow(ctx, r.exec, r.builder, "categories", slug, &category.ID, &category.Name, &category.Slug); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteBySlug removes a category by its slug.
func (r *CategoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return deleteSlugRow(ctx, r.exec, r.builder, "categories", slug)
}

// List returns categories ordered by name with optional search.
func (r *CategoryRepository) List(ctx context.Context, filter port.SlugFilter) ([]domain.Category, error) {
	rows, err := querySlugRows(ctx, r.exec, r.builder, "categories", filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// Count returns the number of categories matching the filter.
func (r *CategoryRepository) Count(ctx context.Context, filter port.SlugFilter) (int, error) {
	return countSlugRows(ctx, r.exec, r.builder, "categories", filter)
}

// GenreRepository implements port.GenreRepository using PostgreSQL.
type GenreRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewGenreRepository wires a PostgreSQL-backed genre repository.
func NewGenreRepository(exec pgExecutor) *GenreRepository {
	return &GenreRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a genre; a slug collision surfaces as repository.ErrConflict.
func (r *GenreRepository) Create(ctx context.Context, genre domain.Genre) error {
	return insertSlugRow(ctx, r.exec, r.builder, "genres", genre.ID, genre.Name, genre.Slug)
}

// GetBySlug retrieves a genre by its slug.
func (r *GenreRepository) GetBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	var genre domain.Genre
	if err := getSlugRow(ctx, r.exec, r.builder, "genres", slug, &genre.ID, &genre.Name, &genre.Slug); err != nil {
		return nil, err
	}
	return &genre, nil
}

// DeleteBySlug removes a genre by its slug.
func (r *GenreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return deleteSlugRow(ctx, r.exec, r.builder, "genres", slug)
}

// List returns genres ordered by name with optional search.
func (r *GenreRepository) List(ctx context.Context, filter port.SlugFilter) ([]domain.Genre, error) {
	rows, err := querySlugRows(ctx, r.exec, r.builder, "genres", filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := make([]domain.Genre, 0)
	for rows.Next() {
		var genre domain.Genre
		if err := rows.Scan(&genre.ID, &genre.Name, &genre.Slug); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, genre)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}

	return genres, nil
}

// Count returns the number of genres matching the filter.
func (r *GenreRepository) Count(ctx context.Context, filter port.SlugFilter) (int, error) {
	return countSlugRows(ctx, r.exec, r.builder, "genres", filter)
}

// Categories and genres share the (id, name, slug) shape; the helpers below
// keep both repositories on identical SQL.

func insertSlugRow(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table, id, name, slug string) error {
	stmt, args, err := builder.Insert(table).
		Columns("id", "name", "slug").
		Values(id, name, slug).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s sql: %w", table, err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		if mapped := mapConstraintError(err); mapped == repository.ErrConflict {
			return mapped
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}

	return nil
}

func getSlugRow(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table, slug string, dest ...any) error {
	stmt, args, err := builder.Select("id", "name", "slug").
		From(table).
		Where(squirrel.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build select %s sql: %w", table, err)
	}

	if err := exec.QueryRow(ctx, stmt, args...).Scan(dest...); err != nil {
		if err == pgx.ErrNoRows {
			return repository.ErrNotFound
		}
		return fmt.Errorf("scan %s: %w", table, err)
	}

	return nil
}

func deleteSlugRow(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table, slug string) error {
	stmt, args, err := builder.Delete(table).
		Where(squirrel.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s sql: %w", table, err)
	}

	ct, err := exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func querySlugRows(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table string, filter port.SlugFilter) (pgx.Rows, error) {
	query := builder.Select("id", "name", "slug").
		From(table).
		OrderBy("name ASC")

	if filter.Search != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list %s sql: %w", table, err)
	}

	rows, err := exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	return rows, nil
}

func countSlugRows(ctx context.Context, exec pgExecutor, builder squirrel.StatementBuilderType, table string, filter port.SlugFilter) (int, error) {
	query := builder.Select("COUNT(*)").From(table)
	if filter.Search != "" {
		query = query.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s sql: %w", table, err)
	}

	var count int
	if err := exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	return count, nil
}

var (
	_ port.CategoryRepository = (*CategoryRepository)(nil)
	_ port.GenreRepository    = (*GenreRepository)(nil)
)
