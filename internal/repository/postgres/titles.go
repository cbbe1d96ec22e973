package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/repository"
)

// TitleRepository implements port.TitleRepository using PostgreSQL.
type TitleRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTitleRepository wires a PostgreSQL-backed title repository.
func NewTitleRepository(exec pgExecutor) *TitleRepository {
	return &TitleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// titleSelect joins the category and averages review scores. Genres are
// loaded with a second query per result set to keep the row shape flat.
func (r *TitleRepository) titleSelect() squirrel.SelectBuilder {
	return r.builder.Select(
		"t.id",
		"t.name",
		"t.year",
		"t.description",
		"c.id",
		"c.name",
		"c.slug",
		"ROUND(AVG(rv.score))::int AS rating",
	).
		From("titles t").
		LeftJoin("categories c ON c.id = t.category_id").
		LeftJoin("reviews rv ON rv.title_id = t.id").
		GroupBy("t.id", "t.name", "t.year", "t.description", "c.id", "c.name", "c.slug")
}

// Create inserts a title and links the provided genre slugs.
func (r *TitleRepository) Create(ctx context.Context, title domain.Title, genreSlugs []string) error {
	var categoryID any
	if title.Category != nil {
		categoryID = title.Category.ID
	}

	stmt, args, err := r.builder.Insert("titles").
		Columns("id", "name", "year", "description", "category_id").
		Values(title.ID, title.Name, title.Year, title.Description, categoryID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert title sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert title: %w", err)
	}

	return r.replaceGenres(ctx, title.ID, genreSlugs)
}

// Update modifies a title and replaces its genre links when genreSlugs is
// non-nil.
func (r *TitleRepository) Update(ctx context.Context, title domain.Title, genreSlugs []string) error {
	var categoryID any
	if title.Category != nil {
		categoryID = title.Category.ID
	}

	stmt, args, err := r.builder.Update("titles").
		Set("name", title.Name).
		Set("year", title.Year).
		Set("description", title.Description).
		Set("category_id", categoryID).
		Where(squirrel.Eq{"id": title.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update title sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	if genreSlugs == nil {
		return nil
	}
	return r.replaceGenres(ctx, title.ID, genreSlugs)
}

func (r *TitleRepository) replaceGenres(ctx context.Context, titleID string, genreSlugs []string) error {
	del, delArgs, err := r.builder.Delete("title_genres").
		Where(squirrel.Eq{"title_id": titleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete title genres sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("delete title genres: %w", err)
	}

	if len(genreSlugs) == 0 {
		return nil
	}

	// Resolves slugs inline so unknown slugs are silently skipped; the
	// usecase validates slug existence before calling.
	const ins = `
		INSERT INTO title_genres (title_id, genre_id)
		SELECT $1, id FROM genres WHERE slug = ANY($2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.exec.Exec(ctx, ins, titleID, genreSlugs); err != nil {
		return fmt.Errorf("insert title genres: %w", err)
	}

	return nil
}

// GetByID retrieves a title with category, genres, and averaged rating.
func (r *TitleRepository) GetByID(ctx context.Context, id string) (*domain.Title, error) {
	stmt, args, err := r.titleSelect().
		Where(squirrel.Eq{"t.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select title sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	title, err := scanTitle(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan title: %w", err)
	}

	if err := r.loadGenres(ctx, []*domain.Title{title}); err != nil {
		return nil, err
	}

	return title, nil
}

// Delete removes a title.
func (r *TitleRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("titles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete title sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns titles matching the filter, ordered by name.
func (r *TitleRepository) List(ctx context.Context, filter port.TitleFilter) ([]domain.Title, error) {
	query := r.titleSelect().OrderBy("t.name ASC")

	if filter.CategorySlug != "" {
		query = query.Where(squirrel.Eq{"c.slug": filter.CategorySlug})
	}
	if filter.GenreSlug != "" {
		query = query.Where(squirrel.Expr(
			"t.id IN (SELECT tg.title_id FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE g.slug = ?)",
			filter.GenreSlug,
		))
	}
	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"t.name": "%" + filter.Name + "%"})
	}
	if filter.Year != 0 {
		query = query.Where(squirrel.Eq{"t.year": filter.Year})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list titles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	titles := make([]*domain.Title, 0)
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate titles: %w", err)
	}

	if err := r.loadGenres(ctx, titles); err != nil {
		return nil, err
	}

	result := make([]domain.Title, 0, len(titles))
	for _, t := range titles {
		result = append(result, *t)
	}
	return result, nil
}

// Count returns the number of titles matching the filter.
func (r *TitleRepository) Count(ctx context.Context, filter port.TitleFilter) (int, error) {
	query := r.builder.Select("COUNT(*)").From("titles t").
		LeftJoin("categories c ON c.id = t.category_id")

	if filter.CategorySlug != "" {
		query = query.Where(squirrel.Eq{"c.slug": filter.CategorySlug})
	}
	if filter.GenreSlug != "" {
		query = query.Where(squirrel.Expr(
			"t.id IN (SELECT tg.title_id FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE g.slug = ?)",
			filter.GenreSlug,
		))
	}
	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"t.name": "%" + filter.Name + "%"})
	}
	if filter.Year != 0 {
		query = query.Where(squirrel.Eq{"t.year": filter.Year})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count titles sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count titles: %w", err)
	}

	return count, nil
}

func scanTitle(row pgx.Row) (*domain.Title, error) {
	var (
		title        domain.Title
		categoryID   sql.NullString
		categoryName sql.NullString
		categorySlug sql.NullString
		rating       sql.NullInt64
	)

	if err := row.Scan(
		&title.ID,
		&title.Name,
		&title.Year,
		&title.Description,
		&categoryID,
		&categoryName,
		&categorySlug,
		&rating,
	); err != nil {
		return nil, err
	}

	if categoryID.Valid {
		title.Category = &domain.Category{
			ID:   categoryID.String,
			Name: categoryName.String,
			Slug: categorySlug.String,
		}
	}
	if rating.Valid {
		value := int(rating.Int64)
		title.Rating = &value
	}

	return &title, nil
}

func (r *TitleRepository) loadGenres(ctx context.Context, titles []*domain.Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]string, 0, len(titles))
	byID := make(map[string]*domain.Title, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
		byID[t.ID] = t
		t.Genres = make([]domain.Genre, 0)
	}

	stmt, args, err := r.builder.Select("tg.title_id", "g.id", "g.name", "g.slug").
		From("title_genres tg").
		Join("genres g ON g.id = tg.genre_id").
		Where(squirrel.Eq{"tg.title_id": ids}).
		OrderBy("g.name ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select title genres sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("query title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			titleID string
			genre   domain.Genre
		)
		if err := rows.Scan(&titleID, &genre.ID, &genre.Name, &genre.Slug); err != nil {
			return fmt.Errorf("scan title genre: %w", err)
		}
		if title, ok := byID[titleID]; ok {
			title.Genres = append(title.Genres, genre)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate title genres: %w", err)
	}

	return nil
}

var _ port.TitleRepository = (*TitleRepository)(nil)
