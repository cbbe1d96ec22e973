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

// ReviewRepository implements port.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewReviewRepository wires a PostgreSQL-backed review repository.
func NewReviewRepository(exec pgExecutor) *ReviewRepository {
	return &ReviewRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReviewRepository) reviewSelect() squirrel.SelectBuilder {
	return r.builder.Select(
		"rv.id",
		"rv.title_id",
		"rv.author_id",
		"u.username",
		"rv.text",
		"rv.score",
		"rv.pub_date",
	).
		From("reviews rv").
		Join("users u ON u.id = rv.author_id")
}

// Create inserts a review. A second review by the same author for the same
// title violates the unique constraint and surfaces as repository.ErrConflict.
func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) error {
	stmt, args, err := r.builder.Insert("reviews").
		Columns("id", "title_id", "author_id", "text", "score", "pub_date").
		Values(review.ID, review.TitleID, review.AuthorID, review.Text, review.Score, review.PubDate).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert review sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if mapped := mapConstraintError(err); mapped == repository.ErrConflict {
			return mapped
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review scoped to its title.
func (r *ReviewRepository) GetByID(ctx context.Context, titleID, id string) (*domain.Review, error) {
	stmt, args, err := r.reviewSelect().
		Where(squirrel.Eq{"rv.id": id, "rv.title_id": titleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select review sql: %w", err)
	}

	var review domain.Review
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&review.ID,
		&review.TitleID,
		&review.AuthorID,
		&review.AuthorUsername,
		&review.Text,
		&review.Score,
		&review.PubDate,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &review, nil
}

// Update modifies a review's text and score.
func (r *ReviewRepository) Update(ctx context.Context, review domain.Review) error {
	stmt, args, err := r.builder.Update("reviews").
		Set("text", review.Text).
		Set("score", review.Score).
		Where(squirrel.Eq{"id": review.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update review sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a review and, via cascade, its comments.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("reviews").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete review sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByTitle returns a title's reviews, newest first.
func (r *ReviewRepository) ListByTitle(ctx context.Context, titleID string, filter port.PageFilter) ([]domain.Review, error) {
	query := r.reviewSelect().
		Where(squirrel.Eq{"rv.title_id": titleID}).
		OrderBy("rv.pub_date DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.TitleID,
			&review.AuthorID,
			&review.AuthorUsername,
			&review.Text,
			&review.Score,
			&review.PubDate,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// CountByTitle returns the number of reviews under the title.
func (r *ReviewRepository) CountByTitle(ctx context.Context, titleID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("reviews").
		Where(squirrel.Eq{"title_id": titleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count reviews sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}

	return count, nil
}

// ExistsForAuthor reports whether the author already reviewed the title.
func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, titleID, authorID string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("reviews").
		Where(squirrel.Eq{"title_id": titleID, "author_id": authorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build review exists sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scan review exists: %w", err)
	}

	return true, nil
}

var _ port.ReviewRepository = (*ReviewRepository)(nil)
