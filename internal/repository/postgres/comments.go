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

// CommentRepository implements port.CommentRepository using PostgreSQL.
type CommentRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCommentRepository wires a PostgreSQL-backed comment repository.
func NewCommentRepository(exec pgExecutor) *CommentRepository {
	return &CommentRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *CommentRepository) commentSelect() squirrel.SelectBuilder {
	return r.builder.Select(
		"cm.id",
		"cm.review_id",
		"cm.author_id",
		"u.username",
		"cm.text",
		"cm.pub_date",
	).
		From("comments cm").
		Join("users u ON u.id = cm.author_id")
}

// Create inserts a comment.
func (r *CommentRepository) Create(ctx context.Context, comment domain.Comment) error {
	stmt, args, err := r.builder.Insert("comments").
		Columns("id", "review_id", "author_id", "text", "pub_date").
		Values(comment.ID, comment.ReviewID, comment.AuthorID, comment.Text, comment.PubDate).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert comment sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment scoped to its review.
func (r *CommentRepository) GetByID(ctx context.Context, reviewID, id string) (*domain.Comment, error) {
	stmt, args, err := r.commentSelect().
		Where(squirrel.Eq{"cm.id": id, "cm.review_id": reviewID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select comment sql: %w", err)
	}

	var comment domain.Comment
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&comment.ID,
		&comment.ReviewID,
		&comment.AuthorID,
		&comment.AuthorUsername,
		&comment.Text,
		&comment.PubDate,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}

	return &comment, nil
}

// Update modifies a comment's text.
func (r *CommentRepository) Update(ctx context.Context, comment domain.Comment) error {
	stmt, args, err := r.builder.Update("comments").
		Set("text", comment.Text).
		Where(squirrel.Eq{"id": comment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update comment sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("comments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete comment sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByReview returns a review's comments, newest first.
func (r *CommentRepository) ListByReview(ctx context.Context, reviewID string, filter port.PageFilter) ([]domain.Comment, error) {
	query := r.commentSelect().
		Where(squirrel.Eq{"cm.review_id": reviewID}).
		OrderBy("cm.pub_date DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.ReviewID,
			&comment.AuthorID,
			&comment.AuthorUsername,
			&comment.Text,
			&comment.PubDate,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// CountByReview returns the number of comments under the review.
func (r *CommentRepository) CountByReview(ctx context.Context, reviewID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("comments").
		Where(squirrel.Eq{"review_id": reviewID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count comments sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}

	return count, nil
}

var _ port.CommentRepository = (*CommentRepository)(nil)
