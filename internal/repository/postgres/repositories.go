package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/port"
)

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	pool       *pgxpool.Pool
	Users      *UserRepository
	Categories *CategoryRepository
	Genres     *GenreRepository
	Titles     *TitleRepository
	Reviews    *ReviewRepository
	Comments   *CommentRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		pool:       pool,
		Users:      NewUserRepository(pool),
		Categories: NewCategoryRepository(pool),
		Genres:     NewGenreRepository(pool),
		Titles:     NewTitleRepository(pool),
		Reviews:    NewReviewRepository(pool),
		Comments:   NewCommentRepository(pool),
	}
}

// InUserTx runs fn with a user repository bound to a single transaction.
// The transaction commits only when fn returns nil.
func (r *Repositories) InUserTx(ctx context.Context, fn func(port.UserRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(r.Users.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

var _ port.UserTxRunner = (*Repositories)(nil)
