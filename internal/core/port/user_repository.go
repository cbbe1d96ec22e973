package port

import (
	"context"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
)

// UserFilter scopes user listings.
type UserFilter struct {
	// Search matches usernames by substring.
	Search string
	Limit  int
	Offset int
}

// UserRepository persists user accounts. Username and email are each unique
// across the store; the backing schema enforces both with hard constraints,
// and Create surfaces violations as constraint errors for the caller to map.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user domain.User) error
	UpdateConfirmationCode(ctx context.Context, id string, code string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
}

// UserTxRunner executes fn inside a storage transaction; fn receives a
// repository view bound to that transaction. The transaction commits only
// when fn returns nil, which lets signup couple the user write with mail
// delivery into an all-or-nothing unit.
type UserTxRunner interface {
	InUserTx(ctx context.Context, fn func(UserRepository) error) error
}
