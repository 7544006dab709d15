package repository

import (
	"context"
	"time"

	"github.com/digitalrehman/secure-todo-flow/internal/domain"
)

// UserRepository persists user accounts. Mutations are single-statement
// partial updates so concurrent writers touching disjoint fields cannot lose
// each other's writes; there is no cross-field transactional isolation beyond
// that, and verification re-issuance is last-write-wins.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (domain.User, error)
	// GetByEmailSecret matches only a pending secret whose expiry is in the
	// future; consumed or replaced secrets never match.
	GetByEmailSecret(ctx context.Context, secret string) (domain.User, error)

	SetEmailVerification(ctx context.Context, id, secret string, expires time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
	SetPhoneVerification(ctx context.Context, id, phoneNumber, code string, expires time.Time) error
	MarkPhoneVerified(ctx context.Context, id string) (domain.User, error)
	LinkGoogleAccount(ctx context.Context, id, googleID, avatarURL string) (domain.User, error)
}

// TodoRepository persists todos. OwnerID is written once at creation and
// never updated.
type TodoRepository interface {
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	GetByID(ctx context.Context, id string) (domain.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Toggle(ctx context.Context, id string) (domain.Todo, error)
	Delete(ctx context.Context, id string) error
}
