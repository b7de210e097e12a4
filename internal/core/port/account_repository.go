package port

import (
	"context"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts. Implementations
// must enforce username and email uniqueness atomically with the insert: when
// two registrations race for the same identity, exactly one InsertUnique call
// succeeds and the other returns repository.ErrConflict.
type AccountRepository interface {
	InsertUnique(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
}
