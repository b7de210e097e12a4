package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/repository"
)

const uniqueViolationCode = "23505"

// pgExecutor is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository persists accounts in Postgres.
type AccountRepository struct {
	db pgExecutor
	sb sq.StatementBuilderType
}

func NewAccountRepository(db pgExecutor) *AccountRepository {
	return &AccountRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// InsertUnique stores a new account and returns it with the storage-assigned
// id and creation timestamp. Uniqueness is enforced solely by the database
// constraints: under a concurrent race on the same username or email exactly
// one insert succeeds and the rest surface repository.ErrConflict.
func (r *AccountRepository) InsertUnique(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error) {
	query, args, err := r.sb.
		Insert("accounts").
		Columns("username", "email", "password_hash").
		Values(draft.Username, draft.Email, draft.PasswordHash).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert account query: %w", err)
	}

	account := domain.Account{
		Username:     draft.Username,
		Email:        draft.Email,
		PasswordHash: draft.PasswordHash,
	}
	err = r.db.QueryRow(ctx, query, args...).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, &repository.ConflictError{Field: conflictField(pgErr.ConstraintName)}
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &account, nil
}

// FindByEmail returns the account stored under the given email, or
// repository.ErrNotFound when no such account exists.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query, args, err := r.sb.
		Select("id", "username", "email", "password_hash", "created_at").
		From("accounts").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account query: %w", err)
	}

	var account domain.Account
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select account by email: %w", err)
	}
	return &account, nil
}

func conflictField(constraint string) string {
	switch {
	case strings.Contains(constraint, "username"):
		return "username"
	case strings.Contains(constraint, "email"):
		return "email"
	default:
		return "account"
	}
}
