package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/dbx"
	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (username, email, verification_hash, clipboard_count)
		 VALUES ($1, $2, $3, 0)
		 RETURNING id, clipboard_count, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, account.Username, account.Email, account.VerificationHash).
		Scan(&account.ID, &account.ClipboardCount, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case "accounts_username_key":
				return nil, common.ErrorUsernameTaken
			case "accounts_email_key":
				return nil, common.ErrorEmailTaken
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getBy(ctx, "email", email)
}

// getBy is only called with the fixed column names above.
func (r *PostgresRepository) getBy(ctx context.Context, column, value string) (*models.Account, error) {
	query := fmt.Sprintf(
		`SELECT id, username, email, verification_hash, clipboard_count, created_at FROM accounts
		 WHERE %s = $1
		 `, column)

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, value).
		Scan(&a.ID, &a.Username, &a.Email, &a.VerificationHash, &a.ClipboardCount, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) ReserveClipboardSlot(ctx context.Context, id string, limit int) (int, error) {
	query :=
		`UPDATE accounts SET clipboard_count = clipboard_count + 1
		 WHERE id = $1 AND clipboard_count < $2
		 RETURNING clipboard_count
		 `

	var count int
	err := r.db.QueryRowContext(ctx, query, id, limit).Scan(&count)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}
