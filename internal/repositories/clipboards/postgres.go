package clipboards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/dbx"
	"github.com/dmitrijs2005/uniclip/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Clipboard) (*models.Clipboard, error) {
	query :=
		`INSERT INTO clipboards (account_id, encrypted_data)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, c.AccountID, c.EncryptedData).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, accountID, id string, encryptedData []byte) (*models.Clipboard, error) {
	query :=
		`UPDATE clipboards SET encrypted_data = $1, updated_at = NOW()
		 WHERE id = $2 AND account_id = $3
		 RETURNING created_at, updated_at
		 `

	c := &models.Clipboard{ID: id, AccountID: accountID, EncryptedData: encryptedData}
	err := r.db.QueryRowContext(ctx, query, encryptedData, id, accountID).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, accountID, id string) (*models.Clipboard, error) {
	query :=
		`SELECT id, account_id, encrypted_data, created_at, updated_at FROM clipboards
		 WHERE id = $1 AND account_id = $2
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, accountID))
}

func (r *PostgresRepository) GetLatest(ctx context.Context, accountID string) (*models.Clipboard, error) {
	query :=
		`SELECT id, account_id, encrypted_data, created_at, updated_at FROM clipboards
		 WHERE account_id = $1
		 ORDER BY updated_at DESC
		 LIMIT 1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, accountID))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Clipboard, error) {
	c := &models.Clipboard{}
	err := row.Scan(&c.ID, &c.AccountID, &c.EncryptedData, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]models.ClipboardSummary, error) {
	query :=
		`SELECT id, created_at, updated_at FROM clipboards
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ClipboardSummary, 0)
	for rows.Next() {
		var s models.ClipboardSummary
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
