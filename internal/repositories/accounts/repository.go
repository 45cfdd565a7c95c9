package accounts

import (
	"context"

	"github.com/dmitrijs2005/uniclip/internal/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// ReserveClipboardSlot increments the clipboard counter only while it is
	// below limit and returns the new value. common.ErrorNotFound means no
	// slot was available (or the account does not exist).
	ReserveClipboardSlot(ctx context.Context, id string, limit int) (int, error)
}
