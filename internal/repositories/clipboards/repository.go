package clipboards

import (
	"context"

	"github.com/dmitrijs2005/uniclip/internal/models"
)

// Repository persists encrypted clipboards. Every read and write is scoped
// by the owning account.
type Repository interface {
	Create(ctx context.Context, clipboard *models.Clipboard) (*models.Clipboard, error)
	Update(ctx context.Context, accountID, id string, encryptedData []byte) (*models.Clipboard, error)
	GetByID(ctx context.Context, accountID, id string) (*models.Clipboard, error)
	GetLatest(ctx context.Context, accountID string) (*models.Clipboard, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.ClipboardSummary, error)
}
