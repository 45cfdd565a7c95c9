package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/uniclip/internal/codec"
	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/dbx"
	"github.com/dmitrijs2005/uniclip/internal/logging"
	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/dmitrijs2005/uniclip/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// ClipboardService stores clipboards as opaque encrypted blobs and keeps
// each account at or below common.MaxClipboardsPerAccount rows.
type ClipboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	locks       *keyedMutex

	// withTx runs fn in a transaction. Replaced in tests.
	withTx func(ctx context.Context, fn dbx.TxFunc) error
}

func NewClipboardService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ClipboardService {
	s := &ClipboardService{
		db:          db,
		repomanager: m,
		logger:      logger,
		locks:       newKeyedMutex(),
	}
	s.withTx = func(ctx context.Context, fn dbx.TxFunc) error {
		return dbx.WithTx(ctx, s.db, nil, fn)
	}
	return s
}

// Fetch returns the clipboard with the given id owned by accountID, or the
// most recently updated one when clipboardID is empty.
func (s *ClipboardService) Fetch(ctx context.Context, accountID, clipboardID string) (*models.Clipboard, error) {
	repo := s.repomanager.Clipboards(s.db)

	var (
		c   *models.Clipboard
		err error
	)
	if clipboardID == "" {
		c, err = repo.GetLatest(ctx, accountID)
	} else {
		if !validID(clipboardID) {
			return nil, common.ErrorNotFound
		}
		c, err = repo.GetByID(ctx, accountID, clipboardID)
	}

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "clipboard fetch failed", "account_id", accountID, "error", err)
		return nil, common.ErrorStorage
	}
	return c, nil
}

// Open fetches a clipboard and decrypts it with key.
func (s *ClipboardService) Open(ctx context.Context, accountID, clipboardID, key string) (*models.ClipboardContent, error) {
	if key == "" {
		return nil, common.ErrorPasswordRequired
	}

	c, err := s.Fetch(ctx, accountID, clipboardID)
	if err != nil {
		return nil, err
	}

	sections, err := codec.Decrypt(c.EncryptedData, key)
	if err != nil {
		s.logger.Warn(ctx, "clipboard decrypt failed", "account_id", accountID, "clipboard_id", c.ID)
		return nil, err
	}

	return &models.ClipboardContent{ID: c.ID, Sections: sections}, nil
}

// List returns the account's clipboards, newest first.
func (s *ClipboardService) List(ctx context.Context, accountID string) ([]models.ClipboardSummary, error) {
	list, err := s.repomanager.Clipboards(s.db).ListByAccount(ctx, accountID)
	if err != nil {
		s.logger.Error(ctx, "clipboard list failed", "account_id", accountID, "error", err)
		return nil, common.ErrorStorage
	}
	return list, nil
}

// Save encrypts sections with key and writes them. A non-empty existingID
// overwrites that clipboard; otherwise a new one is created if the account
// still has room.
func (s *ClipboardService) Save(ctx context.Context, accountID string, sections []models.TextSection, key, existingID string) (*models.SaveResult, error) {
	if n := len(sections); n == 0 || n > common.MaxSections {
		return nil, fmt.Errorf("%w: a clipboard holds 1 to %d sections, got %d", common.ErrorValidation, common.MaxSections, n)
	}
	if key == "" {
		return nil, common.ErrorPasswordRequired
	}
	if existingID != "" && !validID(existingID) {
		return nil, common.ErrorNotFound
	}

	unlock := s.locks.Lock(accountID)
	defer unlock()

	var result *models.SaveResult
	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := s.repomanager.Accounts(tx).GetByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorAccountNotFound
			}
			return err
		}

		if existingID == "" && acc.ClipboardCount >= common.MaxClipboardsPerAccount {
			return common.ErrorQuotaExceeded
		}

		blob, err := codec.Encrypt(sections, key)
		if err != nil {
			return err
		}

		clipboards := s.repomanager.Clipboards(tx)

		if existingID != "" {
			if _, err := clipboards.Update(ctx, accountID, existingID, blob); err != nil {
				return err
			}
			result = &models.SaveResult{ID: existingID}
			return nil
		}

		count, err := s.repomanager.Accounts(tx).ReserveClipboardSlot(ctx, accountID, common.MaxClipboardsPerAccount)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorQuotaExceeded
			}
			return err
		}

		c, err := clipboards.Create(ctx, &models.Clipboard{AccountID: accountID, EncryptedData: blob})
		if err != nil {
			return err
		}

		result = &models.SaveResult{ID: c.ID, Created: true, NewCount: &count}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, common.ErrorQuotaExceeded),
			errors.Is(err, common.ErrorNotFound),
			errors.Is(err, common.ErrorAccountNotFound),
			errors.Is(err, common.ErrorValidation):
			return nil, err
		}
		s.logger.Error(ctx, "clipboard save failed", "account_id", accountID, "error", err)
		return nil, common.ErrorStorage
	}

	if result.Created {
		s.logger.Info(ctx, "clipboard created", "account_id", accountID, "clipboard_id", result.ID, "count", *result.NewCount)
	}
	return result, nil
}

// validID rejects ids the uuid column would refuse to compare against.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
