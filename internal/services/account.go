// Package services holds uniclip's business logic. AccountService signs
// users up and verifies credentials; ClipboardService reads and writes
// encrypted clipboards under the per-account quota.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/cryptox"
	"github.com/dmitrijs2005/uniclip/internal/logging"
	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/dmitrijs2005/uniclip/internal/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// registration carries the sign-up form through the validator.
type registration struct {
	Username string `validate:"required,min=3,max=32,alphanum"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required"`
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	validate    *validator.Validate
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		logger:      logger,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register creates an account with a zero clipboard count. The password is
// stored only as its verification hash.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	form := registration{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorValidation, describeValidation(err))
	}

	acc := &models.Account{
		Username:         form.Username,
		Email:            form.Email,
		VerificationHash: cryptox.VerificationHash(form.Password),
	}

	created, err := s.repomanager.Accounts(s.db).Create(ctx, acc)
	if err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) || errors.Is(err, common.ErrorEmailTaken) {
			return nil, err
		}
		s.logger.Error(ctx, "account create failed", "username", form.Username, "error", err)
		return nil, common.ErrorStorage
	}

	s.logger.Info(ctx, "account registered", "account_id", created.ID)
	return created, nil
}

// Verify checks a credential against the stored verification hash. When
// secretIsHashed is false the secret is the plaintext password and becomes
// the identity's encryption key; otherwise the identity is locked until the
// password is supplied.
func (s *AccountService) Verify(ctx context.Context, identifier, secret string, secretIsHashed bool, loginType models.LoginType) (*models.Identity, error) {
	if !loginType.Valid() {
		return nil, fmt.Errorf("%w: unknown login type %q", common.ErrorValidation, loginType)
	}

	repo := s.repomanager.Accounts(s.db)

	var (
		acc *models.Account
		err error
	)
	switch loginType {
	case models.LoginTypeEmail:
		acc, err = repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(identifier)))
	default:
		acc, err = repo.GetByUsername(ctx, strings.TrimSpace(identifier))
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorAccountNotFound
		}
		s.logger.Error(ctx, "account lookup failed", "login_type", string(loginType), "error", err)
		return nil, common.ErrorStorage
	}

	candidate := secret
	if !secretIsHashed {
		candidate = cryptox.VerificationHash(secret)
	}
	if !checkHash(acc.VerificationHash, candidate) {
		return nil, common.ErrorIncorrectCredential
	}

	id := &models.Identity{
		AccountID:      acc.ID,
		Username:       acc.Username,
		ClipboardCount: acc.ClipboardCount,
	}
	if secretIsHashed {
		id.NeedsPassword = true
	} else {
		id.EncryptionKey = secret
	}
	return id, nil
}

func checkHash(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
