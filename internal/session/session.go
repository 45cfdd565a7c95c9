// Package session holds the client-side state of a signed-in user: who they
// are, the key their clipboards are encrypted with, and the sections being
// edited. Operations report their outcome as a Status instead of an error.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/uniclip/internal/codec"
	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/cryptox"
	"github.com/dmitrijs2005/uniclip/internal/logging"
	"github.com/dmitrijs2005/uniclip/internal/models"
)

type Accounts interface {
	Register(ctx context.Context, username, email, password string) (*models.Account, error)
	Verify(ctx context.Context, identifier, secret string, secretIsHashed bool, loginType models.LoginType) (*models.Identity, error)
}

type Clipboards interface {
	Open(ctx context.Context, accountID, clipboardID, key string) (*models.ClipboardContent, error)
	List(ctx context.Context, accountID string) ([]models.ClipboardSummary, error)
	Save(ctx context.Context, accountID string, sections []models.TextSection, key, existingID string) (*models.SaveResult, error)
}

type TokenCache interface {
	Store(ctx context.Context, t models.SessionToken) error
	Load(ctx context.Context) (*models.SessionToken, error)
	Clear(ctx context.Context) error
}

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	// StateLocked: identity verified from a hashed credential, no key yet.
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateLocked:
		return "locked"
	default:
		return "anonymous"
	}
}

type Options struct {
	// RequestTimeout bounds every backend call. Zero disables it.
	RequestTimeout time.Duration
	// RememberPassword caches the plaintext password so a restored session
	// can decrypt without prompting. Otherwise only its hash is cached.
	RememberPassword bool
}

type Session struct {
	accounts   Accounts
	clipboards Clipboards
	cache      TokenCache
	logger     logging.Logger
	opts       Options

	mu         sync.Mutex
	state      State
	identity   models.Identity
	identifier string
	loginType  models.LoginType
	key        string
	sections   []models.TextSection
	selectedID string
	// unloaded is set when the latest clipboard could not be read at login;
	// saving then would create a duplicate instead of updating it.
	unloaded bool
}

func New(accounts Accounts, clipboards Clipboards, cache TokenCache, logger logging.Logger, opts Options) *Session {
	s := &Session{
		accounts:   accounts,
		clipboards: clipboards,
		cache:      cache,
		logger:     logger,
		opts:       opts,
	}
	s.reset()
	return s
}

// LoginTypeFor picks email lookup for identifiers that look like one.
func LoginTypeFor(identifier string) models.LoginType {
	if strings.Contains(identifier, "@") {
		return models.LoginTypeEmail
	}
	return models.LoginTypeUsername
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.RequestTimeout)
}

// reset returns to the anonymous state. Caller holds mu (or owns s).
func (s *Session) reset() {
	s.state = StateAnonymous
	s.identity = models.Identity{}
	s.identifier = ""
	s.loginType = ""
	s.key = ""
	s.sections = []models.TextSection{codec.NewSection()}
	s.selectedID = ""
	s.unloaded = false
}

// Register signs up and, on success, logs the new account in.
func (s *Session) Register(ctx context.Context, username, email, password string) Status {
	rctx, cancel := s.withTimeout(ctx)
	_, err := s.accounts.Register(rctx, username, email, password)
	cancel()

	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUsernameTaken):
			return failure(msgUsernameTaken)
		case errors.Is(err, common.ErrorEmailTaken):
			return failure(msgEmailTaken)
		case errors.Is(err, common.ErrorValidation):
			return failure(fmt.Sprintf("Please check your details (%s).", strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")))
		default:
			return failure(msgSignupFailed)
		}
	}

	return s.Login(ctx, strings.TrimSpace(username), password, models.LoginTypeUsername)
}

// Login verifies a plaintext password, caches the session token, and opens
// the most recently updated clipboard.
func (s *Session) Login(ctx context.Context, identifier, password string, loginType models.LoginType) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.verify(ctx, identifier, password, false, loginType)
	if err != nil {
		return st
	}

	token := models.SessionToken{
		Identifier:         identifier,
		Credential:         cryptox.VerificationHash(password),
		CredentialIsHashed: true,
		LoginType:          loginType,
	}
	if s.opts.RememberPassword {
		token.Credential = password
		token.CredentialIsHashed = false
	}

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.cache.Store(cctx, token); err != nil {
		s.logger.Warn(ctx, "session token not cached", "error", err)
	}

	return st
}

// Restore silently re-authenticates from the cached token. It reports
// StatusNone when there is nothing to restore.
func (s *Session) Restore(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	cctx, cancel := s.withTimeout(ctx)
	token, err := s.cache.Load(cctx)
	cancel()

	if err != nil {
		s.logger.Warn(ctx, "cached session discarded", "error", err)
		return Status{}
	}
	if token == nil {
		return Status{}
	}

	st, err := s.verify(ctx, token.Identifier, token.Credential, token.CredentialIsHashed, token.LoginType)
	if errors.Is(err, common.ErrorAccountNotFound) || errors.Is(err, common.ErrorIncorrectCredential) {
		cctx, cancel := s.withTimeout(ctx)
		defer cancel()
		if err := s.cache.Clear(cctx); err != nil {
			s.logger.Warn(ctx, "stale session token not cleared", "error", err)
		}
	}
	return st
}

// Unlock supplies the password for a session restored from a hash.
func (s *Session) Unlock(ctx context.Context, password string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateAnonymous:
		return failure(msgSignInFirst)
	case StateAuthenticated:
		return info("Your clipboard is already unlocked.")
	}

	identity, identifier, loginType := s.identity, s.identifier, s.loginType
	st, err := s.verify(ctx, identifier, password, false, loginType)
	if err != nil && !errors.Is(err, common.ErrorAccountNotFound) {
		// stay locked so the user can try again
		s.state = StateLocked
		s.identity, s.identifier, s.loginType = identity, identifier, loginType
	}
	return st
}

// verify runs the credential check and, on success, moves to the matching
// state and loads the latest clipboard. On failure the session is reset and
// the verifier's error is returned alongside the Status. Caller holds mu.
func (s *Session) verify(ctx context.Context, identifier, secret string, hashed bool, loginType models.LoginType) (Status, error) {
	vctx, cancel := s.withTimeout(ctx)
	id, err := s.accounts.Verify(vctx, identifier, secret, hashed, loginType)
	cancel()

	if err != nil {
		s.reset()

		switch {
		case errors.Is(err, common.ErrorAccountNotFound):
			if loginType == models.LoginTypeEmail {
				return failure(msgBadEmailLogin), err
			}
			return failure(msgAccountNotFound), err
		case errors.Is(err, common.ErrorIncorrectCredential):
			if loginType == models.LoginTypeEmail {
				return failure(msgBadEmailLogin), err
			}
			return failure(msgBadPassword), err
		default:
			s.logger.Error(ctx, "credential verification failed", "error", err)
			return failure(msgAccessFailed), err
		}
	}

	s.identity = *id
	s.identifier = identifier
	s.loginType = loginType
	s.selectedID = ""
	s.unloaded = false
	s.sections = []models.TextSection{codec.NewSection()}

	if id.NeedsPassword {
		s.state = StateLocked
		s.key = ""
		return info(msgPasswordNeeded), nil
	}

	s.state = StateAuthenticated
	s.key = id.EncryptionKey

	octx, cancel := s.withTimeout(ctx)
	defer cancel()
	content, err := s.clipboards.Open(octx, id.AccountID, "", s.key)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return info(msgWelcome), nil
		case errors.Is(err, common.ErrorDecryptionFailed):
			s.logger.Warn(ctx, "latest clipboard not decrypted", "account_id", id.AccountID)
			return info(msgWelcome), nil
		default:
			s.logger.Error(ctx, "latest clipboard not loaded", "account_id", id.AccountID, "error", err)
			s.unloaded = true
			return failure(msgAccessFailed), nil
		}
	}

	s.sections = content.Sections
	s.selectedID = content.ID
	return success(msgAuthenticated), nil
}

// Logout forgets the identity and the cached token.
func (s *Session) Logout(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.cache.Clear(cctx); err != nil {
		s.logger.Warn(ctx, "session token not cleared", "error", err)
	}
	return info(msgSignedOut)
}

// requireKey reports a Status when the session cannot read or write
// clipboards yet. Caller holds mu.
func (s *Session) requireKey() (Status, bool) {
	switch s.state {
	case StateAuthenticated:
		return Status{}, true
	case StateLocked:
		return info(msgPasswordNeeded), false
	default:
		return failure(msgSignInFirst), false
	}
}

// Refresh reloads the selected clipboard, or the latest when none is
// selected.
func (s *Session) Refresh(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}

	octx, cancel := s.withTimeout(ctx)
	defer cancel()
	content, err := s.clipboards.Open(octx, s.identity.AccountID, s.selectedID, s.key)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return info(msgNoData)
		case errors.Is(err, common.ErrorDecryptionFailed):
			return failure(msgUndecryptable)
		default:
			return failure(msgRefreshFailed)
		}
	}

	s.sections = content.Sections
	s.selectedID = content.ID
	s.unloaded = false
	return success(msgRefreshed)
}

// Select switches to another clipboard of the account.
func (s *Session) Select(ctx context.Context, clipboardID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}
	if clipboardID == s.selectedID {
		return Status{}
	}

	octx, cancel := s.withTimeout(ctx)
	defer cancel()
	content, err := s.clipboards.Open(octx, s.identity.AccountID, clipboardID, s.key)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return failure(msgNoClipboard)
		case errors.Is(err, common.ErrorDecryptionFailed):
			return failure(msgUndecryptable)
		default:
			return failure(msgLoadFailed)
		}
	}

	s.sections = content.Sections
	s.selectedID = content.ID
	s.unloaded = false
	return success(msgLoaded)
}

// Clipboards lists the account's clipboards, newest first.
func (s *Session) Clipboards(ctx context.Context) ([]models.ClipboardSummary, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateAnonymous {
		return nil, failure(msgSignInFirst)
	}

	lctx, cancel := s.withTimeout(ctx)
	defer cancel()
	list, err := s.clipboards.List(lctx, s.identity.AccountID)
	if err != nil {
		return nil, failure(msgListFailed)
	}
	return list, Status{}
}

// Editable reports whether section edits are accepted, with the Status to
// show when they are not.
func (s *Session) Editable() (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requireKey()
}

// NewClipboard starts an unsaved clipboard with one empty section.
func (s *Session) NewClipboard() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}
	s.sections = []models.TextSection{codec.NewSection()}
	s.selectedID = ""
	s.unloaded = false
	return info(msgNewClipboard)
}

func (s *Session) AddSection() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}

	if len(s.sections) >= common.MaxSections {
		return failure(fmt.Sprintf(msgMaxSections, common.MaxSections))
	}
	s.sections = append(s.sections, codec.NewSection())
	return Status{}
}

// RemoveSection drops the section at index i (zero-based).
func (s *Session) RemoveSection(i int) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}

	if i < 0 || i >= len(s.sections) {
		return failure(fmt.Sprintf(msgNoSection, i+1))
	}
	if len(s.sections) <= 1 {
		return failure(msgMinSections)
	}
	s.sections = append(s.sections[:i:i], s.sections[i+1:]...)
	return Status{}
}

// SetContent replaces the text of section i (zero-based).
func (s *Session) SetContent(i int, content string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}

	if i < 0 || i >= len(s.sections) {
		return failure(fmt.Sprintf(msgNoSection, i+1))
	}
	s.sections[i].Content = content
	return Status{}
}

// ClearAll empties every section but keeps the layout.
func (s *Session) ClearAll() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}

	for i := range s.sections {
		s.sections[i].Content = ""
	}
	return Status{}
}

// Save writes the current sections to the selected clipboard, or creates a
// new one when none is selected.
func (s *Session) Save(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.requireKey(); !ok {
		return st
	}
	if s.unloaded {
		return failure(msgSaveUnloaded)
	}

	sctx, cancel := s.withTimeout(ctx)
	defer cancel()
	res, err := s.clipboards.Save(sctx, s.identity.AccountID, s.sections, s.key, s.selectedID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorQuotaExceeded):
			s.identity.ClipboardCount = common.MaxClipboardsPerAccount
			return failure(msgQuota)
		case errors.Is(err, common.ErrorNotFound):
			return failure(msgSaveMissing)
		default:
			return failure(msgSaveFailed)
		}
	}

	s.selectedID = res.ID
	if res.NewCount != nil {
		s.identity.ClipboardCount = *res.NewCount
	}
	return success(msgSaved)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.Username
}

// Sections returns a copy of the sections being edited.
func (s *Session) Sections() []models.TextSection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.TextSection(nil), s.sections...)
}

func (s *Session) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID
}

func (s *Session) ClipboardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity.ClipboardCount
}

// AtQuota reports whether saving a new clipboard would be refused.
func (s *Session) AtQuota() bool {
	return s.ClipboardCount() >= common.MaxClipboardsPerAccount
}
