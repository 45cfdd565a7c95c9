package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/dbx"
	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/dmitrijs2005/uniclip/internal/repositories/accounts"
	"github.com/dmitrijs2005/uniclip/internal/repositories/clipboards"
	"github.com/google/uuid"
)

// memStore backs both fake repositories so that the account counter and
// the clipboard rows can be checked against each other.
type memStore struct {
	mu         sync.Mutex
	accounts   map[string]*models.Account
	clipboards map[string]*models.Clipboard
	clock      time.Time

	// errs forces a method (by name) to fail.
	errs map[string]error
	// staleCounts overrides the clipboard count seen by account reads.
	staleCounts map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    make(map[string]*models.Account),
		clipboards:  make(map[string]*models.Clipboard),
		clock:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		errs:        make(map[string]error),
		staleCounts: make(map[string]int),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) fail(method string) error {
	return m.errs[method]
}

func (m *memStore) addAccount(username, email, hash string) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &models.Account{ID: uuid.NewString(), Username: username, Email: email, VerificationHash: hash, CreatedAt: m.tick()}
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) countRows(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.clipboards {
		if c.AccountID == accountID {
			n++
		}
	}
	return n
}

func (m *memStore) account(id string) models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.accounts[id]
}

type fakeAccounts struct{ s *memStore }

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Accounts.Create"); err != nil {
		return nil, err
	}
	for _, x := range f.s.accounts {
		if x.Username == a.Username {
			return nil, common.ErrorUsernameTaken
		}
		if x.Email == a.Email {
			return nil, common.ErrorEmailTaken
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = f.s.tick()
	cp := *a
	f.s.accounts[a.ID] = &cp
	return a, nil
}

func (f *fakeAccounts) find(match func(*models.Account) bool) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Accounts.Get"); err != nil {
		return nil, err
	}
	for _, a := range f.s.accounts {
		if match(a) {
			cp := *a
			if n, ok := f.s.staleCounts[a.ID]; ok {
				cp.ClipboardCount = n
			}
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.ID == id })
}

func (f *fakeAccounts) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.Username == username })
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.Email == email })
}

func (f *fakeAccounts) ReserveClipboardSlot(ctx context.Context, id string, limit int) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Accounts.ReserveClipboardSlot"); err != nil {
		return 0, err
	}
	a, ok := f.s.accounts[id]
	if !ok || a.ClipboardCount >= limit {
		return 0, common.ErrorNotFound
	}
	a.ClipboardCount++
	return a.ClipboardCount, nil
}

type fakeClipboards struct{ s *memStore }

func (f *fakeClipboards) Create(ctx context.Context, c *models.Clipboard) (*models.Clipboard, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Clipboards.Create"); err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = f.s.tick()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.s.clipboards[c.ID] = &cp
	return c, nil
}

func (f *fakeClipboards) Update(ctx context.Context, accountID, id string, data []byte) (*models.Clipboard, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Clipboards.Update"); err != nil {
		return nil, err
	}
	c, ok := f.s.clipboards[id]
	if !ok || c.AccountID != accountID {
		return nil, common.ErrorNotFound
	}
	c.EncryptedData = data
	c.UpdatedAt = f.s.tick()
	cp := *c
	return &cp, nil
}

func (f *fakeClipboards) GetByID(ctx context.Context, accountID, id string) (*models.Clipboard, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Clipboards.Get"); err != nil {
		return nil, err
	}
	c, ok := f.s.clipboards[id]
	if !ok || c.AccountID != accountID {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClipboards) owned(accountID string) []*models.Clipboard {
	var out []*models.Clipboard
	for _, c := range f.s.clipboards {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeClipboards) GetLatest(ctx context.Context, accountID string) (*models.Clipboard, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Clipboards.Get"); err != nil {
		return nil, err
	}
	rows := f.owned(accountID)
	if len(rows) == 0 {
		return nil, common.ErrorNotFound
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UpdatedAt.After(rows[j].UpdatedAt) })
	cp := *rows[0]
	return &cp, nil
}

func (f *fakeClipboards) ListByAccount(ctx context.Context, accountID string) ([]models.ClipboardSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.fail("Clipboards.List"); err != nil {
		return nil, err
	}
	rows := f.owned(accountID)
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	out := make([]models.ClipboardSummary, 0, len(rows))
	for _, c := range rows {
		out = append(out, models.ClipboardSummary{ID: c.ID, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt})
	}
	return out, nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository     { return &fakeAccounts{m.s} }
func (m *fakeRepoManager) Clipboards(db dbx.DBTX) clipboards.Repository { return &fakeClipboards{m.s} }
