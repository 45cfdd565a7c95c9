package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/uniclip/internal/codec"
	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/cryptox"
	"github.com/dmitrijs2005/uniclip/internal/models"
)

type fakeAccounts struct {
	byName    map[string]*models.Account
	verifyErr error
	sawCtx    func(ctx context.Context)
	seq       int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byName: make(map[string]*models.Account)}
}

func (f *fakeAccounts) add(username, email, password string) *models.Account {
	f.seq++
	a := &models.Account{ID: fmt.Sprintf("acc-%d", f.seq), Username: username, Email: email, VerificationHash: cryptox.VerificationHash(password)}
	f.byName[username] = a
	return a
}

func (f *fakeAccounts) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username failed required", common.ErrorValidation)
	}
	for _, a := range f.byName {
		if a.Username == username {
			return nil, common.ErrorUsernameTaken
		}
		if a.Email == email {
			return nil, common.ErrorEmailTaken
		}
	}
	return f.add(username, email, password), nil
}

func (f *fakeAccounts) Verify(ctx context.Context, identifier, secret string, hashed bool, loginType models.LoginType) (*models.Identity, error) {
	if f.sawCtx != nil {
		f.sawCtx(ctx)
	}
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}

	var acc *models.Account
	for _, a := range f.byName {
		if (loginType == models.LoginTypeEmail && a.Email == identifier) || (loginType == models.LoginTypeUsername && a.Username == identifier) {
			acc = a
		}
	}
	if acc == nil {
		return nil, common.ErrorAccountNotFound
	}

	candidate := secret
	if !hashed {
		candidate = cryptox.VerificationHash(secret)
	}
	if candidate != acc.VerificationHash {
		return nil, common.ErrorIncorrectCredential
	}

	id := &models.Identity{AccountID: acc.ID, Username: acc.Username, ClipboardCount: acc.ClipboardCount}
	if hashed {
		id.NeedsPassword = true
	} else {
		id.EncryptionKey = secret
	}
	return id, nil
}

type storedClipboard struct {
	id        string
	accountID string
	blob      []byte
	touched   int
}

// fakeClipboards encrypts with the real codec so that keys matter.
type fakeClipboards struct {
	mu      sync.Mutex
	rows    []*storedClipboard
	counts  map[string]int
	seq     int
	clock   int
	saveErr error
	listErr error
	openErr error
}

func newFakeClipboards() *fakeClipboards {
	return &fakeClipboards{counts: make(map[string]int)}
}

func (f *fakeClipboards) seed(accountID, key string, contents ...string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, err := codec.Encrypt(sectionsOf(contents...), key)
	if err != nil {
		panic(err)
	}
	f.seq++
	f.clock++
	row := &storedClipboard{id: fmt.Sprintf("clip-%d", f.seq), accountID: accountID, blob: blob, touched: f.clock}
	f.rows = append(f.rows, row)
	f.counts[accountID]++
	return row.id
}

func (f *fakeClipboards) find(accountID, id string) *storedClipboard {
	var latest *storedClipboard
	for _, r := range f.rows {
		if r.accountID != accountID {
			continue
		}
		if id != "" && r.id == id {
			return r
		}
		if id == "" && (latest == nil || r.touched > latest.touched) {
			latest = r
		}
	}
	return latest
}

func (f *fakeClipboards) Open(ctx context.Context, accountID, id, key string) (*models.ClipboardContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == "" {
		return nil, common.ErrorPasswordRequired
	}
	if f.openErr != nil {
		return nil, f.openErr
	}
	r := f.find(accountID, id)
	if r == nil {
		return nil, common.ErrorNotFound
	}
	sections, err := codec.Decrypt(r.blob, key)
	if err != nil {
		return nil, err
	}
	return &models.ClipboardContent{ID: r.id, Sections: sections}, nil
}

func (f *fakeClipboards) List(ctx context.Context, accountID string) ([]models.ClipboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.ClipboardSummary
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].accountID == accountID {
			out = append(out, models.ClipboardSummary{ID: f.rows[i].id})
		}
	}
	return out, nil
}

func (f *fakeClipboards) Save(ctx context.Context, accountID string, sections []models.TextSection, key, existingID string) (*models.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if existingID == "" && f.counts[accountID] >= common.MaxClipboardsPerAccount {
		return nil, common.ErrorQuotaExceeded
	}
	blob, err := codec.Encrypt(sections, key)
	if err != nil {
		return nil, err
	}
	f.clock++

	if existingID != "" {
		for _, r := range f.rows {
			if r.id == existingID && r.accountID == accountID {
				r.blob, r.touched = blob, f.clock
				return &models.SaveResult{ID: r.id}, nil
			}
		}
		return nil, common.ErrorNotFound
	}

	f.seq++
	row := &storedClipboard{id: fmt.Sprintf("clip-%d", f.seq), accountID: accountID, blob: blob, touched: f.clock}
	f.rows = append(f.rows, row)
	f.counts[accountID]++
	n := f.counts[accountID]
	return &models.SaveResult{ID: row.id, Created: true, NewCount: &n}, nil
}

type fakeCache struct {
	token    *models.SessionToken
	loadErr  error
	storeErr error
	clears   int
}

func (f *fakeCache) Store(ctx context.Context, t models.SessionToken) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.token = &t
	return nil
}

func (f *fakeCache) Load(ctx context.Context) (*models.SessionToken, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.token, nil
}

func (f *fakeCache) Clear(ctx context.Context) error {
	f.clears++
	f.token = nil
	return nil
}

var errBackend = errors.New("backend unavailable")

func sectionsOf(cs ...string) []models.TextSection {
	out := make([]models.TextSection, len(cs))
	for i, c := range cs {
		out[i] = codec.NewSection()
		out[i].Content = c
	}
	return out
}

func contents(sections []models.TextSection) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Content
	}
	return out
}
