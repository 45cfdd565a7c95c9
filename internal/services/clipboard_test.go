package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/uniclip/internal/codec"
	"github.com/dmitrijs2005/uniclip/internal/common"
	"github.com/dmitrijs2005/uniclip/internal/cryptox"
	"github.com/dmitrijs2005/uniclip/internal/dbx"
	"github.com/dmitrijs2005/uniclip/internal/logging"
	"github.com/dmitrijs2005/uniclip/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const key = "p@ss1"

// newClipboardService returns a service whose transactions run straight
// against the in-memory fakes.
func newClipboardService(t *testing.T) (*ClipboardService, *memStore, *models.Account) {
	t.Helper()
	st := newMemStore()
	acc := st.addAccount("alice", "alice@example.com", cryptox.VerificationHash(key))

	s := NewClipboardService(nil, &fakeRepoManager{st}, logging.Nop())
	s.withTx = func(ctx context.Context, fn dbx.TxFunc) error { return fn(ctx, nil) }
	return s, st, acc
}

func texts(cs ...string) []models.TextSection {
	out := make([]models.TextSection, len(cs))
	for i, c := range cs {
		out[i] = codec.NewSection()
		out[i].Content = c
	}
	return out
}

func contentsOf(sections []models.TextSection) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Content
	}
	return out
}

func TestSave_CreatesUntilQuota(t *testing.T) {
	s, st, acc := newClipboardService(t)
	ctx := context.Background()

	r1, err := s.Save(ctx, acc.ID, texts("hello"), key, "")
	require.NoError(t, err)
	assert.True(t, r1.Created)
	require.NotNil(t, r1.NewCount)
	assert.Equal(t, 1, *r1.NewCount)

	r2, err := s.Save(ctx, acc.ID, texts("a", "b"), key, "")
	require.NoError(t, err)
	assert.Equal(t, 2, *r2.NewCount)
	assert.NotEqual(t, r1.ID, r2.ID)

	_, err = s.Save(ctx, acc.ID, texts("x"), key, "")
	assert.ErrorIs(t, err, common.ErrorQuotaExceeded)

	assert.Equal(t, 2, st.account(acc.ID).ClipboardCount)
	assert.Equal(t, 2, st.countRows(acc.ID))
}

func TestSave_UpdateAtQuota(t *testing.T) {
	s, st, acc := newClipboardService(t)
	ctx := context.Background()

	first, err := s.Save(ctx, acc.ID, texts("one"), key, "")
	require.NoError(t, err)
	_, err = s.Save(ctx, acc.ID, texts("two"), key, "")
	require.NoError(t, err)

	r, err := s.Save(ctx, acc.ID, texts("one, edited", "more"), key, first.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.SaveResult{ID: first.ID}, r)
	assert.Equal(t, 2, st.account(acc.ID).ClipboardCount)

	got, err := s.Open(ctx, acc.ID, first.ID, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"one, edited", "more"}, contentsOf(got.Sections))
}

func TestSave_ExistingIDNotOwned(t *testing.T) {
	s, st, acc := newClipboardService(t)
	ctx := context.Background()
	other := st.addAccount("bob", "bob@example.com", "h")

	r, err := s.Save(ctx, other.ID, texts("bob's"), key, "")
	require.NoError(t, err)

	_, err = s.Save(ctx, acc.ID, texts("hijack"), key, r.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Save(ctx, acc.ID, texts("x"), key, uuid.NewString())
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Save(ctx, acc.ID, texts("x"), key, "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSave_Validation(t *testing.T) {
	s, _, acc := newClipboardService(t)
	ctx := context.Background()

	_, err := s.Save(ctx, acc.ID, nil, key, "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Save(ctx, acc.ID, texts("1", "2", "3", "4", "5"), key, "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Save(ctx, acc.ID, texts("x"), "", "")
	assert.ErrorIs(t, err, common.ErrorPasswordRequired)
}

func TestSave_UnknownAccount(t *testing.T) {
	s, _, _ := newClipboardService(t)

	_, err := s.Save(context.Background(), uuid.NewString(), texts("x"), key, "")
	assert.ErrorIs(t, err, common.ErrorAccountNotFound)
}

func TestSave_StorageErrorsAreNormalized(t *testing.T) {
	for _, method := range []string{"Accounts.Get", "Accounts.ReserveClipboardSlot", "Clipboards.Create"} {
		t.Run(method, func(t *testing.T) {
			s, st, acc := newClipboardService(t)
			st.errs[method] = errors.New("db error: broken pipe")

			_, err := s.Save(context.Background(), acc.ID, texts("x"), key, "")
			assert.ErrorIs(t, err, common.ErrorStorage)
			assert.NotContains(t, err.Error(), "broken pipe")
		})
	}
}

func TestSave_ConcurrentCreatesRespectQuota(t *testing.T) {
	s, st, acc := newClipboardService(t)
	ctx := context.Background()

	const workers = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(ctx, acc.ID, texts("race"), key, "")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, common.ErrorQuotaExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, common.MaxClipboardsPerAccount, created)
	assert.Equal(t, workers-common.MaxClipboardsPerAccount, rejected)
	assert.Equal(t, common.MaxClipboardsPerAccount, st.account(acc.ID).ClipboardCount)
	assert.Equal(t, common.MaxClipboardsPerAccount, st.countRows(acc.ID))
	assert.Equal(t, 0, s.locks.size())
}

func TestSave_ReservationLostToAnotherWriter(t *testing.T) {
	s, st, acc := newClipboardService(t)

	// The account read still says 1, but another writer has already taken
	// the last slot by the time the conditional update runs.
	st.mu.Lock()
	st.accounts[acc.ID].ClipboardCount = 2
	st.staleCounts[acc.ID] = 1
	st.mu.Unlock()

	_, err := s.Save(context.Background(), acc.ID, texts("x"), key, "")
	assert.ErrorIs(t, err, common.ErrorQuotaExceeded)
	assert.Equal(t, 0, st.countRows(acc.ID))
	assert.Equal(t, 2, st.account(acc.ID).ClipboardCount)
}

func TestOpen(t *testing.T) {
	s, _, acc := newClipboardService(t)
	ctx := context.Background()

	r1, err := s.Save(ctx, acc.ID, texts("older"), key, "")
	require.NoError(t, err)
	r2, err := s.Save(ctx, acc.ID, texts("newer", "two"), key, "")
	require.NoError(t, err)

	latest, err := s.Open(ctx, acc.ID, "", key)
	require.NoError(t, err)
	assert.Equal(t, r2.ID, latest.ID)
	assert.Equal(t, []string{"newer", "two"}, contentsOf(latest.Sections))

	// touching the older clipboard makes it the latest
	_, err = s.Save(ctx, acc.ID, texts("older, touched"), key, r1.ID)
	require.NoError(t, err)

	latest, err = s.Open(ctx, acc.ID, "", key)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, latest.ID)

	byID, err := s.Open(ctx, acc.ID, r2.ID, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "two"}, contentsOf(byID.Sections))
}

func TestOpen_Errors(t *testing.T) {
	s, st, acc := newClipboardService(t)
	ctx := context.Background()

	_, err := s.Open(ctx, acc.ID, "", key)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	r, err := s.Save(ctx, acc.ID, texts("secret"), key, "")
	require.NoError(t, err)

	_, err = s.Open(ctx, acc.ID, r.ID, "wrong")
	assert.ErrorIs(t, err, common.ErrorDecryptionFailed)

	_, err = s.Open(ctx, acc.ID, r.ID, "")
	assert.ErrorIs(t, err, common.ErrorPasswordRequired)

	_, err = s.Open(ctx, acc.ID, "garbage", key)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	st.errs["Clipboards.Get"] = errors.New("db down")
	_, err = s.Open(ctx, acc.ID, r.ID, key)
	assert.ErrorIs(t, err, common.ErrorStorage)
}

func TestFetch_ScopedToOwner(t *testing.T) {
	s, st, acc := newClipboardService(t)
	ctx := context.Background()
	other := st.addAccount("bob", "bob@example.com", "h")

	r, err := s.Save(ctx, other.ID, texts("bob's"), key, "")
	require.NoError(t, err)

	_, err = s.Fetch(ctx, acc.ID, r.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	c, err := s.Fetch(ctx, other.ID, r.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, c.EncryptedData)
}

func TestList(t *testing.T) {
	s, st, acc := newClipboardService(t)
	ctx := context.Background()

	empty, err := s.List(ctx, acc.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	r1, err := s.Save(ctx, acc.ID, texts("a"), key, "")
	require.NoError(t, err)
	r2, err := s.Save(ctx, acc.ID, texts("b"), key, "")
	require.NoError(t, err)

	list, err := s.List(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID)
	assert.Equal(t, r1.ID, list[1].ID)

	st.errs["Clipboards.List"] = errors.New("db down")
	_, err = s.List(ctx, acc.ID)
	assert.ErrorIs(t, err, common.ErrorStorage)
}

func TestSave_TransactionCommitAndRollback(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectCommit()

		st := newMemStore()
		acc := st.addAccount("alice", "alice@example.com", "h")
		s := NewClipboardService(db, &fakeRepoManager{st}, logging.Nop())

		_, err = s.Save(context.Background(), acc.ID, texts("x"), key, "")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on quota", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		st := newMemStore()
		acc := st.addAccount("alice", "alice@example.com", "h")
		st.accounts[acc.ID].ClipboardCount = 2
		s := NewClipboardService(db, &fakeRepoManager{st}, logging.Nop())

		_, err = s.Save(context.Background(), acc.ID, texts("x"), key, "")
		assert.ErrorIs(t, err, common.ErrorQuotaExceeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		st := newMemStore()
		acc := st.addAccount("alice", "alice@example.com", "h")
		s := NewClipboardService(db, &fakeRepoManager{st}, logging.Nop())

		_, err = s.Save(context.Background(), acc.ID, texts("x"), key, "")
		assert.ErrorIs(t, err, common.ErrorStorage)
	})
}
