package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	records := []*Record{
		{RunID: "run-1", Wallet: "wallet-a", Action: "check-in", Outcome: OutcomeOK, Detail: "day 3", CreatedAt: base},
		{RunID: "run-1", Wallet: "wallet-a", Action: "milestone-claim", Outcome: OutcomeSkipped, Detail: "stage 2 not reached", CreatedAt: base.Add(time.Minute)},
		{RunID: "run-2", Wallet: "wallet-b", Action: "box-open", TxHash: "sig123", Outcome: OutcomeFailed, Detail: "timeout", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range records {
		require.NoError(t, store.Append(r))
		require.NotZero(t, r.ID)
	}

	got, err := store.Recent("wallet-a", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	require.Equal(t, "milestone-claim", got[0].Action)
	require.Equal(t, "check-in", got[1].Action)
	require.Equal(t, OutcomeOK, got[1].Outcome)
	require.Equal(t, "day 3", got[1].Detail)

	got, err = store.Recent("wallet-b", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "sig123", got[0].TxHash)
}

func TestStore_RecentHonorsLimit(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(&Record{
			RunID: "run-1", Wallet: "wallet-a", Action: "check-in",
			Outcome: OutcomeOK, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := store.Recent("wallet-a", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestStore_AppendSetsCreatedAt(t *testing.T) {
	store := openTestStore(t)

	r := &Record{RunID: "run-1", Wallet: "wallet-a", Action: "login", Outcome: OutcomeFailed}
	require.NoError(t, store.Append(r))
	require.False(t, r.CreatedAt.IsZero())
}

func TestStore_RecentUnknownWallet(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Recent("wallet-x", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(&Record{RunID: "run-1", Wallet: "w", Action: "login", Outcome: OutcomeOK}))
}
