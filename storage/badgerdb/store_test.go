package badgerdb_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/roster"
	"github.com/jrsteele09/go-yoga-server/sessions"
	"github.com/jrsteele09/go-yoga-server/storage/badgerdb"
	"github.com/jrsteele09/go-yoga-server/teachers"
	"github.com/jrsteele09/go-yoga-server/users"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *badgerdb.Store {
	t.Helper()
	store, err := badgerdb.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).Users()

	created, err := repo.Create(ctx, &users.User{
		Email:        "yogi@studio.com",
		FirstName:    "Yogi",
		LastName:     "Bear",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	t.Run("lookups", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "hash", byID.PasswordHash)

		byEmail, err := repo.GetByEmail(ctx, "yogi@studio.com")
		require.NoError(t, err)
		require.Equal(t, created.ID, byEmail.ID)

		exists, err := repo.ExistsByEmail(ctx, "yogi@studio.com")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "nobody@studio.com")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, &users.User{Email: "yogi@studio.com"})
		require.ErrorIs(t, err, errors.ErrEmailTaken)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		require.ErrorIs(t, err, errors.ErrNotFound)

		_, err = repo.GetByEmail(ctx, "nobody@studio.com")
		require.ErrorIs(t, err, errors.ErrNotFound)

		require.ErrorIs(t, repo.Delete(ctx, 999), errors.ErrNotFound)
	})

	t.Run("delete frees the email", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, created.ID))
		_, err := repo.GetByID(ctx, created.ID)
		require.ErrorIs(t, err, errors.ErrNotFound)

		again, err := repo.Create(ctx, &users.User{Email: "yogi@studio.com"})
		require.NoError(t, err)
		require.NotEqual(t, created.ID, again.ID)
	})
}

func TestTeacherRepo(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).Teachers()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	for _, name := range []string{"Margot", "Hélène"} {
		_, err := repo.Create(ctx, &teachers.Teacher{FirstName: name, LastName: "Teacher"})
		require.NoError(t, err)
	}

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Margot", list[0].FirstName)

	got, err := repo.GetByID(ctx, list[1].ID)
	require.NoError(t, err)
	require.Equal(t, "Hélène", got.FirstName)

	_, err = repo.GetByID(ctx, 999)
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSessionRepo_Versioning(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).Sessions()

	created, err := repo.Create(ctx, &sessions.Session{
		Name:      "Morning flow",
		Date:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		TeacherID: 1,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.Version)

	first := created.Clone()
	first.AddParticipant(2)
	saved, err := repo.Save(ctx, first)
	require.NoError(t, err)
	require.Equal(t, int64(2), saved.Version)

	// a writer holding the old version loses
	stale := created.Clone()
	stale.AddParticipant(3)
	_, err = repo.Save(ctx, stale)
	require.ErrorIs(t, err, errors.ErrStaleVersion)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, got.Users)
	require.Equal(t, int64(2), got.Version)

	_, err = repo.Save(ctx, &sessions.Session{ID: 999, Version: 1})
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestSessionRepo_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t).Sessions()

	for _, name := range []string{"one", "two", "three"} {
		_, err := repo.Create(ctx, &sessions.Session{Name: name})
		require.NoError(t, err)
	}

	require.NoError(t, repo.Delete(ctx, 2))
	require.ErrorIs(t, repo.Delete(ctx, 2), errors.ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "one", list[0].Name)
	require.Equal(t, "three", list[1].Name)
}

func TestUserDeleteStripsRosters(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	u, err := store.Users().Create(ctx, &users.User{Email: "yogi@studio.com"})
	require.NoError(t, err)
	s, err := store.Sessions().Create(ctx, &sessions.Session{Name: "flow", Users: []int64{u.ID}})
	require.NoError(t, err)

	require.NoError(t, store.Users().Delete(ctx, u.ID))

	got, err := store.Sessions().GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.Empty(t, got.Users)
	require.Equal(t, s.Version+1, got.Version)
}

func TestRosterOnBadger_ConcurrentDistinctUsers(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	const n = 25

	session, err := store.Sessions().Create(ctx, &sessions.Session{Name: "busy class"})
	require.NoError(t, err)

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		u, err := store.Users().Create(ctx, &users.User{Email: string(rune('a'+i)) + "@studio.com"})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	manager, err := roster.NewManager(store.Sessions(), store.Users())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			errs <- manager.AddParticipant(ctx, session.ID, userID)
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, ids, got.Users)
	require.Equal(t, int64(n+1), got.Version)
}
