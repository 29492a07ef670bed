package roster_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/roster"
	"github.com/jrsteele09/go-yoga-server/sessions"
	fakesessionrepo "github.com/jrsteele09/go-yoga-server/sessions/repofakes"
	"github.com/jrsteele09/go-yoga-server/users"
	fakeuserrepo "github.com/jrsteele09/go-yoga-server/users/repofake"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) GetByID(ctx context.Context, id int64) (*sessions.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*sessions.Session)
	return s, args.Error(1)
}

func (m *mockSessionStore) Save(ctx context.Context, session *sessions.Session) (*sessions.Session, error) {
	args := m.Called(ctx, session)
	s, _ := args.Get(0).(*sessions.Session)
	return s, args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*users.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*users.User)
	return u, args.Error(1)
}

func newMockManager(t *testing.T) (*roster.Manager, *mockSessionStore, *mockUserStore) {
	t.Helper()
	sessionStore := &mockSessionStore{}
	userStore := &mockUserStore{}
	manager, err := roster.NewManager(sessionStore, userStore)
	require.NoError(t, err)
	return manager, sessionStore, userStore
}

func TestAddParticipant_Mocked(t *testing.T) {
	ctx := context.Background()

	t.Run("adds user and saves once", func(t *testing.T) {
		manager, sessionStore, userStore := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(1)).Return(&sessions.Session{ID: 1, Version: 1}, nil)
		userStore.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2, Email: "a@b.c"}, nil)
		sessionStore.On("Save", mock.Anything, mock.MatchedBy(func(s *sessions.Session) bool {
			return s.ID == 1 && len(s.Users) == 1 && s.Users[0] == 2
		})).Return(&sessions.Session{ID: 1, Users: []int64{2}, Version: 2}, nil)

		require.NoError(t, manager.AddParticipant(ctx, 1, 2))
		sessionStore.AssertNumberOfCalls(t, "Save", 1)
		sessionStore.AssertExpectations(t)
		userStore.AssertExpectations(t)
	})

	t.Run("unknown session skips user lookup", func(t *testing.T) {
		manager, sessionStore, userStore := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(999)).Return(nil, errors.Wrapf(errors.ErrNotFound, "session 999"))

		err := manager.AddParticipant(ctx, 999, 2)
		require.ErrorIs(t, err, errors.ErrNotFound)
		userStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		sessionStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		manager, sessionStore, userStore := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(1)).Return(&sessions.Session{ID: 1, Version: 1}, nil)
		userStore.On("GetByID", mock.Anything, int64(999)).Return(nil, errors.Wrapf(errors.ErrNotFound, "user 999"))

		err := manager.AddParticipant(ctx, 1, 999)
		require.ErrorIs(t, err, errors.ErrNotFound)
		sessionStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("already participating", func(t *testing.T) {
		manager, sessionStore, userStore := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(1)).Return(&sessions.Session{ID: 1, Users: []int64{2}, Version: 3}, nil)
		userStore.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)

		err := manager.AddParticipant(ctx, 1, 2)
		require.ErrorIs(t, err, errors.ErrConflict)
		require.Contains(t, err.Error(), "already participating")
		sessionStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure is returned", func(t *testing.T) {
		manager, sessionStore, userStore := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(1)).Return(&sessions.Session{ID: 1, Version: 1}, nil)
		userStore.On("GetByID", mock.Anything, int64(2)).Return(&users.User{ID: 2}, nil)
		sessionStore.On("Save", mock.Anything, mock.Anything).Return(nil, errors.Wrapf(errors.ErrStaleVersion, "session 1"))

		err := manager.AddParticipant(ctx, 1, 2)
		require.ErrorIs(t, err, errors.ErrStaleVersion)
		sessionStore.AssertNumberOfCalls(t, "Save", 1)
	})
}

func TestRemoveParticipant_Mocked(t *testing.T) {
	ctx := context.Background()

	t.Run("removes user without looking them up", func(t *testing.T) {
		manager, sessionStore, userStore := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(1)).Return(&sessions.Session{ID: 1, Users: []int64{2, 3}, Version: 4}, nil)
		sessionStore.On("Save", mock.Anything, mock.MatchedBy(func(s *sessions.Session) bool {
			return len(s.Users) == 1 && s.Users[0] == 3
		})).Return(&sessions.Session{ID: 1, Users: []int64{3}, Version: 5}, nil)

		require.NoError(t, manager.RemoveParticipant(ctx, 1, 2))
		sessionStore.AssertNumberOfCalls(t, "Save", 1)
		userStore.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown session", func(t *testing.T) {
		manager, sessionStore, _ := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(999)).Return(nil, errors.Wrapf(errors.ErrNotFound, "session 999"))

		err := manager.RemoveParticipant(ctx, 999, 2)
		require.ErrorIs(t, err, errors.ErrNotFound)
		sessionStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("not participating", func(t *testing.T) {
		manager, sessionStore, _ := newMockManager(t)
		sessionStore.On("GetByID", mock.Anything, int64(1)).Return(&sessions.Session{ID: 1, Users: []int64{3}, Version: 1}, nil)

		err := manager.RemoveParticipant(ctx, 1, 2)
		require.ErrorIs(t, err, errors.ErrConflict)
		require.Contains(t, err.Error(), "not participating")
		sessionStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestNewManager_RequiresStores(t *testing.T) {
	_, err := roster.NewManager(nil, fakeuserrepo.NewFakeUserRepo())
	require.Error(t, err)

	_, err = roster.NewManager(fakesessionrepo.NewFakeSessionRepo(), nil)
	require.Error(t, err)
}

type rosterFixture struct {
	manager  *roster.Manager
	sessions *fakesessionrepo.FakeSessionRepo
	users    *fakeuserrepo.FakeUserRepo
	session  *sessions.Session
	userIDs  []int64
}

func newRosterFixture(t *testing.T, userCount int) *rosterFixture {
	t.Helper()
	ctx := context.Background()

	sessionRepo := fakesessionrepo.NewFakeSessionRepo()
	userRepo := fakeuserrepo.NewFakeUserRepo()

	session, err := sessionRepo.Create(ctx, &sessions.Session{
		Name:      "Morning flow",
		Date:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		TeacherID: 1,
	})
	require.NoError(t, err)

	ids := make([]int64, 0, userCount)
	for i := 0; i < userCount; i++ {
		u, err := userRepo.Create(ctx, &users.User{
			Email:     "user" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + "@yoga.test",
			FirstName: "first",
			LastName:  "last",
		})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	manager, err := roster.NewManager(sessionRepo, userRepo)
	require.NoError(t, err)

	return &rosterFixture{
		manager:  manager,
		sessions: sessionRepo,
		users:    userRepo,
		session:  session,
		userIDs:  ids,
	}
}

func TestRoster_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture(t, 2)
	userID := f.userIDs[1]

	require.NoError(t, f.manager.AddParticipant(ctx, f.session.ID, userID))
	got, err := f.sessions.GetByID(ctx, f.session.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{userID}, got.Users)

	require.ErrorIs(t, f.manager.AddParticipant(ctx, f.session.ID, userID), errors.ErrConflict)

	require.NoError(t, f.manager.RemoveParticipant(ctx, f.session.ID, userID))
	got, err = f.sessions.GetByID(ctx, f.session.ID)
	require.NoError(t, err)
	require.Empty(t, got.Users)

	require.ErrorIs(t, f.manager.RemoveParticipant(ctx, f.session.ID, userID), errors.ErrConflict)
	require.Equal(t, 2, f.sessions.SaveCount())
}

func TestRoster_UnknownIDsLeaveStoreUntouched(t *testing.T) {
	ctx := context.Background()
	f := newRosterFixture(t, 1)

	require.ErrorIs(t, f.manager.AddParticipant(ctx, 999, f.userIDs[0]), errors.ErrNotFound)
	require.ErrorIs(t, f.manager.AddParticipant(ctx, f.session.ID, 999), errors.ErrNotFound)
	require.ErrorIs(t, f.manager.RemoveParticipant(ctx, 999, f.userIDs[0]), errors.ErrNotFound)
	require.Equal(t, 0, f.sessions.SaveCount())
}

func TestRoster_ConcurrentDistinctUsers(t *testing.T) {
	ctx := context.Background()
	const n = 50
	f := newRosterFixture(t, n)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range f.userIDs {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			errs <- f.manager.AddParticipant(ctx, f.session.ID, userID)
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := f.sessions.GetByID(ctx, f.session.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, f.userIDs, got.Users)
	require.Equal(t, n, f.sessions.SaveCount())
}

func TestRoster_ConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	const n = 20
	f := newRosterFixture(t, 1)
	userID := f.userIDs[0]

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.manager.AddParticipant(ctx, f.session.ID, userID)
		}()
	}
	wg.Wait()
	close(errs)

	successes, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, errors.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, n-1, conflicts)

	got, err := f.sessions.GetByID(ctx, f.session.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{userID}, got.Users)
}

func TestRoster_ConcurrentAddAndRemove(t *testing.T) {
	ctx := context.Background()
	const n = 20
	f := newRosterFixture(t, n)

	// half the users start on the roster and leave while the other half join
	for _, id := range f.userIDs[:n/2] {
		require.NoError(t, f.manager.AddParticipant(ctx, f.session.ID, id))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i, id := range f.userIDs {
		wg.Add(1)
		go func(leave bool, userID int64) {
			defer wg.Done()
			if leave {
				errs <- f.manager.RemoveParticipant(ctx, f.session.ID, userID)
				return
			}
			errs <- f.manager.AddParticipant(ctx, f.session.ID, userID)
		}(i < n/2, id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := f.sessions.GetByID(ctx, f.session.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, f.userIDs[n/2:], got.Users)
}
