package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-yoga-server/auth"
	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/token"
	"github.com/jrsteele09/go-yoga-server/users"
	fakeuserrepo "github.com/jrsteele09/go-yoga-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	secretStr        = "1234"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo  *fakeuserrepo.FakeUserRepo
	authority *token.Authority
	service   *auth.Service
	now       time.Time
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		now:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	signer, err := token.NewHMACSigner(secretStr)
	require.NoError(t, err)
	f.authority, err = token.NewAuthority(signer, time.Hour, token.WithNowFunc(func() time.Time { return f.now }))
	require.NoError(t, err)

	f.service, err = auth.NewService(f.userRepo, f.authority)
	require.NoError(t, err)
	return f
}

// createTestUser creates and stores a test user
func (f *testFixture) createTestUser(t *testing.T, email, password string, admin bool) *users.User {
	t.Helper()

	hash, err := users.HashPassword(password)
	require.NoError(t, err)

	u, err := f.userRepo.Create(context.Background(), &users.User{
		Email:        email,
		FirstName:    "John",
		LastName:     "Doe",
		PasswordHash: hash,
		Admin:        admin,
	})
	require.NoError(t, err)
	return u
}

func TestNewService(t *testing.T) {
	signer, err := token.NewHMACSigner(secretStr)
	require.NoError(t, err)
	authority, err := token.NewAuthority(signer, time.Hour)
	require.NoError(t, err)

	_, err = auth.NewService(nil, authority)
	require.Error(t, err)

	_, err = auth.NewService(fakeuserrepo.NewFakeUserRepo(), nil)
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword, true)

	t.Run("valid credentials", func(t *testing.T) {
		res, err := f.service.Login(ctx, auth.LoginRequest{Email: testUserEmail, Password: testUserPassword})
		require.NoError(t, err)
		require.Equal(t, "Bearer", res.Type)
		require.Equal(t, user.ID, res.ID)
		require.Equal(t, testUserEmail, res.Username)
		require.Equal(t, "John", res.FirstName)
		require.Equal(t, "Doe", res.LastName)
		require.True(t, res.Admin)
		require.Equal(t, f.now.Add(time.Hour), res.ExpiresAt)

		subject, err := f.authority.Verify(res.Token)
		require.NoError(t, err)
		require.Equal(t, testUserEmail, subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(ctx, auth.LoginRequest{Email: testUserEmail, Password: "wrong-password"})
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		_, err := f.service.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: testUserPassword})
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})

	t.Run("blank fields", func(t *testing.T) {
		_, err := f.service.Login(ctx, auth.LoginRequest{Email: "  ", Password: testUserPassword})
		require.ErrorIs(t, err, errors.ErrBadInputFormat)

		_, err = f.service.Login(ctx, auth.LoginRequest{Email: testUserEmail})
		require.ErrorIs(t, err, errors.ErrBadInputFormat)
	})
}

func TestLogin_UnknownEmailStillComparesPassword(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword, false)

	type comparison struct{ password, hash string }
	var calls []comparison
	restore := auth.SetComparePassword(func(password, hash string) bool {
		calls = append(calls, comparison{password, hash})
		return users.CheckPasswordHash(password, hash)
	})
	defer restore()

	_, err := f.service.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "guess"})
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.Equal(t, []comparison{{"guess", auth.UnknownUserHash()}}, calls)

	calls = nil
	_, err = f.service.Login(ctx, auth.LoginRequest{Email: testUserEmail, Password: "guess"})
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.Equal(t, []comparison{{"guess", user.PasswordHash}}, calls)

	require.NotEmpty(t, auth.UnknownUserHash())
	require.False(t, users.CheckPasswordHash("guess", auth.UnknownUserHash()))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a non-admin user who can log in", func(t *testing.T) {
		f := setupTestFixture(t)
		u, err := f.service.Register(ctx, auth.RegisterRequest{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Smith",
			Password:  "secret1",
		})
		require.NoError(t, err)
		require.NotZero(t, u.ID)
		require.False(t, u.Admin)
		require.NotEqual(t, "secret1", u.PasswordHash)

		res, err := f.service.Login(ctx, auth.LoginRequest{Email: "jane@example.com", Password: "secret1"})
		require.NoError(t, err)
		require.Equal(t, u.ID, res.ID)
	})

	t.Run("email taken", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createTestUser(t, testUserEmail, testUserPassword, false)

		_, err := f.service.Register(ctx, auth.RegisterRequest{
			Email:     testUserEmail,
			FirstName: "John",
			LastName:  "Again",
			Password:  "another1",
		})
		require.ErrorIs(t, err, errors.ErrEmailTaken)
	})

	invalid := []struct {
		name string
		req  auth.RegisterRequest
	}{
		{"bad email", auth.RegisterRequest{Email: "not-an-email", FirstName: "Jane", LastName: "Smith", Password: "secret1"}},
		{"short first name", auth.RegisterRequest{Email: "j@example.com", FirstName: "Jo", LastName: "Smith", Password: "secret1"}},
		{"long last name", auth.RegisterRequest{Email: "j@example.com", FirstName: "Jane", LastName: "Smithsonian-Institute", Password: "secret1"}},
		{"short password", auth.RegisterRequest{Email: "j@example.com", FirstName: "Jane", LastName: "Smith", Password: "12345"}},
		{"missing password", auth.RegisterRequest{Email: "j@example.com", FirstName: "Jane", LastName: "Smith"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			_, err := f.service.Register(ctx, tt.req)
			require.ErrorIs(t, err, errors.ErrBadInputFormat)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, testUserPassword, false)

	res, err := f.service.Login(ctx, auth.LoginRequest{Email: testUserEmail, Password: testUserPassword})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		got, err := f.service.Authenticate(ctx, res.Token)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.service.Authenticate(ctx, "garbage")
		require.ErrorIs(t, err, errors.ErrMalformedToken)
		require.True(t, errors.IsAuthError(err))
	})

	t.Run("expired token", func(t *testing.T) {
		saved := f.now
		f.now = f.now.Add(2 * time.Hour)
		defer func() { f.now = saved }()

		_, err := f.service.Authenticate(ctx, res.Token)
		require.ErrorIs(t, err, errors.ErrTokenExpired)
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, f.userRepo.Delete(ctx, user.ID))
		_, err := f.service.Authenticate(ctx, res.Token)
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	})
}
