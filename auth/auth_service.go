package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	ierrors "github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/token"
	"github.com/jrsteele09/go-yoga-server/users"
	"github.com/pkg/errors"
)

const tokenType = "Bearer"

// comparePassword checks a plaintext password against a bcrypt hash
var comparePassword = users.CheckPasswordHash

// unknownUserHash is compared against when the email has no account, so both failures cost one bcrypt check
var unknownUserHash = sync.OnceValue(func() string {
	hash, err := users.HashPassword("unknown-user-placeholder")
	if err != nil {
		panic(err)
	}
	return hash
})

// UserRepo is the part of the user store the login flow needs.
type UserRepo interface {
	Create(ctx context.Context, user *users.User) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// LoginResult is returned to a client after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"-"`
}

// Service implements password login, signup and bearer token authentication.
type Service struct {
	users     UserRepo
	authority *token.Authority
}

// NewService initializes a Service with its required dependencies.
func NewService(userRepo UserRepo, authority *token.Authority) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[auth.NewService] user repo is required")
	}
	if authority == nil {
		return nil, errors.New("[auth.NewService] token authority is required")
	}
	return &Service{
		users:     userRepo,
		authority: authority,
	}, nil
}

// Login checks the credentials and issues a token.
// Unknown email and wrong password fail identically with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := ValidateLogin(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if ierrors.Is(err, ierrors.ErrNotFound) {
		comparePassword(req.Password, unknownUserHash())
		return nil, ierrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "[auth.Login] GetByEmail")
	}

	if !comparePassword(req.Password, user.PasswordHash) {
		return nil, ierrors.ErrInvalidCredentials
	}

	tok, err := s.authority.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.Login] Issue")
	}

	return &LoginResult{
		Token:     tok.Value,
		Type:      tokenType,
		ID:        user.ID,
		Username:  user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Admin:     user.Admin,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

// Register creates a new non-admin user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*users.User, error) {
	if err := ValidateRegister(req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.Register] ExistsByEmail")
	}
	if exists {
		return nil, ierrors.ErrEmailTaken
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[auth.Register] HashPassword")
	}

	// Create also reports ErrEmailTaken if another signup won the race
	user, err := s.users.Create(ctx, &users.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[auth.Register] Create")
	}
	return user, nil
}

// Authenticate verifies a bearer token and resolves the user it was issued to.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*users.User, error) {
	subject, err := s.authority.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if ierrors.Is(err, ierrors.ErrNotFound) {
		return nil, errors.Wrap(ierrors.ErrInvalidCredentials, "token subject no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "[auth.Authenticate] GetByEmail")
	}
	return user, nil
}
