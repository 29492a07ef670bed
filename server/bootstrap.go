package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/jrsteele09/go-yoga-server/teachers"
	"github.com/jrsteele09/go-yoga-server/users"
	"github.com/rs/zerolog/log"
)

const DefaultAdminEmail = "yoga@studio.com"

var defaultTeachers = []teachers.Teacher{
	{FirstName: "Margot", LastName: "DELAHAYE"},
	{FirstName: "Hélène", LastName: "THIERCELIN"},
}

// InitialiseSystem seeds a development store with an admin account and the studio's teachers.
// It is idempotent: existing data is left alone.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	log.Info().Msg("🔧 Bootstrap: Checking seed data...")

	generatedPassword, err := s.bootstrapAdmin(ctx)
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	if err := s.bootstrapTeachers(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap teachers: %w", err)
	}

	if generatedPassword != "" {
		log.Info().Msg("✅ Bootstrap complete")
		log.Info().Msgf("👤 Admin Credentials: %s / %s", DefaultAdminEmail, generatedPassword)
		log.Warn().Msg("   ⚠️  SAVE THIS PASSWORD - it will not be displayed again!")
	} else {
		log.Info().Msg("✅ Bootstrap: System already seeded")
	}
	return nil
}

// bootstrapAdmin creates the admin user if it does not exist and returns its generated password
func (s *Server) bootstrapAdmin(ctx context.Context) (generatedPassword string, err error) {
	exists, err := s.repos.Users.ExistsByEmail(ctx, DefaultAdminEmail)
	if err != nil {
		return "", fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if exists {
		log.Info().Msgf("   Admin already exists: %s", DefaultAdminEmail)
		return "", nil
	}

	passwordBytes := make([]byte, 12)
	if _, err := rand.Read(passwordBytes); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	generatedPassword = base64.RawURLEncoding.EncodeToString(passwordBytes)

	passwordHash, err := users.HashPassword(generatedPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	admin, err := s.repos.Users.Create(ctx, &users.User{
		Email:        DefaultAdminEmail,
		FirstName:    "Admin",
		LastName:     "Admin",
		PasswordHash: passwordHash,
		Admin:        true,
	})
	if errors.Is(err, errors.ErrEmailTaken) {
		// another instance seeded concurrently
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info().Msgf("   ✅ Created admin: %s (id %d)", admin.Email, admin.ID)
	return generatedPassword, nil
}

func (s *Server) bootstrapTeachers(ctx context.Context) error {
	existing, err := s.repos.Teachers.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list teachers: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Msgf("   %d teachers already present", len(existing))
		return nil
	}

	for _, t := range defaultTeachers {
		teacher := t
		created, err := s.repos.Teachers.Create(ctx, &teacher)
		if err != nil {
			return fmt.Errorf("failed to create teacher %s %s: %w", t.FirstName, t.LastName, err)
		}
		log.Info().Msgf("   ✅ Created teacher: %s %s (id %d)", created.FirstName, created.LastName, created.ID)
	}
	return nil
}
