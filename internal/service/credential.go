package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"dirgate/internal/domain"
)

// CredentialStore hashes and verifies user passwords. Hashes stay behind the
// repository's credential accessors and never travel on the User entity.
type CredentialStore struct {
	users domain.UserRepository
	cost  int
}

// NewCredentialStore creates a credential store. cost <= 0 selects the bcrypt
// default.
func NewCredentialStore(users domain.UserRepository, cost int) *CredentialStore {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{users: users, cost: cost}
}

// Set hashes the password and stores it for the user.
func (s *CredentialStore) Set(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetCredential(ctx, userID, string(hash))
}

// Verify compares the candidate against the stored hash. A mismatch or a
// missing credential returns *domain.BadCredentialError.
func (s *CredentialStore) Verify(ctx context.Context, userID, candidate string) error {
	hash, err := s.users.GetCredential(ctx, userID)
	if err != nil {
		return err
	}
	if hash == "" {
		return &domain.BadCredentialError{}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return &domain.BadCredentialError{}
		}
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
