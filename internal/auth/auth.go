// Package auth is the account directory consulted before any board or
// presence interaction begins.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ryanbastic/noteboard/internal/storage"
)

// Minimum credential lengths.
const (
	MinNameLen   = 3
	MinSecretLen = 4
)

// Reason classifies an authentication failure for inline display.
type Reason string

const (
	ReasonBadCredentials Reason = "bad_credentials"
	ReasonNameTaken      Reason = "name_taken"
	ReasonNameTooShort   Reason = "name_too_short"
	ReasonSecretTooShort Reason = "secret_too_short"
)

// AuthError is a recoverable authentication failure. Never fatal; shown as
// inline form text.
type AuthError struct {
	Reason Reason
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed: %s", e.Reason)
}

// Directory answers login and registration against the account store.
type Directory struct {
	accounts storage.AccountStore
	logger   *slog.Logger
}

func NewDirectory(accounts storage.AccountStore, logger *slog.Logger) *Directory {
	return &Directory{accounts: accounts, logger: logger}
}

// Login verifies (name, secret) and returns the account name. A missing
// account and a wrong secret are indistinguishable to the caller.
func (d *Directory) Login(ctx context.Context, name, secret string) (string, error) {
	stored, err := d.accounts.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return "", &AuthError{Reason: ReasonBadCredentials}
		}
		return "", fmt.Errorf("login %q: %w", name, err)
	}
	if stored != secret {
		return "", &AuthError{Reason: ReasonBadCredentials}
	}
	return name, nil
}

// Register creates a new account after length checks and returns its name.
func (d *Directory) Register(ctx context.Context, name, secret string) (string, error) {
	if len(name) < MinNameLen {
		return "", &AuthError{Reason: ReasonNameTooShort}
	}
	if len(secret) < MinSecretLen {
		return "", &AuthError{Reason: ReasonSecretTooShort}
	}

	if err := d.accounts.Create(ctx, name, secret); err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			return "", &AuthError{Reason: ReasonNameTaken}
		}
		return "", fmt.Errorf("register %q: %w", name, err)
	}

	d.logger.Info("account registered", "name", name)
	return name, nil
}
