package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/auth"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrIncorrectPassword  = errors.New("Current password is incorrect")
)

// Session is what signup and login hand back to the caller.
type Session struct {
	Token string
	User  core.User
}

// AccountService manages users and their credentials.
type AccountService struct {
	users  storage.Users
	hasher *auth.Hasher
	tokens *auth.TokenIssuer
}

func NewAccountService(users storage.Users, hasher *auth.Hasher, tokens *auth.TokenIssuer) *AccountService {
	return &AccountService{users: users, hasher: hasher, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates the account and signs the user in. A taken email surfaces
// as storage.ErrConflict.
func (s *AccountService) Signup(ctx context.Context, email, password string) (Session, error) {
	if err := core.ValidateCredentials(email, password); err != nil {
		return Session{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, err
	}
	user, err := s.users.CreateUser(ctx, core.User{Email: normalizeEmail(email), PasswordHash: hash})
	if err != nil {
		return Session{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "Account created",
		log.FieldOperation, log.OpSignup,
		log.FieldUserID, user.ID)

	return s.session(user)
}

// Login checks the password and issues a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, core.ErrMissingCredentials
	}
	user, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !s.hasher.Matches(user.PasswordHash, password) {
		log.FromContext(ctx).WithComponent(log.ComponentAuth).WarnContext(ctx, "Login rejected",
			log.FieldOperation, log.OpLogin,
			log.FieldUserID, user.ID)
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *AccountService) session(user core.User) (Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	user.PasswordHash = ""
	return Session{Token: token, User: user}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID int64) (core.User, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, username string) (core.User, error) {
	user, err := s.users.UpdateUsername(ctx, userID, strings.TrimSpace(username))
	if err != nil {
		return core.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := core.ValidatePassword(next); err != nil {
		return err
	}
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Matches(user.PasswordHash, current) {
		return ErrIncorrectPassword
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

// DeleteAccount removes the user together with everything they own.
func (s *AccountService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "Account deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID)
	return nil
}
