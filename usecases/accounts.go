package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lung-server/auth"
	"lung-server/entities"
	"lung-server/repositories"
)

type AccountUseCase struct {
	users  repositories.UserRepository
	tokens *auth.Tokens
}

func NewAccountUseCase(users repositories.UserRepository, tokens *auth.Tokens) *AccountUseCase {
	return &AccountUseCase{users: users, tokens: tokens}
}

// Session is an authenticated user plus its bearer token.
type Session struct {
	User  *entities.User
	Token string
}

// SignUp creates a user with a bcrypt-hashed password.
func (uc *AccountUseCase) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := requireFields([2]string{"name", name}, [2]string{"email", email}, [2]string{"password", password}); err != nil {
		return nil, err
	}

	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{Name: name, Email: email, PasswordHash: hash}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return uc.session(user)
}

// Login verifies credentials. Unknown emails and wrong passwords fail the same way.
func (uc *AccountUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if err := requireFields([2]string{"email", email}, [2]string{"password", password}); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return uc.session(user)
}

func (uc *AccountUseCase) session(user *entities.User) (*Session, error) {
	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
