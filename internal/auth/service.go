package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Service implements login, token refresh and logout for employees.
type Service struct {
	repo    RepositoryPort
	tokens  *TokenManager
	refresh *RefreshStore
}

// NewService constructs Service.
func NewService(repo RepositoryPort, tokens *TokenManager, refresh *RefreshStore) *Service {
	return &Service{repo: repo, tokens: tokens, refresh: refresh}
}

// Login verifies the credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenPair, Employee, error) {
	username := strings.TrimSpace(req.Username)
	emp, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		// Same answer for unknown user and bad password.
		return TokenPair{}, Employee{}, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)) != nil {
		return TokenPair{}, Employee{}, fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	}
	pair, err := s.issuePair(ctx, emp)
	if err != nil {
		return TokenPair{}, Employee{}, err
	}
	return pair, emp, nil
}

// Refresh consumes a refresh token and issues a fresh pair.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (TokenPair, error) {
	employeeID, err := s.refresh.Consume(ctx, req.RefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	emp, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: account no longer exists", httpx.ErrUnauthorized)
	}
	return s.issuePair(ctx, emp)
}

// Logout revokes the refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Revoke(ctx, refreshToken)
}

// Me returns the account behind an employee id.
func (s *Service) Me(ctx context.Context, employeeID int64) (Employee, error) {
	return s.repo.GetByID(ctx, employeeID)
}

// ParseAccess verifies an access token.
func (s *Service) ParseAccess(token string) (int64, string, error) {
	return s.tokens.Parse(token)
}

func (s *Service) issuePair(ctx context.Context, emp Employee) (TokenPair, error) {
	access, expiresAt, err := s.tokens.Issue(emp)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.refresh.Issue(ctx, emp.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}
