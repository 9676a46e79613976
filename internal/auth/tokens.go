package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type accessClaims struct {
	jwtlib.RegisteredClaims
	Role string `json:"role"`
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewTokenManager constructs TokenManager.
func NewTokenManager(secret string, accessTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL}
}

// Issue signs an access token for the employee.
func (m *TokenManager) Issue(emp Employee) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(m.accessTTL)
	claims := accessClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(emp.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "pos-backend",
		},
		Role: emp.Role,
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies a token and returns the employee id and role.
func (m *TokenManager) Parse(tokenStr string) (int64, string, error) {
	claims := &accessClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return 0, "", fmt.Errorf("%w: invalid or expired token", httpx.ErrUnauthorized)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, "", fmt.Errorf("%w: invalid token subject", httpx.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: invalid token subject", httpx.ErrUnauthorized)
	}
	return id, claims.Role, nil
}
