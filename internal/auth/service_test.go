package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type memoryRepo struct {
	byUsername map[string]Employee
	byID       map[int64]Employee
}

func (r *memoryRepo) GetByUsername(ctx context.Context, username string) (Employee, error) {
	emp, ok := r.byUsername[username]
	if !ok {
		return Employee{}, httpx.ErrNotFound
	}
	return emp, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id int64) (Employee, error) {
	emp, ok := r.byID[id]
	if !ok {
		return Employee{}, httpx.ErrNotFound
	}
	return emp, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &memoryRepo{
		byUsername: map[string]Employee{},
		byID:       map[int64]Employee{},
	}
	emp := Employee{ID: 1, Username: "amira", Role: "admin", PasswordHash: string(hash)}
	repo.byUsername[emp.Username] = emp
	repo.byID[emp.ID] = emp

	return NewService(repo, NewTokenManager("test-secret", time.Minute), NewRefreshStore(rdb, time.Hour)), repo
}

func TestLoginIssuesValidTokens(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, emp, err := svc.Login(ctx, LoginRequest{Username: "amira", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, int64(1), emp.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	id, role, err := svc.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	require.Equal(t, "admin", role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, LoginRequest{Username: "amira", Password: "wrong"})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	_, _, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "s3cret"})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, LoginRequest{Username: "amira", Password: "s3cret"})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The consumed token must not work twice.
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pair, _, err := svc.Login(ctx, LoginRequest{Username: "amira", Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestParseAccessRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.ParseAccess("not-a-token")
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}
