package token

import (
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, accessTTL, refreshTTL time.Duration) *Service {
	t.Helper()
	s, err := New([]byte("access-secret"), []byte("refresh-secret"), accessTTL, refreshTTL)
	require.NoError(t, err)
	return s
}

func TestNew_RequiresBothSecrets(t *testing.T) {
	t.Parallel()

	_, err := New(nil, []byte("r"), time.Minute, time.Hour)
	require.Error(t, err)

	_, err = New([]byte("a"), nil, time.Minute, time.Hour)
	require.Error(t, err)

	_, err = New([]byte("a"), []byte("r"), time.Minute, time.Hour)
	require.NoError(t, err)
}

func TestVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestService(t, 15*time.Minute, 720*time.Hour)
	uid := uuid.Must(uuid.NewV4())

	access, exp, err := s.IssueAccess(uid)
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := s.Verify(access, Access)
	require.NoError(t, err)
	require.Equal(t, uid, claims.UserID)
	require.WithinDuration(t, exp, claims.ExpiresAt, time.Second)

	refresh, _, err := s.IssueRefresh(uid)
	require.NoError(t, err)
	claims, err = s.Verify(refresh, Refresh)
	require.NoError(t, err)
	require.Equal(t, uid, claims.UserID)
}

func TestVerify_SecretsAreIndependent(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Minute, time.Hour)
	uid := uuid.Must(uuid.NewV4())

	access, _, err := s.IssueAccess(uid)
	require.NoError(t, err)
	refresh, _, err := s.IssueRefresh(uid)
	require.NoError(t, err)

	// An access token must not verify as refresh, nor the other way around.
	_, err = s.Verify(access, Refresh)
	require.ErrorIs(t, err, ErrInvalid)
	_, err = s.Verify(refresh, Access)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_Expired_NeverInvalid(t *testing.T) {
	t.Parallel()

	s := newTestService(t, -time.Minute, time.Hour) // already expired on issue
	uid := uuid.Must(uuid.NewV4())

	access, _, err := s.IssueAccess(uid)
	require.NoError(t, err)

	_, err = s.Verify(access, Access)
	require.ErrorIs(t, err, ErrExpired)
	require.False(t, errors.Is(err, ErrInvalid), "expired must not map to invalid")
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Minute, time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := s.Verify(tok, Access)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	s := newTestService(t, time.Minute, time.Hour)
	other, err := New([]byte("other-access"), []byte("other-refresh"), time.Minute, time.Hour)
	require.NoError(t, err)

	uid := uuid.Must(uuid.NewV4())
	forged, _, err := other.IssueAccess(uid)
	require.NoError(t, err)

	_, err = s.Verify(forged, Access)
	require.ErrorIs(t, err, ErrInvalid)
}
