package auth

import (
	"chat-relay/errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestAuthority() *TokenAuthority {
	return NewTokenAuthority(TokenConfig{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
}

func requireReason(t *testing.T, err error, reason RejectReason) {
	t.Helper()
	var reject *RejectError
	require.ErrorAs(t, err, &reject)
	require.Equal(t, reason, reject.Reason)
	require.ErrorIs(t, err, reason.Err())
}

func TestTokenAuthority_Validate_Success(t *testing.T) {
	req := require.New(t)
	authority := newTestAuthority()
	subjectID := uuid.NewString()

	token, err := authority.GenerateAccessToken(subjectID, []string{"user"})
	req.NoError(err)

	got, err := authority.Validate(token)
	req.NoError(err)
	req.Equal(subjectID, got)
}

func TestTokenAuthority_Validate_Rejections(t *testing.T) {
	authority := newTestAuthority()
	subjectID := uuid.NewString()

	// Signed by someone else
	foreign := NewTokenAuthority(TokenConfig{AccessSecret: []byte("another-secret"), AccessTTL: time.Hour})
	foreignToken, err := foreign.GenerateAccessToken(subjectID, nil)
	require.NoError(t, err)

	// Issued two hours ago with a one hour lifetime
	past := newTestAuthority()
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := past.GenerateAccessToken(subjectID, nil)
	require.NoError(t, err)

	// Valid signature but the subject is not a uuid
	notUUID, err := authority.GenerateAccessToken("alice", nil)
	require.NoError(t, err)

	// Refresh tokens are not access tokens
	refresh, err := authority.GenerateRefreshToken(subjectID)
	require.NoError(t, err)

	// Unsigned token
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   subjectID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		reason RejectReason
	}{
		{"empty token", "", Missing},
		{"garbage", "not-a-jwt", Malformed},
		{"subject is not a uuid", notUUID, Malformed},
		{"expired", expiredToken, Expired},
		{"foreign signature", foreignToken, SignatureInvalid},
		{"refresh token used as access token", refresh, SignatureInvalid},
		{"alg none", unsigned, SignatureInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := authority.Validate(tt.token)
			require.Empty(t, got)
			requireReason(t, err, tt.reason)
		})
	}
}

func TestTokenAuthority_ValidateRefresh(t *testing.T) {
	req := require.New(t)
	authority := newTestAuthority()
	subjectID := uuid.NewString()

	refresh, err := authority.GenerateRefreshToken(subjectID)
	req.NoError(err)

	got, err := authority.ValidateRefresh(refresh)
	req.NoError(err)
	req.Equal(subjectID, got)

	// An access token never refreshes a session
	access, err := authority.GenerateAccessToken(subjectID, nil)
	req.NoError(err)
	_, err = authority.ValidateRefresh(access)
	req.ErrorIs(err, errors.ErrInvalidSignature)
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"24hr", 24 * time.Hour, false},
		{"1hr", time.Hour, false},
		{"365d", 365 * 24 * time.Hour, false},
		{"3600", time.Hour, false},
		{"15m", 15 * time.Minute, false},
		{"", 0, true},
		{"0", 0, true},
		{"-1d", 0, true},
		{"xhr", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req := require.New(t)
			got, err := ParseExpiry(tt.in)
			if tt.wantErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, got)
		})
	}
}
