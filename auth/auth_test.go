package auth

import (
	"chat-relay/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MyPasswordIsTooStr0ng!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	// Wrong password
	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_InvalidHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "plain-text")
	req.ErrorIs(err, ErrInvalidHash)

	_, err = ComparePassword("whatever", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	req.ErrorIs(err, ErrInvalidHash)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{"Valid request", RegisterRequest{"test@example.com", "John Doe", "ComplexPass123!"}, nil},
		{"Invalid email", RegisterRequest{"notanemail", "John Doe", "ComplexPass123!"}, errors.ErrInvalidPayload},
		{"Missing full name", RegisterRequest{"test@example.com", "", "ComplexPass123!"}, errors.ErrInvalidPayload},
		{"Password too short", RegisterRequest{"test@example.com", "John Doe", "Short1!"}, errors.ErrInvalidPayload},
		{"Missing digit", RegisterRequest{"test@example.com", "John Doe", "NoDigitPass!"}, errors.ErrInvalidPassword},
		{"Missing special char", RegisterRequest{"test@example.com", "John Doe", "NoSpecialChar123"}, errors.ErrInvalidPassword},
		{"Missing uppercase", RegisterRequest{"test@example.com", "John Doe", "nouppercase123!"}, errors.ErrInvalidPassword},
		{"Password too long", RegisterRequest{"test@example.com", "John Doe", strings.Repeat("a", 73)}, errors.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateRegister(tt.req)
			if tt.wantErr == nil {
				req.NoError(err)
				return
			}
			req.ErrorIs(err, tt.wantErr)
		})
	}
}

func TestChangePasswordValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateChangePassword(ChangePasswordRequest{"OldPassword123!", "NewPassword456!"}))
	req.ErrorIs(ValidateChangePassword(ChangePasswordRequest{"SamePassword123!", "SamePassword123!"}), errors.ErrInvalidPassword)
	req.ErrorIs(ValidateChangePassword(ChangePasswordRequest{"OldPassword123!", "nocomplexity1234"}), errors.ErrInvalidPassword)
}

func TestBearerToken(t *testing.T) {
	req := require.New(t)

	token, ok := BearerToken("Bearer abc.def.ghi")
	req.True(ok)
	req.Equal("abc.def.ghi", token)

	for _, header := range []string{"", "Bearer ", "bearer abc", "Basic abc", "Bearerabc", "Token abc"} {
		_, ok := BearerToken(header)
		req.False(ok, header)
	}
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
