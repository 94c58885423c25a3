package auth

import (
	"chat-relay/errors"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "chat-relay"

// RejectReason classifies why a credential was refused.
type RejectReason int

const (
	Missing RejectReason = iota + 1
	Malformed
	Expired
	SignatureInvalid
)

func (r RejectReason) String() string {
	switch r {
	case Missing:
		return "missing"
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	case SignatureInvalid:
		return "signature_invalid"
	default:
		return "unknown"
	}
}

// Err returns the sentinel matching the reason.
func (r RejectReason) Err() error {
	switch r {
	case Missing:
		return errors.ErrMissingCredential
	case Malformed:
		return errors.ErrMalformedCredential
	case Expired:
		return errors.ErrExpiredCredential
	default:
		return errors.ErrInvalidSignature
	}
}

// RejectError is returned by the authority for every refused token.
// It matches both the reason sentinel and the underlying jwt error with errors.Is.
type RejectError struct {
	Reason RejectReason
	Cause  error
}

func Reject(reason RejectReason, cause error) *RejectError {
	return &RejectError{Reason: reason, Cause: cause}
}

func (e *RejectError) Error() string {
	if e.Cause == nil {
		return e.Reason.Err().Error()
	}
	return fmt.Sprintf("%s: %v", e.Reason.Err(), e.Cause)
}

func (e *RejectError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason.Err()}
	}
	return []error{e.Reason.Err(), e.Cause}
}

// CustomClaims defines the structure of the data stored inside the JWT.
// The subject identifier travels in the registered "sub" claim.
type CustomClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig carries the secret material and lifetimes of both token kinds.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenAuthority issues and validates HS256 tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenAuthority struct {
	config TokenConfig
	now    func() time.Time
}

func NewTokenAuthority(config TokenConfig) *TokenAuthority {
	return &TokenAuthority{config: config, now: time.Now}
}

func (a *TokenAuthority) AccessTTL() time.Duration {
	return a.config.AccessTTL
}

// GenerateAccessToken creates a signed access token for a subject.
func (a *TokenAuthority) GenerateAccessToken(subjectID string, roles []string) (string, error) {
	return a.sign(subjectID, roles, a.config.AccessTTL, a.config.AccessSecret)
}

// GenerateRefreshToken creates a long-lived token only accepted by ValidateRefresh.
func (a *TokenAuthority) GenerateRefreshToken(subjectID string) (string, error) {
	return a.sign(subjectID, nil, a.config.RefreshTTL, a.config.RefreshSecret)
}

// Validate checks an access token and returns its subject.
// Every failure is a *RejectError.
func (a *TokenAuthority) Validate(token string) (string, error) {
	return a.parse(token, a.config.AccessSecret)
}

// ValidateRefresh checks a refresh token and returns its subject.
func (a *TokenAuthority) ValidateRefresh(token string) (string, error) {
	return a.parse(token, a.config.RefreshSecret)
}

func (a *TokenAuthority) sign(subjectID string, roles []string, ttl time.Duration, secret []byte) (string, error) {
	now := a.now()
	claims := &CustomClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	// HS256 (HMAC with SHA256)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}
	return signed, nil
}

func (a *TokenAuthority) parse(tokenString string, secret []byte) (string, error) {
	if tokenString == "" {
		return "", Reject(Missing, nil)
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", Reject(classify(err), err)
	}
	if !token.Valid {
		return "", Reject(SignatureInvalid, jwt.ErrSignatureInvalid)
	}

	// The relay only knows subjects by their UUID
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", Reject(Malformed, fmt.Errorf("subject is not a uuid: %w", err))
	}
	return claims.Subject, nil
}

func classify(err error) RejectReason {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return Expired
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid), stderrors.Is(err, jwt.ErrSignatureInvalid):
		return SignatureInvalid
	default:
		return Malformed
	}
}
