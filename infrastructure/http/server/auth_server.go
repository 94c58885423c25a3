package server

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/errors"
	"chat-relay/repositories"
	"chat-relay/services"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// AuthServer exposes account management next to the relay.
type AuthServer struct {
	log         *slog.Logger
	authService services.IAuthService
	authority   contract.TokenAuthority
}

func NewAuthServer(log *slog.Logger, authService services.IAuthService, authority contract.TokenAuthority) *AuthServer {
	return &AuthServer{log: log, authService: authService, authority: authority}
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type tokensResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func toUserResponse(user repositories.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
	}
}

func toTokensResponse(tokens services.Tokens) tokensResponse {
	return tokensResponse{
		Token:        tokens.Token,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int64(tokens.ExpiresIn.Seconds()),
	}
}

func (s *AuthServer) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}

	user, err := s.authService.Register(body.Email, body.FullName, body.Password)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info("Account registered", "subject", user.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *AuthServer) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}

	tokens, err := s.authService.Login(body.Email, body.Password)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokensResponse(tokens))
}

func (s *AuthServer) Refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}

	tokens, err := s.authService.Refresh(body.RefreshToken)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokensResponse(tokens))
}

func (s *AuthServer) Me(w http.ResponseWriter, r *http.Request) {
	subjectID, err := s.subject(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	user, err := s.authService.Me(subjectID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *AuthServer) ChangePassword(w http.ResponseWriter, r *http.Request) {
	subjectID, err := s.subject(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	var body changePasswordRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err))
		return
	}

	if err := s.authService.ChangePassword(subjectID, body.OldPassword, body.NewPassword); err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info("Password changed", "subject", subjectID)
	w.WriteHeader(http.StatusNoContent)
}

// subject authenticates the request with its Bearer access token.
func (s *AuthServer) subject(r *http.Request) (string, error) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", errors.ErrMissingCredential
	}
	return s.authority.Validate(token)
}

func (s *AuthServer) fail(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if !services.IsClientError(err) {
		s.log.Error("Account request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
