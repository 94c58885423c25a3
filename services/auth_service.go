package services

import (
	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/repositories"
	"fmt"
	"net/http"
	"time"
)

type IAuthService interface {
	Register(email, fullName, password string) (repositories.User, error)
	Login(email, password string) (Tokens, error)
	Refresh(refreshToken string) (Tokens, error)
	Me(subjectID string) (repositories.User, error)
	ChangePassword(subjectID, oldPassword, newPassword string) error
}

// Tokens is the pair handed to a client after login or refresh.
type Tokens struct {
	Token        string
	RefreshToken string
	ExpiresIn    time.Duration
}

type AuthService struct {
	userRepository repositories.IUserRepository
	authority      *auth.TokenAuthority
}

func NewAuthService(repo repositories.IUserRepository, authority *auth.TokenAuthority) IAuthService {
	return &AuthService{userRepository: repo, authority: authority}
}

func (s *AuthService) Register(email, fullName, password string) (repositories.User, error) {
	// 1. Business rules first, before any expensive cryptographic operation
	if err := auth.ValidateRegister(auth.RegisterRequest{
		Email:    email,
		FullName: fullName,
		Password: password,
	}); err != nil {
		return repositories.User{}, err
	}

	// 2. The repository never sees plain passwords
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return repositories.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Propagates ErrUserAlreadyExists if the email is taken
	return s.userRepository.CreateUser(email, fullName, hashedPassword)
}

func (s *AuthService) Login(email, password string) (Tokens, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Same answer for unknown users and wrong passwords
		return Tokens{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Tokens{}, errors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) Refresh(refreshToken string) (Tokens, error) {
	subjectID, err := s.authority.ValidateRefresh(refreshToken)
	if err != nil {
		return Tokens{}, fmt.Errorf("%w: %v", errors.ErrInvalidCredentials, err)
	}

	user, err := s.userRepository.GetUserByID(subjectID)
	if err != nil {
		return Tokens{}, errors.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) Me(subjectID string) (repositories.User, error) {
	return s.userRepository.GetUserByID(subjectID)
}

func (s *AuthService) ChangePassword(subjectID, oldPassword, newPassword string) error {
	if err := auth.ValidateChangePassword(auth.ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	}); err != nil {
		return err
	}

	user, err := s.userRepository.GetUserByID(subjectID)
	if err != nil {
		return err
	}

	match, err := auth.ComparePassword(oldPassword, user.PasswordHash)
	if err != nil || !match {
		return errors.ErrInvalidCredentials
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}
	return s.userRepository.UpdatePassword(user.ID, hashedPassword)
}

func (s *AuthService) issue(user repositories.User) (Tokens, error) {
	token, err := s.authority.GenerateAccessToken(user.ID, user.Roles)
	if err != nil {
		return Tokens{}, errors.ErrTokenGeneration
	}
	refreshToken, err := s.authority.GenerateRefreshToken(user.ID)
	if err != nil {
		return Tokens{}, errors.ErrTokenGeneration
	}
	return Tokens{Token: token, RefreshToken: refreshToken, ExpiresIn: s.authority.AccessTTL()}, nil
}

// IsClientError tells apart failures caused by the request from storage failures.
func IsClientError(err error) bool {
	return err != nil && errors.MapToHTTPStatus(err) < http.StatusInternalServerError
}
