package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/lead-intel/internal/auth"
	"github.com/octobees/lead-intel/internal/dto"
	"github.com/octobees/lead-intel/internal/repository"
)

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	officers repository.OfficersRepository
	jwt      *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(officers repository.OfficersRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{officers: officers, jwt: jwtManager}
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalidf("email and password must not be empty")
	}

	officer, err := s.officers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrOfficerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(officer.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(officer.ID.String(), officer.Email, officer.Role)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}
