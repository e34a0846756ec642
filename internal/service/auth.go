package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"travelmatch/internal/domain"
	"travelmatch/internal/repository"
)

// Role values carried in the token's role claim.
const (
	RoleHost  = "host"
	RoleAdmin = "admin"
)

// Claims are the JWT claims issued for a host session.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles host registration and token issuance. Credential
// management lives upstream; the token only carries identity and role.
type AuthService struct {
	hostRepo    repository.HostRepository
	secret      []byte
	tokenTTL    time.Duration
	adminEmails map[string]bool
}

// NewAuthService creates a new AuthService.
func NewAuthService(hostRepo repository.HostRepository, secret []byte, tokenTTL time.Duration, adminEmails []string) *AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[email] = true
	}
	return &AuthService{
		hostRepo:    hostRepo,
		secret:      secret,
		tokenTTL:    tokenTTL,
		adminEmails: admins,
	}
}

// RegisterRequest contains the parameters for registering a host.
type RegisterRequest struct {
	Name     string
	Email    string
	Phone    string
	Whatsapp string
}

// Register creates a new host in PENDING verification state and returns a
// session token for it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.Host, string, error) {
	if req.Name == "" {
		return nil, "", ErrMissingName
	}
	if req.Email == "" {
		return nil, "", ErrMissingEmail
	}

	host := &domain.Host{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Whatsapp:     req.Whatsapp,
		Verification: domain.VerificationPending,
		CreatedAt:    time.Now(),
	}

	if err := s.hostRepo.Create(ctx, host); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.issueToken(host)
	if err != nil {
		return nil, "", err
	}

	return host, token, nil
}

// Login returns a fresh session token for an existing host.
func (s *AuthService) Login(ctx context.Context, email string) (*domain.Host, string, error) {
	if email == "" {
		return nil, "", ErrMissingEmail
	}

	host, err := s.hostRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrHostNotFound
		}
		return nil, "", err
	}

	if host.Verification == domain.VerificationRejected {
		return nil, "", ErrHostBlocked
	}

	token, err := s.issueToken(host)
	if err != nil {
		return nil, "", err
	}

	return host, token, nil
}

func (s *AuthService) issueToken(host *domain.Host) (string, error) {
	role := RoleHost
	if s.adminEmails[host.Email] {
		role = RoleAdmin
	}

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   host.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
