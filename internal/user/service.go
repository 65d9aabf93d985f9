package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reservaid/reservaid/internal/common/auth"
	"github.com/reservaid/reservaid/internal/common/config"
)

// ErrIdentifiants is the single message for bad email/password, never
// hinting which of the two failed.
var ErrIdentifiants = fmt.Errorf("email ou mot de passe invalide")

// Service covers account registration and login.
type Service struct {
	repo    *Repo
	authCfg config.AuthConfig
}

func NewService(repo *Repo, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, authCfg: authCfg}
}

// RegisterInput creates an account. The role defaults to client; staff
// roles are only assignable by an admin.
type RegisterInput struct {
	Email    string
	Nom      string
	Password string
	Role     string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("email required")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = RoleClient
	}
	if !RoleValide(role) {
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Nom:          strings.TrimSpace(in.Nom),
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginResult carries the token and the navigation data the SPA needs.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
	Panels    []string  `json:"panels"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrIdentifiants
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrIdentifiants
		}
		return nil, err
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, ErrIdentifiants
	}

	ttl := time.Duration(s.authCfg.TTLHours) * time.Hour
	token, expiresAt, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.Role, u.Nom, ttl)
	if err != nil {
		return nil, err
	}

	u.PasswordHash = ""
	u.PasswordSalt = ""
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      u,
		Panels:    PanelsFor(u.Role),
	}, nil
}

// Profil returns the profile and permitted panels for the SPA shell.
func (s *Service) Profil(ctx context.Context, userID string) (*User, []string, error) {
	if s == nil || s.repo == nil {
		return nil, nil, fmt.Errorf("service not initialized")
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	u.PasswordHash = ""
	u.PasswordSalt = ""
	return u, PanelsFor(u.Role), nil
}
