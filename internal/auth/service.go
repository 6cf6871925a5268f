package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cricketbook/internal/config"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"
	"cricketbook/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserDB interface {
	CreateUser(ctx context.Context, user *models.UserProfile) error
	GetUserByID(ctx context.Context, id string) (*models.UserProfile, error)
	GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) error
}

type SessionStore interface {
	Save(ctx context.Context, session models.Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type AuthService struct {
	Users      UserDB
	Sessions   SessionStore
	secret     []byte
	ttl        time.Duration
	adminEmail string
	logger     *logger.Logger
	now        func() time.Time
}

func NewAuthService(users UserDB, sessions SessionStore, cfg config.AuthConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		Users:      users,
		Sessions:   sessions,
		secret:     []byte(cfg.JWTSecret),
		ttl:        cfg.SessionTTL,
		adminEmail: config.NormalizeEmail(cfg.AdminEmail),
		logger:     logger,
		now:        time.Now,
	}
}

// AuthResult is returned by sign-up and sign-in.
type AuthResult struct {
	Token   string          `json:"token"`
	Session *models.Session `json:"session"`
}

type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// RoleFor assigns the admin role to the configured admin address only.
func (s *AuthService) RoleFor(email string) models.Role {
	if s.adminEmail != "" && config.NormalizeEmail(email) == s.adminEmail {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// SignUp creates credentials and a profile, then signs the new user in.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	email := config.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	switch {
	case !strings.Contains(email, "@"):
		return nil, models.Invalid("email", "a valid email is required")
	case len(in.Password) < minPasswordLength:
		return nil, models.Invalid("password", "must be at least %d characters", minPasswordLength)
	case name == "":
		return nil, models.Invalid("name", "name is required")
	}

	if _, err := s.Users.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s is already registered: %w", email, models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.UserProfile{
		ID:           utils.GenerateUUID(),
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         s.RoleFor(email),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("AUTH", fmt.Sprintf("Registered user %s with role %s", user.ID, user.Role))
	return s.startSession(ctx, user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.Users.GetUserByEmail(ctx, config.NormalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		s.logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("unknown email %s", email))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("bad password for user %s", user.ID))
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *models.UserProfile) (*AuthResult, error) {
	issued := s.now()
	session := models.Session{
		SessionID: utils.GenerateUUID(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Role:      user.Role,
		ExpiresAt: issued.Add(s.ttl).UTC(),
	}
	if err := s.Sessions.Save(ctx, session, s.ttl); err != nil {
		return nil, err
	}

	token, err := IssueToken(s.secret, user.ID, user.Email, session.SessionID, issued, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("AUTH", fmt.Sprintf("Session started for user %s", user.ID))
	return &AuthResult{Token: token, Session: &session}, nil
}

// SignOut ends the session; its token stops working immediately.
func (s *AuthService) SignOut(ctx context.Context, session *models.Session) error {
	if session == nil {
		return models.ErrUnauthenticated
	}
	if err := s.Sessions.Delete(ctx, session.SessionID); err != nil {
		return err
	}
	s.logger.Info("AUTH", fmt.Sprintf("Session ended for user %s", session.UserID))
	return nil
}

// Authenticate resolves a token to the current identity. The profile is
// re-read on every call so role and name changes apply at once.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}

	session, err := s.Sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: session expired or signed out", models.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: token does not match session", models.ErrUnauthenticated)
	}

	user, err := s.Users.GetUserByID(ctx, session.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", models.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	session.Email = user.Email
	session.Name = user.Name
	session.Phone = user.Phone
	session.Role = user.Role
	return session, nil
}

// PromoteAdmin grants the admin role to an existing account.
func (s *AuthService) PromoteAdmin(ctx context.Context, email string) (*models.UserProfile, error) {
	user, err := s.Users.GetUserByEmail(ctx, config.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := s.Users.UpdateUserRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin
	s.logger.LogSecurity("ROLE_CHANGE", fmt.Sprintf("user %s promoted to admin", user.ID))
	return user, nil
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.ttl
}
