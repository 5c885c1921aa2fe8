package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
)

// UserRepository is the credential store contract.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
}

// SessionStore keeps the server-side half of every login.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type RegisterInput struct {
	Username string
	Password string
	Phone    string
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	GrantRole(ctx context.Context, userID uuid.UUID, role models.Role) (*models.User, error)
}

type userService struct {
	repo       UserRepository
	sessions   SessionStore
	tokens     *auth.TokenIssuer
	bcryptCost int
	logger     *logrus.Logger
}

func NewUserService(repo UserRepository, sessions SessionStore, tokens *auth.TokenIssuer, bcryptCost int, logger *logrus.Logger) UserService {
	return &userService{
		repo:       repo,
		sessions:   sessions,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a user with the default role and opens a session for it.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	log := s.logger.WithFields(logrus.Fields{
		"service":  "user",
		"method":   "Register",
		"username": username,
	})
	log.Info("Attempting to register a new user")

	if username == "" {
		return nil, models.NewValidationError("username", "is required")
	}
	if input.Password == "" {
		return nil, models.NewValidationError("password", "is required")
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		return nil, fmt.Errorf("service: could not hash password: %w", models.ErrInternal)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         models.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			log.Warn("Username already exists")
			return nil, fmt.Errorf("service: register %q: %w", username, models.ErrUsernameTaken)
		}
		log.WithError(err).Error("Failed to create user in repository")
		return nil, fmt.Errorf("service: could not register user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered successfully")
	return s.openSession(ctx, user)
}

// Login checks the credentials and opens a new session.
func (s *userService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "user",
		"method":   "Login",
		"username": username,
	})

	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("Login for unknown username")
			return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
		}
		log.WithError(err).Error("Failed to load user")
		return nil, fmt.Errorf("service: could not load user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		log.Warn("Login with wrong password")
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	return s.openSession(ctx, user)
}

func (s *userService) openSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().UTC().Add(s.tokens.TTL()),
	}
	token, exp, err := s.tokens.Issue(user.ID, string(user.Role), session.ID)
	if err != nil {
		return nil, fmt.Errorf("service: %w: %w", models.ErrInternal, err)
	}
	session.ExpiresAt = exp
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("service: could not store session: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Logout ends the caller's current session.
func (s *userService) Logout(ctx context.Context) error {
	id := auth.IdentityFromContext(ctx)
	if err := auth.Authorize(id, auth.ActionRead); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id.SessionID); err != nil {
		s.logger.WithError(err).WithField("user_id", id.UserID).Error("Failed to delete session")
		return fmt.Errorf("service: could not end session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to an identity. The token must be
// valid and its session must still exist.
func (s *userService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return auth.Identity{}, fmt.Errorf("session expired: %w", models.ErrUnauthenticated)
		}
		return auth.Identity{}, fmt.Errorf("service: could not load session: %w", err)
	}
	if session.UserID.String() != claims.Subject {
		return auth.Identity{}, fmt.Errorf("session subject mismatch: %w", models.ErrUnauthenticated)
	}
	return auth.Identity{
		UserID:    session.UserID,
		Username:  session.Username,
		Role:      session.Role,
		SessionID: session.ID,
	}, nil
}

// GetProfile returns the non-credential fields of a user.
func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get user %s: %w", id, err)
	}
	return user, nil
}

// GrantRole changes a user's role. The new role applies from the next login.
func (s *userService) GrantRole(ctx context.Context, userID uuid.UUID, role models.Role) (*models.User, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "GrantRole",
		"user_id": userID,
		"role":    role,
		"actor":   caller.UserID,
	})
	if err := auth.Authorize(caller, auth.ActionGrantRole); err != nil {
		log.WithError(err).Warn("Role grant rejected")
		return nil, err
	}
	if !role.Valid() {
		return nil, models.NewValidationError("role", "must be one of user, emergency, admin")
	}
	user, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		log.WithError(err).Warn("Failed to update role")
		return nil, fmt.Errorf("service: could not grant role: %w", err)
	}
	log.Info("Role granted")
	return user, nil
}
