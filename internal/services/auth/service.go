package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/partyquiz/partyquiz/internal/dependencies/clock"
	"github.com/partyquiz/partyquiz/internal/model"
	"github.com/partyquiz/partyquiz/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailExists        = errors.New("email already registered")
)

// Config holds configuration for the auth service
type Config struct {
	// Secret signs bearer tokens; all server instances must share it
	Secret        string
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 30 * 24 * time.Hour,
	}
}

// Service issues and verifies bearer credentials. Tokens are stateless
// HS256 JWTs carrying the user id; any instance sharing the secret can
// verify them without session storage.
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	secret        []byte
	tokenDuration time.Duration
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		storage:       storage,
		clock:         clock,
		secret:        []byte(cfg.Secret),
		tokenDuration: cfg.TokenDuration,
	}
}

// CreateGuest creates an anonymous identity and issues a token for it
func (s *Service) CreateGuest(ctx context.Context, name string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", model.ErrEmptyName
	}

	user := &model.User{
		ID:        model.UserID(uuid.NewString()),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Register creates a registered identity and issues a token for it
func (s *Service) Register(ctx context.Context, email, password, name string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", model.ErrEmptyName
	}
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	// Check if email is taken
	_, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		ID:           model.UserID(uuid.NewString()),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a registered identity and issues a fresh token
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// VerifyToken resolves a bearer token back to the user it was issued to
func (s *Service) VerifyToken(ctx context.Context, tokenString string) (*model.User, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.storage.GetUser(ctx, model.UserID(claims.Subject))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by id
func (s *Service) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

func (s *Service) issueToken(user *model.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
