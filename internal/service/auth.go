package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/zatigwera/internal/domain"
)

// dummyHash is compared against when the username is unknown, so a failed
// login costs the same whether or not the account exists.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z4CmjGnKhD6dJxd3Ukf1N4X."

// AuthService drives the login state machine: it verifies credentials,
// creates and destroys sessions, and resolves session cookies back to
// sessions.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionStore
	passwords  *PasswordHasher
	jwtSecret  []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, sessions domain.SessionStore, passwords *PasswordHasher, jwtSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		passwords:  passwords,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// SessionTTL is how long a session and its cookie stay valid.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login verifies credentials and, on success, starts a session. It returns
// the session and the signed token to hand to the browser. Unknown users and
// wrong passwords both yield domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.passwords.Verify(password, dummyHash)
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if !s.passwords.Verify(password, user.PasswordHash) {
		return nil, "", domain.ErrUnauthorized
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	token, err := s.signToken(sess)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return sess, token, nil
}

// Resolve maps a token back to its live session. Missing, expired, tampered
// or logged-out tokens yield domain.ErrUnauthorized.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	sessionID, userID, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	// The account row is authoritative for role and name.
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	sess.Role = user.Role
	sess.FullName = user.FullName
	return sess, nil
}

// Logout destroys the session referenced by token. Logging out twice, or
// with a token that no longer verifies, is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sessionID, _, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AuthService) signToken(sess *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(sess.UserID, 10),
		ID:        sess.ID,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) parseToken(tokenString string) (string, int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", 0, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("parse subject: %w", err)
	}
	if claims.ID == "" {
		return "", 0, errors.New("token has no session id")
	}
	return claims.ID, userID, nil
}
