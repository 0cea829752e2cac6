package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type UseCase struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	jwtSecret  []byte
	jwtIssuer  string
	sessionTTL time.Duration
	logger     *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, jwtSecret, jwtIssuer string, sessionTTL time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		jwtIssuer:  jwtIssuer,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Login verifies the credentials and opens a session. An unknown email and a
// wrong password produce the same error so the response leaks nothing about
// which accounts exist.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.Session, string, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrUnauthorized
	}

	alias := user.Alias
	if alias == "" {
		alias = domain.AliasFromEmail(user.Email)
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Alias:     alias,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.sessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := uc.signToken(session)
	if err != nil {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, "", err
	}
	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return session, token, nil
}

// GetSession resolves a live session, evicting it if it expired.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession extends a live session and issues a fresh token for it.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string) (*domain.Session, string, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(uc.sessionTTL.Seconds())); err != nil {
		return nil, "", err
	}
	session.ExpiresAt = time.Now().Add(uc.sessionTTL)

	token, err := uc.signToken(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// Logout revokes the session.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    session.UserID,
		"session_id": session.ID,
		"alias":      session.Alias,
		"iss":        uc.jwtIssuer,
		"exp":        session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.jwtSecret)
}
