package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"contacthub/internal/domain/entity"
	repo "contacthub/internal/domain/repository"
	"contacthub/pkg/helpers"
)

// SessionManager owns the single-slot session design: the user row's
// session_token column is the source of truth, a Redis hash mirrors it for
// cheap validation. A newer login overwrites both, so older tokens fail
// validation regardless of their own expiry.
type SessionManager struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewSessionManager(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *SessionManager {
	return &SessionManager{Repo: r, JWT: jwt, Redis: rdb, Logger: logger}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// Issue signs a fresh session token, persists it onto the user record
// (overwriting any prior token) and mirrors it to Redis with the token's TTL.
func (m *SessionManager) Issue(ctx context.Context, u *entity.User) (string, time.Time, error) {
	token, exp, err := m.JWT.GenerateSessionToken(u.ID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		}
		return "", time.Time{}, err
	}
	if err := m.Repo.UpdateSessionToken(u.ID, &token); err != nil {
		return "", time.Time{}, err
	}
	u.SessionToken = &token

	if m.Redis != nil {
		key := sessionKey(u.ID)
		fields := map[string]any{
			"user_id":      u.ID,
			"email":        u.Email,
			"subscription": string(u.Subscription),
			"avatar_url":   u.AvatarURL,
			"token":        token,
		}
		pipe := m.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, time.Until(exp))
		if _, rErr := pipe.Exec(ctx); rErr != nil && m.Logger != nil {
			m.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return token, exp, nil
}

// Validate resolves a presented token to its user. The token must textually
// equal the stored session token; anything else is a stale or foreign token.
func (m *SessionManager) Validate(ctx context.Context, userID, presented string) (*entity.User, error) {
	if m.Redis != nil {
		key := sessionKey(userID)
		data, err := m.Redis.HGetAll(ctx, key).Result()
		// a hash without a token field is not a session, whatever else it
		// holds; only a complete mirror may answer for the database
		if err == nil && data["token"] != "" {
			if data["token"] != presented {
				return nil, ErrInvalidCredentials
			}
			tok := data["token"]
			return &entity.User{
				ID:           data["user_id"],
				Email:        data["email"],
				Subscription: entity.Subscription(data["subscription"]),
				AvatarURL:    data["avatar_url"],
				SessionToken: &tok,
				Verified:     true,
			}, nil
		}
		// cache miss or redis failure: fall through to the database
	}

	u, err := m.Repo.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if u.SessionToken == nil || *u.SessionToken != presented {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Invalidate clears the session slot. Clearing an already-empty slot is not
// an error.
func (m *SessionManager) Invalidate(ctx context.Context, userID string) error {
	if err := m.Repo.UpdateSessionToken(userID, nil); err != nil {
		return err
	}
	if m.Redis != nil {
		if err := m.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil && m.Logger != nil {
			m.Logger.WithError(err).WithField("user_id", userID).Warn("redis del failed")
		}
	}
	return nil
}

// RefreshCachedProfile updates mirrored profile fields after a subscription
// or avatar change, preserving the key's TTL.
func (m *SessionManager) RefreshCachedProfile(ctx context.Context, u *entity.User) {
	if m.Redis == nil {
		return
	}
	key := sessionKey(u.ID)
	ttl, err := m.Redis.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		// key is gone (or has lost its expiry): writing profile fields now
		// would leave a tokenless hash behind; the next login rebuilds it
		return
	}
	pipe := m.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"subscription": string(u.Subscription),
		"avatar_url":   u.AvatarURL,
	})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil && m.Logger != nil {
		m.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
	}
}
