package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionPrefix   = "session:"
	userIndexPrefix = "user_sessions:"
)

// SessionRepositoryImpl implements domain.SessionRepository using Redis.
// A session lives under session:<token> and expires with its refresh token;
// user_sessions:<userID> indexes the live tokens of a user.
type SessionRepositoryImpl struct {
	client *redis.Client
	log    *zap.Logger
	now    func() time.Time
}

// NewSessionRepository creates a new session repository. A nil logger discards index cleanup failures.
func NewSessionRepository(client *redis.Client, log *zap.Logger) domain.SessionRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionRepositoryImpl{client: client, log: log, now: time.Now}
}

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now().UTC()
	}

	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired at %s", session.ExpiresAt)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	index := userIndexPrefix + session.UserID
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionPrefix+session.Token, data, ttl)
		pipe.SAdd(ctx, index, session.Token)
		// refresh TTLs are uniform, so the newest session bounds the index
		pipe.Expire(ctx, index, ttl)
		return nil
	})
	return err
}

// FindByToken implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByToken(ctx context.Context, token string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete implements domain.SessionRepository. Of several concurrent callers
// for the same token exactly one observes true.
func (r *SessionRepositoryImpl) Delete(ctx context.Context, token string) (bool, error) {
	session, err := r.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}

	n, err := r.client.Del(ctx, sessionPrefix+token).Result()
	if err != nil {
		return false, err
	}
	if n != 1 {
		return false, nil
	}

	// the session is gone; a stale index entry is skipped by DeleteByUserID
	if err := r.client.SRem(ctx, userIndexPrefix+session.UserID, token).Err(); err != nil {
		r.log.Warn("failed to unindex session", zap.String("user_id", session.UserID), zap.Error(err))
	}
	return true, nil
}

// DeleteByUserID implements domain.SessionRepository and returns how many live sessions were removed
func (r *SessionRepositoryImpl) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	index := userIndexPrefix + userID
	tokens, err := r.client.SMembers(ctx, index).Result()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, token := range tokens {
		n, err := r.client.Del(ctx, sessionPrefix+token).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}

	if err := r.client.Del(ctx, index).Err(); err != nil {
		return removed, err
	}
	return removed, nil
}
