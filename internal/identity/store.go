// internal/identity/store.go
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrPopupNotFound = errors.New("popup not found or expired")

// PendingPopup is the server-side half of one provider popup.
type PendingPopup struct {
	State    string `json:"state"`
	TabID    string `json:"tab"`
	Provider string `json:"provider"`
	Verifier string `json:"verifier"`
}

type PopupStore interface {
	Save(ctx context.Context, p PendingPopup, ttl time.Duration) error
	// Take returns and removes the popup, so a state token is only usable once.
	Take(ctx context.Context, state string) (*PendingPopup, error)
	Delete(ctx context.Context, state string) error
}

type RedisPopupStore struct {
	redis *redis.Client
}

func NewPopupStore(redis *redis.Client) *RedisPopupStore {
	return &RedisPopupStore{
		redis: redis,
	}
}

func popupKey(state string) string {
	return "popup:" + state
}

func (s *RedisPopupStore) Save(ctx context.Context, p PendingPopup, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode popup: %w", err)
	}
	return s.redis.Set(ctx, popupKey(p.State), string(b), ttl).Err()
}

func (s *RedisPopupStore) Take(ctx context.Context, state string) (*PendingPopup, error) {
	val, err := s.redis.GetDel(ctx, popupKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPopupNotFound
		}
		return nil, err
	}
	var p PendingPopup
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("decode popup: %w", err)
	}
	return &p, nil
}

func (s *RedisPopupStore) Delete(ctx context.Context, state string) error {
	return s.redis.Del(ctx, popupKey(state)).Err()
}
