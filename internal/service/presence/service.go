package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service tracks which users are currently linked, via redis keys with a TTL.
// A user counts as online while their heartbeat key has not expired. This is
// the external collaborator the rules engine delegates presence and kick
// policy to; the engine itself never skips a turn.
type Service struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewService(rdb *redis.Client, ttlSeconds int) *Service {
	return &Service{
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}
}

func presenceKey(username string) string {
	return fmt.Sprintf("presence:%s", username)
}

// Touch refreshes the heartbeat for username.
func (s *Service) Touch(ctx context.Context, username string) error {
	return s.rdb.Set(ctx, presenceKey(username), time.Now().Unix(), s.ttl).Err()
}

// Clear drops the heartbeat, marking the user offline immediately.
func (s *Service) Clear(ctx context.Context, username string) error {
	return s.rdb.Del(ctx, presenceKey(username)).Err()
}

// Online reports whether username has a live heartbeat.
func (s *Service) Online(ctx context.Context, username string) (bool, error) {
	n, err := s.rdb.Exists(ctx, presenceKey(username)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Offline filters usernames down to those without a live heartbeat.
func (s *Service) Offline(ctx context.Context, usernames []string) ([]string, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var offline []string
	for _, username := range usernames {
		online, err := s.Online(ctx, username)
		if err != nil {
			return nil, err
		}
		if !online {
			offline = append(offline, username)
		}
	}
	return offline, nil
}
