// internal/presence/presence.go
// Redis-backed presence tracking. Live matchmaking runs on the in-memory
// queue; these keys exist so other services and ops tooling can see who
// is online and who is searching.

package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	matchingPoolKey = "matching_pool"

	// Safety net so a crashed connection never leaves a status key forever
	statusTTL = 24 * time.Hour
)

type Status string

const (
	StatusOnline   Status = "ONLINE"
	StatusMatching Status = "MATCHING"
	StatusBusy     Status = "BUSY"
)

type Service interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	SetBusy(ctx context.Context, userID string) error
	GetStatus(ctx context.Context, userID string) (Status, error)
	JoinMatchingPool(ctx context.Context, userID string) error
	LeaveMatchingPool(ctx context.Context, userID string) error
	MatchingPoolCount(ctx context.Context) (int64, error)
	IsInMatchingPool(ctx context.Context, userID string) (bool, error)
}

type service struct {
	client *redis.Client
}

func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func statusKey(userID string) string {
	return fmt.Sprintf("user:%s:status", userID)
}

func (s *service) SetOnline(ctx context.Context, userID string) error {
	return s.client.Set(ctx, statusKey(userID), string(StatusOnline), statusTTL).Err()
}

func (s *service) SetOffline(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		return err
	}
	return s.client.SRem(ctx, matchingPoolKey, userID).Err()
}

func (s *service) SetBusy(ctx context.Context, userID string) error {
	if err := s.client.SRem(ctx, matchingPoolKey, userID).Err(); err != nil {
		return err
	}
	return s.client.Set(ctx, statusKey(userID), string(StatusBusy), statusTTL).Err()
}

func (s *service) GetStatus(ctx context.Context, userID string) (Status, error) {
	status, err := s.client.Get(ctx, statusKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return Status(status), nil
}

func (s *service) JoinMatchingPool(ctx context.Context, userID string) error {
	if err := s.client.Set(ctx, statusKey(userID), string(StatusMatching), statusTTL).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, matchingPoolKey, userID).Err()
}

func (s *service) LeaveMatchingPool(ctx context.Context, userID string) error {
	if err := s.client.SRem(ctx, matchingPoolKey, userID).Err(); err != nil {
		return err
	}

	exists, err := s.client.Exists(ctx, statusKey(userID)).Result()
	if err != nil {
		return err
	}
	if exists > 0 {
		return s.client.Set(ctx, statusKey(userID), string(StatusOnline), statusTTL).Err()
	}
	return nil
}

func (s *service) MatchingPoolCount(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, matchingPoolKey).Result()
}

func (s *service) IsInMatchingPool(ctx context.Context, userID string) (bool, error) {
	return s.client.SIsMember(ctx, matchingPoolKey, userID).Result()
}
