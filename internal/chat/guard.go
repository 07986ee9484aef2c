package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultSendLockTTL bounds how long a crashed send can block the user
const DefaultSendLockTTL = 3 * time.Minute

// SendGuard admits one send per user at a time and holds the slot closed for
// a short debounce after each send finishes.
type SendGuard interface {
	Acquire(ctx context.Context, userID uuid.UUID) (bool, error)
	Release(ctx context.Context, userID uuid.UUID) error
}

// RedisSendGuard shares the guard across server instances
type RedisSendGuard struct {
	client   redis.Cmdable
	lockTTL  time.Duration
	debounce time.Duration
}

// NewRedisSendGuard creates a guard backed by client
func NewRedisSendGuard(client redis.Cmdable, lockTTL, debounce time.Duration) *RedisSendGuard {
	if lockTTL <= 0 {
		lockTTL = DefaultSendLockTTL
	}
	return &RedisSendGuard{client: client, lockTTL: lockTTL, debounce: debounce}
}

func sendGuardKey(userID uuid.UUID) string {
	return "cookwithai:send:" + userID.String()
}

// Acquire implements SendGuard
func (g *RedisSendGuard) Acquire(ctx context.Context, userID uuid.UUID) (bool, error) {
	ok, err := g.client.SetNX(ctx, sendGuardKey(userID), "sending", g.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire send guard: %w", err)
	}
	return ok, nil
}

// Release implements SendGuard. The key lingers for the debounce window.
func (g *RedisSendGuard) Release(ctx context.Context, userID uuid.UUID) error {
	key := sendGuardKey(userID)
	var err error
	if g.debounce > 0 {
		err = g.client.Set(ctx, key, "cooldown", g.debounce).Err()
	} else {
		err = g.client.Del(ctx, key).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to release send guard: %w", err)
	}
	return nil
}

// MemorySendGuard is the single-instance guard used when Redis is not configured
type MemorySendGuard struct {
	mu       sync.Mutex
	until    map[uuid.UUID]time.Time
	lockTTL  time.Duration
	debounce time.Duration
	now      func() time.Time
}

// NewMemorySendGuard creates an in-process guard
func NewMemorySendGuard(lockTTL, debounce time.Duration) *MemorySendGuard {
	if lockTTL <= 0 {
		lockTTL = DefaultSendLockTTL
	}
	return &MemorySendGuard{
		until:    make(map[uuid.UUID]time.Time),
		lockTTL:  lockTTL,
		debounce: debounce,
		now:      time.Now,
	}
}

// Acquire implements SendGuard
func (g *MemorySendGuard) Acquire(_ context.Context, userID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if until, ok := g.until[userID]; ok && now.Before(until) {
		return false, nil
	}
	g.until[userID] = now.Add(g.lockTTL)
	return true, nil
}

// Release implements SendGuard
func (g *MemorySendGuard) Release(_ context.Context, userID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.debounce > 0 {
		g.until[userID] = g.now().Add(g.debounce)
	} else {
		delete(g.until, userID)
	}
	return nil
}
