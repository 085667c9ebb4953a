// File: internal/infra/cache/redis_guard.go
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "feedback-reminders"

// RedisGuard shares the reminder call guard between processes.
// In-flight checks hold a SETNX lock that expires after lockTTL so a crashed process
// cannot block a volunteer forever. Completed results live in one hash per volunteer
// whose expiry is pushed back to resultTTL on every write.
type RedisGuard struct {
	client    *redis.Client
	lockTTL   time.Duration
	resultTTL time.Duration
	logger    *logrus.Entry
}

// NewRedisClient connects and pings, in the same way the rest of the stack checks its stores.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisGuard(client *redis.Client, lockTTL, resultTTL time.Duration, logger *logrus.Entry) *RedisGuard {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &RedisGuard{
		client:    client,
		lockTTL:   lockTTL,
		resultTTL: resultTTL,
		logger:    logger.WithField("component", "redis_guard"),
	}
}

func inFlightKey(volunteerID string) string {
	return keyPrefix + ":inflight:" + volunteerID
}

func resultsKey(volunteerID string) string {
	return keyPrefix + ":done:" + volunteerID
}

func hoursField(approvedHours float64) string {
	return strconv.FormatFloat(approvedHours, 'f', -1, 64)
}

func (g *RedisGuard) Begin(ctx context.Context, volunteerID string, approvedHours float64) (bool, error) {
	done, err := g.client.HExists(ctx, resultsKey(volunteerID), hoursField(approvedHours)).Result()
	if err != nil {
		return false, fmt.Errorf("redis guard: checking results: %w", err)
	}
	if done {
		return false, nil
	}

	acquired, err := g.client.SetNX(ctx, inFlightKey(volunteerID), hoursField(approvedHours), g.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis guard: acquiring lock: %w", err)
	}
	if !acquired {
		return false, nil
	}

	// another process may have completed the same pair between the two calls
	done, err = g.client.HExists(ctx, resultsKey(volunteerID), hoursField(approvedHours)).Result()
	if err != nil || done {
		g.client.Del(ctx, inFlightKey(volunteerID))
		if err != nil {
			return false, fmt.Errorf("redis guard: re-checking results: %w", err)
		}
		return false, nil
	}
	return true, nil
}

func (g *RedisGuard) Finish(ctx context.Context, volunteerID string, approvedHours float64, completed bool) {
	pipe := g.client.TxPipeline()
	pipe.Del(ctx, inFlightKey(volunteerID))
	if completed {
		key := resultsKey(volunteerID)
		pipe.HSet(ctx, key, hoursField(approvedHours), time.Now().Unix())
		if g.resultTTL > 0 {
			pipe.Expire(ctx, key, g.resultTTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		g.logger.WithError(err).WithField("volunteer_id", volunteerID).Warn("Failed to record reminder check result")
	}
}

func (g *RedisGuard) Forget(ctx context.Context, volunteerID string) error {
	if err := g.client.Del(ctx, resultsKey(volunteerID), inFlightKey(volunteerID)).Err(); err != nil {
		return fmt.Errorf("redis guard: forgetting volunteer %s: %w", volunteerID, err)
	}
	return nil
}

// Prune is a no-op: Redis expires result hashes and locks itself.
func (g *RedisGuard) Prune(context.Context) int {
	return 0
}
