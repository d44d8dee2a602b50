package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"quizlive/internal/models"
)

// RedisCache holds read-side artifacts: the session summary served on join
// lookups and the last leaderboard snapshot. The database stays the source of
// truth; everything here is rebuilt from it on a miss.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

func (c *RedisCache) SetSessionSummary(summary *models.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	key := "session:" + summary.Code
	return c.client.Set(c.ctx, key, data, 24*time.Hour).Err()
}

func (c *RedisCache) GetSessionSummary(code string) (*models.SessionSummary, error) {
	key := "session:" + code
	data, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var summary models.SessionSummary
	err = json.Unmarshal(data, &summary)
	return &summary, err
}

// InvalidateSession drops the cached summary after a state transition so the
// next lookup rebuilds it from the database.
func (c *RedisCache) InvalidateSession(code string) error {
	return c.client.Del(c.ctx, "session:"+code).Err()
}

func (c *RedisCache) SetLeaderboard(code string, entries []models.LeaderboardEntry) error {
	key := "leaderboard:" + code

	pipe := c.client.Pipeline()
	pipe.Del(c.ctx, key)
	for _, entry := range entries {
		pipe.ZAdd(c.ctx, key, &redis.Z{
			Score:  float64(entry.Score),
			Member: entry.Name,
		})
	}
	pipe.Expire(c.ctx, key, 24*time.Hour)

	_, err := pipe.Exec(c.ctx)
	return err
}

// GetLeaderboard returns the cached snapshot ordered by score descending.
// Ranks are not stored in the sorted set; callers wanting exact tie ranks
// recompute from the ledger.
func (c *RedisCache) GetLeaderboard(code string) ([]models.LeaderboardEntry, error) {
	key := "leaderboard:" + code

	results, err := c.client.ZRevRangeWithScores(c.ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = models.LeaderboardEntry{
			Name:  z.Member.(string),
			Score: int(z.Score),
		}
	}

	return entries, nil
}
