package cache_test

import (
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"quizlive/internal/models"
	"quizlive/pkg/cache"
)

func newTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return cache.NewRedisCache(mr.Addr())
}

func TestSessionSummaryRoundtrip(t *testing.T) {
	c := newTestCache(t)

	summary := &models.SessionSummary{
		ID:            1,
		Code:          "AB12CD",
		Status:        models.StatusWaiting,
		QuizTitle:     "Capitals",
		QuestionCount: 3,
	}
	if err := c.SetSessionSummary(summary); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.GetSessionSummary("AB12CD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "AB12CD" || got.QuizTitle != "Capitals" || got.QuestionCount != 3 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestInvalidateSession(t *testing.T) {
	c := newTestCache(t)

	summary := &models.SessionSummary{ID: 1, Code: "AB12CD", Status: models.StatusWaiting}
	if err := c.SetSessionSummary(summary); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.InvalidateSession("AB12CD"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	_, err := c.GetSessionSummary("AB12CD")
	if !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil after invalidation, got %v", err)
	}
}

func TestGetSessionSummaryMiss(t *testing.T) {
	c := newTestCache(t)

	_, err := c.GetSessionSummary("NOPE42")
	if !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestLeaderboardSnapshot(t *testing.T) {
	c := newTestCache(t)

	entries := []models.LeaderboardEntry{
		{Name: "Alice", Score: 5},
		{Name: "Bob", Score: 3},
		{Name: "Carol", Score: 4},
	}
	if err := c.SetLeaderboard("AB12CD", entries); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.GetLeaderboard("AB12CD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// Sorted set comes back highest score first.
	wantOrder := []string{"Alice", "Carol", "Bob"}
	for i, name := range wantOrder {
		if got[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
	if got[0].Score != 5 || got[2].Score != 3 {
		t.Fatalf("scores not preserved: %+v", got)
	}
}

func TestSetLeaderboardReplacesSnapshot(t *testing.T) {
	c := newTestCache(t)

	if err := c.SetLeaderboard("AB12CD", []models.LeaderboardEntry{
		{Name: "Alice", Score: 1},
		{Name: "Bob", Score: 2},
	}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.SetLeaderboard("AB12CD", []models.LeaderboardEntry{
		{Name: "Carol", Score: 7},
	}); err != nil {
		t.Fatalf("second set: %v", err)
	}

	got, err := c.GetLeaderboard("AB12CD")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Carol" || got[0].Score != 7 {
		t.Fatalf("stale members survived the replace: %+v", got)
	}
}
