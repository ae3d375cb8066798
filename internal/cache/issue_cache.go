// Package cache keeps recently fetched Jira issues in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

const keyPrefix = "testgen:issue:"

// NewRedisClient parses the Redis URL and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// IssueCache is a read-through store for issues. Every failure is logged and
// treated as a miss.
type IssueCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewIssueCache(client redis.UniversalClient, ttl time.Duration, m *metrics.Metrics) *IssueCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &IssueCache{client: client, ttl: ttl, metrics: m}
}

func Key(issueKey string) string {
	return keyPrefix + strings.ToUpper(strings.TrimSpace(issueKey))
}

func (c *IssueCache) Get(ctx context.Context, issueKey string) (*model.Issue, bool) {
	data, err := c.client.Get(ctx, Key(issueKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.IncCacheLookup("miss")
			return nil, false
		}
		c.metrics.IncCacheLookup("error")
		slog.WarnContext(ctx, "issue cache read failed", "issue_key", issueKey, "error", err)
		return nil, false
	}

	var issue model.Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		c.metrics.IncCacheLookup("error")
		slog.WarnContext(ctx, "issue cache entry is corrupt, ignoring", "issue_key", issueKey, "error", err)
		c.Invalidate(ctx, issueKey)
		return nil, false
	}

	c.metrics.IncCacheLookup("hit")
	return &issue, true
}

func (c *IssueCache) Set(ctx context.Context, issue *model.Issue) {
	data, err := json.Marshal(issue)
	if err != nil {
		slog.WarnContext(ctx, "issue cache encode failed", "issue_key", issue.Key, "error", err)
		return
	}
	if err := c.client.Set(ctx, Key(issue.Key), data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "issue cache write failed", "issue_key", issue.Key, "error", err)
	}
}

func (c *IssueCache) Invalidate(ctx context.Context, issueKey string) {
	if err := c.client.Del(ctx, Key(issueKey)).Err(); err != nil {
		slog.WarnContext(ctx, "issue cache delete failed", "issue_key", issueKey, "error", err)
	}
}
