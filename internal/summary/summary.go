// Package summary reads the backend's precomputed score summary.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"AlertSentinel/internal/model"
)

// ErrNoSummary means the backend has not published a summary.
var ErrNoSummary = errors.New("summary: none published")

// Source yields the latest backend summary.
type Source interface {
	Latest(ctx context.Context) (*model.ScoreSummary, error)
}

// NoopSource never has a summary.
type NoopSource struct{}

func (NoopSource) Latest(context.Context) (*model.ScoreSummary, error) { return nil, ErrNoSummary }

// StaticSource serves a summary decoded ahead of time.
type StaticSource struct {
	Summary *model.ScoreSummary
}

func (s StaticSource) Latest(context.Context) (*model.ScoreSummary, error) {
	if s.Summary == nil || s.Summary.LastAction == nil {
		return nil, ErrNoSummary
	}
	return s.Summary, nil
}

// RedisClient is the subset of the go-redis client the source needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads a JSON summary document stored at a single key.
type RedisSource struct {
	client RedisClient
	key    string
}

func NewRedisSource(client RedisClient, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

func (s *RedisSource) Latest(ctx context.Context) (*model.ScoreSummary, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSummary
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return Parse(raw)
}

// Parse decodes a summary document. A document without a usable last action
// is reported as ErrNoSummary.
func Parse(raw []byte) (*model.ScoreSummary, error) {
	var sum model.ScoreSummary
	if err := json.Unmarshal(raw, &sum); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	la := sum.LastAction
	if la == nil || la.Ticker == "" {
		return nil, ErrNoSummary
	}
	switch a := string(la.Action); {
	case strings.EqualFold(a, string(model.ActionBuy)):
		la.Action = model.ActionBuy
	case strings.EqualFold(a, string(model.ActionSell)):
		la.Action = model.ActionSell
	default:
		return nil, fmt.Errorf("decode summary: unknown action %q", la.Action)
	}
	return &sum, nil
}

var newRedisClient = func(opts *redis.Options) *redis.Client {
	return redis.NewClient(opts)
}

// NewRedisClient accepts either host:port or a redis:// URL.
func NewRedisClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	return newRedisClient(opts), nil
}
