// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/models"
)

// Key layout, with base = {prefix}:{tag}:
//
//	{base}:current          HASH  version, count
//	{base}:seq              STRING version counter
//	{base}:v{n}:i:{item}    ZSET  other item -> score
//	{base}:v{n}:items       SET   every ZSET key of version n
//
// Scripts derive version keys from the pointer at run time, so all keys of
// one tag must live on one node; cluster deployments need a hash tag in the
// prefix, e.g. "{curator}:edges".

// swapScript publishes a version and schedules the previous one to expire.
var swapScript = redis.NewScript(`
local old = redis.call('HGET', KEYS[1], 'version')
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'count', ARGV[2])
if old and old ~= ARGV[1] then
  local items = ARGV[4] .. ':v' .. old .. ':items'
  for _, k in ipairs(redis.call('SMEMBERS', items)) do
    redis.call('EXPIRE', k, ARGV[3])
  end
  redis.call('EXPIRE', items, ARGV[3])
end
return old
`)

// readScript resolves the pointer and reads one item's set atomically.
var readScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], 'version')
if not v then
  return {}
end
return redis.call('ZRANGE', ARGV[1] .. ':v' .. v .. ':i:' .. ARGV[2], 0, -1, 'WITHSCORES')
`)

// RedisOptions configures OpenRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key. Defaults to "curator:edges".
	Prefix string

	// Grace is how long a superseded version stays readable. Defaults to 5m.
	Grace time.Duration
}

// RedisStore is an EdgeStore on Redis sorted sets.
type RedisStore struct {
	client  *redis.Client
	ownsCli bool
	prefix  string
	grace   time.Duration

	writeMu sync.Mutex
}

// pipelineChunk bounds the number of commands per round trip.
const pipelineChunk = 1000

// NewRedisStore wraps an existing client. Close does not close it.
func NewRedisStore(client *redis.Client, prefix string, grace time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "curator:edges"
	}
	if grace <= 0 {
		grace = 5 * time.Minute
	}
	return &RedisStore{client: client, prefix: prefix, grace: grace}
}

// OpenRedisStore connects to Redis and verifies the connection.
func OpenRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	s := NewRedisStore(client, opts.Prefix, opts.Grace)
	s.ownsCli = true

	logging.Info().
		Str("addr", opts.Addr).
		Str("prefix", s.prefix).
		Dur("grace", s.grace).
		Msg("Redis edge store connected")
	return s, nil
}

// Close closes the client if the store created it.
func (s *RedisStore) Close() error {
	if !s.ownsCli {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) base(algorithm string) string {
	return s.prefix + ":" + algorithm
}

func (s *RedisStore) currentKey(algorithm string) string {
	return s.base(algorithm) + ":current"
}

func (s *RedisStore) versionBase(algorithm string, version int64) string {
	return fmt.Sprintf("%s:v%d", s.base(algorithm), version)
}

// ReplaceEdges writes the new version, then swaps the pointer with a script.
func (s *RedisStore) ReplaceEdges(ctx context.Context, algorithm string, edges []models.SimilarityEdge) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	version, err := s.client.Incr(ctx, s.base(algorithm)+":seq").Result()
	if err != nil {
		return fmt.Errorf("allocate edge version: %w", err)
	}

	if err := s.writeVersion(ctx, algorithm, version, edges); err != nil {
		s.dropVersion(algorithm, version)
		return err
	}

	err = swapScript.Run(ctx, s.client,
		[]string{s.currentKey(algorithm)},
		version, len(edges), int64(s.grace/time.Second), s.base(algorithm),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.dropVersion(algorithm, version)
		return fmt.Errorf("swap edge set pointer: %w", err)
	}
	return nil
}

func (s *RedisStore) writeVersion(ctx context.Context, algorithm string, version int64, edges []models.SimilarityEdge) error {
	vbase := s.versionBase(algorithm, version)
	itemsKey := vbase + ":items"

	for start := 0; start < len(edges); start += pipelineChunk {
		end := start + pipelineChunk
		if end > len(edges) {
			end = len(edges)
		}
		_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, e := range edges[start:end] {
				e = canonical(e)
				keyA := vbase + ":i:" + e.ItemA
				keyB := vbase + ":i:" + e.ItemB
				pipe.ZAdd(ctx, keyA, redis.Z{Score: e.Score, Member: e.ItemB})
				pipe.ZAdd(ctx, keyB, redis.Z{Score: e.Score, Member: e.ItemA})
				pipe.SAdd(ctx, itemsKey, keyA, keyB)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("write edges: %w", err)
		}
	}
	return nil
}

// dropVersion removes a version that never became current.
func (s *RedisStore) dropVersion(algorithm string, version int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	itemsKey := s.versionBase(algorithm, version) + ":items"
	keys, err := s.client.SMembers(ctx, itemsKey).Result()
	if err == nil {
		err = s.client.Del(ctx, append(keys, itemsKey)...).Err()
	}
	if err != nil {
		logging.Warn().Err(err).
			Str("algorithm", algorithm).
			Int64("version", version).
			Msg("Failed to drop unpublished edge version")
	}
}

// EdgesForItem implements EdgeStore.
func (s *RedisStore) EdgesForItem(ctx context.Context, algorithm, itemID string) ([]models.SimilarityEdge, error) {
	raw, err := readScript.Run(ctx, s.client,
		[]string{s.currentKey(algorithm)},
		s.base(algorithm), itemID,
	).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read edges for %s: %w", itemID, err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("read edges for %s: odd reply length %d", itemID, len(raw))
	}

	edges := make([]models.SimilarityEdge, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		score, err := strconv.ParseFloat(raw[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse score for %s/%s: %w", itemID, raw[i], err)
		}
		edges = append(edges, canonical(models.SimilarityEdge{
			ItemA:     itemID,
			ItemB:     raw[i],
			Score:     score,
			Algorithm: algorithm,
		}))
	}
	return edges, nil
}

// CountEdges implements EdgeStore.
func (s *RedisStore) CountEdges(ctx context.Context, algorithm string) (int, error) {
	n, err := s.client.HGet(ctx, s.currentKey(algorithm), "count").Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}
