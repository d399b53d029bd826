package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/QHanh/AutoVideo/internal/config"
)

const redisKeyPrefix = "task:"

// RedisStore keeps each task as a redis hash. Values are stringified on
// write and decoded back to their original types on read, so the record
// tolerates arbitrary extra fields per task.
type RedisStore struct {
	rdb *redis.Client
	ctx context.Context
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, ctx: ctx}, nil
}

func (r *RedisStore) Update(taskID string, st State, progress int, fields map[string]any) {
	values := map[string]any{
		"task_id":  taskID,
		"state":    int(st),
		"progress": clampProgress(progress),
	}
	for k, v := range fields {
		values[k] = v
	}

	encoded := make(map[string]any, len(values))
	for k, v := range values {
		encoded[k] = encodeValue(v)
	}
	r.rdb.HSet(r.ctx, redisKeyPrefix+taskID, encoded)
}

func (r *RedisStore) Get(taskID string) (map[string]any, bool) {
	raw, err := r.rdb.HGetAll(r.ctx, redisKeyPrefix+taskID).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	rec := make(map[string]any, len(raw))
	for k, v := range raw {
		rec[k] = decodeValue(v)
	}
	return rec, true
}

func (r *RedisStore) List(page, pageSize int) ([]map[string]any, int) {
	keys, err := r.scanKeys()
	if err != nil {
		return nil, 0
	}
	total := len(keys)

	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	var out []map[string]any
	for _, key := range keys[start:end] {
		raw, err := r.rdb.HGetAll(r.ctx, key).Result()
		if err != nil || len(raw) == 0 {
			continue
		}
		rec := make(map[string]any, len(raw))
		for k, v := range raw {
			rec[k] = decodeValue(v)
		}
		out = append(out, rec)
	}
	return out, total
}

func (r *RedisStore) Delete(taskID string) {
	r.rdb.Del(r.ctx, redisKeyPrefix+taskID)
}

func (r *RedisStore) scanKeys() ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.rdb.Scan(r.ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// encodeValue flattens a field to something HSET accepts. Slices and maps
// round-trip through JSON.
func encodeValue(v any) any {
	switch t := v.(type) {
	case string, int, int64, float64, bool:
		return v
	case State:
		return int(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func decodeValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if len(s) > 0 && (s[0] == '[' || s[0] == '{') {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}
