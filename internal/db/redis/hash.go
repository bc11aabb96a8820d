package redis

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/newsrec/internal/db"
)

// scanBatch is the COUNT hint for SCAN.
const scanBatch = 200

// HSet sets hash fields. Fields are sent in key order.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	_, err := s.exec(ctx, db.OpHSet, s.hset(key, fields))
	return err
}

// HSetMulti pipelines one HSET per item in a single round-trip.
// Items are not applied atomically: on error some hashes may already be written.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmds[i] = s.hset(item.Key, item.Fields)
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, wrongType(err))}
		}
	}
	return nil
}

func (s *Store) hset(key string, fields map[string]string) rueidis.Completed {
	cmd := s.client.B().Hset().Key(key).FieldValue()
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		cmd = cmd.FieldValue(k, fields[k])
	}
	return cmd.Build()
}

// HGetAll returns all fields of a hash. A missing key is an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	res, err := s.exec(ctx, db.OpHGetAll, s.client.B().Hgetall().Key(key).Build())
	if err != nil {
		return nil, err
	}
	m, err := res.AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HGetAllMulti pipelines HGETALL for every key. Results follow the order of keys.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.client.B().Hgetall().Key(key).Build()
	}

	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", keys[i], wrongType(err))}
		}
		out[i] = m
	}
	return out, nil
}

// HIncrBy adds delta to an integer hash field and returns the new value.
func (s *Store) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	cmd := s.client.B().Hincrby().Key(key).Field(field).Increment(delta).Build()
	res, err := s.exec(ctx, db.OpHIncrBy, cmd)
	if err != nil {
		return 0, err
	}
	n, err := res.AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpHIncrBy, Err: err}
	}
	return n, nil
}

// Del deletes a key of any type.
func (s *Store) Del(ctx context.Context, key string) error {
	_, err := s.exec(ctx, db.OpDel, s.client.B().Del().Key(key).Build())
	return err
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	res, err := s.exec(ctx, db.OpExists, s.client.B().Exists().Key(key).Build())
	if err != nil {
		return false, err
	}
	n, err := res.AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return n > 0, nil
}

// Scan returns every key matching pattern, sorted and without the duplicates
// SCAN may report while the keyspace is rehashing.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		res, err := s.exec(ctx, db.OpScan, cmd)
		if err != nil {
			return nil, err
		}
		entry, err := res.AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		for _, k := range entry.Elements {
			seen[k] = struct{}{}
		}
		if cursor = entry.Cursor; cursor == 0 {
			break
		}
	}
	return slices.Sorted(maps.Keys(seen)), nil
}
