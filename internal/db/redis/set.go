package redis

import (
	"context"

	"github.com/kailas-cloud/newsrec/internal/db"
)

// SAdd adds members to a set. No members is a no-op.
func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	_, err := s.exec(ctx, db.OpSAdd, s.client.B().Sadd().Key(key).Member(members...).Build())
	return err
}

// SRem removes members from a set. No members is a no-op.
func (s *Store) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	_, err := s.exec(ctx, db.OpSRem, s.client.B().Srem().Key(key).Member(members...).Build())
	return err
}

// SMembers returns all members of a set in server order. A missing key is an empty set.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	res, err := s.exec(ctx, db.OpSMembers, s.client.B().Smembers().Key(key).Build())
	if err != nil {
		return nil, err
	}
	members, err := res.AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSMembers, Err: err}
	}
	return members, nil
}
