package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/newsrec/internal/db"
)

func TestSAdd(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("SADD", "newsrec:user:alice", "1", "2")).
		Return(mock.Result(mock.RedisInt64(2)))

	if err := s.SAdd(context.Background(), "newsrec:user:alice", "1", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSAdd_WrongType(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.Result(mock.RedisError(wrongTypeReply)))

	err := s.SAdd(context.Background(), "k", "m")
	if !errors.Is(err, db.ErrWrongType) || !isDBError(err, db.OpSAdd) {
		t.Fatalf("expected SADD wrong-type error, got %v", err)
	}
}

func TestSRem(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("SREM", "newsrec:readers:1", "alice")).
		Return(mock.Result(mock.RedisInt64(1)))

	if err := s.SRem(context.Background(), "newsrec:readers:1", "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSRem_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.ErrorResult(context.DeadlineExceeded))

	if err := s.SRem(context.Background(), "k", "m"); !isDBError(err, db.OpSRem) {
		t.Fatalf("expected SREM db.Error, got %v", err)
	}
}

func TestSetWrites_NoMembers(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	if err := s.SAdd(context.Background(), "k"); err != nil {
		t.Errorf("SAdd: unexpected error: %v", err)
	}
	if err := s.SRem(context.Background(), "k"); err != nil {
		t.Errorf("SRem: unexpected error: %v", err)
	}
}

func TestSMembers(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().
		Do(gomock.Any(), mock.Match("SMEMBERS", "k")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("2"), mock.RedisString("1"))))

	got, err := s.SMembers(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 members, got %v", got)
	}
}

func TestSMembers_Missing(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), mock.Match("SMEMBERS", "k")).Return(mock.Result(mock.RedisArray()))

	got, err := s.SMembers(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}

func TestSMembers_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), gomock.Any()).Return(mock.ErrorResult(context.DeadlineExceeded))

	if _, err := s.SMembers(context.Background(), "k"); !isDBError(err, db.OpSMembers) {
		t.Fatalf("expected SMEMBERS db.Error, got %v", err)
	}
}
