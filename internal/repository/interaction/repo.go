package interaction

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/newsrec/internal/domain"
	dominter "github.com/kailas-cloud/newsrec/internal/domain/interaction"
)

// viewsField holds the counter inside a document's views hash.
const viewsField = "count"

// allKinds lists every kind a user may have recorded on a document.
var allKinds = []dominter.Kind{dominter.KindComment, dominter.KindView, dominter.KindLike}

// store is the consumer interface for interactions (ISP).
type store interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
}

// Repo keeps, per user, the set of documents they interacted with and the kinds
// of action taken, per document the reverse set of users so a deleted document
// can be forgotten, and per document a view counter.
type Repo struct {
	store store
}

// New creates an interaction repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Record stores an interaction. Recording the same user, document and kind twice
// leaves the sets unchanged, but every view increments the view counter.
func (r *Repo) Record(ctx context.Context, in *dominter.Interaction) error {
	uk := userKey(in.UserID())
	if err := r.store.SAdd(ctx, uk, in.DocumentID()); err != nil {
		return fmt.Errorf("sadd %s: %w", uk, err)
	}
	ak := actsKey(in.UserID())
	if err := r.store.SAdd(ctx, ak, actMember(in.DocumentID(), in.Kind())); err != nil {
		return fmt.Errorf("sadd %s: %w", ak, err)
	}
	rk := readersKey(in.DocumentID())
	if err := r.store.SAdd(ctx, rk, in.UserID()); err != nil {
		return fmt.Errorf("sadd %s: %w", rk, err)
	}
	if in.Kind() == dominter.KindView {
		vk := viewsKey(in.DocumentID())
		if _, err := r.store.HIncrBy(ctx, vk, viewsField, 1); err != nil {
			return fmt.Errorf("hincrby %s: %w", vk, err)
		}
	}
	return nil
}

// DocumentIDs returns the documents a user interacted with, sorted by ID.
func (r *Repo) DocumentIDs(ctx context.Context, userID string) ([]string, error) {
	key := userKey(userID)
	ids, err := r.store.SMembers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	sort.Strings(ids)
	return ids, nil
}

// History returns, per document, the kinds of action a user took.
// Documents are sorted by ID and kinds by name.
func (r *Repo) History(ctx context.Context, userID string) ([]dominter.Activity, error) {
	key := actsKey(userID)
	members, err := r.store.SMembers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}

	byDoc := make(map[string][]dominter.Kind)
	for _, m := range members {
		docID, kind, ok := parseActMember(m)
		if !ok {
			continue
		}
		byDoc[docID] = append(byDoc[docID], kind)
	}

	out := make([]dominter.Activity, 0, len(byDoc))
	for _, docID := range slices.Sorted(maps.Keys(byDoc)) {
		kinds := byDoc[docID]
		slices.Sort(kinds)
		out = append(out, dominter.Activity{DocumentID: docID, Kinds: kinds})
	}
	return out, nil
}

// ViewCounts returns how many views each document received, in the order of ids.
// Documents never viewed count zero.
func (r *Repo) ViewCounts(ctx context.Context, ids []string) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = viewsKey(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("view counts: %w", err)
	}

	counts := make([]int64, len(ids))
	for i, h := range hashes {
		raw, ok := h[viewsField]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("view count of %s: %w", ids[i], err)
		}
		counts[i] = n
	}
	return counts, nil
}

// ForgetDocument removes a document from every user's history and drops its view counter.
func (r *Repo) ForgetDocument(ctx context.Context, documentID string) error {
	rk := readersKey(documentID)
	users, err := r.store.SMembers(ctx, rk)
	if err != nil {
		return fmt.Errorf("smembers %s: %w", rk, err)
	}

	acts := make([]string, len(allKinds))
	for i, k := range allKinds {
		acts[i] = actMember(documentID, k)
	}
	for _, u := range users {
		uk := userKey(u)
		if err := r.store.SRem(ctx, uk, documentID); err != nil {
			return fmt.Errorf("srem %s: %w", uk, err)
		}
		ak := actsKey(u)
		if err := r.store.SRem(ctx, ak, acts...); err != nil {
			return fmt.Errorf("srem %s: %w", ak, err)
		}
	}
	if err := r.store.Del(ctx, rk); err != nil {
		return fmt.Errorf("del %s: %w", rk, err)
	}
	vk := viewsKey(documentID)
	if err := r.store.Del(ctx, vk); err != nil {
		return fmt.Errorf("del %s: %w", vk, err)
	}
	return nil
}

func userKey(userID string) string {
	return fmt.Sprintf("%suser:%s", domain.KeyPrefix, userID)
}

func actsKey(userID string) string {
	return fmt.Sprintf("%sacts:%s", domain.KeyPrefix, userID)
}

func readersKey(documentID string) string {
	return fmt.Sprintf("%sreaders:%s", domain.KeyPrefix, documentID)
}

func viewsKey(documentID string) string {
	return fmt.Sprintf("%sviews:%s", domain.KeyPrefix, documentID)
}

// actMember encodes a document and kind as one set member. Document IDs never contain ':'.
func actMember(documentID string, kind dominter.Kind) string {
	return documentID + ":" + string(kind)
}

func parseActMember(m string) (string, dominter.Kind, bool) {
	i := strings.LastIndexByte(m, ':')
	if i <= 0 || i == len(m)-1 {
		return "", "", false
	}
	return m[:i], dominter.Kind(m[i+1:]), true
}
