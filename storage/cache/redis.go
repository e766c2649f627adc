// Package cache keeps short-lived state in Redis.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/section"
)

const draftPrefix = "schedule:draft:"

// NewRedisClient connects to the Redis server of conf and checks the connection.
func NewRedisClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

// DraftStore keeps schedule drafts as JSON values expiring after their TTL.
type DraftStore struct {
	client *redis.Client
}

var _ section.DraftStore = (*DraftStore)(nil) // interface compliance check

func NewDraftStore(client *redis.Client) *DraftStore {
	return &DraftStore{client: client}
}

func (s *DraftStore) GetDraft(ctx context.Context, id string) (section.Draft, error) {
	data, err := s.client.Get(ctx, draftKey(id)).Bytes()
	if err == redis.Nil {
		return section.Draft{}, section.ErrDraftNotFound
	}
	if err != nil {
		return section.Draft{}, errors.Wrap(err, "getting draft")
	}
	return decodeDraft(data)
}

// SaveDraft stores d for ttl. A ttl <= 0 keeps it until deleted.
func (s *DraftStore) SaveDraft(ctx context.Context, d section.Draft, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	data, err := encodeDraft(d)
	if err != nil {
		return err
	}
	return errors.Wrap(s.client.Set(ctx, draftKey(d.ID), data, ttl).Err(), "saving draft")
}

func (s *DraftStore) DeleteDraft(ctx context.Context, id string) error {
	return errors.Wrap(s.client.Del(ctx, draftKey(id)).Err(), "deleting draft")
}

func draftKey(id string) string { return draftPrefix + id }

func encodeDraft(d section.Draft) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(err, "encoding draft")
	}
	return data, nil
}

func decodeDraft(data []byte) (section.Draft, error) {
	var d section.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return section.Draft{}, errors.Wrap(err, "decoding draft")
	}
	return d, nil
}
