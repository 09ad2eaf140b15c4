// Package questioncache puts a Redis cache in front of the question bank.
// The bank is read-mostly and seeded once, so cached set listings with a
// jittered TTL keep session starts off the database.
package questioncache

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/wordrush/wordrush-services/internal/gamesvc/models"
)

// Loader fetches question bank content from the backing store on cache miss.
type Loader interface {
	ListSets(ctx context.Context) ([]*models.QuestionSet, error)
	ListBySet(ctx context.Context, setID int64) ([]*models.Question, error)
	ListAll(ctx context.Context) ([]*models.Question, error)
}

type Cache struct {
	client *redis.Client
	loader Loader
	ttl    time.Duration
	sf     singleflight.Group
}

func New(client *redis.Client, loader Loader, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (c *Cache) ListSets(ctx context.Context) ([]*models.QuestionSet, error) {
	var sets []*models.QuestionSet
	err := c.cached(ctx, "qbank:sets", &sets, func() (interface{}, error) {
		return c.loader.ListSets(ctx)
	})
	return sets, err
}

func (c *Cache) ListBySet(ctx context.Context, setID int64) ([]*models.Question, error) {
	var questions []*models.Question
	key := "qbank:set:" + strconv.FormatInt(setID, 10)
	err := c.cached(ctx, key, &questions, func() (interface{}, error) {
		return c.loader.ListBySet(ctx, setID)
	})
	return questions, err
}

func (c *Cache) ListAll(ctx context.Context) ([]*models.Question, error) {
	var questions []*models.Question
	err := c.cached(ctx, "qbank:all", &questions, func() (interface{}, error) {
		return c.loader.ListAll(ctx)
	})
	return questions, err
}

// cached reads key into out, falling back to load on miss. Concurrent misses
// for the same key collapse into one loader call.
func (c *Cache) cached(ctx context.Context, key string, out interface{}, load func() (interface{}, error)) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(raw, out)
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// re-check in case another goroutine filled the key
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return raw, nil
		}

		value, err := load()
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		// best effort: a failed SET just means the next call loads again
		_ = c.client.Set(ctx, key, encoded, c.ttlWithJitter()).Err()
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(result.([]byte), out)
}

// ttlWithJitter spreads expirations by up to 10% so hot keys do not all
// reload at once. Concurrent loads share the locked top-level rand.
func (c *Cache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
