package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizverse-service/internal/domain"
)

// CatalogLoader fetches quiz content from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	LoadQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error)
}

// Catalog caches whole quiz documents in Redis and falls back to a loader on
// cache miss. The full document is cached (not just answer keys) because the
// ranking path needs question ids and option lists, and listings need titles.
// Keys: SET quiz:{quizID}:content {json} with TTL.
type Catalog struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalog(client *redis.Client, loader CatalogLoader, ttl time.Duration) *Catalog {
	return &Catalog{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *Catalog) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := c.contentKey(quizID)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Corrupt cache entry; fall through and reload.
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		if raw, err := json.Marshal(quiz); err == nil {
			// best-effort cache fill
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// ListQuizzesByOwner serves the admin view straight from the loader; owner
// listings are too cold to be worth caching.
func (c *Catalog) ListQuizzesByOwner(ctx context.Context, ownerID string) ([]domain.Quiz, error) {
	return c.loader.LoadQuizzesByOwner(ctx, ownerID)
}

// Invalidate drops a quiz's cached document, for authoring flows that edit
// quiz content and want rankings to pick the change up before TTL expiry.
func (c *Catalog) Invalidate(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, c.contentKey(quizID)).Err()
}

func (c *Catalog) contentKey(quizID string) string {
	return "quiz:" + quizID + ":content"
}

func (c *Catalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
