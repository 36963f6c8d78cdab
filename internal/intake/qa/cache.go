// internal/intake/qa/cache.go
package qa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"finance-intake/internal/common/database"
	"finance-intake/internal/common/logger"
)

// AnswerCache stores external responder answers in Redis keyed by the
// normalized question, so repeated clarifying questions across sessions
// don't re-hit the responder. Cache failures are logged and ignored.
type AnswerCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewAnswerCache(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *AnswerCache {
	return &AnswerCache{
		redis:  redis,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "qa-cache"}),
	}
}

func cacheKey(question string) string {
	norm := strings.ToLower(strings.TrimSpace(question))
	norm = strings.Join(strings.Fields(norm), " ")
	sum := sha256.Sum256([]byte(norm))
	return "qa:answer:" + hex.EncodeToString(sum[:16])
}

// Get returns a cached answer if present.
func (c *AnswerCache) Get(ctx context.Context, question string) (Answer, bool) {
	raw, err := c.redis.Get(ctx, cacheKey(question))
	if err != nil {
		return Answer{}, false
	}
	var answer Answer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		c.logger.Warn("corrupt cache entry dropped", map[string]interface{}{"error": err.Error()})
		_ = c.redis.Del(ctx, cacheKey(question))
		return Answer{}, false
	}
	return answer, true
}

// Put stores an answer with the configured TTL.
func (c *AnswerCache) Put(ctx context.Context, question string, answer Answer) {
	raw, err := json.Marshal(answer)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, cacheKey(question), string(raw), c.ttl); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
