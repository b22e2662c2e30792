package repository

import (
	"context"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/util"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another worker is not released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RecomputeLock serializes score recomputation of one triple across
// processes.
type RecomputeLock struct {
	Redis  *redis.Client
	prefix string
}

func NewRecomputeLock(rdb *redis.Client) *RecomputeLock {
	return &RecomputeLock{Redis: rdb, prefix: "scores:recompute"}
}

func (l *RecomputeLock) key(projectID, userID, questionnaireKey string) string {
	return fmt.Sprintf("%s:%s:%s:%s", l.prefix, projectID, userID, questionnaireKey)
}

// Acquire takes the lock for ttl. It returns util.ErrLockHeld when another
// recomputation of the same triple is running.
func (l *RecomputeLock) Acquire(ctx context.Context, projectID, userID, questionnaireKey string, ttl time.Duration) (func(), error) {
	key := l.key(projectID, userID, questionnaireKey)
	token := model.GenerateUUID()

	ok, err := l.Redis.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire recompute lock: %w", err)
	}
	if !ok {
		return nil, util.ErrLockHeld
	}

	return func() {
		// the request context may already be cancelled here
		releaseScript.Run(context.Background(), l.Redis, []string{key}, token)
	}, nil
}
