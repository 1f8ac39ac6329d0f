package repo

import (
	"context"
	"strconv"
	"strings"

	perr "cardrelay/internal/platform/errors"

	dom "cardrelay/internal/services/relay/domain"

	"github.com/redis/go-redis/v9"
)

const (
	redisNameField   = "name"
	redisThreadField = "thread:"
)

// putThread only writes into an existing chat hash
var putThread = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1`)

// RedisStore keeps one hash per chat: "name" plus a "thread:<category>" field per subthread
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis wraps rdb; prefix namespaces the keys (default "relay:chat:")
func NewRedis(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "relay:chat:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(chatID int64) string { return s.prefix + strconv.FormatInt(chatID, 10) }

// Get implements dom.ChatCategoryStore
func (s *RedisStore) Get(ctx context.Context, chatID int64) (dom.ChatRecord, bool, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(chatID)).Result()
	if err != nil {
		return dom.ChatRecord{}, false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "hgetall chat %d", chatID)
	}
	if len(fields) == 0 {
		return dom.ChatRecord{}, false, nil
	}
	rec := dom.ChatRecord{ChatID: chatID, Name: fields[redisNameField], Threads: map[string]int{}}
	for f, v := range fields {
		cat, ok := strings.CutPrefix(f, redisThreadField)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return dom.ChatRecord{}, false, perr.Wrapf(err, perr.ErrorCodeMalformed, "chat %d thread %q", chatID, cat)
		}
		rec.Threads[cat] = n
	}
	return rec, true, nil
}

// Put implements dom.ChatCategoryStore
func (s *RedisStore) Put(ctx context.Context, chatID int64, category string, threadID int) error {
	n, err := putThread.Run(ctx, s.rdb, []string{s.key(chatID)}, redisThreadField+category, threadID).Int()
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "put thread for chat %d", chatID)
	}
	if n == 0 {
		return perr.NotFoundf("chat %d is not registered", chatID)
	}
	return nil
}

// Register implements dom.ChatCategoryStore
func (s *RedisStore) Register(ctx context.Context, chatID int64, name string) (bool, error) {
	ok, err := s.rdb.HSetNX(ctx, s.key(chatID), redisNameField, name).Result()
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "register chat %d", chatID)
	}
	return ok, nil
}

// Remove implements dom.ChatCategoryStore
func (s *RedisStore) Remove(ctx context.Context, chatID int64) (bool, error) {
	n, err := s.rdb.Del(ctx, s.key(chatID)).Result()
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "remove chat %d", chatID)
	}
	return n > 0, nil
}
