package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	quizListCacheKey = "quizzes:active"
	cacheTTL         = 10 * time.Minute
)

func answerKeyCacheKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:answer_key", quizID)
}

// cacheGet unmarshals a cached JSON value into dest. Returns false on a miss
// or any Redis/decoding failure; the caller falls back to the database.
func cacheGet(rdb *redis.Client, key string, dest interface{}) bool {
	if rdb == nil {
		return false
	}

	data, err := rdb.Get(context.Background(), key).Result()
	if err != nil {
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Printf("Failed to decode cached value for %s: %v", key, err)
		return false
	}
	return true
}

// cacheSet stores a JSON value best-effort; a Redis failure is logged, never
// surfaced.
func cacheSet(rdb *redis.Client, key string, value interface{}) {
	if rdb == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Failed to encode value for %s: %v", key, err)
		return
	}

	if err := rdb.Set(context.Background(), key, data, cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}
}

// cacheInvalidateQuiz drops the cached public quiz list and the answer key of
// one quiz. Called after every authoring write touching that quiz.
func cacheInvalidateQuiz(rdb *redis.Client, quizID uint) {
	if rdb == nil {
		return
	}

	if err := rdb.Del(context.Background(), quizListCacheKey, answerKeyCacheKey(quizID)).Err(); err != nil {
		log.Printf("Failed to invalidate caches for quiz %d: %v", quizID, err)
	}
}
