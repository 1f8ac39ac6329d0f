// Package repo provides the ChatCategoryStore backends: a JSON file, Postgres and Redis
package repo

import (
	dom "cardrelay/internal/services/relay/domain"
)

// Backend names accepted by RELAY_STORE
const (
	BackendFile  = "file"
	BackendPG    = "pg"
	BackendRedis = "redis"
)

// Storage is the chat store surface shared by every backend
type Storage interface {
	dom.ChatCategoryStore
}

func cloneThreads(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
