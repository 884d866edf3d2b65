// Package memory is an in-process implementation of storage.Store, used for
// development runs without a database and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Vasu1712/scenyx-chat/internal/models"
)

type pair struct {
	low, high int64
}

// Store keeps all records in maps guarded by a single RWMutex. Records are
// copied on the way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	users       map[int64]*models.User
	emailIndex  map[string]int64
	threads     map[int64]*models.Thread
	pairIndex   map[pair]int64
	userThreads map[int64][]int64 // userID -> thread ids in insertion order
	messages    map[int64]*models.Message
	threadMsgs  map[int64][]int64 // threadID -> message ids in insertion order

	lastUserID    int64
	lastThreadID  int64
	lastMessageID int64
}

func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*models.User),
		emailIndex:  make(map[string]int64),
		threads:     make(map[int64]*models.Thread),
		pairIndex:   make(map[pair]int64),
		userThreads: make(map[int64][]int64),
		messages:    make(map[int64]*models.Message),
		threadMsgs:  make(map[int64][]int64),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func now() time.Time {
	return time.Now().UTC()
}

func page(ids []int64, limit, offset int) []int64 {
	if offset >= len(ids) || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}
