package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// tables holds one go-cache per aggregate. Stored values are never mutated
// in place; every write replaces the value, so a shallow copy of the item
// map is a consistent snapshot.
type tables struct {
	users         *cache.Cache
	documents     *cache.Cache
	chunks        *cache.Cache // ownerId/documentId -> []entity.Chunk
	conversations *cache.Cache // ownerId/documentId -> []entity.ConversationTurn
}

func newTables() *tables {
	return &tables{
		users:         cache.New(cache.NoExpiration, 0),
		documents:     cache.New(cache.NoExpiration, 0),
		chunks:        cache.New(cache.NoExpiration, 0),
		conversations: cache.New(cache.NoExpiration, 0),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		users:         cache.NewFrom(cache.NoExpiration, 0, t.users.Items()),
		documents:     cache.NewFrom(cache.NoExpiration, 0, t.documents.Items()),
		chunks:        cache.NewFrom(cache.NoExpiration, 0, t.chunks.Items()),
		conversations: cache.NewFrom(cache.NoExpiration, 0, t.conversations.Items()),
	}
}

// Store is a process-local database used when STORE_DRIVER=memory and in
// tests. Writers are serialized; a transaction works on a private snapshot
// that replaces the committed tables on Commit.
type Store struct {
	writeMu sync.Mutex

	mu      sync.RWMutex
	current *tables
}

func NewStore() *Store {
	return &Store{current: newTables()}
}

func (s *Store) snapshot() *tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) publish(t *tables) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
}

func scopeKey(ownerId, documentId uuid.UUID) string {
	return ownerId.String() + "/" + documentId.String()
}
