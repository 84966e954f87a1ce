package storage

import (
	"context"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ruteri/share-engine/interfaces"
)

// MemoryBackend keeps share records in process memory.
// Records are held in serialized form so they are decoupled from callers.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string][]byte
	log     *slog.Logger
}

// NewMemoryBackend creates an empty in-memory share store.
func NewMemoryBackend(log *slog.Logger) *MemoryBackend {
	if log == nil {
		log = slog.Default()
	}
	return &MemoryBackend{
		records: make(map[string][]byte),
		log:     log,
	}
}

// Fetch returns the record stored under id or ErrShareNotFound.
func (b *MemoryBackend) Fetch(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	b.mu.RLock()
	data, ok := b.records[id]
	b.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrShareNotFound
	}
	return unmarshalRecord(data)
}

// Store saves the record under its id.
func (b *MemoryBackend) Store(ctx context.Context, record *interfaces.ShareRecord) error {
	data, err := marshalRecord(record)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.records[record.ID()] = data
	b.mu.Unlock()

	b.log.Debug("Stored share record in memory", slog.String("id", record.ID()))
	return nil
}

// Delete removes the record stored under id.
func (b *MemoryBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.records[id]; !ok {
		return interfaces.ErrShareNotFound
	}
	delete(b.records, id)
	return nil
}

// Available always reports true.
func (b *MemoryBackend) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *MemoryBackend) Name() string {
	return "memory"
}

// LocationURI returns the URI that identifies this storage backend.
func (b *MemoryBackend) LocationURI() string {
	return "memory://"
}

// MemoryPartyViewStore maps record ids to the share each party holds.
type MemoryPartyViewStore struct {
	mu    sync.RWMutex
	views map[string]map[int]*big.Int
}

var _ interfaces.PartyViewStore = (*MemoryPartyViewStore)(nil)

func NewMemoryPartyViewStore() *MemoryPartyViewStore {
	return &MemoryPartyViewStore{views: make(map[string]map[int]*big.Int)}
}

// Put records a copy of share as the view of party for id.
func (s *MemoryPartyViewStore) Put(id string, party int, share *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parties, ok := s.views[id]
	if !ok {
		parties = make(map[int]*big.Int)
		s.views[id] = parties
	}
	parties[party] = new(big.Int).Set(share)
}

// Get returns a copy of the share party holds for id.
func (s *MemoryPartyViewStore) Get(id string, party int) (*big.Int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	share, ok := s.views[id][party]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(share), true
}

// Delete forgets every party view of id.
func (s *MemoryPartyViewStore) Delete(id string) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
}

// Len returns the number of record ids with recorded views.
func (s *MemoryPartyViewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}
