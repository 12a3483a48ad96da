package character

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory character store
// NOTE: used for isolated testing of the faction core without
// a live database
type MemoryStore struct {
	characters map[int64]Character
	sync.RWMutex
}

// NewMemoryStore returns an initialized character store
// that keeps everything in memory
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		characters: make(map[int64]Character),
	}
}

// Put injects a character into the store, overwriting an existing one
func (s *MemoryStore) Put(c Character) {
	s.Lock()
	s.characters[c.ID] = c
	s.Unlock()
}

func (s *MemoryStore) FetchCharacterByID(ctx context.Context, characterID int64) (Character, error) {
	s.RLock()
	c, ok := s.characters[characterID]
	s.RUnlock()

	if !ok {
		return c, ErrCharacterNotFound
	}

	return c, nil
}

func (s *MemoryStore) FetchCharactersByFaction(ctx context.Context, factionID string) ([]Character, error) {
	cs := make([]Character, 0)

	s.RLock()
	for _, c := range s.characters {
		if c.FactionID == factionID {
			cs = append(cs, c)
		}
	}
	s.RUnlock()

	return cs, nil
}

func (s *MemoryStore) UpdateFactionID(ctx context.Context, characterID int64, factionID string) error {
	s.Lock()
	defer s.Unlock()

	c, ok := s.characters[characterID]
	if !ok {
		return ErrCharacterNotFound
	}

	c.FactionID = factionID
	s.characters[characterID] = c

	return nil
}

func (s *MemoryStore) CreditBank(ctx context.Context, characterID int64, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	s.Lock()
	defer s.Unlock()

	c, ok := s.characters[characterID]
	if !ok {
		return ErrCharacterNotFound
	}

	c.Bank += amount
	s.characters[characterID] = c

	return nil
}
