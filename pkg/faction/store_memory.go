package faction

import (
	"context"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cloneFaction produces a deep copy so documents held by the store
// never alias the registry's live aggregates
func cloneFaction(f Faction) (Faction, error) {
	buf, err := json.Marshal(f)
	if err != nil {
		return Faction{}, errors.Wrap(err, "failed to marshal faction")
	}

	var clone Faction
	if err := json.Unmarshal(buf, &clone); err != nil {
		return Faction{}, errors.Wrap(err, "failed to unmarshal faction")
	}

	return clone, nil
}

// memoryStore is an in-memory persistence gateway
// NOTE: used for isolated test fixtures
type memoryStore struct {
	factions        map[string]Faction
	deletedVehicles []string
	sync.RWMutex
}

// NewMemoryStore returns an initialized faction store that keeps
// everything in memory
func NewMemoryStore() Store {
	return &memoryStore{
		factions:        make(map[string]Faction),
		deletedVehicles: make([]string, 0),
	}
}

func (s *memoryStore) CreateFaction(ctx context.Context, f Faction) (string, error) {
	doc, err := cloneFaction(f)
	if err != nil {
		return "", err
	}

	doc.ID = uuid.New().String()

	s.Lock()
	s.factions[doc.ID] = doc
	s.Unlock()

	return doc.ID, nil
}

func (s *memoryStore) FetchAllFactions(ctx context.Context) ([]Faction, error) {
	s.RLock()
	defer s.RUnlock()

	fs := make([]Faction, 0, len(s.factions))
	for _, doc := range s.factions {
		clone, err := cloneFaction(doc)
		if err != nil {
			return nil, err
		}

		fs = append(fs, clone)
	}

	return fs, nil
}

func (s *memoryStore) UpdateFields(ctx context.Context, factionID string, updates ...FieldUpdate) error {
	s.Lock()
	defer s.Unlock()

	doc, ok := s.factions[factionID]
	if !ok {
		return ErrFactionNotFound
	}

	for _, u := range updates {
		u.Apply(&doc)
	}

	// re-cloning so the caller's maps and slices are not aliased
	clone, err := cloneFaction(doc)
	if err != nil {
		return err
	}

	s.factions[factionID] = clone

	return nil
}

func (s *memoryStore) DeleteFaction(ctx context.Context, factionID string) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.factions[factionID]; !ok {
		return ErrFactionNotFound
	}

	delete(s.factions, factionID)

	return nil
}

func (s *memoryStore) DeleteVehicle(ctx context.Context, vehicleID string) error {
	s.Lock()
	s.deletedVehicles = append(s.deletedVehicles, vehicleID)
	s.Unlock()

	return nil
}
