package faction

import (
	"context"
	"testing"

	"github.com/agubarev/stronghold/pkg/character"
	"github.com/stretchr/testify/assert"
)

// NewRegistryForTesting returns a fully initialized registry over
// in-memory stores, with the backing character store exposed for seeding
func NewRegistryForTesting(t *testing.T) (*Registry, *character.MemoryStore) {
	cs := character.NewMemoryStore()

	cm, err := character.NewManager(cs)
	assert.NoError(t, err)

	r, err := NewRegistry(NewMemoryStore(), cm)
	assert.NoError(t, err)

	assert.NoError(t, r.Init(context.Background()))

	return r, cs
}

// SeedCharacters stores the given characters in the backing character store
func SeedCharacters(cs *character.MemoryStore, chars ...character.Character) {
	for _, c := range chars {
		cs.Put(c)
	}
}

// CreateFactionForTesting creates a faction owned by the given character
func CreateFactionForTesting(t *testing.T, r *Registry, ownerID int64, name string) *Faction {
	id, err := r.Create(context.Background(), ownerID, Core{Name: name, Label: name})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)

	f := r.FactionByID(id)
	assert.NotNil(t, f)

	return f
}
