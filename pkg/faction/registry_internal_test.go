package faction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agubarev/stronghold/pkg/character"
)

func TestRegistryLockTableCleanup(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	cs := character.NewMemoryStore()
	cs.Put(character.Character{ID: 100, Name: "Abby Nominee"})

	cm, err := character.NewManager(cs)
	a.NoError(err)

	r, err := NewRegistry(NewMemoryStore(), cm)
	a.NoError(err)

	id, err := r.Create(ctx, 100, Core{Name: "Los Santos Police"})
	a.NoError(err)

	// a lookup mints the per-faction mutex
	a.NotNil(r.FactionByID(id))

	r.RLock()
	_, ok := r.locks[id]
	r.RUnlock()
	a.True(ok)

	// removal must not leave the dead id behind in the lock table
	a.NoError(r.Remove(ctx, id))

	r.RLock()
	_, ok = r.locks[id]
	r.RUnlock()
	a.False(ok)
}
