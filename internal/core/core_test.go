package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agubarev/stronghold/internal/core"
	"github.com/agubarev/stronghold/pkg/character"
	"github.com/agubarev/stronghold/pkg/faction"
)

func TestCoreLifecycle(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	cs := character.NewMemoryStore()
	cs.Put(character.Character{ID: 100, Name: "Abby Nominee"})

	cm, err := character.NewManager(cs)
	a.NoError(err)

	c, err := core.New(faction.NewMemoryStore(), cm)
	a.NoError(err)
	a.NotNil(c)

	a.NoError(c.Init(ctx))
	defer c.Close()

	a.NotNil(c.Registry())
	a.NotNil(c.CharacterManager())
	a.NotNil(c.GradeManager())
	a.NotNil(c.MemberManager())
	a.NotNil(c.BankLedger())
	a.NotNil(c.LocationManager())
	a.NotNil(c.Presence())

	// the assembled managers operate on the same registry
	id, err := c.Registry().Create(ctx, 100, faction.Core{Name: "Los Santos Police"})
	a.NoError(err)

	balance, err := c.BankLedger().Balance(id)
	a.NoError(err)
	a.Equal(int64(0), balance)

	owner, err := c.MemberManager().Owner(id)
	a.NoError(err)
	a.Equal(int64(100), owner.ID)
}

func TestCoreNew(t *testing.T) {
	a := assert.New(t)

	cm, err := character.NewManager(character.NewMemoryStore())
	a.NoError(err)

	c, err := core.New(nil, cm)
	a.Nil(c)
	a.EqualError(err, faction.ErrNilStore.Error())

	c, err = core.New(faction.NewMemoryStore(), nil)
	a.Nil(c)
	a.EqualError(err, character.ErrNilCharacterManager.Error())
}
