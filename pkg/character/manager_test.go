package character_test

import (
	"context"
	"testing"
	"time"

	"github.com/allegro/bigcache"
	"github.com/stretchr/testify/assert"

	"github.com/agubarev/stronghold/pkg/character"
)

func TestManagerNew(t *testing.T) {
	a := assert.New(t)

	m, err := character.NewManager(character.NewMemoryStore())
	a.NoError(err)
	a.NotNil(m)

	m, err = character.NewManager(nil)
	a.Nil(m)
	a.EqualError(err, character.ErrNilCharacterStore.Error())
}

func TestManagerCharacterByID(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	s := character.NewMemoryStore()
	s.Put(character.Character{ID: 100, Name: "Abby Nominee", Bank: 500})

	m, err := character.NewManager(s)
	a.NoError(err)

	c, err := m.CharacterByID(ctx, 100)
	a.NoError(err)
	a.Equal("Abby Nominee", c.Name)
	a.Equal(int64(500), c.Bank)
	a.False(c.HasFaction())

	_, err = m.CharacterByID(ctx, 999)
	a.EqualError(err, character.ErrCharacterNotFound.Error())

	_, err = m.CharacterByID(ctx, 0)
	a.EqualError(err, character.ErrZeroCharacterID.Error())
}

func TestManagerWithCache(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	s := character.NewMemoryStore()
	s.Put(character.Character{ID: 100, Name: "Abby Nominee"})

	cache, err := character.NewDefaultStoreCache(bigcache.DefaultConfig(time.Minute))
	a.NoError(err)

	m, err := character.NewManager(s)
	a.NoError(err)
	m.SetCache(cache)

	// the first read fills the cache
	c, err := m.CharacterByID(ctx, 100)
	a.NoError(err)
	a.Equal("Abby Nominee", c.Name)
	a.NotNil(cache.Get(100))

	// a faction write invalidates the cached entry
	a.NoError(m.SetFaction(ctx, 100, "f1"))
	a.Nil(cache.Get(100))

	c, err = m.CharacterByID(ctx, 100)
	a.NoError(err)
	a.Equal("f1", c.FactionID)
}

func TestManagerSetFaction(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	s := character.NewMemoryStore()
	s.Put(character.Character{ID: 100, Name: "Abby Nominee"})

	m, err := character.NewManager(s)
	a.NoError(err)

	a.NoError(m.SetFaction(ctx, 100, "f1"))

	c, err := m.CharacterByID(ctx, 100)
	a.NoError(err)
	a.True(c.HasFaction())
	a.Equal("f1", c.FactionID)

	a.NoError(m.SetFaction(ctx, 100, ""))

	c, err = m.CharacterByID(ctx, 100)
	a.NoError(err)
	a.False(c.HasFaction())

	a.EqualError(m.SetFaction(ctx, 999, "f1"), character.ErrCharacterNotFound.Error())
}

func TestManagerCreditBank(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	s := character.NewMemoryStore()
	s.Put(character.Character{ID: 100, Name: "Abby Nominee", Bank: 100})

	m, err := character.NewManager(s)
	a.NoError(err)

	a.NoError(m.CreditBank(ctx, 100, 400))

	c, err := m.CharacterByID(ctx, 100)
	a.NoError(err)
	a.Equal(int64(500), c.Bank)

	a.EqualError(m.CreditBank(ctx, 100, -1), character.ErrNegativeAmount.Error())
	a.EqualError(m.CreditBank(ctx, 999, 100), character.ErrCharacterNotFound.Error())
}

func TestManagerCharactersByFaction(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	s := character.NewMemoryStore()
	s.Put(character.Character{ID: 100, Name: "Abby Nominee", FactionID: "f1"})
	s.Put(character.Character{ID: 200, Name: "Burt Macklin", FactionID: "f1"})
	s.Put(character.Character{ID: 300, Name: "Cate Blanch", FactionID: "f2"})

	m, err := character.NewManager(s)
	a.NoError(err)

	cs, err := m.CharactersByFaction(ctx, "f1")
	a.NoError(err)
	a.Len(cs, 2)

	cs, err = m.CharactersByFaction(ctx, "f3")
	a.NoError(err)
	a.Empty(cs)
}

// sessionStub is a live-session double recording writes made through it
type sessionStub struct {
	characterID int64
	factionID   string
	credited    int64
}

func (s *sessionStub) CharacterID() int64 { return s.characterID }

func (s *sessionStub) SetFaction(ctx context.Context, factionID string) error {
	s.factionID = factionID
	return nil
}

func (s *sessionStub) CreditBank(ctx context.Context, amount int64) error {
	s.credited += amount
	return nil
}

type resolverStub struct {
	sessions map[int64]*sessionStub
}

func (r *resolverStub) ByCharacter(characterID int64) character.Session {
	s, ok := r.sessions[characterID]
	if !ok {
		return nil
	}

	return s
}

func TestManagerPrefersLiveSession(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	s := character.NewMemoryStore()
	s.Put(character.Character{ID: 100, Name: "Abby Nominee"})
	s.Put(character.Character{ID: 200, Name: "Burt Macklin"})

	online := &sessionStub{characterID: 100}

	m, err := character.NewManager(s)
	a.NoError(err)
	m.SetSessionResolver(&resolverStub{sessions: map[int64]*sessionStub{100: online}})

	// the online character is written through its session
	a.NoError(m.SetFaction(ctx, 100, "f1"))
	a.Equal("f1", online.factionID)

	a.NoError(m.CreditBank(ctx, 100, 750))
	a.Equal(int64(750), online.credited)

	// the offline one goes straight to the store
	a.NoError(m.SetFaction(ctx, 200, "f1"))

	c, err := m.CharacterByID(ctx, 200)
	a.NoError(err)
	a.Equal("f1", c.FactionID)
}
