package faction_test

import (
	"context"
	"os"
	"testing"

	"github.com/agubarev/stronghold/pkg/database"
	"github.com/agubarev/stronghold/pkg/faction"
	"github.com/stretchr/testify/assert"
)

func testStoreRoundTrip(t *testing.T, s faction.Store) {
	a := assert.New(t)

	ctx := context.Background()

	grades := faction.DefaultGradeLadder()

	f := faction.Faction{
		Core: faction.Core{
			Name:  "Los Santos Police",
			Label: "LSPD",
		},
		Grades: grades,
		Members: map[int64]faction.Member{
			100: {ID: 100, Name: "Abby Nominee", GradeID: grades[0].ID, Duty: true, IsOwner: true},
		},
		Locations: make(map[faction.LocationType][]faction.Location),
		Vehicles:  make([]faction.Vehicle, 0),
	}

	id, err := s.CreateFaction(ctx, f)
	a.NoError(err)
	a.NotEmpty(id)

	fs, err := s.FetchAllFactions(ctx)
	a.NoError(err)
	a.Len(fs, 1)
	a.Equal(id, fs[0].ID)
	a.Equal("Los Santos Police", fs[0].Name)
	a.Len(fs[0].Members, 1)
	a.Len(fs[0].Grades, 2)
	a.True(fs[0].Members[100].IsOwner)

	// partial updates only touch their field group
	a.NoError(s.UpdateFields(ctx, id, faction.BankUpdate{Bank: 2500}))

	fs, err = s.FetchAllFactions(ctx)
	a.NoError(err)
	a.Equal(int64(2500), fs[0].Bank)
	a.Equal("Los Santos Police", fs[0].Name)
	a.Len(fs[0].Members, 1)

	// several field groups land atomically
	members := fs[0].Members
	delete(members, 100)
	a.NoError(s.UpdateFields(ctx, id,
		faction.MembersUpdate{Members: members},
		faction.BankUpdate{Bank: 0},
	))

	fs, err = s.FetchAllFactions(ctx)
	a.NoError(err)
	a.Empty(fs[0].Members)
	a.Equal(int64(0), fs[0].Bank)

	// writes against a missing document fail
	a.EqualError(
		s.UpdateFields(ctx, "no-such-faction", faction.BankUpdate{Bank: 1}),
		faction.ErrFactionNotFound.Error(),
	)

	a.NoError(s.DeleteFaction(ctx, id))

	fs, err = s.FetchAllFactions(ctx)
	a.NoError(err)
	a.Empty(fs)

	a.EqualError(s.DeleteFaction(ctx, id), faction.ErrFactionNotFound.Error())
}

func TestMemoryStore(t *testing.T) {
	testStoreRoundTrip(t, faction.NewMemoryStore())
}

func TestMemoryStoreIsolation(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	s := faction.NewMemoryStore()

	f := faction.Faction{
		Core:   faction.Core{Name: "Los Santos Police"},
		Grades: faction.DefaultGradeLadder(),
		Members: map[int64]faction.Member{
			100: {ID: 100, Name: "Abby Nominee"},
		},
	}

	_, err := s.CreateFaction(ctx, f)
	a.NoError(err)

	// mutating a fetched copy must not leak into the store
	fs, err := s.FetchAllFactions(ctx)
	a.NoError(err)

	fs[0].Members[200] = faction.Member{ID: 200, Name: "Intruder"}

	fs, err = s.FetchAllFactions(ctx)
	a.NoError(err)
	a.Len(fs[0].Members, 1)
}

func TestBadgerStore(t *testing.T) {
	a := assert.New(t)

	db, dir, err := database.CreateRandomBadgerDB()
	a.NoError(err)

	defer func() {
		a.NoError(db.Close())
		a.NoError(os.RemoveAll(dir))
	}()

	s, err := faction.NewBadgerStore(db)
	a.NoError(err)

	testStoreRoundTrip(t, s)
}
