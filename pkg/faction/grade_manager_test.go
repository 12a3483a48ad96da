package faction_test

import (
	"context"
	"testing"

	"github.com/agubarev/stronghold/pkg/character"
	"github.com/agubarev/stronghold/pkg/faction"
	"github.com/stretchr/testify/assert"
)

func TestGradeManagerAddGrade(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	r, cs := faction.NewRegistryForTesting(t)
	faction.SeedCharacters(cs, character.Character{ID: 100, Name: "Abby Nominee"})

	gm, err := faction.NewGradeManager(r)
	a.NoError(err)

	f := faction.CreateFactionForTesting(t, r, 100, "Los Santos Police")

	g, err := gm.AddGrade(ctx, f.ID, "Sergeant", 50, 500, 250, 600, 300)
	a.NoError(err)
	a.NotEmpty(g.ID)
	a.Equal("Sergeant", g.Name)
	a.Equal(50, g.Weight)
	a.False(g.IsOwnerGrade())
	a.Len(r.FactionByID(f.ID).Grades, 3)

	// a second grade at the same weight is refused
	_, err = gm.AddGrade(ctx, f.ID, "Deputy Sergeant", 50, 400, 200, 400, 200)
	a.EqualError(err, faction.ErrDuplicateGradeWeight.Error())

	// weights live in [0, 99); 98 is the ceiling, 99 is the owner sentinel
	_, err = gm.AddGrade(ctx, f.ID, "Captain", 98, 900, 450, 900, 450)
	a.NoError(err)

	_, err = gm.AddGrade(ctx, f.ID, "Impostor", 99, 900, 450, 900, 450)
	a.EqualError(err, faction.ErrWeightOutOfRange.Error())

	_, err = gm.AddGrade(ctx, f.ID, "Undergrounder", -1, 900, 450, 900, 450)
	a.EqualError(err, faction.ErrWeightOutOfRange.Error())

	// a pay cap below its base pay makes no sense
	_, err = gm.AddGrade(ctx, f.ID, "Underpaid", 10, 500, 250, 400, 300)
	a.EqualError(err, faction.ErrPayCapBelowBase.Error())
}

func TestGradeManagerOrdering(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	r, cs := faction.NewRegistryForTesting(t)
	faction.SeedCharacters(cs, character.Character{ID: 100, Name: "Abby Nominee"})

	gm, err := faction.NewGradeManager(r)
	a.NoError(err)

	f := faction.CreateFactionForTesting(t, r, 100, "Los Santos Police")

	sergeant, err := gm.AddGrade(ctx, f.ID, "Sergeant", 50, 500, 250, 600, 300)
	a.NoError(err)

	highest, err := gm.HighestGrade(f.ID)
	a.NoError(err)
	a.Equal("Owner", highest.Name)
	a.True(highest.IsOwnerGrade())

	lowest, err := gm.LowestGrade(f.ID)
	a.NoError(err)
	a.Equal("Recruit", lowest.Name)

	belowOwner, err := gm.GradeBelowOwner(f.ID)
	a.NoError(err)
	a.Equal(sergeant.ID, belowOwner.ID)

	// comparisons
	above, err := gm.IsAbove(f.ID, sergeant.ID, lowest.ID)
	a.NoError(err)
	a.True(above)

	above, err = gm.IsAbove(f.ID, lowest.ID, sergeant.ID)
	a.NoError(err)
	a.False(above)

	below, err := gm.IsBelow(f.ID, lowest.ID, sergeant.ID)
	a.NoError(err)
	a.True(below)

	// equal weights are neither above nor below
	above, err = gm.IsAbove(f.ID, sergeant.ID, sergeant.ID)
	a.NoError(err)
	a.False(above)

	// an unknown grade id is an explicit error, not a silent false
	_, err = gm.IsAbove(f.ID, sergeant.ID, "no-such-grade")
	a.EqualError(err, faction.ErrGradeNotFound.Error())

	_, err = gm.IsBelow(f.ID, "no-such-grade", sergeant.ID)
	a.EqualError(err, faction.ErrGradeNotFound.Error())
}

func TestGradeManagerRemoveGrade(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	r, cs := faction.NewRegistryForTesting(t)
	faction.SeedCharacters(cs,
		character.Character{ID: 100, Name: "Abby Nominee"},
		character.Character{ID: 200, Name: "Burt Macklin"},
	)

	gm, err := faction.NewGradeManager(r)
	a.NoError(err)

	mm, err := faction.NewMemberManager(r, gm)
	a.NoError(err)

	f := faction.CreateFactionForTesting(t, r, 100, "Los Santos Police")

	// two grades is the floor: the default ladder cannot be shrunk
	recruit, err := gm.LowestGrade(f.ID)
	a.NoError(err)
	a.EqualError(gm.RemoveGrade(ctx, f.ID, recruit.ID), faction.ErrGradeFloor.Error())

	sergeant, err := gm.AddGrade(ctx, f.ID, "Sergeant", 50, 500, 250, 600, 300)
	a.NoError(err)

	// a member holding the removed grade drops to the next one down
	a.NoError(mm.AddMember(ctx, f.ID, 200))
	a.NoError(gm.SetMemberGrade(ctx, f.ID, 200, sergeant.ID))

	a.NoError(gm.RemoveGrade(ctx, f.ID, sergeant.ID))
	a.Len(r.FactionByID(f.ID).Grades, 2)

	g, err := gm.MemberGrade(f.ID, 200)
	a.NoError(err)
	a.Equal(recruit.ID, g.ID)

	// removing the lowest grade promotes its members instead
	corporal, err := gm.AddGrade(ctx, f.ID, "Corporal", 25, 300, 150, 300, 150)
	a.NoError(err)

	a.NoError(gm.RemoveGrade(ctx, f.ID, recruit.ID))

	g, err = gm.MemberGrade(f.ID, 200)
	a.NoError(err)
	a.Equal(corporal.ID, g.ID)

	// the owner grade itself is untouchable
	owner, err := gm.HighestGrade(f.ID)
	a.NoError(err)

	_, err = gm.AddGrade(ctx, f.ID, "Filler", 10, 100, 50, 100, 50)
	a.NoError(err)
	a.EqualError(gm.RemoveGrade(ctx, f.ID, owner.ID), faction.ErrOwnerGradeProtected.Error())

	a.EqualError(gm.RemoveGrade(ctx, f.ID, "no-such-grade"), faction.ErrGradeNotFound.Error())
}

func TestGradeManagerSetMemberGrade(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	r, cs := faction.NewRegistryForTesting(t)
	faction.SeedCharacters(cs,
		character.Character{ID: 100, Name: "Abby Nominee"},
		character.Character{ID: 200, Name: "Burt Macklin"},
	)

	gm, err := faction.NewGradeManager(r)
	a.NoError(err)

	mm, err := faction.NewMemberManager(r, gm)
	a.NoError(err)

	f := faction.CreateFactionForTesting(t, r, 100, "Los Santos Police")
	a.NoError(mm.AddMember(ctx, f.ID, 200))

	sergeant, err := gm.AddGrade(ctx, f.ID, "Sergeant", 50, 500, 250, 600, 300)
	a.NoError(err)

	a.NoError(gm.SetMemberGrade(ctx, f.ID, 200, sergeant.ID))

	g, err := gm.MemberGrade(f.ID, 200)
	a.NoError(err)
	a.Equal(sergeant.ID, g.ID)

	// the owner grade cannot be handed out through this path
	owner, err := gm.HighestGrade(f.ID)
	a.NoError(err)
	a.EqualError(gm.SetMemberGrade(ctx, f.ID, 200, owner.ID), faction.ErrOwnerGradeProtected.Error())

	a.EqualError(gm.SetMemberGrade(ctx, f.ID, 999, sergeant.ID), faction.ErrMemberNotFound.Error())
	a.EqualError(gm.SetMemberGrade(ctx, f.ID, 200, "no-such-grade"), faction.ErrGradeNotFound.Error())
}

func TestGradeManagerWeights(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	r, cs := faction.NewRegistryForTesting(t)
	faction.SeedCharacters(cs, character.Character{ID: 100, Name: "Abby Nominee"})

	gm, err := faction.NewGradeManager(r)
	a.NoError(err)

	f := faction.CreateFactionForTesting(t, r, 100, "Los Santos Police")

	sergeant, err := gm.AddGrade(ctx, f.ID, "Sergeant", 50, 500, 250, 600, 300)
	a.NoError(err)

	corporal, err := gm.AddGrade(ctx, f.ID, "Corporal", 25, 300, 150, 300, 150)
	a.NoError(err)

	a.NoError(gm.UpdateWeight(ctx, f.ID, corporal.ID, 60))

	above, err := gm.IsAbove(f.ID, corporal.ID, sergeant.ID)
	a.NoError(err)
	a.True(above)

	a.EqualError(gm.UpdateWeight(ctx, f.ID, corporal.ID, 99), faction.ErrWeightOutOfRange.Error())
	a.EqualError(gm.UpdateWeight(ctx, f.ID, corporal.ID, -1), faction.ErrWeightOutOfRange.Error())
	a.EqualError(gm.UpdateWeight(ctx, f.ID, "no-such-grade", 10), faction.ErrGradeNotFound.Error())

	// swapping twice restores the original order
	a.NoError(gm.SwapWeights(ctx, f.ID, corporal.ID, sergeant.ID))

	above, err = gm.IsAbove(f.ID, sergeant.ID, corporal.ID)
	a.NoError(err)
	a.True(above)

	a.NoError(gm.SwapWeights(ctx, f.ID, corporal.ID, sergeant.ID))

	above, err = gm.IsAbove(f.ID, corporal.ID, sergeant.ID)
	a.NoError(err)
	a.True(above)

	a.EqualError(gm.SwapWeights(ctx, f.ID, corporal.ID, "no-such-grade"), faction.ErrGradeNotFound.Error())
}

func TestGradeManagerRename(t *testing.T) {
	a := assert.New(t)

	ctx := context.Background()

	r, cs := faction.NewRegistryForTesting(t)
	faction.SeedCharacters(cs, character.Character{ID: 100, Name: "Abby Nominee"})

	gm, err := faction.NewGradeManager(r)
	a.NoError(err)

	f := faction.CreateFactionForTesting(t, r, 100, "Los Santos Police")

	recruit, err := gm.LowestGrade(f.ID)
	a.NoError(err)

	a.NoError(gm.RenameGrade(ctx, f.ID, recruit.ID, "Cadet"))

	g, ok := r.FactionByID(f.ID).GradeByID(recruit.ID)
	a.True(ok)
	a.Equal("Cadet", g.Name)

	a.EqualError(gm.RenameGrade(ctx, f.ID, "no-such-grade", "Nobody"), faction.ErrGradeNotFound.Error())
}
