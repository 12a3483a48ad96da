package faction

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/agubarev/stronghold/pkg/util"
)

// GradeManager maintains the ordered grade ladder of a faction and
// its weight-based comparisons
type GradeManager struct {
	registry *Registry
	logger   *zap.Logger
}

// NewGradeManager initializes a new grade manager
func NewGradeManager(r *Registry) (*GradeManager, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}

	return &GradeManager{registry: r}, nil
}

// SetLogger assigns a logger for this manager
func (m *GradeManager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[grade]")
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (m *GradeManager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize grade manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// sortedByWeightDesc returns a copy of the ladder ordered by
// descending weight; the owner grade comes first
func sortedByWeightDesc(grades []Grade) []Grade {
	ordered := append([]Grade(nil), grades...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weight > ordered[j].Weight
	})

	return ordered
}

// highestGrade and its siblings operate on a ladder snapshot the
// caller is already holding a lock over
// NOTE: ties are broken by first-encountered in storage order; the
// ladder has no stable secondary sort key
func highestGrade(grades []Grade) (Grade, bool) {
	if len(grades) == 0 {
		return Grade{}, false
	}

	highest := grades[0]
	for _, g := range grades[1:] {
		if g.Weight > highest.Weight {
			highest = g
		}
	}

	return highest, true
}

func lowestGrade(grades []Grade) (Grade, bool) {
	if len(grades) == 0 {
		return Grade{}, false
	}

	lowest := grades[0]
	for _, g := range grades[1:] {
		if g.Weight < lowest.Weight {
			lowest = g
		}
	}

	return lowest, true
}

func gradeBelowOwner(grades []Grade) (Grade, bool) {
	if len(grades) == 0 {
		return Grade{}, false
	}

	ordered := sortedByWeightDesc(grades)
	if len(ordered) > 1 {
		return ordered[1], true
	}

	return ordered[0], true
}

// HighestGrade returns the grade with the highest weight
func (m *GradeManager) HighestGrade(factionID string) (Grade, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Grade{}, ErrFactionNotFound
	}

	g, ok := highestGrade(f.Grades)
	if !ok {
		return Grade{}, ErrGradeNotFound
	}

	return g, nil
}

// LowestGrade returns the grade with the lowest weight
func (m *GradeManager) LowestGrade(factionID string) (Grade, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Grade{}, ErrFactionNotFound
	}

	g, ok := lowestGrade(f.Grades)
	if !ok {
		return Grade{}, ErrGradeNotFound
	}

	return g, nil
}

// GradeBelowOwner returns the next grade down from the owner grade,
// used to demote a previous owner; falls back to the top grade when
// the ladder has only one distinguishable entry
func (m *GradeManager) GradeBelowOwner(factionID string) (Grade, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Grade{}, ErrFactionNotFound
	}

	g, ok := gradeBelowOwner(f.Grades)
	if !ok {
		return Grade{}, ErrGradeNotFound
	}

	return g, nil
}

// MemberGrade returns the grade a faction member currently holds
func (m *GradeManager) MemberGrade(factionID string, characterID int64) (Grade, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Grade{}, ErrFactionNotFound
	}

	member, ok := f.Members[characterID]
	if !ok {
		return Grade{}, ErrMemberNotFound
	}

	g, ok := f.GradeByID(member.GradeID)
	if !ok {
		return Grade{}, ErrGradeNotFound
	}

	return g, nil
}

// IsAbove tests whether gradeID weighs strictly more than vsGradeID
// NOTE: an unknown grade id is reported as an explicit error rather
// than a silent false
func (m *GradeManager) IsAbove(factionID string, gradeID string, vsGradeID string) (bool, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return false, ErrFactionNotFound
	}

	a, ok := f.GradeByID(gradeID)
	if !ok {
		return false, ErrGradeNotFound
	}

	b, ok := f.GradeByID(vsGradeID)
	if !ok {
		return false, ErrGradeNotFound
	}

	return a.Weight > b.Weight, nil
}

// IsBelow tests whether gradeID weighs strictly less than vsGradeID
func (m *GradeManager) IsBelow(factionID string, gradeID string, vsGradeID string) (bool, error) {
	above, err := m.IsAbove(factionID, vsGradeID, gradeID)
	if err != nil {
		return false, err
	}

	return above, nil
}

// SetMemberGrade assigns an arbitrary grade to a member regardless
// of their standing; the owner grade cannot be handed out through
// this path, ownership transfer is a separate operation
func (m *GradeManager) SetMemberGrade(ctx context.Context, factionID string, characterID int64, gradeID string) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	g, ok := f.GradeByID(gradeID)
	if !ok {
		return ErrGradeNotFound
	}

	if g.IsOwnerGrade() {
		return ErrOwnerGradeProtected
	}

	member, ok := f.Members[characterID]
	if !ok {
		return ErrMemberNotFound
	}

	member.GradeID = gradeID
	f.Members[characterID] = member

	return m.registry.Update(ctx, factionID, MembersUpdate{Members: f.Members})
}

// RenameGrade changes a grade's display name
func (m *GradeManager) RenameGrade(ctx context.Context, factionID string, gradeID string, newName string) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	for i := range f.Grades {
		if f.Grades[i].ID == gradeID {
			f.Grades[i].Name = newName

			return m.registry.Update(ctx, factionID, GradesUpdate{Grades: f.Grades})
		}
	}

	return ErrGradeNotFound
}

// AddGrade appends a new grade to the ladder
// NOTE: weights stay below the owner sentinel so the single-owner
// invariant cannot be broken by an ordinary rank edit
func (m *GradeManager) AddGrade(
	ctx context.Context,
	factionID string,
	name string,
	weight int,
	onDutyPay int64,
	offDutyPay int64,
	maxOnDutyPay int64,
	maxOffDutyPay int64,
) (Grade, error) {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Grade{}, ErrFactionNotFound
	}

	if weight < 0 || weight >= OwnerWeight {
		return Grade{}, ErrWeightOutOfRange
	}

	for _, g := range f.Grades {
		if g.Weight == weight {
			return Grade{}, ErrDuplicateGradeWeight
		}
	}

	if maxOnDutyPay < onDutyPay || maxOffDutyPay < offDutyPay {
		return Grade{}, ErrPayCapBelowBase
	}

	g := Grade{
		ID:            util.NewULID().String(),
		Name:          name,
		Weight:        weight,
		OnDutyPay:     onDutyPay,
		OffDutyPay:    offDutyPay,
		MaxOnDutyPay:  maxOnDutyPay,
		MaxOffDutyPay: maxOffDutyPay,
	}

	f.Grades = append(f.Grades, g)

	if err := m.registry.Update(ctx, factionID, GradesUpdate{Grades: f.Grades}); err != nil {
		return Grade{}, err
	}

	return g, nil
}

// RemoveGrade removes a grade from the ladder and reassigns its
// members to the adjacent grade: the next one down by weight, or the
// next one up when the removed grade was already the lowest
func (m *GradeManager) RemoveGrade(ctx context.Context, factionID string, gradeID string) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	// never go below the two-grade floor
	if len(f.Grades) <= 2 {
		return ErrGradeFloor
	}

	target, ok := f.GradeByID(gradeID)
	if !ok {
		return ErrGradeNotFound
	}

	if target.IsOwnerGrade() {
		return ErrOwnerGradeProtected
	}

	ordered := sortedByWeightDesc(f.Grades)

	orderedIndex := 0
	for i, g := range ordered {
		if g.ID == gradeID {
			orderedIndex = i
			break
		}
	}

	// the replacement is the next-lower-weight grade; when the target
	// is already the lowest, the next-higher one
	var replacement Grade
	if orderedIndex == len(ordered)-1 {
		replacement = ordered[len(ordered)-2]
	} else {
		replacement = ordered[orderedIndex+1]
	}

	grades := make([]Grade, 0, len(f.Grades)-1)
	for _, g := range f.Grades {
		if g.ID != gradeID {
			grades = append(grades, g)
		}
	}
	f.Grades = grades

	for id, member := range f.Members {
		if member.GradeID != gradeID {
			continue
		}

		member.GradeID = replacement.ID
		f.Members[id] = member
	}

	return m.registry.Update(
		ctx,
		factionID,
		GradesUpdate{Grades: f.Grades},
		MembersUpdate{Members: f.Members},
	)
}

// UpdateWeight changes a grade's permission weight within [0, 99);
// the owner sentinel is unreachable through this path
func (m *GradeManager) UpdateWeight(ctx context.Context, factionID string, gradeID string, weight int) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	if weight < 0 || weight >= OwnerWeight {
		return ErrWeightOutOfRange
	}

	for i := range f.Grades {
		if f.Grades[i].ID == gradeID {
			f.Grades[i].Weight = weight

			return m.registry.Update(ctx, factionID, GradesUpdate{Grades: f.Grades})
		}
	}

	return ErrGradeNotFound
}

// SwapWeights exchanges the weights of two grades in place; this is
// the only supported way to reorder two ranks relative to each other
// NOTE: does not check for duplicate weights elsewhere in the ladder
func (m *GradeManager) SwapWeights(ctx context.Context, factionID string, gradeID string, vsGradeID string) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	fromIndex, withIndex := -1, -1
	for i := range f.Grades {
		switch f.Grades[i].ID {
		case gradeID:
			fromIndex = i
		case vsGradeID:
			withIndex = i
		}
	}

	if fromIndex < 0 || withIndex < 0 {
		return ErrGradeNotFound
	}

	f.Grades[fromIndex].Weight, f.Grades[withIndex].Weight =
		f.Grades[withIndex].Weight, f.Grades[fromIndex].Weight

	return m.registry.Update(ctx, factionID, GradesUpdate{Grades: f.Grades})
}
