package faction

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agubarev/stronghold/pkg/character"
)

// MemberManager handles the join/leave/ownership-transfer lifecycle
// and the per-member duty flag; rank content is the grade manager's
// concern, but default and highest grades are looked up through it
type MemberManager struct {
	registry *Registry
	grades   *GradeManager
	logger   *zap.Logger
}

// NewMemberManager initializes a new member manager
func NewMemberManager(r *Registry, gm *GradeManager) (*MemberManager, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}

	if gm == nil {
		return nil, errors.New("grade manager is nil")
	}

	return &MemberManager{registry: r, grades: gm}, nil
}

// SetLogger assigns a logger for this manager
func (m *MemberManager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[member]")
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (m *MemberManager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize member manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// AddMember adds a character to a faction at the lowest-weight grade
// with the faction's configured default duty state, snapshots the
// character's display name and writes its faction pointer
func (m *MemberManager) AddMember(ctx context.Context, factionID string, characterID int64) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	c, err := m.registry.characters.CharacterByID(ctx, characterID)
	if err != nil {
		if err == character.ErrCharacterNotFound {
			return ErrCharacterNotFound
		}

		return errors.Wrap(err, "failed to fetch character")
	}

	if c.HasFaction() {
		return ErrAlreadyInFaction
	}

	lowest, ok := lowestGrade(f.Grades)
	if !ok {
		return ErrGradeNotFound
	}

	member := Member{
		ID:      characterID,
		Name:    c.Name,
		GradeID: lowest.ID,
		Duty:    f.DefaultDuty,
		IsOwner: false,
	}

	if err := m.registry.characters.SetFaction(ctx, characterID, factionID); err != nil {
		return errors.Wrap(err, "failed to write character faction pointer")
	}

	f.Members[characterID] = member

	if err := m.registry.Update(ctx, factionID, MembersUpdate{Members: f.Members}); err != nil {
		return err
	}

	m.registry.Bus().PublishMemberAdded(MemberAddedEvent{FactionID: factionID, Member: member})

	return nil
}

// KickMember removes a character from a faction and clears its
// faction pointer; a stale or foreign request is refused
func (m *MemberManager) KickMember(ctx context.Context, factionID string, characterID int64) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	c, err := m.registry.characters.CharacterByID(ctx, characterID)
	if err != nil {
		if err == character.ErrCharacterNotFound {
			return ErrCharacterNotFound
		}

		return errors.Wrap(err, "failed to fetch character")
	}

	if c.FactionID != factionID {
		return ErrNotInFaction
	}

	if err := m.registry.characters.SetFaction(ctx, characterID, ""); err != nil {
		return errors.Wrap(err, "failed to clear character faction pointer")
	}

	member, ok := f.Members[characterID]
	if !ok {
		return ErrMemberNotFound
	}

	delete(f.Members, characterID)

	if err := m.registry.Update(ctx, factionID, MembersUpdate{Members: f.Members}); err != nil {
		return err
	}

	m.registry.Bus().PublishMemberKicked(MemberKickedEvent{FactionID: factionID, Member: member})

	return nil
}

// Owner returns the member currently flagged as owner
func (m *MemberManager) Owner(factionID string) (Member, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Member{}, ErrFactionNotFound
	}

	for _, member := range f.Members {
		if member.IsOwner {
			return member, nil
		}
	}

	return Member{}, ErrNoOwner
}

// ChangeOwner transfers faction ownership to an existing member:
// the previous owner is demoted to the grade below the owner grade,
// the target is promoted to the owner grade
func (m *MemberManager) ChangeOwner(ctx context.Context, factionID string, newOwnerID int64) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	target, ok := f.Members[newOwnerID]
	if !ok {
		return ErrMemberNotFound
	}

	ownerGrade, ok := highestGrade(f.Grades)
	if !ok {
		return ErrGradeNotFound
	}

	// exactly one scan for the current owner; when none is found the
	// demotion step is skipped
	var oldOwnerID int64
	for id, member := range f.Members {
		if !member.IsOwner {
			continue
		}

		belowOwner, ok := gradeBelowOwner(f.Grades)
		if !ok {
			return ErrGradeNotFound
		}

		oldOwnerID = id
		member.IsOwner = false
		member.GradeID = belowOwner.ID
		f.Members[id] = member
		break
	}

	target.GradeID = ownerGrade.ID
	target.IsOwner = true
	f.Members[newOwnerID] = target

	if err := m.registry.Update(ctx, factionID, MembersUpdate{Members: f.Members}); err != nil {
		return err
	}

	m.registry.Bus().PublishOwnerChanged(OwnerChangedEvent{
		FactionID:  factionID,
		OldOwnerID: oldOwnerID,
		NewOwnerID: newOwnerID,
	})

	return nil
}

// GetDuty returns a member's duty flag
func (m *MemberManager) GetDuty(factionID string, characterID int64) (bool, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return false, ErrFactionNotFound
	}

	member, ok := f.Members[characterID]
	if !ok {
		return false, ErrMemberNotFound
	}

	return member.Duty, nil
}

// SetDuty sets a member's duty flag to an explicit value
func (m *MemberManager) SetDuty(ctx context.Context, factionID string, characterID int64, onDuty bool) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	return m.setDuty(ctx, factionID, characterID, func(bool) bool { return onDuty })
}

// ToggleDuty flips a member's duty flag, returning the new value
func (m *MemberManager) ToggleDuty(ctx context.Context, factionID string, characterID int64) (bool, error) {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	var toggled bool
	err := m.setDuty(ctx, factionID, characterID, func(current bool) bool {
		toggled = !current
		return toggled
	})

	return toggled, err
}

// setDuty must be called with the per-faction lock held
func (m *MemberManager) setDuty(ctx context.Context, factionID string, characterID int64, next func(current bool) bool) error {
	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	member, ok := f.Members[characterID]
	if !ok {
		return ErrMemberNotFound
	}

	member.Duty = next(member.Duty)
	f.Members[characterID] = member

	if err := m.registry.Update(ctx, factionID, MembersUpdate{Members: f.Members}); err != nil {
		return err
	}

	m.registry.Bus().PublishDutyChanged(DutyChangedEvent{
		FactionID:   factionID,
		CharacterID: characterID,
		OnDuty:      member.Duty,
	})

	return nil
}
