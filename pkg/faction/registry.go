package faction

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agubarev/stronghold/pkg/character"
	"github.com/agubarev/stronghold/pkg/util"
)

// UpdateCallback is invoked after every persisted write with the
// faction id and the name of the field group that was written
type UpdateCallback func(factionID string, field string)

// Registry is the single source of truth for all faction aggregates
// and the only component that talks to the persistence gateway;
// every other manager routes its writes through Registry.Update
type Registry struct {
	factions map[string]*Faction
	locks    map[string]*sync.RWMutex

	store      Store
	characters *character.Manager
	bus        *Bus
	onUpdate   []UpdateCallback
	logger     *zap.Logger
	sync.RWMutex
}

// NewRegistry initializes a new faction registry
func NewRegistry(s Store, cm *character.Manager) (*Registry, error) {
	if s == nil {
		return nil, ErrNilStore
	}

	if cm == nil {
		return nil, character.ErrNilCharacterManager
	}

	r := &Registry{
		factions:   make(map[string]*Faction),
		locks:      make(map[string]*sync.RWMutex),
		store:      s,
		characters: cm,
		bus:        NewBus(),
		onUpdate:   make([]UpdateCallback, 0),
	}

	return r, nil
}

// SetLogger assigns a logger for this registry
func (r *Registry) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[faction]")
	}

	r.logger = logger
	r.bus.SetLogger(logger)

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (r *Registry) Logger() *zap.Logger {
	if r.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize faction registry logger: %s", err))
		}

		r.logger = l
	}

	return r.logger
}

// Bus returns the notification bus owned by this registry
func (r *Registry) Bus() *Bus {
	return r.bus
}

// OnUpdate registers a persistence-change callback
// NOTE: distinct from the notification bus; these callbacks track
// the write path itself, not domain events
func (r *Registry) OnUpdate(cb UpdateCallback) {
	r.Lock()
	r.onUpdate = append(r.onUpdate, cb)
	r.Unlock()
}

// Init loads all persisted factions into the in-memory map
func (r *Registry) Init(ctx context.Context) error {
	l := r.Logger()

	fs, err := r.store.FetchAllFactions(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch factions")
	}

	if len(fs) == 0 {
		l.Warn("no factions have been created")
		return nil
	}

	r.Lock()
	for i := range fs {
		f := fs[i]
		r.factions[f.ID] = &f
	}
	r.Unlock()

	l.Info("loaded factions", zap.Int("count", len(fs)))

	return nil
}

func (r *Registry) factionLock(factionID string) *sync.RWMutex {
	r.Lock()
	l, ok := r.locks[factionID]
	if !ok {
		l = &sync.RWMutex{}
		r.locks[factionID] = l
	}
	r.Unlock()

	return l
}

// lockFaction acquires the per-faction lock for writing; every
// mutating operation must hold it for its whole
// read-modify-persist-notify sequence
func (r *Registry) lockFaction(factionID string) (unlock func()) {
	l := r.factionLock(factionID)
	l.Lock()

	return l.Unlock
}

// rlockFaction acquires the per-faction lock for reading; every
// read of a live aggregate must hold it
func (r *Registry) rlockFaction(factionID string) (unlock func()) {
	l := r.factionLock(factionID)
	l.RLock()

	return l.RUnlock
}

// faction returns the live aggregate or nil
// NOTE: the caller must hold the per-faction lock; the returned
// pointer aliases registry state and must not escape the lock
func (r *Registry) faction(factionID string) *Faction {
	r.RLock()
	f := r.factions[factionID]
	r.RUnlock()

	return f
}

func (r *Registry) nameTaken(name string) bool {
	normalized := NormalizeName(name)

	r.RLock()
	defer r.RUnlock()

	for _, f := range r.factions {
		if NormalizeName(f.Name) == normalized {
			return true
		}
	}

	return false
}

// Create creates a new faction with a bootstrap owner and the
// default two-tier grade ladder, persists it and updates the owner
// character's faction pointer; returns the assigned faction id
func (r *Registry) Create(ctx context.Context, ownerCharacterID int64, core Core) (string, error) {
	if err := core.Validate(); err != nil {
		return "", err
	}

	if r.nameTaken(core.Name) {
		return "", ErrFactionNameTaken
	}

	c, err := r.characters.CharacterByID(ctx, ownerCharacterID)
	if err != nil {
		if err == character.ErrCharacterNotFound {
			return "", ErrCharacterNotFound
		}

		return "", errors.Wrap(err, "failed to fetch owner character")
	}

	if c.HasFaction() {
		return "", ErrAlreadyInFaction
	}

	grades := DefaultGradeLadder()

	f := Faction{
		Core:   core,
		Grades: grades,
		Members: map[int64]Member{
			ownerCharacterID: {
				ID:      ownerCharacterID,
				Name:    c.Name,
				GradeID: grades[0].ID,
				Duty:    true,
				IsOwner: true,
			},
		},
		Locations: make(map[LocationType][]Location),
		Vehicles:  make([]Vehicle, 0),
	}

	id, err := r.store.CreateFaction(ctx, f)
	if err != nil {
		return "", errors.Wrap(err, "failed to persist new faction")
	}

	f.ID = id

	// re-checking the name after the suspend point; a concurrent
	// create may have taken it while the store call was in flight
	r.Lock()
	if r.nameTakenLocked(core.Name) {
		r.Unlock()

		if derr := r.store.DeleteFaction(ctx, id); derr != nil {
			r.Logger().Error("failed to delete conflicting faction document", zap.String("faction_id", id), zap.Error(derr))
		}

		return "", ErrFactionNameTaken
	}
	r.factions[id] = &f
	r.Unlock()

	if err := r.characters.SetFaction(ctx, ownerCharacterID, id); err != nil {
		r.Logger().Error(
			"failed to write owner faction pointer",
			zap.String("faction_id", id),
			zap.Int64("character_id", ownerCharacterID),
			zap.Error(err),
		)
	}

	r.Logger().Info("created faction", zap.String("faction_id", id), zap.String("name", core.Name))

	return id, nil
}

// nameTakenLocked is nameTaken for callers already holding the registry lock
func (r *Registry) nameTakenLocked(name string) bool {
	normalized := NormalizeName(name)

	for _, f := range r.factions {
		if NormalizeName(f.Name) == normalized {
			return true
		}
	}

	return false
}

// Remove deletes a faction: drops it from the in-memory map
// immediately, clears every member character's faction pointer,
// credits the treasury to the owner and deletes owned vehicles
// NOTE: per-member and per-vehicle side effects are best-effort;
// one failure does not abort the rest
func (r *Registry) Remove(ctx context.Context, factionID string) error {
	unlock := r.lockFaction(factionID)
	defer unlock()

	l := r.Logger()

	f := r.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	// dropping from the map first so concurrent lookups no longer see it
	r.Lock()
	delete(r.factions, factionID)
	r.Unlock()

	var ownerID int64
	for _, m := range f.Members {
		if m.IsOwner {
			ownerID = m.ID
			break
		}
	}

	// clearing the faction pointer on every persisted member record
	cs, err := r.characters.CharactersByFaction(ctx, factionID)
	if err != nil {
		l.Error("failed to fetch faction characters", zap.String("faction_id", factionID), zap.Error(err))
	}

	for _, c := range cs {
		if err := r.characters.SetFaction(ctx, c.ID, ""); err != nil {
			l.Error(
				"failed to clear faction pointer",
				zap.String("faction_id", factionID),
				zap.Int64("character_id", c.ID),
				zap.Error(err),
			)
		}
	}

	// returning the treasury to the owner
	if ownerID != 0 && f.Bank > 0 {
		if err := r.characters.CreditBank(ctx, ownerID, f.Bank); err != nil {
			l.Error(
				"failed to credit faction bank to owner",
				zap.String("faction_id", factionID),
				zap.Int64("character_id", ownerID),
				zap.Int64("amount", f.Bank),
				zap.Error(err),
			)
		}
	}

	// deleting owned vehicles
	for _, v := range f.Vehicles {
		if err := r.store.DeleteVehicle(ctx, v.ID); err != nil {
			l.Error(
				"failed to delete faction vehicle",
				zap.String("faction_id", factionID),
				zap.String("vehicle_id", v.ID),
				zap.Error(err),
			)
		}
	}

	if err := r.store.DeleteFaction(ctx, factionID); err != nil {
		return errors.Wrap(err, "failed to delete faction document")
	}

	// dropping the lock table entry; the id is dead and a late caller
	// would only mint a fresh mutex for it anyway
	r.Lock()
	delete(r.locks, factionID)
	r.Unlock()

	l.Info("removed faction", zap.String("faction_id", factionID), zap.String("name", f.Name))

	return nil
}

// Update is the only write path used by every manager: it writes
// the given field groups to the persistence gateway, then invokes
// registered change-callbacks and publishes a field-updated event
// per field, strictly after the write
func (r *Registry) Update(ctx context.Context, factionID string, updates ...FieldUpdate) error {
	if r.faction(factionID) == nil {
		return ErrFactionNotFound
	}

	if err := r.store.UpdateFields(ctx, factionID, updates...); err != nil {
		return errors.Wrap(err, "failed to persist faction update")
	}

	r.RLock()
	cbs := append([]UpdateCallback(nil), r.onUpdate...)
	r.RUnlock()

	for _, u := range updates {
		for _, cb := range cbs {
			r.invokeCallback(cb, factionID, u.FieldName())
		}

		r.bus.PublishFieldUpdated(FieldUpdatedEvent{FactionID: factionID, Field: u.FieldName()})
	}

	return nil
}

// invokeCallback absorbs a callback panic; a broken callback must
// not escape into the manager that triggered the write
func (r *Registry) invokeCallback(cb UpdateCallback, factionID string, field string) {
	defer func() {
		if p := recover(); p != nil {
			r.Logger().Error(
				"update callback panicked",
				zap.String("faction_id", factionID),
				zap.String("field", field),
				zap.Any("panic", p),
			)
		}
	}()

	cb(factionID, field)
}

// UpdateConfig applies a changelog-guarded update of the faction's
// configuration flags; name and treasury are protected and cannot
// be changed through this path
func (r *Registry) UpdateConfig(ctx context.Context, factionID string, updated Core) error {
	unlock := r.lockFaction(factionID)
	defer unlock()

	f := r.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	allowed := map[string]bool{
		"Label":       true,
		"SocietyPay":  true,
		"DefaultDuty": true,
		"OffDutyPay":  true,
	}

	changelog, err := util.ProtectedChangelog(allowed, f.Core, updated)
	if err != nil {
		return err
	}

	if len(changelog) == 0 {
		return ErrNothingChanged
	}

	f.Core = updated

	return r.Update(ctx, factionID, CoreUpdate{Core: f.Core})
}

// factionIDs returns a snapshot of every registered faction id
func (r *Registry) factionIDs() []string {
	r.RLock()
	ids := make([]string, 0, len(r.factions))
	for id := range r.factions {
		ids = append(ids, id)
	}
	r.RUnlock()

	return ids
}

// FactionByID returns a snapshot copy of a faction, or nil
func (r *Registry) FactionByID(factionID string) *Faction {
	unlock := r.rlockFaction(factionID)
	defer unlock()

	f := r.faction(factionID)
	if f == nil {
		return nil
	}

	return f.clone()
}

// FactionByName returns a snapshot copy of the first faction whose
// normalized name contains the normalized query, or nil
// NOTE: comparison is case- and space-insensitive
func (r *Registry) FactionByName(nameOrPartialName string) *Faction {
	normalized := NormalizeName(nameOrPartialName)

	for _, id := range r.factionIDs() {
		unlock := r.rlockFaction(id)

		f := r.faction(id)
		if f != nil && strings.Contains(NormalizeName(f.Name), normalized) {
			clone := f.clone()
			unlock()

			return clone
		}

		unlock()
	}

	return nil
}

// AllFactions returns snapshot copies of every faction currently
// in the registry
func (r *Registry) AllFactions() []*Faction {
	ids := r.factionIDs()

	fs := make([]*Faction, 0, len(ids))
	for _, id := range ids {
		unlock := r.rlockFaction(id)

		if f := r.faction(id); f != nil {
			fs = append(fs, f.clone())
		}

		unlock()
	}

	return fs
}
