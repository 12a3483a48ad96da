package faction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agubarev/stronghold/pkg/util"
)

// LocationOpts carries the optional visual hints of a location;
// the core passes them through without interpreting them
type LocationOpts struct {
	Sprite       int
	Color        int
	ParkingSpots []ParkingSpot
}

// LocationManager maintains the per-faction named collections of
// typed world points
type LocationManager struct {
	registry *Registry
	logger   *zap.Logger
}

// NewLocationManager initializes a new location manager
func NewLocationManager(r *Registry) (*LocationManager, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}

	return &LocationManager{registry: r}, nil
}

// SetLogger assigns a logger for this manager
func (m *LocationManager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[location]")
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (m *LocationManager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize location manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// AddLocation appends a named world point to a faction's category
// list, creating the category on first use; names are unique within
// a faction+category pair by exact match
func (m *LocationManager) AddLocation(
	ctx context.Context,
	factionID string,
	lt LocationType,
	name string,
	pos Vector3,
	minGradeID string,
	opts *LocationOpts,
) (Location, error) {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Location{}, ErrFactionNotFound
	}

	if !lt.IsKnown() {
		return Location{}, ErrUnknownLocationType
	}

	if f.Locations == nil {
		f.Locations = make(map[LocationType][]Location)
	}

	for _, loc := range f.Locations[lt] {
		if loc.Name == name {
			return Location{}, ErrDuplicateLocation
		}
	}

	loc := Location{
		ID:         util.NewULID().String(),
		Name:       name,
		Pos:        pos,
		MinGradeID: minGradeID,
		Sprite:     1,
		Color:      1,
	}

	if opts != nil {
		if opts.Sprite != 0 {
			loc.Sprite = opts.Sprite
		}

		if opts.Color != 0 {
			loc.Color = opts.Color
		}

		loc.ParkingSpots = opts.ParkingSpots
	}

	f.Locations[lt] = append(f.Locations[lt], loc)

	if err := m.registry.Update(ctx, factionID, LocationsUpdate{Locations: f.Locations}); err != nil {
		return Location{}, err
	}

	m.registry.Bus().PublishLocationChanged(LocationChangedEvent{
		FactionID: factionID,
		Action:    LocationAdded,
		Type:      lt,
		Location:  loc,
	})

	return loc, nil
}

// RemoveLocation filters a location out of its category list; the
// removed record rides on the event so subscribers can clean up any
// presentation state keyed by it
func (m *LocationManager) RemoveLocation(ctx context.Context, factionID string, lt LocationType, locationID string) error {
	unlock := m.registry.lockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return ErrFactionNotFound
	}

	locs, ok := f.Locations[lt]
	if !ok || len(locs) == 0 {
		return ErrLocationNotFound
	}

	var removed *Location
	filtered := make([]Location, 0, len(locs))
	for _, loc := range locs {
		if loc.ID == locationID {
			r := loc
			removed = &r
			continue
		}

		filtered = append(filtered, loc)
	}

	if removed == nil {
		return ErrLocationNotFound
	}

	f.Locations[lt] = filtered

	if err := m.registry.Update(ctx, factionID, LocationsUpdate{Locations: f.Locations}); err != nil {
		return err
	}

	m.registry.Bus().PublishLocationChanged(LocationChangedEvent{
		FactionID: factionID,
		Action:    LocationRemoved,
		Type:      lt,
		Location:  *removed,
	})

	return nil
}

// LocationsByType returns a faction's locations of a given type
func (m *LocationManager) LocationsByType(factionID string, lt LocationType) ([]Location, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return nil, ErrFactionNotFound
	}

	return append([]Location(nil), f.Locations[lt]...), nil
}

// LocationByID returns a single location within a faction+category pair
func (m *LocationManager) LocationByID(factionID string, lt LocationType, locationID string) (Location, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return Location{}, ErrFactionNotFound
	}

	for _, loc := range f.Locations[lt] {
		if loc.ID == locationID {
			return loc, nil
		}
	}

	return Location{}, ErrLocationNotFound
}

// AllLocations returns every location of a faction keyed by type
func (m *LocationManager) AllLocations(factionID string) (map[LocationType][]Location, error) {
	unlock := m.registry.rlockFaction(factionID)
	defer unlock()

	f := m.registry.faction(factionID)
	if f == nil {
		return nil, ErrFactionNotFound
	}

	all := make(map[LocationType][]Location, len(f.Locations))
	for lt, locs := range f.Locations {
		all[lt] = append([]Location(nil), locs...)
	}

	return all, nil
}
