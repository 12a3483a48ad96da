package faction

import "context"

// FieldUpdate is a statically-typed partial update of a single
// mutable field group of the faction document; every write that
// goes through Registry.Update carries one or more of these
type FieldUpdate interface {
	// FieldName returns the document field this update targets
	FieldName() string

	// Apply writes the update into an in-memory aggregate
	Apply(f *Faction)
}

// CoreUpdate replaces the scalar core fields (label, flags, name)
type CoreUpdate struct {
	Core Core
}

func (u CoreUpdate) FieldName() string { return "core" }
func (u CoreUpdate) Apply(f *Faction)  { f.Core = u.Core }

// BankUpdate replaces the treasury balance
type BankUpdate struct {
	Bank int64
}

func (u BankUpdate) FieldName() string { return "bank" }
func (u BankUpdate) Apply(f *Faction)  { f.Bank = u.Bank }

// MembersUpdate replaces the member map
type MembersUpdate struct {
	Members map[int64]Member
}

func (u MembersUpdate) FieldName() string { return "members" }
func (u MembersUpdate) Apply(f *Faction)  { f.Members = u.Members }

// GradesUpdate replaces the grade ladder
type GradesUpdate struct {
	Grades []Grade
}

func (u GradesUpdate) FieldName() string { return "grades" }
func (u GradesUpdate) Apply(f *Faction)  { f.Grades = u.Grades }

// LocationsUpdate replaces the location map
type LocationsUpdate struct {
	Locations map[LocationType][]Location
}

func (u LocationsUpdate) FieldName() string { return "locations" }
func (u LocationsUpdate) Apply(f *Faction)  { f.Locations = u.Locations }

// VehiclesUpdate replaces the owned-vehicle list
type VehiclesUpdate struct {
	Vehicles []Vehicle
}

func (u VehiclesUpdate) FieldName() string { return "vehicles" }
func (u VehiclesUpdate) Apply(f *Faction)  { f.Vehicles = u.Vehicles }

// Store describes the persistence gateway contract for faction
// documents; the registry is the only component that talks to it
type Store interface {
	// CreateFaction persists a new document and returns its assigned id
	CreateFaction(ctx context.Context, f Faction) (string, error)

	// FetchAllFactions returns every persisted faction document
	FetchAllFactions(ctx context.Context) ([]Faction, error)

	// UpdateFields writes the named field groups of an existing document
	UpdateFields(ctx context.Context, factionID string, updates ...FieldUpdate) error

	// DeleteFaction removes a faction document
	DeleteFaction(ctx context.Context, factionID string) error

	// DeleteVehicle removes an owned-vehicle document
	DeleteVehicle(ctx context.Context, vehicleID string) error
}
