package faction

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/agubarev/stronghold/pkg/util"
)

// OwnerWeight is the reserved permission weight that denotes faction
// ownership; any grade at or above it is the owner grade and is
// unreachable through ordinary rank edits
const OwnerWeight = 99

// Core contains fields sufficient to create a new faction
// NOTE: pay-related flags are carried for external payroll logic
// and are not interpreted by the faction core itself
type Core struct {
	Name        string `db:"name" json:"name" valid:"required"`
	Label       string `db:"label" json:"label"`
	Bank        int64  `db:"bank" json:"bank"`
	SocietyPay  bool   `db:"society_pay" json:"society_pay"`
	DefaultDuty bool   `db:"default_duty" json:"default_duty"`
	OffDutyPay  bool   `db:"off_duty_pay" json:"off_duty_pay"`
}

// Validate performs a self-check on the core fields
func (c Core) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNoFactionName
	}

	if c.Bank < 0 {
		return ErrNegativeBalance
	}

	if _, err := govalidator.ValidateStruct(c); err != nil {
		return err
	}

	return nil
}

// Grade is a named rank with an integer permission weight;
// higher weight means more authority
type Grade struct {
	ID            string `json:"grade_id"`
	Name          string `json:"name"`
	Weight        int    `json:"weight"`
	OnDutyPay     int64  `json:"on_duty_pay"`
	OffDutyPay    int64  `json:"off_duty_pay"`
	MaxOnDutyPay  int64  `json:"max_on_duty_pay"`
	MaxOffDutyPay int64  `json:"max_off_duty_pay"`
}

// IsOwnerGrade tests whether this grade carries the owner sentinel weight
func (g Grade) IsOwnerGrade() bool {
	return g.Weight >= OwnerWeight
}

// Member is a character's association record within a faction
// NOTE: Name is a denormalized snapshot taken at join time
type Member struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	GradeID string `json:"grade_id"`
	Duty    bool   `json:"duty"`
	IsOwner bool   `json:"is_owner"`
}

// Vector3 is a world position
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ParkingSpot is a parking position with a rotation
type ParkingSpot struct {
	Pos Vector3 `json:"pos"`
	Rot Vector3 `json:"rot"`
}

// LocationType designates a purpose a named world point serves
type LocationType string

// location types
const (
	LTDuty        LocationType = "duty"
	LTJob         LocationType = "job"
	LTStorage     LocationType = "storage"
	LTVehicleShop LocationType = "vehicle_shop"
	LTBossMenu    LocationType = "boss_menu"
	LTFactionShop LocationType = "faction_shop"
	LTClothing    LocationType = "clothing"
)

// KnownLocationTypes is the closed set of location types
var KnownLocationTypes = []LocationType{
	LTDuty, LTJob, LTStorage, LTVehicleShop, LTBossMenu, LTFactionShop, LTClothing,
}

// IsKnown tests whether this location type belongs to the closed set
func (lt LocationType) IsKnown() bool {
	for _, known := range KnownLocationTypes {
		if lt == known {
			return true
		}
	}

	return false
}

// Location is a named world point tied to a minimum grade;
// sprite, color and parking spots are visual hints opaque to the core
type Location struct {
	ID           string        `json:"location_id"`
	Name         string        `json:"name"`
	Pos          Vector3       `json:"pos"`
	MinGradeID   string        `json:"grade_id"`
	Sprite       int           `json:"sprite,omitempty"`
	Color        int           `json:"color,omitempty"`
	ParkingSpots []ParkingSpot `json:"parking_spots,omitempty"`
}

// Vehicle is an owned-vehicle reference; the core only deletes
// these when the faction itself is removed
type Vehicle struct {
	ID      string `json:"vehicle_id"`
	Model   string `json:"model"`
	Price   int64  `json:"price"`
	GradeID string `json:"grade_id"`
}

// Faction is the aggregate root: name, treasury, members,
// rank ladder, locations and owned vehicles
type Faction struct {
	ID string `db:"id" json:"id"`

	Core

	Members   map[int64]Member            `db:"-" json:"members"`
	Grades    []Grade                     `db:"-" json:"grades"`
	Locations map[LocationType][]Location `db:"-" json:"locations"`
	Vehicles  []Vehicle                   `db:"-" json:"vehicles"`
}

// NormalizeName lowercases a faction name and strips its spaces;
// faction name uniqueness and lookups compare normalized names
func NormalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", ""))
}

// clone produces a deep copy of the aggregate; the registry hands
// out clones so callers can never race its live maps and slices
func (f *Faction) clone() *Faction {
	c := &Faction{
		ID:   f.ID,
		Core: f.Core,
	}

	if f.Members != nil {
		c.Members = make(map[int64]Member, len(f.Members))
		for id, m := range f.Members {
			c.Members[id] = m
		}
	}

	if f.Grades != nil {
		c.Grades = append([]Grade(nil), f.Grades...)
	}

	if f.Locations != nil {
		c.Locations = make(map[LocationType][]Location, len(f.Locations))
		for lt, locs := range f.Locations {
			copied := make([]Location, len(locs))
			for i, loc := range locs {
				loc.ParkingSpots = append([]ParkingSpot(nil), loc.ParkingSpots...)
				copied[i] = loc
			}

			c.Locations[lt] = copied
		}
	}

	if f.Vehicles != nil {
		c.Vehicles = append([]Vehicle(nil), f.Vehicles...)
	}

	return c
}

// GradeByID returns a grade and its presence flag
func (f *Faction) GradeByID(gradeID string) (Grade, bool) {
	for _, g := range f.Grades {
		if g.ID == gradeID {
			return g, true
		}
	}

	return Grade{}, false
}

// DefaultGradeLadder seeds the two-tier ladder every new faction
// starts with: the owner grade at the sentinel weight and one base grade
func DefaultGradeLadder() []Grade {
	return []Grade{
		{
			ID:            util.NewULID().String(),
			Name:          "Owner",
			Weight:        OwnerWeight,
			OnDutyPay:     10000,
			OffDutyPay:    1000,
			MaxOnDutyPay:  11000,
			MaxOffDutyPay: 1500,
		},
		{
			ID:            util.NewULID().String(),
			Name:          "Recruit",
			Weight:        0,
			OnDutyPay:     200,
			OffDutyPay:    100,
			MaxOnDutyPay:  200,
			MaxOffDutyPay: 100,
		},
	}
}
