package character

import (
	"github.com/asaskevich/govalidator"
)

// Character is a persisted player character document
// NOTE: only the fields the faction core needs are mapped here;
// the rest of the character document is owned by other subsystems
type Character struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name" valid:"required"`
	FactionID string `db:"faction_id" json:"faction_id"`
	Bank      int64  `db:"bank" json:"bank"`
}

// HasFaction tests whether this character currently belongs to a faction
func (c Character) HasFaction() bool {
	return c.FactionID != ""
}

// Validate performs a self-check on this character
func (c Character) Validate() error {
	if c.ID == 0 {
		return ErrZeroCharacterID
	}

	if _, err := govalidator.ValidateStruct(c); err != nil {
		return err
	}

	return nil
}
