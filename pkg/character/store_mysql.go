package character

import (
	"context"

	"github.com/go-sql-driver/mysql"
	"github.com/gocraft/dbr/v2"
)

// MySQLStore is the default character store implementation
type MySQLStore struct {
	db *dbr.Connection
}

// NewMySQLStore returns a character store with mysql used as a backend
func NewMySQLStore(db *dbr.Connection) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &MySQLStore{db}, nil
}

func (s *MySQLStore) get(ctx context.Context, q string, args ...interface{}) (c Character, err error) {
	err = s.db.NewSession(nil).
		SelectBySql(q, args...).
		LoadOneContext(ctx, &c)

	if err != nil {
		if err == dbr.ErrNotFound {
			return c, ErrCharacterNotFound
		}

		return c, err
	}

	return c, nil
}

func (s *MySQLStore) FetchCharacterByID(ctx context.Context, characterID int64) (Character, error) {
	return s.get(ctx, "SELECT * FROM `character` WHERE id = ? LIMIT 1", characterID)
}

func (s *MySQLStore) FetchCharactersByFaction(ctx context.Context, factionID string) (cs []Character, err error) {
	if _, err = s.db.NewSession(nil).
		SelectBySql("SELECT * FROM `character` WHERE faction_id = ?", factionID).
		LoadContext(ctx, &cs); err != nil {
		return nil, err
	}

	return cs, nil
}

// UpdateFactionID writes the character's faction pointer
// NOTE: an empty faction id clears the pointer
func (s *MySQLStore) UpdateFactionID(ctx context.Context, characterID int64, factionID string) error {
	res, err := s.db.NewSession(nil).
		Update("character").
		Set("faction_id", factionID).
		Where("id = ?", characterID).
		ExecContext(ctx)

	// error handling
	if err != nil {
		switch err := err.(*mysql.MySQLError); err.Number {
		default:
			return err
		}
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}

	// if no rows were affected then returning this as a non-critical error
	if ra == 0 {
		return ErrNothingChanged
	}

	return nil
}

// CreditBank adds a given amount to the character's personal balance
func (s *MySQLStore) CreditBank(ctx context.Context, characterID int64, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	res, err := s.db.NewSession(nil).
		UpdateBySql("UPDATE `character` SET bank = bank + ? WHERE id = ?", amount, characterID).
		ExecContext(ctx)

	if err != nil {
		return err
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if ra == 0 {
		return ErrCharacterNotFound
	}

	return nil
}
