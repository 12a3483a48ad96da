package faction

import (
	"context"

	"github.com/go-sql-driver/mysql"
	"github.com/gocraft/dbr/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// factionRow is the flat database representation of a faction;
// nested collections are stored as JSON documents
type factionRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Label       string `db:"label"`
	Bank        int64  `db:"bank"`
	SocietyPay  bool   `db:"society_pay"`
	DefaultDuty bool   `db:"default_duty"`
	OffDutyPay  bool   `db:"off_duty_pay"`
	Members     []byte `db:"members"`
	Grades      []byte `db:"grades"`
	Locations   []byte `db:"locations"`
	Vehicles    []byte `db:"vehicles"`
}

func (row factionRow) toFaction() (f Faction, err error) {
	f = Faction{
		ID: row.ID,
		Core: Core{
			Name:        row.Name,
			Label:       row.Label,
			Bank:        row.Bank,
			SocietyPay:  row.SocietyPay,
			DefaultDuty: row.DefaultDuty,
			OffDutyPay:  row.OffDutyPay,
		},
	}

	if err = json.Unmarshal(row.Members, &f.Members); err != nil {
		return f, errors.Wrap(err, "failed to unmarshal members")
	}

	if err = json.Unmarshal(row.Grades, &f.Grades); err != nil {
		return f, errors.Wrap(err, "failed to unmarshal grades")
	}

	if err = json.Unmarshal(row.Locations, &f.Locations); err != nil {
		return f, errors.Wrap(err, "failed to unmarshal locations")
	}

	if err = json.Unmarshal(row.Vehicles, &f.Vehicles); err != nil {
		return f, errors.Wrap(err, "failed to unmarshal vehicles")
	}

	return f, nil
}

// MySQLStore is the default persistence gateway implementation
type MySQLStore struct {
	db *dbr.Connection
}

// NewMySQLStore returns a faction store with mysql used as a backend
func NewMySQLStore(db *dbr.Connection) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &MySQLStore{db}, nil
}

func (s *MySQLStore) CreateFaction(ctx context.Context, f Faction) (string, error) {
	f.ID = uuid.New().String()

	members, err := json.Marshal(f.Members)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal members")
	}

	grades, err := json.Marshal(f.Grades)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal grades")
	}

	locations, err := json.Marshal(f.Locations)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal locations")
	}

	vehicles, err := json.Marshal(f.Vehicles)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal vehicles")
	}

	row := factionRow{
		ID:          f.ID,
		Name:        f.Name,
		Label:       f.Label,
		Bank:        f.Bank,
		SocietyPay:  f.SocietyPay,
		DefaultDuty: f.DefaultDuty,
		OffDutyPay:  f.OffDutyPay,
		Members:     members,
		Grades:      grades,
		Locations:   locations,
		Vehicles:    vehicles,
	}

	_, err = s.db.NewSession(nil).
		InsertInto("faction").
		Columns(
			"id", "name", "label", "bank",
			"society_pay", "default_duty", "off_duty_pay",
			"members", "grades", "locations", "vehicles",
		).
		Record(&row).
		ExecContext(ctx)

	// error handling
	if err != nil {
		switch err := err.(*mysql.MySQLError); err.Number {
		case 1062:
			return "", ErrFactionNameTaken
		default:
			return "", err
		}
	}

	return f.ID, nil
}

func (s *MySQLStore) FetchAllFactions(ctx context.Context) ([]Faction, error) {
	var rows []factionRow

	if _, err := s.db.NewSession(nil).
		SelectBySql("SELECT * FROM `faction`").
		LoadContext(ctx, &rows); err != nil {
		return nil, err
	}

	fs := make([]Faction, 0, len(rows))
	for _, row := range rows {
		f, err := row.toFaction()
		if err != nil {
			return nil, err
		}

		fs = append(fs, f)
	}

	return fs, nil
}

// columnUpdates maps a field group onto its column values
func columnUpdates(u FieldUpdate) (map[string]interface{}, error) {
	switch u := u.(type) {
	case CoreUpdate:
		return map[string]interface{}{
			"name":         u.Core.Name,
			"label":        u.Core.Label,
			"bank":         u.Core.Bank,
			"society_pay":  u.Core.SocietyPay,
			"default_duty": u.Core.DefaultDuty,
			"off_duty_pay": u.Core.OffDutyPay,
		}, nil
	case BankUpdate:
		return map[string]interface{}{"bank": u.Bank}, nil
	case MembersUpdate:
		buf, err := json.Marshal(u.Members)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal members")
		}

		return map[string]interface{}{"members": buf}, nil
	case GradesUpdate:
		buf, err := json.Marshal(u.Grades)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal grades")
		}

		return map[string]interface{}{"grades": buf}, nil
	case LocationsUpdate:
		buf, err := json.Marshal(u.Locations)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal locations")
		}

		return map[string]interface{}{"locations": buf}, nil
	case VehiclesUpdate:
		buf, err := json.Marshal(u.Vehicles)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal vehicles")
		}

		return map[string]interface{}{"vehicles": buf}, nil
	default:
		return nil, errors.Errorf("unhandled field update: %s", u.FieldName())
	}
}

func (s *MySQLStore) UpdateFields(ctx context.Context, factionID string, updates ...FieldUpdate) error {
	if factionID == "" {
		return ErrZeroFactionID
	}

	sess := s.db.NewSession(nil)

	// beginning transaction
	tx, err := sess.Begin()
	if err != nil {
		return err
	}
	defer tx.RollbackUnlessCommitted()

	for _, u := range updates {
		values, err := columnUpdates(u)
		if err != nil {
			return err
		}

		res, err := tx.Update("faction").SetMap(values).Where("id = ?", factionID).ExecContext(ctx)
		if err != nil {
			return err
		}

		ra, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if ra == 0 {
			return ErrFactionNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit database transaction")
	}

	return nil
}

func (s *MySQLStore) DeleteFaction(ctx context.Context, factionID string) error {
	res, err := s.db.NewSession(nil).
		DeleteFrom("faction").
		Where("id = ?", factionID).
		ExecContext(ctx)

	if err != nil {
		return err
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if ra == 0 {
		return ErrFactionNotFound
	}

	return nil
}

func (s *MySQLStore) DeleteVehicle(ctx context.Context, vehicleID string) error {
	_, err := s.db.NewSession(nil).
		DeleteFrom("vehicle").
		Where("id = ?", vehicleID).
		ExecContext(ctx)

	return err
}
