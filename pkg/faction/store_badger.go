package faction

import (
	"context"

	"github.com/dgraph-io/badger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// key prefixes inside the badger keyspace
var (
	factionKeyPrefix = []byte("faction:")
	vehicleKeyPrefix = []byte("vehicle:")
)

func factionKey(factionID string) []byte {
	return append(append([]byte(nil), factionKeyPrefix...), factionID...)
}

func vehicleKey(vehicleID string) []byte {
	return append(append([]byte(nil), vehicleKeyPrefix...), vehicleID...)
}

// BadgerStore is an embedded document store: one JSON document per
// faction id, field updates done as read-modify-write transactions
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore returns a faction store with badger used as a backend
func NewBadgerStore(db *badger.DB) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &BadgerStore{db}, nil
}

func (s *BadgerStore) CreateFaction(ctx context.Context, f Faction) (string, error) {
	f.ID = uuid.New().String()

	buf, err := json.Marshal(f)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal faction document")
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(factionKey(f.ID), buf)
	})

	if err != nil {
		return "", errors.Wrap(err, "failed to store faction document")
	}

	return f.ID, nil
}

func (s *BadgerStore) FetchAllFactions(ctx context.Context) (fs []Faction, err error) {
	fs = make([]Faction, 0)

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = factionKeyPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(factionKeyPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var f Faction
				if err := json.Unmarshal(val, &f); err != nil {
					return errors.Wrap(err, "failed to unmarshal faction document")
				}

				fs = append(fs, f)

				return nil
			})

			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return fs, nil
}

// UpdateFields loads the document, applies the given field groups
// and writes it back within a single transaction
func (s *BadgerStore) UpdateFields(ctx context.Context, factionID string, updates ...FieldUpdate) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(factionKey(factionID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrFactionNotFound
			}

			return err
		}

		var f Faction
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &f)
		})

		if err != nil {
			return errors.Wrap(err, "failed to unmarshal faction document")
		}

		for _, u := range updates {
			u.Apply(&f)
		}

		buf, err := json.Marshal(f)
		if err != nil {
			return errors.Wrap(err, "failed to marshal faction document")
		}

		return txn.Set(factionKey(factionID), buf)
	})
}

func (s *BadgerStore) DeleteFaction(ctx context.Context, factionID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(factionKey(factionID)); err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrFactionNotFound
			}

			return err
		}

		return txn.Delete(factionKey(factionID))
	})
}

func (s *BadgerStore) DeleteVehicle(ctx context.Context, vehicleID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(vehicleKey(vehicleID))
	})
}
