package character

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Session is a live connected-session handle of an online character;
// writes through a session update the character's document in place
type Session interface {
	CharacterID() int64
	SetFaction(ctx context.Context, factionID string) error
	CreditBank(ctx context.Context, amount int64) error
}

// SessionResolver resolves a character id to its online session, if any
type SessionResolver interface {
	ByCharacter(characterID int64) Session
}

// Manager is a facade over the character store with an optional
// read cache and online-session resolution
type Manager struct {
	store    Store
	cache    StoreCache
	resolver SessionResolver
	logger   *zap.Logger
}

// NewManager initializes a new character manager
// NOTE: cache and resolver are optional and may be nil
func NewManager(s Store) (*Manager, error) {
	if s == nil {
		return nil, ErrNilCharacterStore
	}

	return &Manager{store: s}, nil
}

// SetCache assigns a store cache for this manager
func (m *Manager) SetCache(c StoreCache) {
	m.cache = c
}

// SetSessionResolver assigns an online-session resolver
func (m *Manager) SetSessionResolver(r SessionResolver) {
	m.resolver = r
}

// SetLogger assigns a logger for this manager
func (m *Manager) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[character]")
	}

	m.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (m *Manager) Logger() *zap.Logger {
	if m.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize character manager logger: %s", err))
		}

		m.logger = l
	}

	return m.logger
}

// CharacterByID returns a character document, preferring the cache
func (m *Manager) CharacterByID(ctx context.Context, characterID int64) (Character, error) {
	if characterID == 0 {
		return Character{}, ErrZeroCharacterID
	}

	if m.cache != nil {
		if c := m.cache.Get(characterID); c != nil {
			return *c, nil
		}
	}

	c, err := m.store.FetchCharacterByID(ctx, characterID)
	if err != nil {
		return c, err
	}

	if m.cache != nil {
		if err := m.cache.Put(c); err != nil {
			m.Logger().Info("failed to cache character", zap.Int64("character_id", c.ID), zap.Error(err))
		}
	}

	return c, nil
}

// CharactersByFaction returns every character pointing at a given faction
// NOTE: always bypasses the cache; membership scans must be authoritative
func (m *Manager) CharactersByFaction(ctx context.Context, factionID string) ([]Character, error) {
	return m.store.FetchCharactersByFaction(ctx, factionID)
}

// Session resolves a live session for a character, or nil when offline
func (m *Manager) Session(characterID int64) Session {
	if m.resolver == nil {
		return nil
	}

	return m.resolver.ByCharacter(characterID)
}

// SetFaction writes the character's faction pointer, going through
// the live session when the character is online
func (m *Manager) SetFaction(ctx context.Context, characterID int64, factionID string) error {
	defer m.invalidate(characterID)

	if sess := m.Session(characterID); sess != nil {
		return sess.SetFaction(ctx, factionID)
	}

	return m.store.UpdateFactionID(ctx, characterID, factionID)
}

// CreditBank adds to the character's personal balance, going through
// the live session when the character is online
func (m *Manager) CreditBank(ctx context.Context, characterID int64, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	defer m.invalidate(characterID)

	if sess := m.Session(characterID); sess != nil {
		return sess.CreditBank(ctx, amount)
	}

	return m.store.CreditBank(ctx, characterID, amount)
}

func (m *Manager) invalidate(characterID int64) {
	if m.cache == nil {
		return
	}

	if err := m.cache.Delete(characterID); err != nil {
		m.Logger().Info("failed to invalidate character cache", zap.Int64("character_id", characterID), zap.Error(err))
	}
}
