package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agubarev/stronghold/pkg/character"
	"github.com/agubarev/stronghold/pkg/faction"
	"github.com/agubarev/stronghold/pkg/presence"
)

// Core is an aggregate of Stronghold's faction functionality:
// the registry with its managers and the derived presence roster
type Core struct {
	registry   *faction.Registry
	characters *character.Manager
	grades     *faction.GradeManager
	members    *faction.MemberManager
	bank       *faction.BankLedger
	locations  *faction.LocationManager
	presence   *presence.Tracker

	logger *zap.Logger
}

// New assembles the core on top of a faction store and a character manager
func New(s faction.Store, cm *character.Manager) (*Core, error) {
	if s == nil {
		return nil, faction.ErrNilStore
	}

	if cm == nil {
		return nil, character.ErrNilCharacterManager
	}

	registry, err := faction.NewRegistry(s, cm)
	if err != nil {
		return nil, err
	}

	grades, err := faction.NewGradeManager(registry)
	if err != nil {
		return nil, err
	}

	members, err := faction.NewMemberManager(registry, grades)
	if err != nil {
		return nil, err
	}

	bank, err := faction.NewBankLedger(registry)
	if err != nil {
		return nil, err
	}

	locations, err := faction.NewLocationManager(registry)
	if err != nil {
		return nil, err
	}

	return &Core{
		registry:   registry,
		characters: cm,
		grades:     grades,
		members:    members,
		bank:       bank,
		locations:  locations,
	}, nil
}

// SetLogger assigns a logger for the core and everything beneath it
func (c *Core) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[stronghold]")
	}

	c.logger = logger

	if err := c.registry.SetLogger(logger); err != nil {
		return err
	}

	if err := c.characters.SetLogger(logger); err != nil {
		return err
	}

	if err := c.grades.SetLogger(logger); err != nil {
		return err
	}

	if err := c.members.SetLogger(logger); err != nil {
		return err
	}

	if err := c.bank.SetLogger(logger); err != nil {
		return err
	}

	return c.locations.SetLogger(logger)
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (c *Core) Logger() *zap.Logger {
	if c.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize core logger: %s", err))
		}

		c.logger = l
	}

	return c.logger
}

// Init loads all persisted factions and derives the presence roster
func (c *Core) Init(ctx context.Context) error {
	l := c.Logger()
	l.Info("initializing faction registry")

	if err := c.registry.Init(ctx); err != nil {
		return err
	}

	l.Info("starting presence tracker")

	tracker, err := presence.NewTracker(c.registry)
	if err != nil {
		return err
	}

	if err := tracker.SetLogger(c.logger); err != nil {
		return err
	}

	c.presence = tracker

	return nil
}

// Close detaches derived components
func (c *Core) Close() {
	if c.presence != nil {
		c.presence.Close()
		c.presence = nil
	}
}

// Registry returns the faction registry
func (c *Core) Registry() *faction.Registry {
	if c.registry == nil {
		panic(faction.ErrNilRegistry)
	}

	return c.registry
}

// CharacterManager returns the character manager
func (c *Core) CharacterManager() *character.Manager {
	if c.characters == nil {
		panic(character.ErrNilCharacterManager)
	}

	return c.characters
}

// GradeManager returns the grade manager
func (c *Core) GradeManager() *faction.GradeManager {
	return c.grades
}

// MemberManager returns the member manager
func (c *Core) MemberManager() *faction.MemberManager {
	return c.members
}

// BankLedger returns the faction bank ledger
func (c *Core) BankLedger() *faction.BankLedger {
	return c.bank
}

// LocationManager returns the location manager
func (c *Core) LocationManager() *faction.LocationManager {
	return c.locations
}

// Presence returns the on-duty roster tracker
// NOTE: available only after Init
func (c *Core) Presence() *presence.Tracker {
	return c.presence
}
