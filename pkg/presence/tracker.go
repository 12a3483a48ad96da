// Package presence maintains a live on-duty roster per faction by
// listening to faction lifecycle events; it holds derived state only
// and can rebuild itself from the registry at any time
package presence

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/agubarev/stronghold/pkg/faction"
)

// Tracker keeps the set of on-duty character ids per faction
type Tracker struct {
	registry Registry
	onDuty   map[string]map[int64]bool

	unsubscribers []func()
	logger        *zap.Logger
	sync.RWMutex
}

// Registry is the slice of the faction registry the tracker consumes
type Registry interface {
	Bus() *faction.Bus
	AllFactions() []*faction.Faction
}

// NewTracker initializes a tracker, derives the initial roster from
// the registry and starts listening for changes
func NewTracker(r Registry) (*Tracker, error) {
	if r == nil {
		return nil, faction.ErrNilRegistry
	}

	t := &Tracker{
		registry: r,
		onDuty:   make(map[string]map[int64]bool),
	}

	t.Rebuild()

	bus := r.Bus()
	t.unsubscribers = append(t.unsubscribers,
		bus.SubscribeDutyChanged(t.handleDutyChanged),
		bus.SubscribeMemberAdded(t.handleMemberAdded),
		bus.SubscribeMemberKicked(t.handleMemberKicked),
	)

	return t, nil
}

// SetLogger assigns a logger for this tracker
func (t *Tracker) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[presence]")
	}

	t.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (t *Tracker) Logger() *zap.Logger {
	if t.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize presence tracker logger: %s", err))
		}

		t.logger = l
	}

	return t.logger
}

// Close detaches the tracker from the bus
func (t *Tracker) Close() {
	for _, unsubscribe := range t.unsubscribers {
		unsubscribe()
	}

	t.unsubscribers = nil
}

// Rebuild re-derives the whole roster from the registry; events
// missed while detached are not replayed, this is the recovery path
func (t *Tracker) Rebuild() {
	roster := make(map[string]map[int64]bool)
	for _, f := range t.registry.AllFactions() {
		for id, member := range f.Members {
			if !member.Duty {
				continue
			}

			if roster[f.ID] == nil {
				roster[f.ID] = make(map[int64]bool)
			}

			roster[f.ID][id] = true
		}
	}

	t.Lock()
	t.onDuty = roster
	t.Unlock()
}

// IsOnDuty tests whether a character is currently on duty in a faction
func (t *Tracker) IsOnDuty(factionID string, characterID int64) bool {
	t.RLock()
	defer t.RUnlock()

	return t.onDuty[factionID][characterID]
}

// OnDuty returns the on-duty character ids of a faction
func (t *Tracker) OnDuty(factionID string) []int64 {
	t.RLock()
	defer t.RUnlock()

	ids := make([]int64, 0, len(t.onDuty[factionID]))
	for id := range t.onDuty[factionID] {
		ids = append(ids, id)
	}

	return ids
}

// OnDutyCount returns how many members of a faction are on duty
func (t *Tracker) OnDutyCount(factionID string) int {
	t.RLock()
	defer t.RUnlock()

	return len(t.onDuty[factionID])
}

func (t *Tracker) handleDutyChanged(ev faction.DutyChangedEvent) {
	t.Lock()
	defer t.Unlock()

	if ev.OnDuty {
		if t.onDuty[ev.FactionID] == nil {
			t.onDuty[ev.FactionID] = make(map[int64]bool)
		}

		t.onDuty[ev.FactionID][ev.CharacterID] = true

		return
	}

	delete(t.onDuty[ev.FactionID], ev.CharacterID)
}

func (t *Tracker) handleMemberAdded(ev faction.MemberAddedEvent) {
	if !ev.Member.Duty {
		return
	}

	t.Lock()
	defer t.Unlock()

	if t.onDuty[ev.FactionID] == nil {
		t.onDuty[ev.FactionID] = make(map[int64]bool)
	}

	t.onDuty[ev.FactionID][ev.Member.ID] = true
}

func (t *Tracker) handleMemberKicked(ev faction.MemberKickedEvent) {
	t.Lock()
	delete(t.onDuty[ev.FactionID], ev.Member.ID)
	t.Unlock()
}
