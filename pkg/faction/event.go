package faction

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocationAction tags a location change as an addition or a removal
type LocationAction uint8

// location actions
const (
	LocationAdded LocationAction = iota + 1
	LocationRemoved
)

func (a LocationAction) String() string {
	switch a {
	case LocationAdded:
		return "added"
	case LocationRemoved:
		return "removed"
	default:
		return "unknown location action"
	}
}

// MemberAddedEvent is published after a member joins a faction; it
// carries the persisted member record only. A subscriber that needs
// the live connection of the joining player resolves it on receipt
// via character.Manager.Session, which reports whether the character
// is online at delivery time rather than at join time
type MemberAddedEvent struct {
	FactionID string
	Member    Member
}

// MemberKickedEvent is published after a member is removed from a faction
type MemberKickedEvent struct {
	FactionID string
	Member    Member
}

// OwnerChangedEvent is published after faction ownership is transferred
type OwnerChangedEvent struct {
	FactionID  string
	OldOwnerID int64
	NewOwnerID int64
}

// DutyChangedEvent is published after a member's duty flag flips
type DutyChangedEvent struct {
	FactionID   string
	CharacterID int64
	OnDuty      bool
}

// LocationChangedEvent is published after a location is added or removed
type LocationChangedEvent struct {
	FactionID string
	Action    LocationAction
	Type      LocationType
	Location  Location
}

// FieldUpdatedEvent is published by the registry for every persisted
// write, regardless of which manager triggered it
type FieldUpdatedEvent struct {
	FactionID string
	Field     string
}

type subscriber struct {
	id uuid.UUID
	fn interface{}
}

// Bus is an in-process publish/subscribe mechanism for faction
// lifecycle events; delivery is synchronous and follows subscriber
// registration order
// NOTE: there is no persistence and no replay; a subscriber that is
// not registered at publish time never sees the event
type Bus struct {
	memberAdded     []subscriber
	memberKicked    []subscriber
	ownerChanged    []subscriber
	dutyChanged     []subscriber
	locationChanged []subscriber
	fieldUpdated    []subscriber

	logger *zap.Logger
	sync.RWMutex
}

// NewBus initializes a new notification bus
func NewBus() *Bus {
	return &Bus{
		memberAdded:     make([]subscriber, 0),
		memberKicked:    make([]subscriber, 0),
		ownerChanged:    make([]subscriber, 0),
		dutyChanged:     make([]subscriber, 0),
		locationChanged: make([]subscriber, 0),
		fieldUpdated:    make([]subscriber, 0),
	}
}

// SetLogger assigns a logger for this bus
func (b *Bus) SetLogger(logger *zap.Logger) error {
	if logger != nil {
		logger = logger.Named("[bus]")
	}

	b.logger = logger

	return nil
}

// Logger returns primary logger if is set, otherwise initializing and returning
func (b *Bus) Logger() *zap.Logger {
	if b.logger == nil {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(fmt.Errorf("failed to initialize bus logger: %s", err))
		}

		b.logger = l
	}

	return b.logger
}

func (b *Bus) subscribe(list *[]subscriber, fn interface{}) (unsubscribe func()) {
	id := uuid.New()

	b.Lock()
	*list = append(*list, subscriber{id: id, fn: fn})
	b.Unlock()

	return func() {
		b.Lock()
		for i, s := range *list {
			if s.id == id {
				*list = append((*list)[:i], (*list)[i+1:]...)
				break
			}
		}
		b.Unlock()
	}
}

// deliver calls a single subscriber, absorbing its panic so a broken
// subscriber can never corrupt the manager publishing from within
// its critical section
func (b *Bus) deliver(family string, call func()) {
	defer func() {
		if p := recover(); p != nil {
			b.Logger().Error(
				"event subscriber panicked",
				zap.String("family", family),
				zap.Any("panic", p),
			)
		}
	}()

	call()
}

// SubscribeMemberAdded registers a member-added subscriber
func (b *Bus) SubscribeMemberAdded(fn func(MemberAddedEvent)) (unsubscribe func()) {
	return b.subscribe(&b.memberAdded, fn)
}

// SubscribeMemberKicked registers a member-kicked subscriber
func (b *Bus) SubscribeMemberKicked(fn func(MemberKickedEvent)) (unsubscribe func()) {
	return b.subscribe(&b.memberKicked, fn)
}

// SubscribeOwnerChanged registers an owner-changed subscriber
func (b *Bus) SubscribeOwnerChanged(fn func(OwnerChangedEvent)) (unsubscribe func()) {
	return b.subscribe(&b.ownerChanged, fn)
}

// SubscribeDutyChanged registers a duty-changed subscriber
func (b *Bus) SubscribeDutyChanged(fn func(DutyChangedEvent)) (unsubscribe func()) {
	return b.subscribe(&b.dutyChanged, fn)
}

// SubscribeLocationChanged registers a location-changed subscriber
func (b *Bus) SubscribeLocationChanged(fn func(LocationChangedEvent)) (unsubscribe func()) {
	return b.subscribe(&b.locationChanged, fn)
}

// SubscribeFieldUpdated registers a generic field-updated subscriber
func (b *Bus) SubscribeFieldUpdated(fn func(FieldUpdatedEvent)) (unsubscribe func()) {
	return b.subscribe(&b.fieldUpdated, fn)
}

// PublishMemberAdded delivers a member-added event to all subscribers
func (b *Bus) PublishMemberAdded(ev MemberAddedEvent) {
	b.RLock()
	subs := append([]subscriber(nil), b.memberAdded...)
	b.RUnlock()

	for _, s := range subs {
		fn := s.fn.(func(MemberAddedEvent))
		b.deliver("member-added", func() { fn(ev) })
	}
}

// PublishMemberKicked delivers a member-kicked event to all subscribers
func (b *Bus) PublishMemberKicked(ev MemberKickedEvent) {
	b.RLock()
	subs := append([]subscriber(nil), b.memberKicked...)
	b.RUnlock()

	for _, s := range subs {
		fn := s.fn.(func(MemberKickedEvent))
		b.deliver("member-kicked", func() { fn(ev) })
	}
}

// PublishOwnerChanged delivers an owner-changed event to all subscribers
func (b *Bus) PublishOwnerChanged(ev OwnerChangedEvent) {
	b.RLock()
	subs := append([]subscriber(nil), b.ownerChanged...)
	b.RUnlock()

	for _, s := range subs {
		fn := s.fn.(func(OwnerChangedEvent))
		b.deliver("owner-changed", func() { fn(ev) })
	}
}

// PublishDutyChanged delivers a duty-changed event to all subscribers
func (b *Bus) PublishDutyChanged(ev DutyChangedEvent) {
	b.RLock()
	subs := append([]subscriber(nil), b.dutyChanged...)
	b.RUnlock()

	for _, s := range subs {
		fn := s.fn.(func(DutyChangedEvent))
		b.deliver("duty-changed", func() { fn(ev) })
	}
}

// PublishLocationChanged delivers a location-changed event to all subscribers
func (b *Bus) PublishLocationChanged(ev LocationChangedEvent) {
	b.RLock()
	subs := append([]subscriber(nil), b.locationChanged...)
	b.RUnlock()

	for _, s := range subs {
		fn := s.fn.(func(LocationChangedEvent))
		b.deliver("location-changed", func() { fn(ev) })
	}
}

// PublishFieldUpdated delivers a field-updated event to all subscribers
func (b *Bus) PublishFieldUpdated(ev FieldUpdatedEvent) {
	b.RLock()
	subs := append([]subscriber(nil), b.fieldUpdated...)
	b.RUnlock()

	for _, s := range subs {
		fn := s.fn.(func(FieldUpdatedEvent))
		b.deliver("field-updated", func() { fn(ev) })
	}
}
