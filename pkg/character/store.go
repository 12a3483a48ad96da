package character

import "context"

// Store describes a storage contract for character documents
// NOTE: the faction core is a consumer of this collaborator; it
// only ever reads characters and writes their faction pointer
// and personal bank balance
type Store interface {
	FetchCharacterByID(ctx context.Context, characterID int64) (Character, error)
	FetchCharactersByFaction(ctx context.Context, factionID string) ([]Character, error)
	UpdateFactionID(ctx context.Context, characterID int64, factionID string) error
	CreditBank(ctx context.Context, characterID int64, amount int64) error
}
