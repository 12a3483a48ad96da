package character

import (
	"strconv"

	"github.com/allegro/bigcache"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/agubarev/stronghold/pkg/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StoreCache is an internal caching mechanism for a character Store
// a very simple mechanism, returning a miss as a nil pointer
type StoreCache interface {
	Get(characterID int64) *Character
	Put(c Character) error
	Delete(characterID int64) error
}

type defaultCache struct {
	backend *bigcache.BigCache
}

// NewDefaultStoreCache returns a bigcache-backed character cache
func NewDefaultStoreCache(config bigcache.Config) (StoreCache, error) {
	backend, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize character cache")
	}

	return &defaultCache{backend}, nil
}

func cacheKey(characterID int64) string {
	return util.HashKeyString(strconv.AppendInt(nil, characterID, 10))
}

func (c *defaultCache) Get(characterID int64) *Character {
	entry, err := c.backend.Get(cacheKey(characterID))
	if err != nil {
		// bigcache only fails a Get on a miss
		return nil
	}

	char := new(Character)
	if err := json.Unmarshal(entry, char); err != nil {
		// a broken entry is as good as a miss
		_ = c.backend.Delete(cacheKey(characterID))
		return nil
	}

	return char
}

func (c *defaultCache) Put(char Character) error {
	entry, err := json.Marshal(char)
	if err != nil {
		return errors.Wrap(err, "failed to marshal character for caching")
	}

	return c.backend.Set(cacheKey(char.ID), entry)
}

func (c *defaultCache) Delete(characterID int64) error {
	if err := c.backend.Delete(cacheKey(characterID)); err != nil && err != bigcache.ErrEntryNotFound {
		return err
	}

	return nil
}
