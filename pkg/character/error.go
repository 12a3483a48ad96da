package character

import "errors"

// errors
var (
	ErrNilDatabase         = errors.New("database is nil")
	ErrNilCharacterStore   = errors.New("character store is nil")
	ErrNilCharacterManager = errors.New("character manager is nil")
	ErrCharacterNotFound   = errors.New("character not found")
	ErrZeroCharacterID     = errors.New("character id is zero")
	ErrNothingChanged      = errors.New("nothing changed")
	ErrNegativeAmount      = errors.New("credit amount is negative")
)
