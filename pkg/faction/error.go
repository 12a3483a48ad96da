package faction

import "errors"

// validation errors
var (
	ErrNoFactionName   = errors.New("faction name is missing")
	ErrNegativeBalance = errors.New("bank balance is negative")
	ErrNilStore        = errors.New("faction store is nil")
	ErrNilRegistry     = errors.New("faction registry is nil")
	ErrNilDatabase     = errors.New("database is nil")
	ErrZeroFactionID   = errors.New("faction id is empty")
)

// not-found errors
var (
	ErrFactionNotFound   = errors.New("faction not found")
	ErrGradeNotFound     = errors.New("grade not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrLocationNotFound  = errors.New("location not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrNoOwner           = errors.New("faction has no owner")
)

// conflict errors
var (
	ErrFactionNameTaken     = errors.New("faction name is already taken")
	ErrAlreadyInFaction     = errors.New("character already belongs to a faction")
	ErrNotInFaction         = errors.New("character does not belong to this faction")
	ErrDuplicateGradeWeight = errors.New("a grade with this weight already exists")
	ErrDuplicateLocation    = errors.New("a location with this name already exists")
	ErrOwnerGradeProtected  = errors.New("the owner grade cannot be assigned or edited")
	ErrUnknownLocationType  = errors.New("unknown location type")
)

// state errors
var (
	ErrInsufficientFunds = errors.New("insufficient faction funds")
	ErrGradeFloor        = errors.New("a faction must keep at least two grades")
	ErrWeightOutOfRange  = errors.New("grade weight is out of range")
	ErrPayCapBelowBase   = errors.New("max pay is below base pay")
	ErrNothingChanged    = errors.New("nothing changed")
)
