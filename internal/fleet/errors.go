package fleet

import "errors"

var (
	ErrDuplicateAsset = errors.New("duplicate asset id")
	ErrInvalidHealth  = errors.New("health must be between 0 and 100")
	ErrInvalidStatus  = errors.New("invalid asset status")
)
