package domain

import "errors"

// Error kinds returned by the transaction engine. Callers classify with errors.Is;
// context is attached with fmt.Errorf("%w: ...").
var (
	ErrValidation             = errors.New("validation error")
	ErrDuplicateActiveSession = errors.New("vehicle already has an active parking session")
	ErrNotFound               = errors.New("record not found")
	ErrInvalidState           = errors.New("transaction is not in the required state")
	ErrNoTariffForDuration    = errors.New("no active tariff band covers the parking duration")
	ErrOverlapConflict        = errors.New("range overlaps an existing record")
	ErrAreaFull               = errors.New("no free slots for this vehicle type in the area")
	ErrInUse                  = errors.New("record is still referenced")
)
