package property

import "errors"

// Sentinel kinds for descriptor configuration errors.
var (
	ErrNonPositiveLength = errors.New("sequence length must be positive")
	ErrUnknownSplitType  = errors.New("unknown split type")
	ErrUnknownFeature    = errors.New("unknown datetime feature")
	ErrUnknownPortion    = errors.New("unknown date portion")
)
