package domain

import "errors"

var (
	ErrClassificationUnavailable = errors.New("classification unavailable")
	ErrUnknownGood               = errors.New("unknown good")
	ErrRoundInactive             = errors.New("round not active")
	ErrMalformedInput            = errors.New("malformed input")
	ErrUtilityNotSet             = errors.New("utility not set")
)
