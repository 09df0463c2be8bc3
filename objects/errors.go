package objects

import (
	"errors"
)

// Interaction failures. All of them except best-effort cleanup failures end
// the current interaction and are reported to the acting user.
var (
	ErrNotRegistered    = errors.New("participant is not registered")
	ErrDealNotFound     = errors.New("deal not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrInvalidDealState = errors.New("invalid deal state")
	ErrValidation       = errors.New("validation failed")
	ErrDeliveryFailed   = errors.New("delivery failed")
)

// IsUserFacing reports whether err was already explained to the user and
// needs no further escalation.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrNotRegistered) ||
		errors.Is(err, ErrDealNotFound) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrInvalidDealState) ||
		errors.Is(err, ErrValidation)
}
