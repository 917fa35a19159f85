package game

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient food")
	ErrUpgradeMaxed      = errors.New("upgrade already at max level")
	ErrInvalidUpgradeID  = errors.New("unknown upgrade id")
	ErrInvalidPlayer     = errors.New("player must be 1 or 2")

	// ErrInvalidConfig wraps every construction-time validation failure.
	ErrInvalidConfig = errors.New("invalid match configuration")
)
