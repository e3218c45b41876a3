package option

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the sender is not entitled to the command in
	// the option's current state.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the option has never been instantiated.
	ErrNotFound = errors.New("option not found")

	// ErrAlreadyInstantiated indicates an option already exists in the store.
	ErrAlreadyInstantiated = errors.New("option already instantiated")

	// ErrAgreementMismatch indicates the terms an underwriter agreed to do not
	// match the terms of the option.
	ErrAgreementMismatch = errors.New("option terms do not match created option")

	// ErrUnexpectedFunds indicates funds were attached to a command that does
	// not accept them.
	ErrUnexpectedFunds = errors.New("unexpected funds")

	ErrOptionExpired    = errors.New("option expired")
	ErrOptionNotExpired = errors.New("option not expired")

	ErrPremiumMismatch    = errors.New("premium mismatch")
	ErrCollateralMismatch = errors.New("collateral mismatch")
	ErrAssetMismatch      = errors.New("asset mismatch")
)

// ExpiryError occurs when a command is not allowed at the current logical
// time. It matches ErrOptionExpired if the option had expired, and
// ErrOptionNotExpired if it had not.
type ExpiryError struct {
	Expires uint64
	Height  uint64
}

func (e *ExpiryError) expired() bool {
	return e.Height >= e.Expires
}

func (e *ExpiryError) Error() string {
	if e.expired() {
		return fmt.Sprintf("option expired at %d, current height %d", e.Expires, e.Height)
	}
	return fmt.Sprintf("option expires at %d, current height %d", e.Expires, e.Height)
}

func (e *ExpiryError) Is(target error) bool {
	if e.expired() {
		return target == ErrOptionExpired
	}
	return target == ErrOptionNotExpired
}

// Leg is one of the bundles of an option's terms.
type Leg string

const (
	LegAsset      = Leg("asset")
	LegCollateral = Leg("collateral")
	LegPremium    = Leg("premium")
)

// MismatchError occurs when deposited funds are not exactly the funds a leg
// requires. It matches the mismatch error of its leg.
type MismatchError struct {
	Leg      Leg
	Offered  Bundle
	Required Bundle
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: offered %q, requires %q", e.Leg, e.Offered.String(), e.Required.String())
}

func (e *MismatchError) Is(target error) bool {
	switch e.Leg {
	case LegPremium:
		return target == ErrPremiumMismatch
	case LegCollateral:
		return target == ErrCollateralMismatch
	case LegAsset:
		return target == ErrAssetMismatch
	}
	return false
}
