package msg

import (
	"errors"
	"fmt"

	"github.com/austincho/crystal-protocol/bank"
	"github.com/austincho/crystal-protocol/option"
)

// ErrorKind discriminates the errors an agent reports.
type ErrorKind string

const (
	ErrorKindUnauthorized        = ErrorKind("unauthorized")
	ErrorKindNotFound            = ErrorKind("not_found")
	ErrorKindAlreadyInstantiated = ErrorKind("already_instantiated")
	ErrorKindAgreementMismatch   = ErrorKind("agreement_mismatch")
	ErrorKindUnexpectedFunds     = ErrorKind("unexpected_funds")
	ErrorKindOptionExpired       = ErrorKind("option_expired")
	ErrorKindOptionNotExpired    = ErrorKind("option_not_expired")
	ErrorKindPremiumMismatch     = ErrorKind("premium_mismatch")
	ErrorKindCollateralMismatch  = ErrorKind("collateral_mismatch")
	ErrorKindAssetMismatch       = ErrorKind("asset_mismatch")
	ErrorKindInsufficientFunds   = ErrorKind("insufficient_funds")
	ErrorKindInvalidRequest      = ErrorKind("invalid_request")
	ErrorKindInternal            = ErrorKind("internal")
)

var sentinels = []struct {
	kind ErrorKind
	err  error
}{
	{ErrorKindUnauthorized, option.ErrUnauthorized},
	{ErrorKindNotFound, option.ErrNotFound},
	{ErrorKindAlreadyInstantiated, option.ErrAlreadyInstantiated},
	{ErrorKindAgreementMismatch, option.ErrAgreementMismatch},
	{ErrorKindUnexpectedFunds, option.ErrUnexpectedFunds},
	{ErrorKindInsufficientFunds, bank.ErrInsufficientFunds},
	{ErrorKindInvalidRequest, ErrInvalidRequest},
}

// ErrInvalidRequest indicates a request was malformed or not understood.
var ErrInvalidRequest = errors.New("invalid request")

// ErrInvalidSignature indicates a request is not signed by its sender. It is
// reported as unauthorized.
var ErrInvalidSignature = fmt.Errorf("invalid signature: %w", option.ErrUnauthorized)

// Error is an error reported by an agent. It carries the context of the
// error so that a caller can diagnose it without querying the option.
//
// Error unwraps to the option package's error of the same kind, so callers
// can match it with errors.Is and errors.As.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	// Expires and Height are set for option_expired and option_not_expired.
	Expires uint64 `json:"expires,omitempty"`
	Height  uint64 `json:"height,omitempty"`

	// Offered and Required are set for the mismatch kinds.
	Offered  option.Bundle `json:"offered,omitempty"`
	Required option.Bundle `json:"required,omitempty"`
}

// ErrorFromErr returns the Error describing err.
func ErrorFromErr(err error) *Error {
	e := &Error{Kind: ErrorKindInternal, Message: err.Error()}

	var expiry *option.ExpiryError
	var mismatch *option.MismatchError
	switch {
	case errors.As(err, &expiry):
		e.Kind = ErrorKindOptionNotExpired
		if errors.Is(expiry, option.ErrOptionExpired) {
			e.Kind = ErrorKindOptionExpired
		}
		e.Expires = expiry.Expires
		e.Height = expiry.Height
		return e
	case errors.As(err, &mismatch):
		switch mismatch.Leg {
		case option.LegPremium:
			e.Kind = ErrorKindPremiumMismatch
		case option.LegCollateral:
			e.Kind = ErrorKindCollateralMismatch
		case option.LegAsset:
			e.Kind = ErrorKindAssetMismatch
		}
		e.Offered = mismatch.Offered
		e.Required = mismatch.Required
		return e
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			e.Kind = s.kind
			break
		}
	}
	return e
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case ErrorKindOptionExpired, ErrorKindOptionNotExpired:
		return &option.ExpiryError{Expires: e.Expires, Height: e.Height}
	case ErrorKindPremiumMismatch:
		return &option.MismatchError{Leg: option.LegPremium, Offered: e.Offered, Required: e.Required}
	case ErrorKindCollateralMismatch:
		return &option.MismatchError{Leg: option.LegCollateral, Offered: e.Offered, Required: e.Required}
	case ErrorKindAssetMismatch:
		return &option.MismatchError{Leg: option.LegAsset, Offered: e.Offered, Required: e.Required}
	}
	for _, s := range sentinels {
		if s.kind == e.Kind {
			return s.err
		}
	}
	return nil
}
