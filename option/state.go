package option

import (
	"encoding/json"
	"fmt"
)

// Status names the lifecycle state of an option.
type Status string

const (
	StatusCreated   = Status("created")
	StatusFunded    = Status("funded")
	StatusLocked    = Status("locked")
	StatusExecuted  = Status("executed")
	StatusCancelled = Status("cancelled")
	StatusExpired   = Status("expired")
)

// Terminal returns true if no command can move an option out of the status.
func (s Status) Terminal() bool {
	return s == StatusExecuted || s == StatusCancelled || s == StatusExpired
}

// State is the lifecycle state of an option. States reached after the option
// has been underwritten carry the underwriter, the others cannot.
type State interface {
	Status() Status
	isState()
}

// Created is the state of an option that has been instantiated but whose
// premium has not been paid.
type Created struct{}

// Funded is the state of an option whose premium has been paid and is waiting
// for an underwriter.
type Funded struct{}

// Cancelled is the terminal state of an option withdrawn before it was
// funded.
type Cancelled struct{}

// Locked is the state of an option that has been underwritten and can be
// executed by the holder until it expires.
type Locked struct {
	Underwriter string
}

// Executed is the terminal state of an option that the holder exercised.
type Executed struct {
	Underwriter string
}

// Expired is the terminal state of a locked option that was settled after it
// expired without being executed.
type Expired struct {
	Underwriter string
}

func (Created) Status() Status   { return StatusCreated }
func (Funded) Status() Status    { return StatusFunded }
func (Cancelled) Status() Status { return StatusCancelled }
func (Locked) Status() Status    { return StatusLocked }
func (Executed) Status() Status  { return StatusExecuted }
func (Expired) Status() Status   { return StatusExpired }

func (Created) isState()   {}
func (Funded) isState()    {}
func (Cancelled) isState() {}
func (Locked) isState()    {}
func (Executed) isState()  {}
func (Expired) isState()   {}

// UnderwriterOf returns the underwriter carried by the state, if the state has
// one.
func UnderwriterOf(s State) (string, bool) {
	switch s := s.(type) {
	case Locked:
		return s.Underwriter, true
	case Executed:
		return s.Underwriter, true
	case Expired:
		return s.Underwriter, true
	}
	return "", false
}

// NewState builds the state for a status. An underwriter must be given for
// the statuses reached after underwriting and must not be given for others.
func NewState(status Status, underwriter string) (State, error) {
	switch status {
	case StatusCreated, StatusFunded, StatusCancelled:
		if underwriter != "" {
			return nil, fmt.Errorf("status %s cannot have an underwriter", status)
		}
	case StatusLocked, StatusExecuted, StatusExpired:
		if underwriter == "" {
			return nil, fmt.Errorf("status %s requires an underwriter", status)
		}
	}
	switch status {
	case StatusCreated:
		return Created{}, nil
	case StatusFunded:
		return Funded{}, nil
	case StatusCancelled:
		return Cancelled{}, nil
	case StatusLocked:
		return Locked{Underwriter: underwriter}, nil
	case StatusExecuted:
		return Executed{Underwriter: underwriter}, nil
	case StatusExpired:
		return Expired{Underwriter: underwriter}, nil
	}
	return nil, fmt.Errorf("unknown status %q", status)
}

// Terms are the economic terms of an option. They are fixed at instantiation.
type Terms struct {
	// Asset is deposited by the underwriter and received by the holder on
	// execution.
	Asset Bundle `json:"asset"`
	// Collateral is deposited for the holder and received by the underwriter
	// on execution, or returned to the holder on expiry.
	Collateral Bundle `json:"collateral"`
	// Premium is paid by the holder to fund the option and earned by the
	// underwriter.
	Premium Bundle `json:"premium"`
	// Expires is the logical time at which the option expires.
	Expires uint64 `json:"expires"`
}

// Validate checks the bundles of the terms. The asset and collateral must not
// be empty. The premium may be empty. The legs together must not overflow,
// so that any total of them can be computed.
func (t Terms) Validate() error {
	if err := t.Asset.Validate(); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}
	if err := t.Collateral.Validate(); err != nil {
		return fmt.Errorf("invalid collateral: %w", err)
	}
	if err := t.Premium.Validate(); err != nil {
		return fmt.Errorf("invalid premium: %w", err)
	}
	if t.Asset.IsZero() {
		return fmt.Errorf("invalid asset: must not be empty")
	}
	if t.Collateral.IsZero() {
		return fmt.Errorf("invalid collateral: must not be empty")
	}
	if _, err := Sum(t.Asset, t.Collateral, t.Premium); err != nil {
		return fmt.Errorf("invalid terms: %w", err)
	}
	return nil
}

// Equal returns true if every field of the terms is equal.
func (t Terms) Equal(o Terms) bool {
	return t.Asset.Equal(o.Asset) &&
		t.Collateral.Equal(o.Collateral) &&
		t.Premium.Equal(o.Premium) &&
		t.Expires == o.Expires
}

func (t Terms) leg(l Leg) Bundle {
	switch l {
	case LegAsset:
		return t.Asset
	case LegCollateral:
		return t.Collateral
	case LegPremium:
		return t.Premium
	}
	return nil
}

// Record is the persisted option.
type Record struct {
	State   State
	Creator string
	Holder  string
	Terms   Terms
}

// Status returns the status of the record's state.
func (r Record) Status() Status {
	if r.State == nil {
		return ""
	}
	return r.State.Status()
}

// Underwriter returns the underwriter of the option if it has been
// underwritten.
func (r Record) Underwriter() (string, bool) {
	return UnderwriterOf(r.State)
}

type recordJSON struct {
	Status      Status `json:"status"`
	Creator     string `json:"creator"`
	Holder      string `json:"holder"`
	Underwriter string `json:"underwriter,omitempty"`
	Asset       Bundle `json:"asset"`
	Collateral  Bundle `json:"collateral"`
	Premium     Bundle `json:"premium"`
	Expires     uint64 `json:"expires"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.State == nil {
		return nil, fmt.Errorf("marshaling record: no state")
	}
	underwriter, _ := r.Underwriter()
	return json.Marshal(recordJSON{
		Status:      r.Status(),
		Creator:     r.Creator,
		Holder:      r.Holder,
		Underwriter: underwriter,
		Asset:       r.Terms.Asset,
		Collateral:  r.Terms.Collateral,
		Premium:     r.Terms.Premium,
		Expires:     r.Terms.Expires,
	})
}

func (r *Record) UnmarshalJSON(b []byte) error {
	v := recordJSON{}
	err := json.Unmarshal(b, &v)
	if err != nil {
		return err
	}
	s, err := NewState(v.Status, v.Underwriter)
	if err != nil {
		return fmt.Errorf("unmarshaling record: %w", err)
	}
	*r = Record{
		State:   s,
		Creator: v.Creator,
		Holder:  v.Holder,
		Terms: Terms{
			Asset:      v.Asset,
			Collateral: v.Collateral,
			Premium:    v.Premium,
			Expires:    v.Expires,
		},
	}
	return nil
}
