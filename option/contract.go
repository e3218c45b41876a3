package option

import (
	"context"
	"fmt"

	"github.com/stellar/go/keypair"
)

const (
	// ContractName and ContractVersion are persisted beside the record so
	// that upgrade tooling can tell which contract wrote it.
	ContractName    = "crystal-protocol:option"
	ContractVersion = "0.1.0"
)

// ContractInfo is the version tag persisted beside the record.
type ContractInfo struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

// CurrentContractInfo returns the version tag of this contract.
func CurrentContractInfo() ContractInfo {
	return ContractInfo{Contract: ContractName, Version: ContractVersion}
}

// Store holds the single record of an option.
type Store interface {
	// Load returns the record, or an error wrapping ErrNotFound if no record
	// has been saved.
	Load(ctx context.Context) (Record, error)
	// Save replaces the record.
	Save(ctx context.Context, r Record) error
}

// Env is the environment a command executes in. Height is the current
// logical time, sampled once by the host for each command.
type Env struct {
	Height uint64
}

// Info describes the sender of a command and the funds deposited with it.
// Each element of Funds is one deposit leg.
type Info struct {
	Sender string
	Funds  []Bundle
}

// Deposit returns the total of every deposit leg.
func (i Info) Deposit() (Bundle, error) {
	total, err := Sum(i.Funds...)
	if err != nil {
		return nil, fmt.Errorf("totalling deposit: %w", err)
	}
	return total, nil
}

// Transfer is an instruction to pay funds held by the custodian to a
// recipient.
type Transfer struct {
	Recipient string `json:"recipient"`
	Funds     Bundle `json:"funds"`
}

// Attribute is a key value pair describing what a command did.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the result of a successful command. The transfers must be
// applied together with the record the command saved, or not at all.
type Response struct {
	Transfers  []Transfer
	Attributes []Attribute
}

func (r Response) attr(key, value string) Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Config configures a Contract.
type Config struct {
	// CollateralAtInstantiate selects the funding variant. When true the
	// collateral is deposited with the instantiation and only the premium is
	// deposited when funding. When false the premium and collateral are both
	// deposited when funding, and the asset and premium are forwarded as soon
	// as the option is underwritten.
	CollateralAtInstantiate bool
}

// Contract is the state machine of a covered option. It holds no state of
// its own, every command reads and writes the record in the store given to
// it.
//
// None of the commands are safe to run concurrently against the same store,
// the caller must serialize them.
type Contract struct {
	collateralAtInstantiate bool
}

// NewContract returns a contract of the funding variant the config selects.
func NewContract(c Config) *Contract {
	return &Contract{
		collateralAtInstantiate: c.CollateralAtInstantiate,
	}
}

// CollateralAtInstantiate returns true if the contract takes the collateral
// when instantiated.
func (c *Contract) CollateralAtInstantiate() bool {
	return c.collateralAtInstantiate
}

// held returns the legs the custodian holds for an option in the status.
func (c *Contract) held(s Status) []Leg {
	if c.collateralAtInstantiate {
		switch s {
		case StatusCreated:
			return []Leg{LegCollateral}
		case StatusFunded:
			return []Leg{LegCollateral, LegPremium}
		case StatusLocked:
			return []Leg{LegAsset, LegCollateral, LegPremium}
		}
		return nil
	}
	switch s {
	case StatusFunded:
		return []Leg{LegCollateral, LegPremium}
	case StatusLocked:
		return []Leg{LegCollateral}
	}
	return nil
}

// Escrowed returns the funds the custodian holds for the record.
func (c *Contract) Escrowed(r Record) (Bundle, error) {
	held := c.held(r.Status())
	legs := make([]Bundle, len(held))
	for i, l := range held {
		legs[i] = r.Terms.leg(l)
	}
	total, err := Sum(legs...)
	if err != nil {
		return nil, fmt.Errorf("totalling escrow: %w", err)
	}
	return total, nil
}

// release returns the transfers paying out every leg that is held before a
// transition and is not held after it. The payee decides who receives each
// leg.
func (c *Contract) release(r Record, before []Leg, after Status, payee func(Leg) string) []Transfer {
	kept := map[Leg]bool{}
	for _, l := range c.held(after) {
		kept[l] = true
	}
	var transfers []Transfer
	for _, l := range before {
		if kept[l] {
			continue
		}
		funds := r.Terms.leg(l)
		if funds.IsZero() {
			continue
		}
		transfers = append(transfers, Transfer{Recipient: payee(l), Funds: funds})
	}
	return transfers
}

type requirement struct {
	leg   Leg
	funds Bundle
}

// matchDeposit checks that each deposit leg is exactly the funds required
// for it, in order.
func matchDeposit(offered []Bundle, required ...requirement) error {
	for i, req := range required {
		var got Bundle
		if i < len(offered) {
			got = offered[i]
		}
		if !got.Equal(req.funds) {
			return &MismatchError{Leg: req.leg, Offered: got, Required: req.funds}
		}
	}
	for _, extra := range offered[min(len(offered), len(required)):] {
		if !extra.IsZero() {
			return fmt.Errorf("%d deposit legs offered, %d accepted: %w", len(offered), len(required), ErrUnexpectedFunds)
		}
	}
	return nil
}

func requireNoFunds(info Info) error {
	for _, f := range info.Funds {
		if !f.IsZero() {
			return fmt.Errorf("offered %q: %w", f.String(), ErrUnexpectedFunds)
		}
	}
	return nil
}

func validateAddress(addr string) error {
	_, err := keypair.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

// checkNotExpired is the time guard for underwriting and execution, which
// are only allowed strictly before expiry.
func checkNotExpired(env Env, t Terms) error {
	if env.Height >= t.Expires {
		return &ExpiryError{Expires: t.Expires, Height: env.Height}
	}
	return nil
}

// checkExpired is the time guard for settling an expired option, which is
// only allowed at or after expiry.
func checkExpired(env Env, t Terms) error {
	if env.Height < t.Expires {
		return &ExpiryError{Expires: t.Expires, Height: env.Height}
	}
	return nil
}

func load(ctx context.Context, s Store) (Record, error) {
	r, err := s.Load(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("loading option: %w", err)
	}
	return r, nil
}

func save(ctx context.Context, s Store, r Record) error {
	err := s.Save(ctx, r)
	if err != nil {
		return fmt.Errorf("saving option: %w", err)
	}
	return nil
}
