package option

import (
	"context"
	"errors"
	"fmt"
)

// Instantiate creates the option with the sender as creator and holder.
//
// If the contract takes collateral at instantiation the sender must deposit
// exactly the collateral as a single leg, otherwise the sender must not
// deposit anything.
func (c *Contract) Instantiate(ctx context.Context, s Store, env Env, info Info, t Terms) (Record, error) {
	_, err := s.Load(ctx)
	if err == nil {
		return Record{}, fmt.Errorf("instantiating option: %w", ErrAlreadyInstantiated)
	}
	if !errors.Is(err, ErrNotFound) {
		return Record{}, fmt.Errorf("instantiating option: %w", err)
	}

	if err := validateAddress(info.Sender); err != nil {
		return Record{}, fmt.Errorf("instantiating option: sender: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Record{}, fmt.Errorf("instantiating option: %w", err)
	}

	if c.collateralAtInstantiate {
		err = matchDeposit(info.Funds, requirement{LegCollateral, t.Collateral})
	} else {
		err = requireNoFunds(info)
	}
	if err != nil {
		return Record{}, fmt.Errorf("instantiating option: %w", err)
	}

	r := Record{
		State:   Created{},
		Creator: info.Sender,
		Holder:  info.Sender,
		Terms:   t,
	}
	if err := save(ctx, s, r); err != nil {
		return Record{}, err
	}
	return r, nil
}
