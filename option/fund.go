package option

import (
	"context"
	"fmt"
)

// Fund pays the premium of a created option, moving it to funded. Only the
// holder can fund the option.
//
// If the contract takes collateral at instantiation the holder deposits the
// premium as a single leg. Otherwise the holder deposits two legs, the
// premium followed by the collateral.
func (c *Contract) Fund(ctx context.Context, s Store, env Env, info Info) (Response, error) {
	r, err := load(ctx, s)
	if err != nil {
		return Response{}, err
	}

	if info.Sender != r.Holder {
		return Response{}, fmt.Errorf("funding option: sender %s is not the holder: %w", info.Sender, ErrUnauthorized)
	}
	if r.Status() != StatusCreated {
		return Response{}, fmt.Errorf("funding option: status is %s: %w", r.Status(), ErrUnauthorized)
	}

	if c.collateralAtInstantiate {
		err = matchDeposit(info.Funds, requirement{LegPremium, r.Terms.Premium})
	} else {
		err = matchDeposit(info.Funds,
			requirement{LegPremium, r.Terms.Premium},
			requirement{LegCollateral, r.Terms.Collateral},
		)
	}
	if err != nil {
		return Response{}, fmt.Errorf("funding option: %w", err)
	}

	r.State = Funded{}
	if err := save(ctx, s, r); err != nil {
		return Response{}, err
	}
	return Response{}.
		attr("method", "fund_option").
		attr("holder", r.Holder), nil
}
