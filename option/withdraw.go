package option

import (
	"context"
	"fmt"
)

// WithdrawExpired settles a locked option that expired without being
// executed. Anyone can settle an expired option. The collateral is returned
// to the holder, and the asset is returned to the underwriter along with the
// premium it earned, less any leg that was already forwarded when the option
// was locked.
func (c *Contract) WithdrawExpired(ctx context.Context, s Store, env Env, info Info) (Response, error) {
	r, err := load(ctx, s)
	if err != nil {
		return Response{}, err
	}

	if err := checkExpired(env, r.Terms); err != nil {
		return Response{}, fmt.Errorf("withdrawing expired option: %w", err)
	}
	locked, ok := r.State.(Locked)
	if !ok {
		return Response{}, fmt.Errorf("withdrawing expired option: status is %s: %w", r.Status(), ErrUnauthorized)
	}
	if err := requireNoFunds(info); err != nil {
		return Response{}, fmt.Errorf("withdrawing expired option: %w", err)
	}

	transfers := c.release(r, c.held(StatusLocked), StatusExpired, func(l Leg) string {
		if l == LegCollateral {
			return r.Holder
		}
		return locked.Underwriter
	})

	r.State = Expired{Underwriter: locked.Underwriter}
	if err := save(ctx, s, r); err != nil {
		return Response{}, err
	}
	resp := Response{Transfers: transfers}.
		attr("method", "withdraw_expired_option").
		attr("holder", r.Holder).
		attr("underwriter", locked.Underwriter)
	return resp, nil
}

// WithdrawUnlocked cancels an option that has not been funded and refunds
// anything deposited for it to the holder. Only the holder can withdraw the
// option.
func (c *Contract) WithdrawUnlocked(ctx context.Context, s Store, env Env, info Info) (Response, error) {
	r, err := load(ctx, s)
	if err != nil {
		return Response{}, err
	}

	if info.Sender != r.Holder {
		return Response{}, fmt.Errorf("withdrawing unlocked option: sender %s is not the holder: %w", info.Sender, ErrUnauthorized)
	}
	if r.Status() != StatusCreated {
		return Response{}, fmt.Errorf("withdrawing unlocked option: status is %s: %w", r.Status(), ErrUnauthorized)
	}
	if err := requireNoFunds(info); err != nil {
		return Response{}, fmt.Errorf("withdrawing unlocked option: %w", err)
	}

	transfers := c.release(r, c.held(StatusCreated), StatusCancelled, func(Leg) string {
		return r.Holder
	})

	r.State = Cancelled{}
	if err := save(ctx, s, r); err != nil {
		return Response{}, err
	}
	resp := Response{Transfers: transfers}.
		attr("method", "withdraw_unlocked_option").
		attr("holder", r.Holder)
	return resp, nil
}
