package option

import (
	"context"
	"fmt"
)

// Execute exercises a locked option before it expires. Only the holder can
// execute the option. The holder receives the asset and the underwriter
// receives the collateral and premium, less any leg that was already
// forwarded when the option was locked.
func (c *Contract) Execute(ctx context.Context, s Store, env Env, info Info) (Response, error) {
	r, err := load(ctx, s)
	if err != nil {
		return Response{}, err
	}

	if info.Sender != r.Holder {
		return Response{}, fmt.Errorf("executing option: sender %s is not the holder: %w", info.Sender, ErrUnauthorized)
	}
	if err := checkNotExpired(env, r.Terms); err != nil {
		return Response{}, fmt.Errorf("executing option: %w", err)
	}
	locked, ok := r.State.(Locked)
	if !ok {
		return Response{}, fmt.Errorf("executing option: status is %s: %w", r.Status(), ErrUnauthorized)
	}
	if err := requireNoFunds(info); err != nil {
		return Response{}, fmt.Errorf("executing option: %w", err)
	}

	transfers := c.release(r, c.held(StatusLocked), StatusExecuted, func(l Leg) string {
		if l == LegAsset {
			return r.Holder
		}
		return locked.Underwriter
	})

	r.State = Executed{Underwriter: locked.Underwriter}
	if err := save(ctx, s, r); err != nil {
		return Response{}, err
	}
	resp := Response{Transfers: transfers}.
		attr("method", "execute_option").
		attr("holder", r.Holder).
		attr("underwriter", locked.Underwriter)
	return resp, nil
}
