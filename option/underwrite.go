package option

import (
	"context"
	"fmt"
)

// Underwrite locks a funded option with the sender as the underwriter. The
// sender states the terms it agrees to, which must be exactly the terms of
// the option, and deposits the asset as a single leg.
//
// If the contract took the collateral when funding rather than at
// instantiation, the asset is forwarded to the holder and the premium to the
// underwriter as soon as the option is locked.
func (c *Contract) Underwrite(ctx context.Context, s Store, env Env, info Info, agreed Terms) (Response, error) {
	r, err := load(ctx, s)
	if err != nil {
		return Response{}, err
	}

	if r.Status() != StatusFunded {
		return Response{}, fmt.Errorf("underwriting option: status is %s: %w", r.Status(), ErrUnauthorized)
	}
	if err := checkNotExpired(env, r.Terms); err != nil {
		return Response{}, fmt.Errorf("underwriting option: %w", err)
	}
	if !agreed.Equal(r.Terms) {
		return Response{}, fmt.Errorf("underwriting option: %w", ErrAgreementMismatch)
	}
	if err := matchDeposit(info.Funds, requirement{LegAsset, r.Terms.Asset}); err != nil {
		return Response{}, fmt.Errorf("underwriting option: %w", err)
	}
	if err := validateAddress(info.Sender); err != nil {
		return Response{}, fmt.Errorf("underwriting option: sender: %w", err)
	}

	underwriter := info.Sender
	before := append(c.held(StatusFunded), LegAsset)
	transfers := c.release(r, before, StatusLocked, func(l Leg) string {
		if l == LegAsset {
			return r.Holder
		}
		return underwriter
	})

	r.State = Locked{Underwriter: underwriter}
	if err := save(ctx, s, r); err != nil {
		return Response{}, err
	}
	resp := Response{Transfers: transfers}.
		attr("method", "underwrite_option").
		attr("underwriter", underwriter)
	return resp, nil
}
