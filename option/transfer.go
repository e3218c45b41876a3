package option

import (
	"context"
	"fmt"
)

// TransferOption reassigns the option to the recipient. Only the holder can
// transfer the option, and it can be transferred in any state.
func (c *Contract) TransferOption(ctx context.Context, s Store, env Env, info Info, recipient string) (Response, error) {
	r, err := load(ctx, s)
	if err != nil {
		return Response{}, err
	}

	if info.Sender != r.Holder {
		return Response{}, fmt.Errorf("transferring option: sender %s is not the holder: %w", info.Sender, ErrUnauthorized)
	}
	if err := requireNoFunds(info); err != nil {
		return Response{}, fmt.Errorf("transferring option: %w", err)
	}
	if err := validateAddress(recipient); err != nil {
		return Response{}, fmt.Errorf("transferring option: recipient: %w", err)
	}

	r.Holder = recipient
	if err := save(ctx, s, r); err != nil {
		return Response{}, err
	}
	return Response{}.
		attr("method", "transfer_option").
		attr("recipient", recipient), nil
}
