package option_test

import (
	"testing"

	"github.com/austincho/crystal-protocol/option"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_expired(t *testing.T) {
	variants(t, func(t *testing.T, collateralAtInstantiate bool) {
		f := newFixture(t, collateralAtInstantiate)
		f.instantiate(t)
		f.fund(t)
		f.underwrite(t)

		_, err := f.contract.Execute(ctx, f.store, option.Env{Height: f.terms.Expires}, option.Info{Sender: f.creator})
		assert.ErrorIs(t, err, option.ErrOptionExpired)
		assert.Equal(t, option.StatusLocked, f.record(t).Status())
	})
}

func TestExecute_notLocked(t *testing.T) {
	f := newFixture(t, true)
	f.instantiate(t)
	f.fund(t)

	_, err := f.contract.Execute(ctx, f.store, option.Env{Height: 4}, option.Info{Sender: f.creator})
	assert.ErrorIs(t, err, option.ErrUnauthorized)
}

func TestExecute_twice(t *testing.T) {
	f := newFixture(t, true)
	f.instantiate(t)
	f.fund(t)
	f.underwrite(t)

	resp, err := f.contract.Execute(ctx, f.store, option.Env{Height: 4}, option.Info{Sender: f.creator})
	require.NoError(t, err)
	assert.ElementsMatch(t, []option.Transfer{
		{Recipient: f.creator, Funds: f.terms.Asset},
		{Recipient: f.underwriter, Funds: f.terms.Collateral},
		{Recipient: f.underwriter, Funds: f.terms.Premium},
	}, resp.Transfers)

	_, err = f.contract.Execute(ctx, f.store, option.Env{Height: 5}, option.Info{Sender: f.creator})
	assert.ErrorIs(t, err, option.ErrUnauthorized)
	_, err = f.contract.WithdrawExpired(ctx, f.store, option.Env{Height: f.terms.Expires}, option.Info{})
	assert.ErrorIs(t, err, option.ErrUnauthorized)
}

func TestExecute_rejectsFunds(t *testing.T) {
	f := newFixture(t, true)
	f.instantiate(t)
	f.fund(t)
	f.underwrite(t)

	info := option.Info{Sender: f.creator, Funds: []option.Bundle{option.Coins(1, "uusd")}}
	_, err := f.contract.Execute(ctx, f.store, option.Env{Height: 4}, info)
	assert.ErrorIs(t, err, option.ErrUnexpectedFunds)
	assert.Equal(t, option.StatusLocked, f.record(t).Status())
}

func TestExecute_combinedPaysCollateralOnly(t *testing.T) {
	f := newFixture(t, false)
	f.instantiate(t)
	f.fund(t)
	f.underwrite(t)

	resp, err := f.contract.Execute(ctx, f.store, option.Env{Height: 4}, option.Info{Sender: f.creator})
	require.NoError(t, err)
	assert.Equal(t, []option.Transfer{
		{Recipient: f.underwriter, Funds: f.terms.Collateral},
	}, resp.Transfers)
	assert.True(t, f.escrowed(t).IsZero())
}

func TestWithdrawExpired(t *testing.T) {
	f := newFixture(t, true)
	f.instantiate(t)
	f.fund(t)
	f.underwrite(t)

	_, err := f.contract.WithdrawExpired(ctx, f.store, option.Env{Height: f.terms.Expires - 1}, option.Info{})
	assert.ErrorIs(t, err, option.ErrOptionNotExpired)
	var expiry *option.ExpiryError
	require.ErrorAs(t, err, &expiry)
	assert.Equal(t, f.terms.Expires, expiry.Expires)
	assert.Equal(t, option.StatusLocked, f.record(t).Status())

	// Anyone can settle an expired option.
	anyone := option.Info{Sender: keypair.MustRandom().Address()}
	resp, err := f.contract.WithdrawExpired(ctx, f.store, option.Env{Height: f.terms.Expires}, anyone)
	require.NoError(t, err)
	assert.ElementsMatch(t, []option.Transfer{
		{Recipient: f.creator, Funds: f.terms.Collateral},
		{Recipient: f.underwriter, Funds: f.terms.Asset},
		{Recipient: f.underwriter, Funds: f.terms.Premium},
	}, resp.Transfers)
	assert.Equal(t, option.Expired{Underwriter: f.underwriter}, f.record(t).State)

	// No double payout.
	_, err = f.contract.WithdrawExpired(ctx, f.store, option.Env{Height: f.terms.Expires + 1}, anyone)
	assert.ErrorIs(t, err, option.ErrUnauthorized)
}

func TestWithdrawExpired_combined(t *testing.T) {
	f := newFixture(t, false)
	f.instantiate(t)
	f.fund(t)
	f.underwrite(t)

	resp, err := f.contract.WithdrawExpired(ctx, f.store, option.Env{Height: f.terms.Expires + 5}, option.Info{})
	require.NoError(t, err)
	assert.Equal(t, []option.Transfer{
		{Recipient: f.creator, Funds: f.terms.Collateral},
	}, resp.Transfers)
	assert.Equal(t, option.StatusExpired, f.record(t).Status())
}

func TestWithdrawExpired_notLocked(t *testing.T) {
	variants(t, func(t *testing.T, collateralAtInstantiate bool) {
		f := newFixture(t, collateralAtInstantiate)
		f.instantiate(t)
		f.fund(t)

		_, err := f.contract.WithdrawExpired(ctx, f.store, option.Env{Height: f.terms.Expires}, option.Info{})
		assert.ErrorIs(t, err, option.ErrUnauthorized)
		assert.Equal(t, option.StatusFunded, f.record(t).Status())
	})
}

func TestWithdrawExpired_paysCurrentHolder(t *testing.T) {
	f := newFixture(t, true)
	f.instantiate(t)
	f.fund(t)
	f.underwrite(t)

	recipient := keypair.MustRandom().Address()
	_, err := f.contract.TransferOption(ctx, f.store, option.Env{}, option.Info{Sender: f.creator}, recipient)
	require.NoError(t, err)

	resp, err := f.contract.WithdrawExpired(ctx, f.store, option.Env{Height: f.terms.Expires}, option.Info{})
	require.NoError(t, err)
	assert.Contains(t, resp.Transfers, option.Transfer{Recipient: recipient, Funds: f.terms.Collateral})
}

func TestWithdrawUnlocked(t *testing.T) {
	testCases := []struct {
		name                    string
		collateralAtInstantiate bool
		wantTransfers           func(f *fixture) []option.Transfer
	}{
		{
			name:                    "separated refunds collateral",
			collateralAtInstantiate: true,
			wantTransfers: func(f *fixture) []option.Transfer {
				return []option.Transfer{{Recipient: f.creator, Funds: f.terms.Collateral}}
			},
		},
		{
			name:                    "combined holds nothing",
			collateralAtInstantiate: false,
			wantTransfers:           func(*fixture) []option.Transfer { return nil },
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.collateralAtInstantiate)
			f.instantiate(t)

			resp, err := f.contract.WithdrawUnlocked(ctx, f.store, option.Env{}, option.Info{Sender: f.creator})
			require.NoError(t, err)
			assert.Equal(t, tc.wantTransfers(f), resp.Transfers)
			assert.Equal(t, option.StatusCancelled, f.record(t).Status())

			_, err = f.contract.WithdrawUnlocked(ctx, f.store, option.Env{}, option.Info{Sender: f.creator})
			assert.ErrorIs(t, err, option.ErrUnauthorized)
			_, err = f.contract.Fund(ctx, f.store, option.Env{}, f.fundInfo())
			assert.ErrorIs(t, err, option.ErrUnauthorized)
		})
	}
}

func TestWithdrawUnlocked_afterFunding(t *testing.T) {
	f := newFixture(t, true)
	f.instantiate(t)
	f.fund(t)

	_, err := f.contract.WithdrawUnlocked(ctx, f.store, option.Env{}, option.Info{Sender: f.creator})
	assert.ErrorIs(t, err, option.ErrUnauthorized)
	assert.Equal(t, option.StatusFunded, f.record(t).Status())
}

func TestWithdrawUnlocked_notHolder(t *testing.T) {
	f := newFixture(t, true)
	f.instantiate(t)

	_, err := f.contract.WithdrawUnlocked(ctx, f.store, option.Env{}, option.Info{Sender: f.underwriter})
	assert.ErrorIs(t, err, option.ErrUnauthorized)
	assert.Equal(t, option.StatusCreated, f.record(t).Status())
}

func TestCommands_notFound(t *testing.T) {
	f := newFixture(t, true)
	env := option.Env{}
	info := option.Info{Sender: f.creator}

	_, err := f.contract.Fund(ctx, f.store, env, info)
	assert.ErrorIs(t, err, option.ErrNotFound)
	_, err = f.contract.TransferOption(ctx, f.store, env, info, f.underwriter)
	assert.ErrorIs(t, err, option.ErrNotFound)
	_, err = f.contract.Underwrite(ctx, f.store, env, info, f.terms)
	assert.ErrorIs(t, err, option.ErrNotFound)
	_, err = f.contract.Execute(ctx, f.store, env, info)
	assert.ErrorIs(t, err, option.ErrNotFound)
	_, err = f.contract.WithdrawExpired(ctx, f.store, env, info)
	assert.ErrorIs(t, err, option.ErrNotFound)
	_, err = f.contract.WithdrawUnlocked(ctx, f.store, env, info)
	assert.ErrorIs(t, err, option.ErrNotFound)
}
