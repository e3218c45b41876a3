package bank

import (
	"context"
	"math"
	"testing"

	"github.com/austincho/crystal-protocol/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank_Settle(t *testing.T) {
	ctx := context.Background()
	b := New("custodian")
	require.NoError(t, b.Mint("alice", option.Coins(100, "uusd")))
	require.NoError(t, b.Mint("alice", option.Coins(10, "uluna")))

	err := b.Settle(ctx, Settlement{
		Depositor: "alice",
		Deposit:   option.Coins(10, "uluna"),
	})
	require.NoError(t, err)
	assert.Equal(t, option.Coins(100, "uusd"), b.Balance("alice"))
	assert.Equal(t, option.Coins(10, "uluna"), b.Balance("custodian"))

	// Transfers can pay out the deposit made in the same settlement.
	err = b.Settle(ctx, Settlement{
		Depositor: "alice",
		Deposit:   option.Coins(1, "uusd"),
		Transfers: []option.Transfer{
			{Recipient: "bob", Funds: option.Coins(1, "uusd")},
			{Recipient: "alice", Funds: option.Coins(10, "uluna")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, option.Bundle{{Denom: "uluna", Amount: 10}, {Denom: "uusd", Amount: 99}}, b.Balance("alice"))
	assert.Equal(t, option.Coins(1, "uusd"), b.Balance("bob"))
	assert.True(t, b.Balance("custodian").IsZero())

	assert.Equal(t, []Account{
		{Address: "alice", Funds: option.Bundle{{Denom: "uluna", Amount: 10}, {Denom: "uusd", Amount: 99}}},
		{Address: "bob", Funds: option.Coins(1, "uusd")},
	}, b.Balances())
}

func TestBank_Settle_allOrNothing(t *testing.T) {
	ctx := context.Background()
	b := New("custodian")
	require.NoError(t, b.Mint("alice", option.Coins(10, "uusd")))
	require.NoError(t, b.Mint("custodian", option.Coins(5, "uluna")))

	testCases := []struct {
		name string
		s    Settlement
	}{
		{
			name: "deposit exceeds balance",
			s: Settlement{
				Depositor: "alice",
				Deposit:   option.Coins(11, "uusd"),
			},
		},
		{
			name: "transfer exceeds custody",
			s: Settlement{
				Depositor: "alice",
				Deposit:   option.Coins(10, "uusd"),
				Transfers: []option.Transfer{
					{Recipient: "bob", Funds: option.Coins(5, "uluna")},
					{Recipient: "bob", Funds: option.Coins(1, "uluna")},
				},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := b.Settle(ctx, tc.s)
			assert.ErrorIs(t, err, ErrInsufficientFunds)
			assert.Equal(t, option.Coins(10, "uusd"), b.Balance("alice"))
			assert.Equal(t, option.Coins(5, "uluna"), b.Balance("custodian"))
			assert.True(t, b.Balance("bob").IsZero())
		})
	}
}

func TestBank_Mint_invalid(t *testing.T) {
	b := New("custodian")
	err := b.Mint("alice", option.Coins(-1, "uusd"))
	assert.EqualError(t, err, "minting -1uusd: coin -1uusd: amount must be greater than 0")
}

func TestBank_Settle_negativeAmounts(t *testing.T) {
	ctx := context.Background()
	b := New("custodian")
	require.NoError(t, b.Mint("custodian", option.Coins(5, "uusd")))

	err := b.Settle(ctx, Settlement{
		Depositor: "alice",
		Deposit:   option.Bundle{{Denom: "uusd", Amount: -math.MaxInt64}},
	})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	err = b.Settle(ctx, Settlement{
		Transfers: []option.Transfer{{Recipient: "alice", Funds: option.Coins(-5, "uusd")}},
	})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	assert.True(t, b.Balance("alice").IsZero())
	assert.Equal(t, option.Coins(5, "uusd"), b.Balance("custodian"))
}

func TestBank_overflow(t *testing.T) {
	ctx := context.Background()
	b := New("custodian")
	require.NoError(t, b.Mint("alice", option.Coins(math.MaxInt64, "uusd")))
	require.NoError(t, b.Mint("custodian", option.Coins(5, "uusd")))

	err := b.Mint("alice", option.Coins(1, "uusd"))
	assert.ErrorIs(t, err, option.ErrOverflow)

	err = b.Settle(ctx, Settlement{
		Transfers: []option.Transfer{{Recipient: "alice", Funds: option.Coins(1, "uusd")}},
	})
	assert.ErrorIs(t, err, option.ErrOverflow)
	assert.Equal(t, option.Coins(math.MaxInt64, "uusd"), b.Balance("alice"))
	assert.Equal(t, option.Coins(5, "uusd"), b.Balance("custodian"))
}
