package txbuild

import (
	"fmt"
	"testing"
	"time"

	"github.com/austincho/crystal-protocol/option"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsset(t *testing.T) {
	testCases := []struct {
		Asset             Asset
		WantTxnbuildAsset txnbuild.Asset
		WantIsNative      bool
		WantCode          string
		WantIssuer        string
	}{
		{Asset("native"), txnbuild.NativeAsset{}, true, "", ""},
		{NativeAsset, txnbuild.NativeAsset{}, true, "", ""},
		{Asset("ABCD:GABCD"), txnbuild.CreditAsset{Code: "ABCD", Issuer: "GABCD"}, false, "ABCD", "GABCD"},
		{Asset("ABCD:GABCD:AB"), txnbuild.CreditAsset{Code: "ABCD", Issuer: "GABCD:AB"}, false, "ABCD", "GABCD:AB"},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.Asset), func(t *testing.T) {
			assert.Equal(t, tc.WantTxnbuildAsset, tc.Asset.Asset())
			assert.Equal(t, tc.WantIsNative, tc.Asset.IsNative())
			assert.Equal(t, tc.WantCode, tc.Asset.Code())
			assert.Equal(t, tc.WantIssuer, tc.Asset.Issuer())
		})
	}
}

func TestAsset_Validate(t *testing.T) {
	issuer := keypair.MustRandom().Address()
	assert.NoError(t, NativeAsset.Validate())
	assert.NoError(t, Asset("USD:"+issuer).Validate())
	assert.Error(t, Asset("uusd").Validate())
	assert.Error(t, Asset("USD:GABCD").Validate())
	assert.Error(t, Asset("TOOLONGASSETCODE:"+issuer).Validate())
}

func TestAsset_StringCanonical(t *testing.T) {
	assert.Equal(t, "native", NativeAsset.StringCanonical())
	assert.Equal(t, "ABCD:GABCD", Asset("ABCD:GABCD").StringCanonical())
}

func TestPayout(t *testing.T) {
	escrow := keypair.MustRandom()
	holder := keypair.MustRandom().Address()
	underwriter := keypair.MustRandom().Address()
	usd := "USD:" + keypair.MustRandom().Address()

	tx, err := Payout(PayoutParams{
		EscrowAccount:  escrow.FromAddress(),
		SequenceNumber: 102,
		BaseFee:        txnbuild.MinBaseFee,
		Transfers: []option.Transfer{
			{Recipient: holder, Funds: option.Coins(100_0000000, usd)},
			{Recipient: underwriter, Funds: option.Bundle{
				{Denom: "native", Amount: 5_0000000},
				{Denom: usd, Amount: 1},
			}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, escrow.Address(), tx.SourceAccount().AccountID)
	assert.Equal(t, int64(102), tx.SequenceNumber())
	assert.Zero(t, tx.Timebounds().MinTime)
	assert.Greater(t, tx.Timebounds().MaxTime, time.Now().Unix())
	ops := tx.Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, &txnbuild.Payment{Destination: holder, Asset: Asset(usd).Asset(), Amount: "100.0000000"}, ops[0])
	assert.Equal(t, &txnbuild.Payment{Destination: underwriter, Asset: txnbuild.NativeAsset{}, Amount: "5.0000000"}, ops[1])
	assert.Equal(t, &txnbuild.Payment{Destination: underwriter, Asset: Asset(usd).Asset(), Amount: "0.0000001"}, ops[2])

	// The escrow account's signer can sign the payout.
	_, err = tx.Sign(network.TestNetworkPassphrase, escrow)
	require.NoError(t, err)
}

func TestPayout_errors(t *testing.T) {
	escrow := keypair.MustRandom().FromAddress()
	recipient := keypair.MustRandom().Address()

	_, err := Payout(PayoutParams{EscrowAccount: escrow, SequenceNumber: 1})
	assert.EqualError(t, err, "no payments to make")

	_, err = Payout(PayoutParams{
		EscrowAccount:  escrow,
		SequenceNumber: 1,
		Transfers:      []option.Transfer{{Recipient: recipient, Funds: option.Coins(1, "uusd")}},
	})
	assert.EqualError(t, err, `paying 1uusd to `+recipient+`: asset "uusd": must be native or CODE:ISSUER`)

	_, err = Payout(PayoutParams{
		EscrowAccount:  escrow,
		SequenceNumber: 1,
		Transfers:      []option.Transfer{{Recipient: recipient, Funds: option.Coins(-1, "native")}},
	})
	assert.EqualError(t, err, `paying -1native to `+recipient+`: amount cannot be negative`)
}
