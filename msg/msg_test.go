package msg

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/austincho/crystal-protocol/bank"
	"github.com/austincho/crystal-protocol/option"
	"github.com/google/uuid"
	"github.com/stellar/go/keypair"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType(t *testing.T) {
	assert.Equal(t, "fund_request", TypeFundRequest.String())
	assert.Equal(t, "type(42)", Type(42).String())

	assert.True(t, TypeQueryRequest.IsRequest())
	assert.False(t, TypeQueryResponse.IsRequest())
	assert.False(t, Type(900).IsRequest())

	assert.Equal(t, TypeUnderwriteResponse, TypeUnderwriteRequest.Response())
	assert.Equal(t, TypeWithdrawUnlockedResponse, TypeWithdrawUnlockedRequest.Response())
}

func TestNewRequest(t *testing.T) {
	m := NewRequest(TypeFundRequest, "GSENDER", option.Coins(1, "uusd"), option.Coins(10, "uluna"))
	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	assert.Equal(t, TypeFundRequest, m.Type)
	assert.Equal(t, "GSENDER", m.Sender)
	assert.Equal(t, []option.Bundle{option.Coins(1, "uusd"), option.Coins(10, "uluna")}, m.Funds)

	other := NewRequest(TypeFundRequest, "GSENDER")
	assert.NotEqual(t, m.ID, other.ID)
}

func TestEncodeDecode(t *testing.T) {
	terms := option.Terms{
		Asset:      option.Coins(10, "uusd"),
		Collateral: option.Coins(10, "uluna"),
		Premium:    option.Coins(1, "uusd"),
		Expires:    100,
	}
	record := option.Record{State: option.Locked{Underwriter: "GU"}, Creator: "GC", Holder: "GH", Terms: terms}
	messages := []Message{
		{ID: "1", Type: TypeUnderwriteRequest, Sender: "GU", Funds: []option.Bundle{terms.Asset}, UnderwriteRequest: &terms},
		{ID: "2", Type: TypeTransferRequest, Sender: "GH", TransferRequest: &TransferRequest{Recipient: "GR"}},
		{ID: "3", Type: TypeQueryResponse, Response: &Response{Record: &record}},
		{ID: "4", Type: TypeExecuteResponse, Response: &Response{
			Transfers:  []option.Transfer{{Recipient: "GH", Funds: terms.Asset}},
			Attributes: []option.Attribute{{Key: "method", Value: "execute_option"}},
		}},
		{ID: "5", Type: TypeFundResponse, Response: &Response{Error: &Error{
			Kind:     ErrorKindPremiumMismatch,
			Message:  "premium mismatch",
			Offered:  option.Coins(2, "uusd"),
			Required: option.Coins(1, "uusd"),
		}}},
	}

	buf := bytes.Buffer{}
	enc := NewEncoder(&buf)
	for _, m := range messages {
		require.NoError(t, enc.Encode(m))
	}
	dec := NewDecoder(&buf)
	for _, want := range messages {
		got := Message{}
		require.NoError(t, dec.Decode(&got))
		assert.Equal(t, want, got)
	}
}

func TestErrorFromErr(t *testing.T) {
	testCases := []struct {
		err  error
		want *Error
	}{
		{
			fmt.Errorf("funding option: %w", option.ErrUnauthorized),
			&Error{Kind: ErrorKindUnauthorized, Message: "funding option: unauthorized"},
		},
		{
			fmt.Errorf("loading option: %w", option.ErrNotFound),
			&Error{Kind: ErrorKindNotFound, Message: "loading option: option not found"},
		},
		{
			&option.ExpiryError{Expires: 10, Height: 12},
			&Error{Kind: ErrorKindOptionExpired, Message: "option expired at 10, current height 12", Expires: 10, Height: 12},
		},
		{
			&option.ExpiryError{Expires: 10, Height: 9},
			&Error{Kind: ErrorKindOptionNotExpired, Message: "option expires at 10, current height 9", Expires: 10, Height: 9},
		},
		{
			&option.MismatchError{Leg: option.LegCollateral, Offered: option.Coins(9, "uluna"), Required: option.Coins(10, "uluna")},
			&Error{
				Kind:     ErrorKindCollateralMismatch,
				Message:  `collateral mismatch: offered "9uluna", requires "10uluna"`,
				Offered:  option.Coins(9, "uluna"),
				Required: option.Coins(10, "uluna"),
			},
		},
		{
			fmt.Errorf("settling: %w", bank.ErrInsufficientFunds),
			&Error{Kind: ErrorKindInsufficientFunds, Message: "settling: insufficient funds"},
		},
		{
			errors.New("disk on fire"),
			&Error{Kind: ErrorKindInternal, Message: "disk on fire"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, ErrorFromErr(tc.err))
		})
	}
}

func TestError_matchesOptionErrors(t *testing.T) {
	testCases := []struct {
		err  error
		want error
	}{
		{fmt.Errorf("x: %w", option.ErrAgreementMismatch), option.ErrAgreementMismatch},
		{fmt.Errorf("x: %w", option.ErrUnexpectedFunds), option.ErrUnexpectedFunds},
		{&option.ExpiryError{Expires: 10, Height: 10}, option.ErrOptionExpired},
		{&option.ExpiryError{Expires: 10, Height: 1}, option.ErrOptionNotExpired},
		{&option.MismatchError{Leg: option.LegPremium}, option.ErrPremiumMismatch},
		{&option.MismatchError{Leg: option.LegAsset}, option.ErrAssetMismatch},
	}
	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			e := ErrorFromErr(tc.err)
			assert.ErrorIs(t, e, tc.want)
			assert.Equal(t, tc.err.Error(), e.Error())
		})
	}

	e := ErrorFromErr(&option.ExpiryError{Expires: 10, Height: 11})
	var expiry *option.ExpiryError
	require.ErrorAs(t, e, &expiry)
	assert.Equal(t, uint64(10), expiry.Expires)
	assert.Equal(t, uint64(11), expiry.Height)

	assert.NoError(t, ErrorFromErr(errors.New("other")).Unwrap())
}

func TestMessage_SignVerify(t *testing.T) {
	holder := keypair.MustRandom()
	terms := option.Terms{
		Asset:      option.Coins(10, "uusd"),
		Collateral: option.Coins(10, "uluna"),
		Expires:    100,
	}
	req := NewRequest(TypeInstantiateRequest, "", terms.Collateral)
	req.InstantiateRequest = &terms

	signed, err := req.Sign(holder)
	require.NoError(t, err)
	assert.Equal(t, holder.Address(), signed.Sender)
	require.NoError(t, signed.Verify())

	// The signature survives encoding.
	buf := bytes.Buffer{}
	require.NoError(t, NewEncoder(&buf).Encode(signed))
	decoded := Message{}
	require.NoError(t, NewDecoder(&buf).Decode(&decoded))
	assert.NoError(t, decoded.Verify())

	unsigned := req
	unsigned.Sender = holder.Address()
	assert.ErrorIs(t, unsigned.Verify(), ErrInvalidSignature)

	forged := signed
	forged.Sender = keypair.MustRandom().Address()
	assert.ErrorIs(t, forged.Verify(), ErrInvalidSignature)

	tampered := signed
	tampered.Funds = []option.Bundle{option.Coins(1, "uluna")}
	assert.ErrorIs(t, tampered.Verify(), ErrInvalidSignature)

	otherID := signed
	otherID.ID = uuid.NewString()
	assert.ErrorIs(t, otherID.Verify(), ErrInvalidSignature)

	badSender := signed
	badSender.Sender = "alice"
	assert.ErrorIs(t, badSender.Verify(), ErrInvalidSignature)

	e := ErrorFromErr(forged.Verify())
	assert.Equal(t, ErrorKindUnauthorized, e.Kind)
	assert.ErrorIs(t, e, option.ErrUnauthorized)
}
