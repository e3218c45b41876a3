package txbuild

import (
	"fmt"

	"github.com/austincho/crystal-protocol/option"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

type PayoutParams struct {
	EscrowAccount  *keypair.FromAddress
	SequenceNumber int64
	BaseFee        int64
	Transfers      []option.Transfer
}

// Payout builds a transaction that pays every transfer out of the escrow
// account, with one payment operation per coin. The network applies all of
// the payments or none of them.
func Payout(p PayoutParams) (*txnbuild.Transaction, error) {
	ops := []txnbuild.Operation{}
	for _, t := range p.Transfers {
		for _, c := range t.Funds {
			if c.Amount == 0 {
				continue
			}
			if c.Amount < 0 {
				return nil, fmt.Errorf("paying %s to %s: amount cannot be negative", c, t.Recipient)
			}
			asset := Asset(c.Denom)
			if err := asset.Validate(); err != nil {
				return nil, fmt.Errorf("paying %s to %s: %w", c, t.Recipient, err)
			}
			ops = append(ops, &txnbuild.Payment{
				Destination: t.Recipient,
				Asset:       asset.Asset(),
				Amount:      amount.StringFromInt64(c.Amount),
			})
		}
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("no payments to make")
	}

	tx, err := txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount: &txnbuild.SimpleAccount{
				AccountID: p.EscrowAccount.Address(),
				Sequence:  p.SequenceNumber,
			},
			BaseFee: p.BaseFee,
			Preconditions: txnbuild.Preconditions{
				TimeBounds: txnbuild.NewTimeout(300),
			},
			Operations: ops,
		},
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
