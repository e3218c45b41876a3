package txbuild

import (
	"fmt"
	"math"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

type CreateEscrowParams struct {
	Sponsor        *keypair.FromAddress
	Escrow         *keypair.FromAddress
	SequenceNumber int64
	BaseFee        int64
	Assets         []Asset
}

// CreateEscrow builds a transaction that creates the escrow account with its
// reserves sponsored by the sponsor, and a trustline for every non-native
// asset so that the escrow account can receive deposits of it. The
// transaction must be signed by both the sponsor and the escrow account.
func CreateEscrow(p CreateEscrowParams) (*txnbuild.Transaction, error) {
	ops := []txnbuild.Operation{
		&txnbuild.BeginSponsoringFutureReserves{
			SponsoredID: p.Escrow.Address(),
		},
		&txnbuild.CreateAccount{
			Destination: p.Escrow.Address(),
			// base reserves sponsored by p.Sponsor
			Amount: "0",
		},
	}
	seen := map[Asset]bool{}
	for _, a := range p.Assets {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if a.IsNative() || seen[a] {
			continue
		}
		seen[a] = true
		line, err := a.Asset().ToChangeTrustAsset()
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", string(a), err)
		}
		ops = append(ops, &txnbuild.ChangeTrust{
			Line:          line,
			Limit:         amount.StringFromInt64(math.MaxInt64),
			SourceAccount: p.Escrow.Address(),
		})
	}
	ops = append(ops, &txnbuild.EndSponsoringFutureReserves{
		SourceAccount: p.Escrow.Address(),
	})

	tx, err := txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount: &txnbuild.SimpleAccount{
				AccountID: p.Sponsor.Address(),
				Sequence:  p.SequenceNumber,
			},
			BaseFee:       p.BaseFee,
			Preconditions: txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
			Operations:    ops,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("building create escrow tx: %w", err)
	}
	return tx, nil
}
