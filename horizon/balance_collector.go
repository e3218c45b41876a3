// Package horizon contains implementations of the agent's ledger and clock
// that use a Stellar escrow account as the custodian, via Horizon's API.
package horizon

import (
	"fmt"

	"github.com/austincho/crystal-protocol/txbuild"
	"github.com/stellar/go/amount"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
)

// BalanceCollector collects balances by querying Horizon's accounts endpoint
// for the balance.
type BalanceCollector struct {
	HorizonClient horizonclient.ClientInterface
}

// GetBalance queries Horizon for the balance of the given asset on the given
// account. An account without a trustline for the asset has a zero balance.
func (h *BalanceCollector) GetBalance(accountID *keypair.FromAddress, asset txbuild.Asset) (int64, error) {
	account, err := h.HorizonClient.AccountDetail(horizonclient.AccountRequest{AccountID: accountID.Address()})
	if err != nil {
		return 0, fmt.Errorf("getting account details of %s: %w", accountID.Address(), err)
	}
	for _, b := range account.Balances {
		if asset.IsNative() != (b.Asset.Type == "native") {
			continue
		}
		if !asset.IsNative() && (b.Asset.Code != asset.Code() || b.Asset.Issuer != asset.Issuer()) {
			continue
		}
		balance, err := amount.ParseInt64(b.Balance)
		if err != nil {
			return 0, fmt.Errorf("parsing %s balance of %s: %w", asset, accountID.Address(), err)
		}
		return balance, nil
	}
	return 0, nil
}

// GetSequenceNumber queries Horizon for the sequence number of the account.
func (h *BalanceCollector) GetSequenceNumber(accountID *keypair.FromAddress) (int64, error) {
	account, err := h.HorizonClient.AccountDetail(horizonclient.AccountRequest{AccountID: accountID.Address()})
	if err != nil {
		return 0, fmt.Errorf("getting account details of %s: %w", accountID.Address(), err)
	}
	seqNum, err := account.GetSequenceNumber()
	if err != nil {
		return 0, fmt.Errorf("getting sequence number of account %s: %w", accountID.Address(), err)
	}
	return seqNum, nil
}
