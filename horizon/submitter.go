package horizon

import (
	"fmt"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// Submitter submits transactions to the network via Horizon. When a fee
// account is set, transactions with a base fee below BaseFee are wrapped in a
// fee bump transaction paid for by the fee account.
type Submitter struct {
	HorizonClient     horizonclient.ClientInterface
	NetworkPassphrase string
	BaseFee           int64
	FeeAccount        *keypair.FromAddress
	FeeAccountSigners []*keypair.Full
}

// SubmitTx submits the transaction and returns the hash of the transaction
// included in the ledger, which is the fee bump's hash if one was used.
func (s *Submitter) SubmitTx(tx *txnbuild.Transaction) (string, error) {
	if s.FeeAccount == nil || tx.BaseFee() >= s.BaseFee {
		resp, err := s.HorizonClient.SubmitTransaction(tx)
		if err != nil {
			return "", fmt.Errorf("submitting tx: %w", withResultCodes(err))
		}
		return resp.Hash, nil
	}

	feeBumpTx, err := txnbuild.NewFeeBumpTransaction(txnbuild.FeeBumpTransactionParams{
		Inner:      tx,
		BaseFee:    s.BaseFee,
		FeeAccount: s.FeeAccount.Address(),
	})
	if err != nil {
		return "", fmt.Errorf("building fee bump tx: %w", err)
	}
	feeBumpTx, err = feeBumpTx.Sign(s.NetworkPassphrase, s.FeeAccountSigners...)
	if err != nil {
		return "", fmt.Errorf("signing fee bump tx: %w", err)
	}
	resp, err := s.HorizonClient.SubmitFeeBumpTransaction(feeBumpTx)
	if err != nil {
		return "", fmt.Errorf("submitting fee bump tx: %w", withResultCodes(err))
	}
	return resp.Hash, nil
}

// withResultCodes appends the transaction result codes Horizon reported for a
// failed submission to the error.
func withResultCodes(err error) error {
	hErr := horizonclient.GetError(err)
	if hErr == nil {
		return err
	}
	codes, rErr := hErr.ResultCodes()
	if rErr != nil {
		return fmt.Errorf("%w (result codes unavailable: %v)", err, rErr)
	}
	return fmt.Errorf("%w (tx: %s, ops: %v)", err, codes.TransactionCode, codes.OperationCodes)
}
