package horizon

import (
	"context"
	"fmt"
	"io"

	"github.com/austincho/crystal-protocol/bank"
	"github.com/austincho/crystal-protocol/option"
	"github.com/austincho/crystal-protocol/txbuild"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
)

// Clock reads the logical time of an option from the Stellar network. The
// time is the sequence number of the latest ledger Horizon has ingested.
type Clock struct {
	HorizonClient horizonclient.ClientInterface
}

// Height returns the latest ledger sequence number.
func (c *Clock) Height(ctx context.Context) (uint64, error) {
	root, err := c.HorizonClient.Root()
	if err != nil {
		return 0, fmt.Errorf("getting horizon root: %w", withResultCodes(err))
	}
	return uint64(root.HorizonSequence), nil
}

// LedgerConfig configures a Ledger.
type LedgerConfig struct {
	HorizonClient     horizonclient.ClientInterface
	NetworkPassphrase string

	// EscrowAccount is the custodian of the option. Deposits are payments
	// made to it on the network.
	EscrowAccount       *keypair.FromAddress
	EscrowAccountSigner *keypair.Full

	// BaseFee is the fee paid for payout transactions. If a FeeAccount is
	// given payouts are built without a fee and wrapped in a fee bump paid by
	// the fee account.
	BaseFee           int64
	FeeAccount        *keypair.FromAddress
	FeeAccountSigners []*keypair.Full

	LogWriter io.Writer
}

// Ledger settles an option's transfers by paying them out of the escrow
// account in a single transaction.
type Ledger struct {
	networkPassphrase   string
	baseFee             int64
	escrowAccount       *keypair.FromAddress
	escrowAccountSigner *keypair.Full

	balanceCollector *BalanceCollector
	submitter        *Submitter
	logWriter        io.Writer
}

// NewLedger returns a ledger that settles through the escrow account.
func NewLedger(c LedgerConfig) *Ledger {
	logWriter := c.LogWriter
	if logWriter == nil {
		logWriter = io.Discard
	}
	return &Ledger{
		logWriter:           logWriter,
		networkPassphrase:   c.NetworkPassphrase,
		baseFee:             c.BaseFee,
		escrowAccount:       c.EscrowAccount,
		escrowAccountSigner: c.EscrowAccountSigner,
		balanceCollector:    &BalanceCollector{HorizonClient: c.HorizonClient},
		submitter: &Submitter{
			HorizonClient:     c.HorizonClient,
			NetworkPassphrase: c.NetworkPassphrase,
			BaseFee:           c.BaseFee,
			FeeAccount:        c.FeeAccount,
			FeeAccountSigners: c.FeeAccountSigners,
		},
	}
}

// Custodian returns the address of the escrow account.
func (l *Ledger) Custodian() string {
	return l.escrowAccount.Address()
}

// Settle verifies the settlement's deposit and pays out its transfers from
// the escrow account.
//
// The deposit must already have been paid into the escrow account on the
// network. It is verified by checking that the escrow account holds the
// deposit, everything that stays escrowed for the option, and everything that
// is paid out. If it does not, nothing is submitted and the error wraps
// bank.ErrInsufficientFunds.
func (l *Ledger) Settle(ctx context.Context, s bank.Settlement) error {
	if s.Deposit.IsAnyNegative() {
		return fmt.Errorf("settling deposit %s: %w", s.Deposit, bank.ErrNegativeAmount)
	}
	legs := make([]option.Bundle, len(s.Transfers))
	for i, t := range s.Transfers {
		if t.Funds.IsAnyNegative() {
			return fmt.Errorf("settling transfer of %s to %s: %w", t.Funds, t.Recipient, bank.ErrNegativeAmount)
		}
		legs[i] = t.Funds
	}
	paid, err := option.Sum(legs...)
	if err != nil {
		return fmt.Errorf("settling: %w", err)
	}
	if s.Deposit.IsZero() && paid.IsZero() {
		return nil
	}

	required, err := paid.Add(s.Escrowed)
	if err != nil {
		return fmt.Errorf("settling: %w", err)
	}
	deposit, err := s.Deposit.Normalize()
	if err != nil {
		return fmt.Errorf("settling: %w", err)
	}
	for _, c := range deposit {
		if short := c.Amount - required.AmountOf(c.Denom); short > 0 {
			required, err = required.Add(option.Coins(short, c.Denom))
			if err != nil {
				return fmt.Errorf("settling: %w", err)
			}
		}
	}

	for _, c := range required {
		asset := txbuild.Asset(c.Denom)
		if err := asset.Validate(); err != nil {
			return fmt.Errorf("settling: %w", err)
		}
		balance, err := l.balanceCollector.GetBalance(l.escrowAccount, asset)
		if err != nil {
			return fmt.Errorf("settling: checking escrow balance: %w", err)
		}
		if balance >= c.Amount {
			continue
		}
		if d := deposit.AmountOf(c.Denom); d > 0 {
			return fmt.Errorf("settling: deposit of %d %s from %s not received, escrow account holds %d of %d: %w", d, c.Denom, s.Depositor, balance, c.Amount, bank.ErrInsufficientFunds)
		}
		return fmt.Errorf("settling: escrow account holds %d of %s, requires %d: %w", balance, c.Denom, c.Amount, bank.ErrInsufficientFunds)
	}
	if paid.IsZero() {
		fmt.Fprintf(l.logWriter, "verified deposit of %s from %s\n", deposit, s.Depositor)
		return nil
	}

	seqNum, err := l.balanceCollector.GetSequenceNumber(l.escrowAccount)
	if err != nil {
		return fmt.Errorf("settling: %w", err)
	}
	fee := l.baseFee
	if l.submitter.FeeAccount != nil {
		fee = 0
	}
	tx, err := txbuild.Payout(txbuild.PayoutParams{
		EscrowAccount:  l.escrowAccount,
		SequenceNumber: seqNum + 1,
		BaseFee:        fee,
		Transfers:      s.Transfers,
	})
	if err != nil {
		return fmt.Errorf("settling: building payout tx: %w", err)
	}
	tx, err = tx.Sign(l.networkPassphrase, l.escrowAccountSigner)
	if err != nil {
		return fmt.Errorf("settling: signing payout tx: %w", err)
	}
	hash, err := l.submitter.SubmitTx(tx)
	if err != nil {
		return fmt.Errorf("settling: %w", err)
	}
	fmt.Fprintf(l.logWriter, "paid out %d transfers from %s in tx %s\n", len(s.Transfers), l.escrowAccount.Address(), hash)
	return nil
}
