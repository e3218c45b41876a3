// Package bank contains an in-memory ledger of balances that moves funds into
// and out of the custodian of an option.
package bank

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/austincho/crystal-protocol/option"
)

// ErrInsufficientFunds indicates an account does not hold the funds a
// settlement needs to debit from it.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrNegativeAmount indicates a settlement moves a negative amount.
var ErrNegativeAmount = errors.New("negative amount")

// Settlement is every movement of funds caused by a single command. The
// deposit is moved from the depositor to the custodian, then every transfer
// is paid out of the custodian.
type Settlement struct {
	Depositor string
	Deposit   option.Bundle
	Transfers []option.Transfer

	// Escrowed is what the custodian holds for the option once the
	// settlement is applied. Ledgers that cannot move deposits themselves
	// use it to verify deposits arrived.
	Escrowed option.Bundle
}

// Bank holds balances for accounts. One account is the custodian that holds
// deposits in escrow.
//
// Bank is safe for concurrent use.
type Bank struct {
	custodian string

	mu       sync.Mutex
	balances map[string]option.Bundle
}

func New(custodian string) *Bank {
	return &Bank{
		custodian: custodian,
		balances:  map[string]option.Bundle{},
	}
}

// Custodian returns the account that holds deposits in escrow.
func (b *Bank) Custodian() string {
	return b.custodian
}

// Mint adds funds to the account.
func (b *Bank) Mint(account string, funds option.Bundle) error {
	if err := funds.Validate(); err != nil {
		return fmt.Errorf("minting %s: %w", funds, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	balance, err := b.balances[account].Add(funds)
	if err != nil {
		return fmt.Errorf("minting %s: %w", funds, err)
	}
	b.balances[account] = balance
	return nil
}

// Balance returns the funds held by the account.
func (b *Bank) Balance(account string) option.Bundle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append(option.Bundle{}, b.balances[account]...)
}

// Balances returns the funds held by every account that holds any, sorted by
// account.
func (b *Bank) Balances() []Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	accounts := make([]Account, 0, len(b.balances))
	for a, funds := range b.balances {
		if funds.IsZero() {
			continue
		}
		accounts = append(accounts, Account{Address: a, Funds: append(option.Bundle{}, funds...)})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Address < accounts[j].Address })
	return accounts
}

// Account is the balance of one account.
type Account struct {
	Address string        `json:"address"`
	Funds   option.Bundle `json:"funds"`
}

// Settle applies the settlement atomically. If any debit would take an
// account below zero no balance is changed and the error wraps
// ErrInsufficientFunds. A settlement moving a negative amount is rejected
// with an error wrapping ErrNegativeAmount.
func (b *Bank) Settle(ctx context.Context, s Settlement) error {
	if s.Deposit.IsAnyNegative() {
		return fmt.Errorf("settling deposit %s: %w", s.Deposit, ErrNegativeAmount)
	}
	for _, t := range s.Transfers {
		if t.Funds.IsAnyNegative() {
			return fmt.Errorf("settling transfer of %s to %s: %w", t.Funds, t.Recipient, ErrNegativeAmount)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := map[string]option.Bundle{}
	balance := func(a string) option.Bundle {
		if funds, ok := next[a]; ok {
			return funds
		}
		return b.balances[a]
	}
	move := func(from, to string, funds option.Bundle) error {
		remaining, err := balance(from).Sub(funds)
		if err != nil {
			return fmt.Errorf("debiting %s from %s: %w: %v", funds, from, ErrInsufficientFunds, err)
		}
		credited, err := balance(to).Add(funds)
		if err != nil {
			return fmt.Errorf("crediting %s to %s: %w", funds, to, err)
		}
		next[from] = remaining
		next[to] = credited
		return nil
	}

	if !s.Deposit.IsZero() {
		if err := move(s.Depositor, b.custodian, s.Deposit); err != nil {
			return fmt.Errorf("settling deposit: %w", err)
		}
	}
	for _, t := range s.Transfers {
		if err := move(b.custodian, t.Recipient, t.Funds); err != nil {
			return fmt.Errorf("settling transfer to %s: %w", t.Recipient, err)
		}
	}

	for a, funds := range next {
		b.balances[a] = funds
	}
	return nil
}
