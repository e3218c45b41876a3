// Package agent contains an agent that hosts a single option. It receives
// commands as messages, runs them against the option's state machine, and
// applies the resulting record and fund transfers together.
//
// The agent serializes every command it handles, samples the clock once for
// each command, and only commits a command's record after the ledger has
// settled the command's deposit and transfers. A command that fails at any
// step leaves the record and balances unchanged.
package agent

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/austincho/crystal-protocol/bank"
	"github.com/austincho/crystal-protocol/msg"
	"github.com/austincho/crystal-protocol/option"
	"github.com/austincho/crystal-protocol/store"
)

// Ledger moves funds into and out of the custodian of the option. Settle
// must apply the whole settlement or none of it.
type Ledger interface {
	Settle(ctx context.Context, s bank.Settlement) error
}

// Clock reads the current logical time.
type Clock interface {
	Height(ctx context.Context) (uint64, error)
}

// Config configures an Agent.
type Config struct {
	Contract *option.Contract
	Store    option.Store
	Ledger   Ledger
	Clock    Clock

	// Custodian is the account holding the option's escrow. It is reported
	// to clients and is not used to move funds.
	Custodian string

	LogWriter io.Writer

	Events chan<- Event

	// Metrics is optional.
	Metrics *Metrics
}

// NewAgent returns an agent hosting the option the contract and store hold.
func NewAgent(c Config) *Agent {
	logWriter := c.LogWriter
	if logWriter == nil {
		logWriter = io.Discard
	}
	return &Agent{
		contract:  c.Contract,
		store:     c.Store,
		ledger:    c.Ledger,
		clock:     c.Clock,
		custodian: c.Custodian,
		logWriter: logWriter,
		events:    c.Events,
		metrics:   c.Metrics,
		handled:   map[string]bool{},
	}
}

// Agent hosts an option.
type Agent struct {
	contract  *option.Contract
	store     option.Store
	ledger    Ledger
	clock     Clock
	custodian string
	logWriter io.Writer
	events    chan<- Event
	metrics   *Metrics

	// mu serializes access to the store, and is held for the whole of a
	// command from reading the clock to committing the record.
	mu sync.Mutex

	// handled holds the IDs of every signed request received.
	handledMu sync.Mutex
	handled   map[string]bool
}

// Custodian returns the account holding the option's escrow.
func (a *Agent) Custodian() string {
	return a.custodian
}

// CollateralAtInstantiate returns true if the hosted option takes its
// collateral at instantiation.
func (a *Agent) CollateralAtInstantiate() bool {
	return a.contract.CollateralAtInstantiate()
}

// Query returns the option's record.
func (a *Agent) Query(ctx context.Context) (option.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.contract.Query(ctx, a.store)
}

// Escrowed returns the funds the custodian holds for the record.
func (a *Agent) Escrowed(r option.Record) (option.Bundle, error) {
	return a.contract.Escrowed(r)
}

// Handle handles a request and returns the response to it. Failures are
// reported in the response's error.
//
// Every request other than a query must be signed by its sender, and is
// handled at most once.
func (a *Agent) Handle(ctx context.Context, m msg.Message) msg.Message {
	start := time.Now()
	fmt.Fprintf(a.logWriter, "handling %v %s from %s\n", m.Type, m.ID, m.Sender)

	out := msg.Message{ID: m.ID, Type: m.Type.Response()}
	handler := handlerMap[m.Type]
	if handler == nil {
		out.Type = m.Type
		err := fmt.Errorf("unrecognized message type %v: %w", m.Type, msg.ErrInvalidRequest)
		out.Response = a.fail(m, err, start)
		return out
	}

	if m.Type != msg.TypeQueryRequest {
		err := a.authenticate(m)
		if err != nil {
			out.Response = a.fail(m, err, start)
			return out
		}
	}

	resp, event, err := handler(a, ctx, m)
	if err != nil {
		out.Response = a.fail(m, err, start)
		return out
	}
	fmt.Fprintf(a.logWriter, "handled %v %s: %d transfers\n", m.Type, m.ID, len(resp.Transfers))
	a.metrics.observe(m.Type.String(), "ok", len(resp.Transfers), time.Since(start))
	if a.events != nil && event != nil {
		a.events <- event
	}
	out.Response = resp
	return out
}

// authenticate checks the request is signed by its sender and has not been
// received before.
func (a *Agent) authenticate(m msg.Message) error {
	if m.ID == "" {
		return fmt.Errorf("%v has no id: %w", m.Type, msg.ErrInvalidRequest)
	}
	err := m.Verify()
	if err != nil {
		return err
	}
	a.handledMu.Lock()
	defer a.handledMu.Unlock()
	if a.handled[m.ID] {
		return fmt.Errorf("%v %s already received: %w", m.Type, m.ID, msg.ErrInvalidRequest)
	}
	a.handled[m.ID] = true
	return nil
}

func (a *Agent) fail(m msg.Message, err error, start time.Time) *msg.Response {
	fmt.Fprintf(a.logWriter, "error handling %v %s: %v\n", m.Type, m.ID, err)
	e := msg.ErrorFromErr(err)
	a.metrics.observe(m.Type.String(), string(e.Kind), 0, time.Since(start))
	if a.events != nil {
		a.events <- ErrorEvent{Type: m.Type.String(), Err: err}
	}
	return &msg.Response{Error: e}
}

type command func(ctx context.Context, s option.Store, env option.Env, info option.Info) (option.Response, error)

// run runs the command against a buffered store, settles the command's
// deposit and transfers, and commits the record the command saved.
func (a *Agent) run(ctx context.Context, m msg.Message, cmd command) (option.Record, option.Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	height, err := a.clock.Height(ctx)
	if err != nil {
		return option.Record{}, option.Response{}, fmt.Errorf("reading clock: %w", err)
	}
	env := option.Env{Height: height}
	info := option.Info{Sender: m.Sender, Funds: m.Funds}
	for _, f := range info.Funds {
		if f.IsAnyNegative() {
			return option.Record{}, option.Response{}, fmt.Errorf("funds %s: %w", f, msg.ErrInvalidRequest)
		}
	}
	deposit, err := info.Deposit()
	if err != nil {
		return option.Record{}, option.Response{}, fmt.Errorf("%w: %v", msg.ErrInvalidRequest, err)
	}

	buffer := store.NewBuffered(a.store)
	defer buffer.Discard()

	resp, err := cmd(ctx, buffer, env, info)
	if err != nil {
		return option.Record{}, option.Response{}, err
	}
	record, err := buffer.Load(ctx)
	if err != nil {
		return option.Record{}, option.Response{}, err
	}
	escrowed, err := a.contract.Escrowed(record)
	if err != nil {
		return option.Record{}, option.Response{}, err
	}

	err = a.ledger.Settle(ctx, bank.Settlement{
		Depositor: info.Sender,
		Deposit:   deposit,
		Transfers: resp.Transfers,
		Escrowed:  escrowed,
	})
	if err != nil {
		return option.Record{}, option.Response{}, fmt.Errorf("settling: %w", err)
	}

	err = buffer.Commit(ctx)
	if err != nil {
		// The funds have moved and cannot be recalled.
		fmt.Fprintf(a.logWriter, "error: record not committed after settlement of %s: %v\n", m.ID, err)
		return option.Record{}, option.Response{}, err
	}
	return record, resp, nil
}

func response(r option.Record, resp option.Response) *msg.Response {
	return &msg.Response{
		Record:     &r,
		Transfers:  resp.Transfers,
		Attributes: resp.Attributes,
	}
}

var handlerMap = map[msg.Type]func(*Agent, context.Context, msg.Message) (*msg.Response, Event, error){
	msg.TypeInstantiateRequest:      (*Agent).handleInstantiate,
	msg.TypeFundRequest:             (*Agent).handleFund,
	msg.TypeTransferRequest:         (*Agent).handleTransfer,
	msg.TypeUnderwriteRequest:       (*Agent).handleUnderwrite,
	msg.TypeExecuteRequest:          (*Agent).handleExecute,
	msg.TypeWithdrawExpiredRequest:  (*Agent).handleWithdrawExpired,
	msg.TypeWithdrawUnlockedRequest: (*Agent).handleWithdrawUnlocked,
	msg.TypeQueryRequest:            (*Agent).handleQuery,
}

func (a *Agent) handleInstantiate(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	if m.InstantiateRequest == nil {
		return nil, nil, fmt.Errorf("instantiate request has no terms: %w", msg.ErrInvalidRequest)
	}
	terms := *m.InstantiateRequest
	r, resp, err := a.run(ctx, m, func(ctx context.Context, s option.Store, env option.Env, info option.Info) (option.Response, error) {
		r, err := a.contract.Instantiate(ctx, s, env, info, terms)
		if err != nil {
			return option.Response{}, err
		}
		return option.Response{Attributes: []option.Attribute{
			{Key: "method", Value: "instantiate"},
			{Key: "creator", Value: r.Creator},
		}}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return response(r, resp), InstantiatedEvent{Record: r}, nil
}

func (a *Agent) handleFund(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	r, resp, err := a.run(ctx, m, a.contract.Fund)
	if err != nil {
		return nil, nil, err
	}
	return response(r, resp), FundedEvent{Record: r}, nil
}

func (a *Agent) handleTransfer(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	if m.TransferRequest == nil {
		return nil, nil, fmt.Errorf("transfer request has no recipient: %w", msg.ErrInvalidRequest)
	}
	recipient := m.TransferRequest.Recipient
	r, resp, err := a.run(ctx, m, func(ctx context.Context, s option.Store, env option.Env, info option.Info) (option.Response, error) {
		return a.contract.TransferOption(ctx, s, env, info, recipient)
	})
	if err != nil {
		return nil, nil, err
	}
	return response(r, resp), TransferredEvent{Record: r, FormerHolder: m.Sender}, nil
}

func (a *Agent) handleUnderwrite(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	if m.UnderwriteRequest == nil {
		return nil, nil, fmt.Errorf("underwrite request has no terms: %w", msg.ErrInvalidRequest)
	}
	agreed := *m.UnderwriteRequest
	r, resp, err := a.run(ctx, m, func(ctx context.Context, s option.Store, env option.Env, info option.Info) (option.Response, error) {
		return a.contract.Underwrite(ctx, s, env, info, agreed)
	})
	if err != nil {
		return nil, nil, err
	}
	return response(r, resp), LockedEvent{Record: r, Transfers: resp.Transfers}, nil
}

func (a *Agent) handleExecute(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	r, resp, err := a.run(ctx, m, a.contract.Execute)
	if err != nil {
		return nil, nil, err
	}
	return response(r, resp), ExecutedEvent{Record: r, Transfers: resp.Transfers}, nil
}

func (a *Agent) handleWithdrawExpired(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	r, resp, err := a.run(ctx, m, a.contract.WithdrawExpired)
	if err != nil {
		return nil, nil, err
	}
	return response(r, resp), ExpiredEvent{Record: r, Transfers: resp.Transfers}, nil
}

func (a *Agent) handleWithdrawUnlocked(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	r, resp, err := a.run(ctx, m, a.contract.WithdrawUnlocked)
	if err != nil {
		return nil, nil, err
	}
	return response(r, resp), CancelledEvent{Record: r, Transfers: resp.Transfers}, nil
}

func (a *Agent) handleQuery(ctx context.Context, m msg.Message) (*msg.Response, Event, error) {
	r, err := a.Query(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &msg.Response{Record: &r}, nil, nil
}
