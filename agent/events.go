package agent

import "github.com/austincho/crystal-protocol/option"

// Event is any of the events below. Events are sent on the Events channel of
// the agent after the command that caused them has been committed.
type Event interface{}

// ErrorEvent occurs when a command fails, and contains the error that
// occurred.
type ErrorEvent struct {
	Type string
	Err  error
}

// InstantiatedEvent occurs when the option is created.
type InstantiatedEvent struct {
	Record option.Record
}

// FundedEvent occurs when the holder pays the premium.
type FundedEvent struct {
	Record option.Record
}

// TransferredEvent occurs when the option is reassigned to a new holder.
type TransferredEvent struct {
	Record       option.Record
	FormerHolder string
}

// LockedEvent occurs when the option is underwritten. Transfers contains any
// funds forwarded as the option was locked.
type LockedEvent struct {
	Record    option.Record
	Transfers []option.Transfer
}

// ExecutedEvent occurs when the holder exercises the option.
type ExecutedEvent struct {
	Record    option.Record
	Transfers []option.Transfer
}

// ExpiredEvent occurs when an expired option is settled.
type ExpiredEvent struct {
	Record    option.Record
	Transfers []option.Transfer
}

// CancelledEvent occurs when the holder withdraws an option that was never
// funded.
type CancelledEvent struct {
	Record    option.Record
	Transfers []option.Transfer
}
