// Package store contains implementations of option.Store.
//
// Every store persists the record together with the contract info that wrote
// it, so that tooling inspecting a store can tell which version of the
// contract the record belongs to.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/austincho/crystal-protocol/option"
)

// Key is the well-known key the record is stored under.
const Key = "option/state"

// InfoKey is the well-known key the contract info is stored under.
const InfoKey = "option/contract_info"

var _ option.Store = &Memory{}

// Memory is an in-memory store. The record is held encoded so that callers
// can never mutate the stored record through a loaded one.
//
// Memory is not safe for concurrent use.
type Memory struct {
	record []byte
	info   []byte
}

func (m *Memory) Load(ctx context.Context) (option.Record, error) {
	if m.record == nil {
		return option.Record{}, option.ErrNotFound
	}
	return decodeRecord(m.record)
}

func (m *Memory) Save(ctx context.Context, r option.Record) error {
	record, info, err := encode(r)
	if err != nil {
		return err
	}
	m.record = record
	m.info = info
	return nil
}

// ContractInfo returns the contract info saved with the record.
func (m *Memory) ContractInfo(ctx context.Context) (option.ContractInfo, error) {
	if m.info == nil {
		return option.ContractInfo{}, option.ErrNotFound
	}
	return decodeInfo(m.info)
}

func encode(r option.Record) (record, info []byte, err error) {
	record, err = json.Marshal(r)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding record: %w", err)
	}
	info, err = json.Marshal(option.CurrentContractInfo())
	if err != nil {
		return nil, nil, fmt.Errorf("encoding contract info: %w", err)
	}
	return record, info, nil
}

func decodeRecord(b []byte) (option.Record, error) {
	r := option.Record{}
	err := json.Unmarshal(b, &r)
	if err != nil {
		return option.Record{}, fmt.Errorf("decoding record: %w", err)
	}
	return r, nil
}

func decodeInfo(b []byte) (option.ContractInfo, error) {
	i := option.ContractInfo{}
	err := json.Unmarshal(b, &i)
	if err != nil {
		return option.ContractInfo{}, fmt.Errorf("decoding contract info: %w", err)
	}
	return i, nil
}
