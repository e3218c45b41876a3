// Package msg contains the messages exchanged between a client and an agent
// hosting an option, and their JSON encoding.
package msg

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"github.com/austincho/crystal-protocol/option"
	"github.com/google/uuid"
	"github.com/stellar/go/keypair"
)

// Type identifies a request or response. A response's type is its request's
// type plus one.
type Type int

const (
	TypeInstantiateRequest       Type = 100
	TypeInstantiateResponse      Type = 101
	TypeFundRequest              Type = 200
	TypeFundResponse             Type = 201
	TypeTransferRequest          Type = 300
	TypeTransferResponse         Type = 301
	TypeUnderwriteRequest        Type = 400
	TypeUnderwriteResponse       Type = 401
	TypeExecuteRequest           Type = 500
	TypeExecuteResponse          Type = 501
	TypeWithdrawExpiredRequest   Type = 600
	TypeWithdrawExpiredResponse  Type = 601
	TypeWithdrawUnlockedRequest  Type = 700
	TypeWithdrawUnlockedResponse Type = 701
	TypeQueryRequest             Type = 800
	TypeQueryResponse            Type = 801
)

var typeNames = map[Type]string{
	TypeInstantiateRequest:       "instantiate_request",
	TypeInstantiateResponse:      "instantiate_response",
	TypeFundRequest:              "fund_request",
	TypeFundResponse:             "fund_response",
	TypeTransferRequest:          "transfer_request",
	TypeTransferResponse:         "transfer_response",
	TypeUnderwriteRequest:        "underwrite_request",
	TypeUnderwriteResponse:       "underwrite_response",
	TypeExecuteRequest:           "execute_request",
	TypeExecuteResponse:          "execute_response",
	TypeWithdrawExpiredRequest:   "withdraw_expired_request",
	TypeWithdrawExpiredResponse:  "withdraw_expired_response",
	TypeWithdrawUnlockedRequest:  "withdraw_unlocked_request",
	TypeWithdrawUnlockedResponse: "withdraw_unlocked_response",
	TypeQueryRequest:             "query_request",
	TypeQueryResponse:            "query_response",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// IsRequest returns true if the type is a known request type.
func (t Type) IsRequest() bool {
	_, ok := typeNames[t]
	return ok && t%100 == 0
}

// Response returns the response type paired with a request type.
func (t Type) Response() Type {
	return t - t%100 + 1
}

// Message is a request sent to an agent, or the agent's response to one. A
// response carries the ID of the request it answers.
type Message struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`

	// Sender and Funds describe who sent a request and the deposit legs it
	// makes.
	Sender string          `json:"sender,omitempty"`
	Funds  []option.Bundle `json:"funds,omitempty"`

	// Signature is the sender's signature of the request's hash.
	Signature []byte `json:"signature,omitempty"`

	InstantiateRequest *option.Terms    `json:"instantiate_request,omitempty"`
	TransferRequest    *TransferRequest `json:"transfer_request,omitempty"`
	UnderwriteRequest  *option.Terms    `json:"underwrite_request,omitempty"`
	Response           *Response        `json:"response,omitempty"`
}

// NewRequest returns a request message with a new random ID.
func NewRequest(t Type, sender string, funds ...option.Bundle) Message {
	return Message{
		ID:     uuid.NewString(),
		Type:   t,
		Sender: sender,
		Funds:  funds,
	}
}

// Hash returns the hash the sender of a request signs. It covers every field
// of the message other than the signature.
func (m Message) Hash() ([32]byte, error) {
	m.Signature = nil
	b, err := json.Marshal(m)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encoding %v %s: %w", m.Type, m.ID, err)
	}
	return sha256.Sum256(b), nil
}

// Sign returns the request sent by the signer, with the sender set to the
// signer's address and signed.
func (m Message) Sign(signer *keypair.Full) (Message, error) {
	m.Sender = signer.Address()
	h, err := m.Hash()
	if err != nil {
		return Message{}, err
	}
	m.Signature, err = signer.Sign(h[:])
	if err != nil {
		return Message{}, fmt.Errorf("signing %v %s: %w", m.Type, m.ID, err)
	}
	return m, nil
}

// Verify checks that the request is signed by its sender. The error wraps
// ErrInvalidSignature if it is not.
func (m Message) Verify() error {
	if len(m.Signature) == 0 {
		return fmt.Errorf("%v %s is not signed: %w", m.Type, m.ID, ErrInvalidSignature)
	}
	sender, err := keypair.ParseAddress(m.Sender)
	if err != nil {
		return fmt.Errorf("parsing sender %q: %w", m.Sender, ErrInvalidSignature)
	}
	h, err := m.Hash()
	if err != nil {
		return err
	}
	err = sender.Verify(h[:], m.Signature)
	if err != nil {
		return fmt.Errorf("verifying signature of %v %s by %s: %w", m.Type, m.ID, m.Sender, ErrInvalidSignature)
	}
	return nil
}

type TransferRequest struct {
	Recipient string `json:"recipient"`
}

// Response is the result of a request. Error is set if the request failed,
// in which case nothing else is set.
type Response struct {
	Record     *option.Record     `json:"record,omitempty"`
	Transfers  []option.Transfer  `json:"transfers,omitempty"`
	Attributes []option.Attribute `json:"attributes,omitempty"`
	Error      *Error             `json:"error,omitempty"`
}

type Encoder = json.Encoder

func NewEncoder(w io.Writer) *Encoder {
	return json.NewEncoder(w)
}

type Decoder = json.Decoder

func NewDecoder(r io.Reader) *Decoder {
	return json.NewDecoder(r)
}
