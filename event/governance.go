// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
)

const (
	DaoInitializedEventType          EventType = "dao.initialized"
	DaoSupplyUpdatedEventType        EventType = "dao.supply_updated"
	DaoRegimeUpdatedEventType        EventType = "dao.regime_updated"
	DaoMetadataUpdatedEventType      EventType = "dao.metadata_updated"
	DaoAuthorityTransferredEventType EventType = "dao.authority_transferred"
	ProposalInitializedEventType     EventType = "proposal.initialized"
	InstructionAddedEventType        EventType = "proposal.instruction_added"
	InstructionExecutedEventType     EventType = "proposal.instruction_executed"
	ProposalExecutedEventType        EventType = "proposal.executed"
	VoteCastEventType                EventType = "vote.cast"
	ReceiptClosedEventType           EventType = "receipt.closed"
	ContentInitializedEventType      EventType = "content.initialized"
)

// GovernanceEventTypes lists every event type emitted by the governance
// program
var GovernanceEventTypes = []EventType{
	DaoInitializedEventType,
	DaoSupplyUpdatedEventType,
	DaoRegimeUpdatedEventType,
	DaoMetadataUpdatedEventType,
	DaoAuthorityTransferredEventType,
	ProposalInitializedEventType,
	InstructionAddedEventType,
	InstructionExecutedEventType,
	ProposalExecutedEventType,
	VoteCastEventType,
	ReceiptClosedEventType,
	ContentInitializedEventType,
}

// GovernanceEvent is implemented by every governance event payload. The
// returned addresses index the persisted event log
type GovernanceEvent interface {
	// DaoAddress returns the DAO the event belongs to
	DaoAddress() []byte
	// SubjectAddress returns the account the event is about
	SubjectAddress() []byte
	// ActorAddress returns the signer that caused the event
	ActorAddress() []byte
}

// DaoEvent carries the DAO state after a lifecycle operation
type DaoEvent struct {
	cbor.StructAsArray
	Dao       []byte
	Authority []byte
	Actor     []byte
	Mint      []byte
	Metadata  []byte
	Supply    uint64
	Regime    uint8
	Nonce     uint64
}

func (e DaoEvent) DaoAddress() []byte     { return e.Dao }
func (e DaoEvent) SubjectAddress() []byte { return e.Dao }
func (e DaoEvent) ActorAddress() []byte   { return e.Actor }

// ProposalEvent describes a proposal creation or an attached instruction
type ProposalEvent struct {
	cbor.StructAsArray
	Dao              []byte
	Proposal         []byte
	Actor            []byte
	Index            uint64
	StartDate        int64
	EndDate          int64
	Instruction      []byte
	InstructionIndex uint32
	InvokedProgram   []byte
}

func (e ProposalEvent) DaoAddress() []byte     { return e.Dao }
func (e ProposalEvent) SubjectAddress() []byte { return e.Proposal }
func (e ProposalEvent) ActorAddress() []byte   { return e.Actor }

// VoteEvent describes a cast vote and the resulting proposal totals
type VoteEvent struct {
	cbor.StructAsArray
	Dao                []byte
	Proposal           []byte
	Receipt            []byte
	Voter              []byte
	Mint               []byte
	ReceiptIndex       uint64
	Amount             uint64
	Direction          uint8
	Nft                bool
	VotingForPower     uint64
	VotingAgainstPower uint64
}

func (e VoteEvent) DaoAddress() []byte     { return e.Dao }
func (e VoteEvent) SubjectAddress() []byte { return e.Proposal }
func (e VoteEvent) ActorAddress() []byte   { return e.Voter }

// ExecutionEvent describes progress of proposal execution
type ExecutionEvent struct {
	cbor.StructAsArray
	Dao              []byte
	Proposal         []byte
	Executor         []byte
	InvokedProgram   []byte
	InstructionIndex uint32
	TotalExecuted    uint32
	TotalInstruction uint32
	Executed         bool
}

func (e ExecutionEvent) DaoAddress() []byte     { return e.Dao }
func (e ExecutionEvent) SubjectAddress() []byte { return e.Proposal }
func (e ExecutionEvent) ActorAddress() []byte   { return e.Executor }

// ReceiptClosedEvent describes a refunded and deleted receipt
type ReceiptClosedEvent struct {
	cbor.StructAsArray
	Dao       []byte
	Proposal  []byte
	Receipt   []byte
	Authority []byte
	Mint      []byte
	Amount    uint64
}

func (e ReceiptClosedEvent) DaoAddress() []byte     { return e.Dao }
func (e ReceiptClosedEvent) SubjectAddress() []byte { return e.Receipt }
func (e ReceiptClosedEvent) ActorAddress() []byte   { return e.Authority }

// ContentEvent describes a created content record
type ContentEvent struct {
	cbor.StructAsArray
	Content       []byte
	Authority     []byte
	Discriminator []byte
	Metadata      []byte
}

func (e ContentEvent) DaoAddress() []byte     { return nil }
func (e ContentEvent) SubjectAddress() []byte { return e.Content }
func (e ContentEvent) ActorAddress() []byte   { return e.Authority }

// EncodeGovernanceEvent serializes an event payload for the event log
func EncodeGovernanceEvent(evt GovernanceEvent) ([]byte, error) {
	return cbor.Encode(evt)
}

// DecodeGovernanceEvent parses a persisted event payload of the given type
func DecodeGovernanceEvent(
	eventType EventType,
	data []byte,
) (GovernanceEvent, error) {
	var err error
	switch eventType {
	case DaoInitializedEventType,
		DaoSupplyUpdatedEventType,
		DaoRegimeUpdatedEventType,
		DaoMetadataUpdatedEventType,
		DaoAuthorityTransferredEventType:
		var evt DaoEvent
		_, err = cbor.Decode(data, &evt)
		return evt, err
	case ProposalInitializedEventType, InstructionAddedEventType:
		var evt ProposalEvent
		_, err = cbor.Decode(data, &evt)
		return evt, err
	case VoteCastEventType:
		var evt VoteEvent
		_, err = cbor.Decode(data, &evt)
		return evt, err
	case InstructionExecutedEventType, ProposalExecutedEventType:
		var evt ExecutionEvent
		_, err = cbor.Decode(data, &evt)
		return evt, err
	case ReceiptClosedEventType:
		var evt ReceiptClosedEvent
		_, err = cbor.Decode(data, &evt)
		return evt, err
	case ContentInitializedEventType:
		var evt ContentEvent
		_, err = cbor.Decode(data, &evt)
		return evt, err
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
