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

package main

import (
	"github.com/blinklabs-io/kelpie/client"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

type daoView struct {
	Address     string `json:"address"`
	Master      string `json:"master,omitempty"`
	Authority   string `json:"authority"`
	Mint        string `json:"mint"`
	Regime      string `json:"regime"`
	Supply      uint64 `json:"supply"`
	IsNftVoting bool   `json:"isNftVoting"`
	IsPublic    bool   `json:"isPublic"`
	Metadata    string `json:"metadata"`
	Nonce       uint64 `json:"nonce"`
}

func newDaoView(addr, master solana.PublicKey, dao *schema.Dao) daoView {
	ret := daoView{
		Address:     addr.String(),
		Authority:   dao.Authority.String(),
		Mint:        dao.Mint.String(),
		Regime:      dao.Regime.String(),
		Supply:      dao.Supply,
		IsNftVoting: dao.IsNftVoting,
		IsPublic:    dao.IsPublic,
		Metadata:    base58.Encode(dao.Metadata[:]),
		Nonce:       dao.Nonce,
	}
	if !master.IsZero() {
		ret.Master = master.String()
	}
	return ret
}

type proposalView struct {
	Address            string `json:"address"`
	Dao                string `json:"dao"`
	Index              uint64 `json:"index"`
	ConsensusMechanism string `json:"consensusMechanism"`
	ConsensusQuorum    string `json:"consensusQuorum"`
	StartDate          int64  `json:"startDate"`
	EndDate            int64  `json:"endDate"`
	VotingForPower     uint64 `json:"votingForPower"`
	VotingAgainstPower uint64 `json:"votingAgainstPower"`
	TotalInstruction   uint32 `json:"totalInstruction"`
	TotalExecuted      uint32 `json:"totalExecuted"`
	Executed           bool   `json:"executed"`
	Metadata           string `json:"metadata"`
	Tax                uint64 `json:"tax"`
	TaxmanAddress      string `json:"taxmanAddress"`
	Revenue            uint64 `json:"revenue"`
	RevenuemanAddress  string `json:"revenuemanAddress"`
}

func newProposalView(addr solana.PublicKey, p *schema.Proposal) proposalView {
	return proposalView{
		Address:            addr.String(),
		Dao:                p.Dao.String(),
		Index:              p.Index,
		ConsensusMechanism: p.ConsensusMechanism.String(),
		ConsensusQuorum:    p.ConsensusQuorum.String(),
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		VotingForPower:     p.VotingForPower,
		VotingAgainstPower: p.VotingAgainstPower,
		TotalInstruction:   p.TotalInstruction,
		TotalExecuted:      p.TotalExecuted,
		Executed:           p.Executed,
		Metadata:           base58.Encode(p.Metadata[:]),
		Tax:                p.Tax,
		TaxmanAddress:      p.TaxmanAddress.String(),
		Revenue:            p.Revenue,
		RevenuemanAddress:  p.RevenuemanAddress.String(),
	}
}

type eventView struct {
	ID        uint   `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Dao       string `json:"dao,omitempty"`
	Subject   string `json:"subject"`
	Actor     string `json:"actor"`
	Payload   any    `json:"payload"`
}

func newEventView(evt client.Event) eventView {
	ret := eventView{
		ID:        evt.ID,
		Type:      string(evt.Type),
		Timestamp: evt.Timestamp.Unix(),
		Subject:   base58.Encode(evt.Payload.SubjectAddress()),
		Actor:     base58.Encode(evt.Payload.ActorAddress()),
		Payload:   evt.Payload,
	}
	if dao := evt.Payload.DaoAddress(); len(dao) > 0 {
		ret.Dao = base58.Encode(dao)
	}
	return ret
}
