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

package program

import (
	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

// NewInitializeContentInstruction records a content pointer for authority
// under discriminator
func NewInitializeContentInstruction(
	programID, content, authority solana.PublicKey,
	args InitializeContentArgs,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(OpInitializeContent, args)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(content).WRITE(),
			solana.Meta(authority).SIGNER().WRITE(),
		},
		data,
	), nil
}

func (p *Program) initializeContent(
	inv *runtime.Invocation,
	args *InitializeContentArgs,
) error {
	contentAddr, err := account(inv, 0)
	if err != nil {
		return err
	}
	authority, err := signer(inv, 1)
	if err != nil {
		return err
	}
	expected, _, err := address.DeriveContent(p.id, authority, args.Discriminator)
	if err != nil {
		return err
	}
	if err := expectDerived("content", contentAddr, expected); err != nil {
		return err
	}
	content := &schema.Content{
		Authority:     authority,
		Discriminator: args.Discriminator,
		Metadata:      args.Metadata,
	}
	if err := p.create(inv.Txn, contentAddr, content); err != nil {
		return err
	}
	return p.emit(
		inv.Txn,
		event.ContentInitializedEventType,
		event.ContentEvent{
			Content:       contentAddr.Bytes(),
			Authority:     authority.Bytes(),
			Discriminator: args.Discriminator[:],
			Metadata:      args.Metadata[:],
		},
		p.clock.Now(),
	)
}

// GetContent returns the content record stored at addr
func (p *Program) GetContent(
	addr solana.PublicKey,
	txn *database.Txn,
) (*schema.Content, error) {
	content := &schema.Content{}
	if err := p.load(txn, addr, content); err != nil {
		return nil, err
	}
	return content, nil
}
