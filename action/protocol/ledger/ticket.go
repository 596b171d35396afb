// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
)

// Ticket is a storage deposit held on behalf of its owner
type Ticket struct {
	Owner  address.Address
	Amount *uint256.Int
}

// DepositTicketer charges a storage deposit proportional to the footprint of the stored record
type DepositTicketer struct {
	currency    *Currency
	baseDeposit *uint256.Int
	byteDeposit *uint256.Int
}

// NewDepositTicketer creates a ticketer holding baseDeposit + byteDeposit * footprint
func NewDepositTicketer(currency *Currency, baseDeposit, byteDeposit *uint256.Int) *DepositTicketer {
	return &DepositTicketer{
		currency:    currency,
		baseDeposit: orZero(baseDeposit),
		byteDeposit: orZero(byteDeposit),
	}
}

// Cost returns the deposit for the footprint
func (t *DepositTicketer) Cost(footprint uint64) *uint256.Int {
	return SaturatingAdd(t.baseDeposit, SaturatingMul(t.byteDeposit, uint256.NewInt(footprint)))
}

// Acquire holds the deposit for footprint bytes from who. A free deposit yields no ticket.
func (t *DepositTicketer) Acquire(sm protocol.StateManager, who address.Address, footprint uint64) (*Ticket, error) {
	cost := t.Cost(footprint)
	if cost.IsZero() {
		return nil, nil
	}
	if err := t.currency.Hold(sm, HoldReasonStorageDeposit, who, cost); err != nil {
		return nil, errors.Wrapf(err, "failed to acquire ticket of %d bytes", footprint)
	}
	return &Ticket{
		Owner:  who,
		Amount: cost,
	}, nil
}

// Release returns the deposit to the ticket owner
func (t *DepositTicketer) Release(sm protocol.StateManager, ticket *Ticket) error {
	if ticket == nil {
		return nil
	}
	if ticket.Owner == nil {
		return errors.New("ticket has no owner")
	}
	return t.currency.Release(sm, HoldReasonStorageDeposit, ticket.Owner, ticket.Amount)
}
