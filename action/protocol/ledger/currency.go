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
	"github.com/iotexproject/iotex-aggregator/state"
)

// AccountNamespace is the namespace accounts are stored under
const AccountNamespace = "Account"

var (
	// ErrInsufficientFunds is the error that the free balance cannot cover an amount
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientHold is the error that the amount on hold cannot cover an amount
	ErrInsufficientHold = errors.New("insufficient hold")
)

// Currency is an escrow currency: every account has a balance part of which can be put on hold
type Currency struct{}

// NewCurrency creates a currency
func NewCurrency() *Currency {
	return &Currency{}
}

// Account loads the account of addr, an unknown account being empty
func (c *Currency) Account(sr protocol.StateReader, addr address.Address) (*Account, error) {
	acct := EmptyAccount()
	if err := sr.State(AccountNamespace, addr.Bytes(), acct); err != nil {
		if errors.Cause(err) == state.ErrStateNotExist {
			return EmptyAccount(), nil
		}
		return nil, errors.Wrapf(err, "failed to load account %s", addr.String())
	}
	return acct, nil
}

func (c *Currency) storeAccount(sm protocol.StateManager, addr address.Address, acct *Account) error {
	if err := sm.PutState(AccountNamespace, addr.Bytes(), acct); err != nil {
		return errors.Wrapf(err, "failed to store account %s", addr.String())
	}
	return nil
}

// Deposit credits amount to addr
func (c *Currency) Deposit(sm protocol.StateManager, addr address.Address, amount *uint256.Int) error {
	acct, err := c.Account(sm, addr)
	if err != nil {
		return err
	}
	acct.AddBalance(amount)
	return c.storeAccount(sm, addr, acct)
}

// Hold earmarks amount of the free balance of addr for reason
func (c *Currency) Hold(sm protocol.StateManager, reason HoldReason, addr address.Address, amount *uint256.Int) error {
	amount = orZero(amount)
	if amount.IsZero() {
		return nil
	}
	acct, err := c.Account(sm, addr)
	if err != nil {
		return err
	}
	if err := acct.hold(reason, amount); err != nil {
		return errors.Wrapf(err, "failed to hold %s for %s", reason, addr.String())
	}
	return c.storeAccount(sm, addr, acct)
}

// Release returns amount held for reason to the free balance of addr
func (c *Currency) Release(sm protocol.StateManager, reason HoldReason, addr address.Address, amount *uint256.Int) error {
	amount = orZero(amount)
	if amount.IsZero() {
		return nil
	}
	acct, err := c.Account(sm, addr)
	if err != nil {
		return err
	}
	if err := acct.release(reason, amount); err != nil {
		return errors.Wrapf(err, "failed to release %s for %s", reason, addr.String())
	}
	return c.storeAccount(sm, addr, acct)
}

// TransferHeld moves amount held for reason by from to the free balance of to. When bestEffort is set, as much as
// is held gets transferred and the remainder is returned as residual, otherwise a short hold is an error.
func (c *Currency) TransferHeld(
	sm protocol.StateManager,
	reason HoldReason,
	from, to address.Address,
	amount *uint256.Int,
	bestEffort bool,
) (*uint256.Int, error) {
	amount = orZero(amount)
	if amount.IsZero() {
		return new(uint256.Int), nil
	}
	sender, err := c.Account(sm, from)
	if err != nil {
		return nil, err
	}
	moved := amount
	if held := sender.Held(reason); held.Lt(amount) {
		if !bestEffort {
			return nil, errors.Wrapf(ErrInsufficientHold, "held %s, transfer %s", FormatAmount(held), FormatAmount(amount))
		}
		moved = held
	}
	residual := SaturatingSub(amount, moved)
	if moved.IsZero() {
		return residual, nil
	}
	if address.Equal(from, to) {
		if err := sender.release(reason, moved); err != nil {
			return nil, err
		}
		return residual, c.storeAccount(sm, from, sender)
	}
	if err := sender.slash(reason, moved); err != nil {
		return nil, err
	}
	if err := c.storeAccount(sm, from, sender); err != nil {
		return nil, err
	}
	recipient, err := c.Account(sm, to)
	if err != nil {
		return nil, err
	}
	recipient.AddBalance(moved)
	if err := c.storeAccount(sm, to, recipient); err != nil {
		return nil, err
	}
	return residual, nil
}
