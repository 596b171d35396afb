// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/iotexproject/iotex-aggregator/state"
)

// HoldReason names the purpose funds are earmarked for
type HoldReason uint32

const (
	_ HoldReason = iota
	// HoldReasonAggregate earmarks the per-statement publishing reserve
	HoldReasonAggregate
	// HoldReasonStorageDeposit earmarks the storage deposit of a domain
	HoldReasonStorageDeposit
)

func (r HoldReason) String() string {
	switch r {
	case HoldReasonAggregate:
		return "aggregate"
	case HoldReasonStorageDeposit:
		return "storageDeposit"
	default:
		return "unknown"
	}
}

const (
	_accountBalanceField protowire.Number = 1
	_accountHoldField    protowire.Number = 2

	_holdReasonField protowire.Number = 1
	_holdAmountField protowire.Number = 2
)

// Account is the balance of an account together with the portions on hold
type Account struct {
	balance *uint256.Int
	holds   map[HoldReason]*uint256.Int
}

// EmptyAccount returns an account with zero balance
func EmptyAccount() *Account {
	return &Account{
		balance: new(uint256.Int),
		holds:   map[HoldReason]*uint256.Int{},
	}
}

// Balance returns the total balance, held funds included
func (acct *Account) Balance() *uint256.Int {
	return new(uint256.Int).Set(acct.balance)
}

// Held returns the amount on hold for the reason
func (acct *Account) Held(reason HoldReason) *uint256.Int {
	return new(uint256.Int).Set(orZero(acct.holds[reason]))
}

// TotalHeld returns the sum of all holds
func (acct *Account) TotalHeld() *uint256.Int {
	total := new(uint256.Int)
	for _, v := range acct.holds {
		total = SaturatingAdd(total, v)
	}
	return total
}

// Free returns the balance which is not on hold
func (acct *Account) Free() *uint256.Int {
	return SaturatingSub(acct.balance, acct.TotalHeld())
}

// AddBalance adds amount to the balance
func (acct *Account) AddBalance(amount *uint256.Int) {
	acct.balance = SaturatingAdd(acct.balance, amount)
}

// hold earmarks amount of the free balance
func (acct *Account) hold(reason HoldReason, amount *uint256.Int) error {
	if acct.Free().Lt(amount) {
		return errors.Wrapf(ErrInsufficientFunds, "free balance %s, hold %s", FormatAmount(acct.Free()), FormatAmount(amount))
	}
	acct.holds[reason] = SaturatingAdd(acct.holds[reason], amount)
	return nil
}

// release returns amount on hold to the free balance
func (acct *Account) release(reason HoldReason, amount *uint256.Int) error {
	held := orZero(acct.holds[reason])
	if held.Lt(amount) {
		return errors.Wrapf(ErrInsufficientHold, "held %s, release %s", FormatAmount(held), FormatAmount(amount))
	}
	acct.setHold(reason, SaturatingSub(held, amount))
	return nil
}

// slash removes amount on hold from the account entirely
func (acct *Account) slash(reason HoldReason, amount *uint256.Int) error {
	if err := acct.release(reason, amount); err != nil {
		return err
	}
	acct.balance = SaturatingSub(acct.balance, amount)
	return nil
}

func (acct *Account) setHold(reason HoldReason, amount *uint256.Int) {
	if amount.IsZero() {
		delete(acct.holds, reason)
		return
	}
	acct.holds[reason] = amount
}

// Serialize serializes the account into bytes
func (acct *Account) Serialize() ([]byte, error) {
	b32 := acct.balance.Bytes32()
	b := state.AppendBytesField(nil, _accountBalanceField, b32[:])
	reasons := make([]HoldReason, 0, len(acct.holds))
	for r := range acct.holds {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, r := range reasons {
		amount := acct.holds[r].Bytes32()
		var h []byte
		h = state.AppendFixed32Field(h, _holdReasonField, uint32(r))
		h = state.AppendBytesField(h, _holdAmountField, amount[:])
		b = state.AppendBytesField(b, _accountHoldField, h)
	}
	return b, nil
}

// Deserialize deserializes bytes into an account
func (acct *Account) Deserialize(buf []byte) error {
	a := EmptyAccount()
	if err := state.ConsumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case _accountBalanceField:
			v, n, err := state.ConsumeFixedBytes(typ, b, 32)
			if err != nil {
				return 0, err
			}
			a.balance = new(uint256.Int).SetBytes(v)
			return n, nil
		case _accountHoldField:
			v, n, err := state.ConsumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			reason, amount, err := deserializeHold(v)
			if err != nil {
				return 0, err
			}
			a.setHold(reason, amount)
			return n, nil
		default:
			return state.SkipField(num, typ, b)
		}
	}); err != nil {
		return errors.Wrap(state.ErrStateDeserialization, err.Error())
	}
	*acct = *a
	return nil
}

func deserializeHold(buf []byte) (HoldReason, *uint256.Int, error) {
	var (
		reason HoldReason
		amount = new(uint256.Int)
	)
	err := state.ConsumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case _holdReasonField:
			v, n, err := state.ConsumeFixed32(typ, b)
			reason = HoldReason(v)
			return n, err
		case _holdAmountField:
			v, n, err := state.ConsumeFixedBytes(typ, b, 32)
			if err != nil {
				return 0, err
			}
			amount.SetBytes(v)
			return n, nil
		default:
			return state.SkipField(num, typ, b)
		}
	})
	return reason, amount, err
}
