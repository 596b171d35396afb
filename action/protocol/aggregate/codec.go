// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"math"
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/state"
)

const (
	_statementAccountField   protowire.Number = 1
	_statementReserveField   protowire.Number = 2
	_statementStatementField protowire.Number = 3

	_aggregationIDField         protowire.Number = 1
	_aggregationSizeField       protowire.Number = 2
	_aggregationStatementsField protowire.Number = 3

	_ticketOwnerField  protowire.Number = 1
	_ticketAmountField protowire.Number = 2

	_domainIDField            protowire.Number = 1
	_domainOwnerField         protowire.Number = 2
	_domainStateField         protowire.Number = 3
	_domainNextField          protowire.Number = 4
	_domainMaxSizeField       protowire.Number = 5
	_domainShouldPublishField protowire.Number = 6
	_domainQueueSizeField     protowire.Number = 7
	_domainTicketField        protowire.Number = 8

	_ownerManager byte = 0
	_ownerAccount byte = 1

	_addressLen = 20
	_amountLen  = 32
	_ownerLen   = 1 + _addressLen
)

func amountBytes(v *uint256.Int) []byte {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	return b[:]
}

func ownerBytes(o Owner) []byte {
	b := make([]byte, _ownerLen)
	if !o.IsManager() {
		b[0] = _ownerAccount
		copy(b[1:], o.account.Bytes())
	}
	return b
}

func (s *StatementEntry) serialize() []byte {
	var b []byte
	b = state.AppendBytesField(b, _statementAccountField, s.Account.Bytes())
	b = state.AppendBytesField(b, _statementReserveField, amountBytes(s.Reserve))
	return state.AppendBytesField(b, _statementStatementField, s.Statement[:])
}

func (a *AggregationEntry) serialize() []byte {
	var b []byte
	b = state.AppendFixed64Field(b, _aggregationIDField, a.ID)
	b = state.AppendFixed32Field(b, _aggregationSizeField, a.Size)
	for _, s := range a.Statements {
		b = state.AppendBytesField(b, _aggregationStatementsField, s.serialize())
	}
	return b
}

func serializeTicket(t *ledger.Ticket) []byte {
	var b []byte
	b = state.AppendBytesField(b, _ticketOwnerField, t.Owner.Bytes())
	return state.AppendBytesField(b, _ticketAmountField, amountBytes(t.Amount))
}

// Serialize serializes the domain into bytes
func (d *Domain) Serialize() ([]byte, error) {
	if d.Next == nil {
		return nil, errors.Wrapf(state.ErrStateSerialization, "domain %d has no next aggregation", d.ID)
	}
	var b []byte
	b = state.AppendFixed32Field(b, _domainIDField, d.ID)
	b = state.AppendBytesField(b, _domainOwnerField, ownerBytes(d.Owner))
	b = state.AppendFixed32Field(b, _domainStateField, uint32(d.State))
	b = state.AppendBytesField(b, _domainNextField, d.Next.serialize())
	b = state.AppendFixed32Field(b, _domainMaxSizeField, d.MaxAggregationSize)
	for _, id := range d.PendingIDs() {
		b = state.AppendBytesField(b, _domainShouldPublishField, d.ShouldPublish[id].serialize())
	}
	b = state.AppendFixed32Field(b, _domainQueueSizeField, d.PublishQueueSize)
	if d.Ticket != nil {
		b = state.AppendBytesField(b, _domainTicketField, serializeTicket(d.Ticket))
	}
	return b, nil
}

// Deserialize deserializes bytes into a domain
func (d *Domain) Deserialize(buf []byte) error {
	dom := Domain{ShouldPublish: map[uint64]*AggregationEntry{}}
	if err := state.ConsumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		var v []byte
		switch num {
		case _domainIDField:
			dom.ID, n, err = state.ConsumeFixed32(typ, b)
		case _domainOwnerField:
			if v, n, err = state.ConsumeFixedBytes(typ, b, _ownerLen); err == nil {
				dom.Owner, err = deserializeOwner(v)
			}
		case _domainStateField:
			var st uint32
			st, n, err = state.ConsumeFixed32(typ, b)
			dom.State = DomainState(st)
		case _domainNextField:
			if v, n, err = state.ConsumeBytes(typ, b); err == nil {
				dom.Next, err = deserializeAggregation(v)
			}
		case _domainMaxSizeField:
			dom.MaxAggregationSize, n, err = state.ConsumeFixed32(typ, b)
		case _domainShouldPublishField:
			if v, n, err = state.ConsumeBytes(typ, b); err == nil {
				var a *AggregationEntry
				if a, err = deserializeAggregation(v); err == nil {
					dom.ShouldPublish[a.ID] = a
				}
			}
		case _domainQueueSizeField:
			dom.PublishQueueSize, n, err = state.ConsumeFixed32(typ, b)
		case _domainTicketField:
			if v, n, err = state.ConsumeBytes(typ, b); err == nil {
				dom.Ticket, err = deserializeTicket(v)
			}
		default:
			n, err = state.SkipField(num, typ, b)
		}
		return
	}); err != nil {
		return errors.Wrap(state.ErrStateDeserialization, err.Error())
	}
	if dom.Next == nil {
		return errors.Wrapf(state.ErrStateDeserialization, "domain %d has no next aggregation", dom.ID)
	}
	*d = dom
	return nil
}

func deserializeOwner(b []byte) (Owner, error) {
	switch b[0] {
	case _ownerManager:
		return ManagerOwner(), nil
	case _ownerAccount:
		addr, err := address.FromBytes(b[1:])
		if err != nil {
			return Owner{}, err
		}
		return AccountOwner(addr), nil
	default:
		return Owner{}, errors.Errorf("unknown owner kind %d", b[0])
	}
}

func deserializeAggregation(buf []byte) (*AggregationEntry, error) {
	a := NewAggregationEntry(0, 0)
	err := state.ConsumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case _aggregationIDField:
			a.ID, n, err = state.ConsumeFixed64(typ, b)
		case _aggregationSizeField:
			a.Size, n, err = state.ConsumeFixed32(typ, b)
		case _aggregationStatementsField:
			var v []byte
			if v, n, err = state.ConsumeBytes(typ, b); err == nil {
				var s *StatementEntry
				if s, err = deserializeStatement(v); err == nil {
					a.Statements = append(a.Statements, s)
				}
			}
		default:
			n, err = state.SkipField(num, typ, b)
		}
		return
	})
	if err != nil {
		return nil, err
	}
	if uint32(len(a.Statements)) > a.Size {
		return nil, errors.Errorf("aggregation %d holds %d statements, size %d", a.ID, len(a.Statements), a.Size)
	}
	return a, nil
}

func deserializeStatement(buf []byte) (*StatementEntry, error) {
	s := &StatementEntry{Reserve: new(uint256.Int)}
	err := state.ConsumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		var v []byte
		switch num {
		case _statementAccountField:
			if v, n, err = state.ConsumeFixedBytes(typ, b, _addressLen); err == nil {
				s.Account, err = address.FromBytes(v)
			}
		case _statementReserveField:
			if v, n, err = state.ConsumeFixedBytes(typ, b, _amountLen); err == nil {
				s.Reserve.SetBytes(v)
			}
		case _statementStatementField:
			if v, n, err = state.ConsumeFixedBytes(typ, b, len(hash.ZeroHash256)); err == nil {
				s.Statement = hash.BytesToHash256(v)
			}
		default:
			n, err = state.SkipField(num, typ, b)
		}
		return
	})
	if err != nil {
		return nil, err
	}
	if s.Account == nil {
		return nil, errors.New("statement has no account")
	}
	return s, nil
}

func deserializeTicket(buf []byte) (*ledger.Ticket, error) {
	t := &ledger.Ticket{Amount: new(uint256.Int)}
	err := state.ConsumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		var v []byte
		switch num {
		case _ticketOwnerField:
			if v, n, err = state.ConsumeFixedBytes(typ, b, _addressLen); err == nil {
				t.Owner, err = address.FromBytes(v)
			}
		case _ticketAmountField:
			if v, n, err = state.ConsumeFixedBytes(typ, b, _amountLen); err == nil {
				t.Amount.SetBytes(v)
			}
		default:
			n, err = state.SkipField(num, typ, b)
		}
		return
	})
	if err != nil {
		return nil, err
	}
	if t.Owner == nil {
		return nil, errors.New("ticket has no owner")
	}
	return t, nil
}

// EncodedSize returns the largest encoded size of a domain with the given aggregation size and publish queue
// size: a ticket, a full next aggregation and a full publish queue.
func EncodedSize(size, queueSize uint32) uint64 {
	statement := protowire.SizeTag(_statementAccountField) + protowire.SizeBytes(_addressLen) +
		protowire.SizeTag(_statementReserveField) + protowire.SizeBytes(_amountLen) +
		protowire.SizeTag(_statementStatementField) + protowire.SizeBytes(len(hash.ZeroHash256))
	ticket := protowire.SizeTag(_ticketOwnerField) + protowire.SizeBytes(_addressLen) +
		protowire.SizeTag(_ticketAmountField) + protowire.SizeBytes(_amountLen)
	fixed := uint64(protowire.SizeTag(_domainIDField) + protowire.SizeFixed32() +
		protowire.SizeTag(_domainOwnerField) + protowire.SizeBytes(_ownerLen) +
		protowire.SizeTag(_domainStateField) + protowire.SizeFixed32() +
		protowire.SizeTag(_domainMaxSizeField) + protowire.SizeFixed32() +
		protowire.SizeTag(_domainQueueSizeField) + protowire.SizeFixed32() +
		protowire.SizeTag(_domainTicketField) + protowire.SizeBytes(ticket))

	// every aggregation, next included, is at most this long
	body := satAdd(
		uint64(protowire.SizeTag(_aggregationIDField)+protowire.SizeFixed64()+
			protowire.SizeTag(_aggregationSizeField)+protowire.SizeFixed32()),
		satMul(uint64(size), uint64(protowire.SizeTag(_aggregationStatementsField)+protowire.SizeBytes(statement))),
	)
	aggregation := satAdd(uint64(protowire.SizeTag(_domainNextField)+protowire.SizeVarint(body)), body)
	return satAdd(fixed, satMul(satAdd(uint64(queueSize), 1), aggregation))
}

func satAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
