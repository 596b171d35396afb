// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/test/identityset"
)

func TestOnStatementVerifiedPolicy(t *testing.T) {
	r := require.New(t)
	e := newTestEnv(t)
	stmt := identityset.Statement(0)
	ready := e.register(ManagerOwner(), 4, 1)
	held := e.register(ManagerOwner(), 4, 1)
	_, err := e.p.Hold(e.ctx, e.sm, ManagerOwner(), held)
	r.NoError(err)
	unknown := uint32(1000)

	// no account wins over no domain
	e.sink.Reset()
	e.p.OnStatementVerified(e.ctx, e.sm, nil, nil, stmt)
	r.Equal([]Event{&CannotAggregateEvent{Statement: stmt, Cause: CauseNoAccount}}, e.sink.Events())

	e.sink.Reset()
	e.p.OnStatementVerified(e.ctx, e.sm, identityset.Address(1), nil, stmt)
	r.Empty(e.sink.Events())

	e.sink.Reset()
	e.submit(1, unknown, stmt)
	r.Equal([]Event{&CannotAggregateEvent{Statement: stmt, Cause: CauseDomainNotRegistered}}, e.sink.Events())

	e.sink.Reset()
	e.submit(1, held, stmt)
	r.Equal([]Event{&CannotAggregateEvent{Statement: stmt, Cause: CauseInvalidDomainState}}, e.sink.Events())

	e.sink.Reset()
	e.submit(unfunded(), ready, stmt)
	r.Equal([]Event{&CannotAggregateEvent{Statement: stmt, Cause: CauseInsufficientFunds}}, e.sink.Events())
	r.Empty(e.domain(ready).Next.Statements)

	e.sink.Reset()
	e.submit(1, ready, stmt)
	r.Equal([]Event{&NewProofEvent{Statement: stmt, DomainID: ready, AggregationID: 1}}, e.sink.Events())
	d := e.domain(ready)
	r.Len(d.Next.Statements, 1)
	r.Equal(identityset.Address(1).String(), d.Next.Statements[0].Account.String())
	r.Equal(stmt, d.Next.Statements[0].Statement)
	reserve := uint256.NewInt((30000 + 2500*4) / 4)
	r.Equal(reserve, d.Next.Statements[0].Reserve)
	r.Equal(reserve, e.account(1).Held(ledger.HoldReasonAggregate))
}

func TestOnStatementVerifiedBatching(t *testing.T) {
	r := require.New(t)
	e := newTestEnv(t)
	id := e.register(AccountOwner(identityset.Address(0)), 32, 16)

	for i := 0; i < 31; i++ {
		e.submit(1+i%4, id, identityset.Statement(i))
	}
	r.Empty(eventsOf[*AggregationCompleteEvent](e.sink.Events()))
	r.Len(e.domain(id).Next.Statements, 31)

	e.submit(1, id, identityset.Statement(31))
	events := e.sink.Events()
	r.Equal([]*AggregationCompleteEvent{{DomainID: id, AggregationID: 1}}, eventsOf[*AggregationCompleteEvent](events))
	r.Empty(eventsOf[*DomainFullEvent](events))
	proofs := eventsOf[*NewProofEvent](events)
	r.Len(proofs, 32)
	for i, ev := range proofs {
		r.Equal(identityset.Statement(i), ev.Statement)
		r.EqualValues(1, ev.AggregationID)
	}
	// the proof comes before the completion
	r.IsType(&NewProofEvent{}, events[len(events)-2])
	r.IsType(&AggregationCompleteEvent{}, events[len(events)-1])

	d := e.domain(id)
	r.EqualValues(2, d.Next.ID)
	r.Empty(d.Next.Statements)
	r.Equal([]uint64{1}, d.PendingIDs())
	r.Equal(identityset.Statement(0), d.ShouldPublish[1].Statements[0].Statement)
	r.Equal(identityset.Statement(31), d.ShouldPublish[1].Statements[31].Statement)
}

func TestOnStatementVerifiedStorageFull(t *testing.T) {
	r := require.New(t)
	e := newTestEnv(t)
	id := e.register(ManagerOwner(), 2, 1)

	e.submit(1, id, identityset.Statement(0))
	e.submit(1, id, identityset.Statement(1))
	events := e.sink.Events()
	r.Equal([]*DomainFullEvent{{DomainID: id}}, eventsOf[*DomainFullEvent](events))
	// the queue is full but next has two free slots
	e.submit(1, id, identityset.Statement(2))
	d := e.domain(id)
	r.Len(d.ShouldPublish, 1)
	r.Len(d.Next.Statements, 1)
	r.False(d.CanAddStatement())

	held := e.account(1).Held(ledger.HoldReasonAggregate)
	e.sink.Reset()
	e.submit(1, id, identityset.Statement(3))
	r.Equal([]Event{&CannotAggregateEvent{Statement: identityset.Statement(3), Cause: CauseDomainStorageFull}}, e.sink.Events())
	r.Equal(held, e.account(1).Held(ledger.HoldReasonAggregate))
	d = e.domain(id)
	r.Equal([]uint64{1}, d.PendingIDs())
	r.Len(d.Next.Statements, 1)

	// publishing the queue makes room again
	_, err := e.p.Publish(e.ctx, e.sm, identityset.Address(2), id, 1)
	r.NoError(err)
	e.sink.Reset()
	e.submit(1, id, identityset.Statement(3))
	events = e.sink.Events()
	r.Len(eventsOf[*NewProofEvent](events), 1)
	r.Equal([]*AggregationCompleteEvent{{DomainID: id, AggregationID: 2}}, eventsOf[*AggregationCompleteEvent](events))
	r.Len(eventsOf[*DomainFullEvent](events), 1)
}

func TestOnStatementVerifiedBounds(t *testing.T) {
	r := require.New(t)
	e := newTestEnv(t)
	id := e.register(ManagerOwner(), 3, 2)

	lastID := uint64(0)
	for i := 0; i < 50; i++ {
		e.submit(1+i%3, id, identityset.Statement(i))
		d := e.domain(id)
		r.LessOrEqual(len(d.Next.Statements), int(d.Next.Size))
		r.LessOrEqual(len(d.ShouldPublish), int(d.PublishQueueSize))
		r.GreaterOrEqual(d.Next.ID, lastID)
		lastID = d.Next.ID
		for _, pid := range d.PendingIDs() {
			r.Less(pid, d.Next.ID)
		}
	}
	d := e.domain(id)
	// two queued aggregations and next one slot short of full
	r.Len(d.ShouldPublish, 2)
	r.Len(d.Next.Statements, 2)
	r.EqualValues(3, d.Next.ID)
	r.Len(eventsOf[*CannotAggregateEvent](e.sink.Events()), 50-8)
}
