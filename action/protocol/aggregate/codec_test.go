// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/state"
	"github.com/iotexproject/iotex-aggregator/test/identityset"
)

// worstCaseDomain fills every field to its largest encoding
func worstCaseDomain(size, queueSize uint32) *Domain {
	owner := identityset.Address(0)
	d := newDomain(^uint32(0), AccountOwner(owner), size, queueSize, &ledger.Ticket{
		Owner:  owner,
		Amount: new(uint256.Int).Set(ledger.MaxAmount),
	})
	fill := func(a *AggregationEntry) {
		for uint32(len(a.Statements)) < a.Size {
			i := len(a.Statements)
			a.Statements = append(a.Statements, &StatementEntry{
				Account:   identityset.Address(i),
				Reserve:   new(uint256.Int).Set(ledger.MaxAmount),
				Statement: identityset.Statement(i),
			})
		}
	}
	for i := uint32(0); i < queueSize; i++ {
		a := NewAggregationEntry(^uint64(0)-uint64(i)-1, size)
		fill(a)
		d.ShouldPublish[a.ID] = a
	}
	d.Next.ID = ^uint64(0)
	fill(d.Next)
	d.State = DomainRemoved
	return d
}

func TestEncodedSize(t *testing.T) {
	r := require.New(t)

	for _, v := range []struct {
		size, queue uint32
		expected    uint64
	}{
		{1, 1, 317},
		{32, 16, 50438},
		{128, 64, 766646},
		{177, 1, 32703},
		{178, 1, 32889},
		{256, 1, 47241},
	} {
		r.Equal(v.expected, EncodedSize(v.size, v.queue), "size %d queue %d", v.size, v.queue)
	}
	r.Equal(^uint64(0), EncodedSize(^uint32(0), ^uint32(0)))
}

func TestEncodedSizeMatchesWorstCase(t *testing.T) {
	r := require.New(t)

	for _, v := range [][2]uint32{
		{1, 1}, {1, 8}, {2, 3}, {32, 16}, {177, 1}, {178, 1}, {178, 2}, {256, 1},
	} {
		b, err := worstCaseDomain(v[0], v[1]).Serialize()
		r.NoError(err)
		r.EqualValues(EncodedSize(v[0], v[1]), len(b), "size %d queue %d", v[0], v[1])
	}
}

func TestDomainSerialization(t *testing.T) {
	r := require.New(t)

	d := worstCaseDomain(3, 2)
	d.State = DomainHold
	d.Next.Statements = d.Next.Statements[:1]
	b, err := d.Serialize()
	r.NoError(err)

	d2 := &Domain{}
	r.NoError(d2.Deserialize(b))
	r.Equal(d.ID, d2.ID)
	r.True(d.Owner.Equal(d2.Owner))
	r.Equal(DomainHold, d2.State)
	r.Equal(d.MaxAggregationSize, d2.MaxAggregationSize)
	r.Equal(d.PublishQueueSize, d2.PublishQueueSize)
	r.Equal(d.Next.ID, d2.Next.ID)
	r.Equal(d.Next.Leaves(), d2.Next.Leaves())
	r.Equal(d.PendingIDs(), d2.PendingIDs())
	for id, a := range d.ShouldPublish {
		r.Equal(a.Leaves(), d2.ShouldPublish[id].Leaves())
		r.Equal(a.TotalReserve(), d2.ShouldPublish[id].TotalReserve())
		for i, s := range a.Statements {
			r.Equal(s.Account.String(), d2.ShouldPublish[id].Statements[i].Account.String())
		}
	}
	r.Equal(d.Ticket.Owner.String(), d2.Ticket.Owner.String())
	r.Equal(d.Ticket.Amount, d2.Ticket.Amount)

	// re-encoding is stable
	b2, err := d2.Serialize()
	r.NoError(err)
	r.Equal(b, b2)

	// manager domain has no ticket
	m := newDomain(1, ManagerOwner(), 4, 4, nil)
	b, err = m.Serialize()
	r.NoError(err)
	m2 := &Domain{}
	r.NoError(m2.Deserialize(b))
	r.True(m2.Owner.IsManager())
	r.Nil(m2.Ticket)
	r.Empty(m2.ShouldPublish)
	r.Empty(m2.Next.Statements)

	for _, corrupt := range [][]byte{
		b[:len(b)-1],
		// missing next aggregation
		state.AppendFixed32Field(nil, _domainIDField, 1),
		// owner of the wrong length
		state.AppendBytesField(nil, _domainOwnerField, []byte{1, 2}),
		// unknown owner kind
		state.AppendBytesField(nil, _domainOwnerField, append([]byte{7}, make([]byte, _addressLen)...)),
	} {
		r.True(errors.Is(new(Domain).Deserialize(corrupt), state.ErrStateDeserialization))
	}
}
