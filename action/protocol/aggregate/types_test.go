// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-aggregator/test/identityset"
)

func testStatementEntry(i int) *StatementEntry {
	return &StatementEntry{
		Account:   identityset.Address(i),
		Reserve:   uint256.NewInt(uint64(i + 1)),
		Statement: identityset.Statement(i),
	}
}

func TestAggregationEntry(t *testing.T) {
	r := require.New(t)

	a := NewAggregationEntry(3, 2)
	r.False(a.IsFull())
	r.EqualValues(2, a.SpaceLeft())
	r.Empty(a.Leaves())

	r.NoError(a.Append(testStatementEntry(0)))
	r.NoError(a.Append(testStatementEntry(1)))
	r.True(a.IsFull())
	r.Zero(a.SpaceLeft())
	r.Equal(ErrAggregationFull, a.Append(testStatementEntry(2)))
	r.Len(a.Statements, 2)

	r.Equal([]hash.Hash256{identityset.Statement(0), identityset.Statement(1)}, a.Leaves())
	idx, ok := a.IndexOf(identityset.Statement(1))
	r.True(ok)
	r.Equal(1, idx)
	_, ok = a.IndexOf(identityset.Statement(2))
	r.False(ok)
	r.Equal(uint256.NewInt(3), a.TotalReserve())
}

func TestCanAddStatement(t *testing.T) {
	r := require.New(t)

	for _, v := range []struct {
		size, queue, queued, filled uint32
		expected                    bool
	}{
		// queue room always admits
		{4, 2, 0, 0, true},
		{4, 2, 1, 3, true},
		{1, 1, 0, 0, true},
		// full queue needs more than one free slot in next
		{4, 2, 2, 0, true},
		{4, 2, 2, 2, true},
		{4, 2, 2, 3, false},
		{2, 1, 1, 0, true},
		{2, 1, 1, 1, false},
		// size one can never take a statement with a full queue
		{1, 1, 1, 0, false},
	} {
		d := newDomain(0, ManagerOwner(), v.size, v.queue, nil)
		for i := uint32(0); i < v.queued; i++ {
			d.ShouldPublish[uint64(i+1)] = NewAggregationEntry(uint64(i+1), v.size)
		}
		d.Next.ID = uint64(v.queued + 1)
		for i := uint32(0); i < v.filled; i++ {
			r.NoError(d.Next.Append(testStatementEntry(int(i))))
		}
		r.Equal(v.expected, d.CanAddStatement(), "size %d queue %d queued %d filled %d", v.size, v.queue, v.queued, v.filled)
	}
}

func TestDomainTransitions(t *testing.T) {
	r := require.New(t)

	d := newDomain(7, AccountOwner(identityset.Address(0)), 2, 2, nil)
	r.Equal(DomainReady, d.State)
	r.EqualValues(1, d.Next.ID)
	r.Equal(d.MaxAggregationSize, d.Next.Size)

	// only a held domain becomes removable
	r.False(d.tryMarkRemovable())
	d.State = DomainHold
	r.NoError(d.Next.Append(testStatementEntry(0)))
	r.False(d.tryMarkRemovable())

	popped := d.popNext()
	r.EqualValues(1, popped.ID)
	r.Len(popped.Statements, 1)
	r.EqualValues(2, d.Next.ID)
	r.EqualValues(2, d.Next.Size)
	r.Empty(d.Next.Statements)

	d.ShouldPublish[popped.ID] = popped
	r.False(d.tryMarkRemovable())
	delete(d.ShouldPublish, popped.ID)
	r.True(d.tryMarkRemovable())
	r.Equal(DomainRemovable, d.State)
	r.False(d.tryMarkRemovable())
}

func TestOwner(t *testing.T) {
	r := require.New(t)

	manager := ManagerOwner()
	alfa := AccountOwner(identityset.Address(0))
	bravo := AccountOwner(identityset.Address(1))
	r.True(manager.IsManager())
	r.Nil(manager.Account())
	r.False(alfa.IsManager())
	r.Equal("manager", manager.String())
	r.Equal(identityset.Address(0).String(), alfa.String())

	r.True(manager.Equal(ManagerOwner()))
	r.True(alfa.Equal(AccountOwner(identityset.Address(0))))
	r.False(alfa.Equal(bravo))
	r.False(alfa.Equal(manager))

	d := newDomain(0, alfa, 1, 1, nil)
	r.True(d.isAuthorized(alfa))
	r.True(d.isAuthorized(manager))
	r.False(d.isAuthorized(bravo))
}

func TestDomainStateString(t *testing.T) {
	r := require.New(t)
	r.Equal("Ready", DomainReady.String())
	r.Equal("Hold", DomainHold.String())
	r.Equal("Removable", DomainRemovable.String())
	r.Equal("Removed", DomainRemoved.String())
	r.Equal("Unknown", DomainState(9).String())
}
