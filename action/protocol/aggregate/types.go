// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"

	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
)

// DomainState is the lifecycle state of a domain. States only move forward.
type DomainState uint32

const (
	// DomainReady accepts statements
	DomainReady DomainState = iota
	// DomainHold accepts no statements, pending aggregations can still be published
	DomainHold
	// DomainRemovable has no pending work and can be unregistered
	DomainRemovable
	// DomainRemoved is only observed in events, removed domains are deleted
	DomainRemoved
)

func (s DomainState) String() string {
	switch s {
	case DomainReady:
		return "Ready"
	case DomainHold:
		return "Hold"
	case DomainRemovable:
		return "Removable"
	case DomainRemoved:
		return "Removed"
	default:
		return "Unknown"
	}
}

// Owner is either the privileged manager or an account
type Owner struct {
	account address.Address
}

// ManagerOwner returns the privileged manager
func ManagerOwner() Owner {
	return Owner{}
}

// AccountOwner returns the account owner addr
func AccountOwner(addr address.Address) Owner {
	return Owner{account: addr}
}

// IsManager returns true for the manager
func (o Owner) IsManager() bool {
	return o.account == nil
}

// Account returns the owner account, nil for the manager
func (o Owner) Account() address.Address {
	return o.account
}

// Equal returns true if both owners are the same
func (o Owner) Equal(other Owner) bool {
	if o.IsManager() || other.IsManager() {
		return o.IsManager() == other.IsManager()
	}
	return address.Equal(o.account, other.account)
}

func (o Owner) String() string {
	if o.IsManager() {
		return "manager"
	}
	return o.account.String()
}

// StatementEntry is a statement admitted into an aggregation together with its publishing reserve
type StatementEntry struct {
	Account   address.Address
	Reserve   *uint256.Int
	Statement hash.Hash256
}

// AggregationEntry is a batch of at most Size statements, committed to one merkle root when published
type AggregationEntry struct {
	ID         uint64
	Size       uint32
	Statements []*StatementEntry
}

// NewAggregationEntry creates an empty aggregation
func NewAggregationEntry(id uint64, size uint32) *AggregationEntry {
	return &AggregationEntry{
		ID:         id,
		Size:       size,
		Statements: []*StatementEntry{},
	}
}

// Append adds a statement
func (a *AggregationEntry) Append(s *StatementEntry) error {
	if a.IsFull() {
		return ErrAggregationFull
	}
	a.Statements = append(a.Statements, s)
	return nil
}

// IsFull returns true when no statement can be added
func (a *AggregationEntry) IsFull() bool {
	return uint32(len(a.Statements)) >= a.Size
}

// SpaceLeft returns the number of free slots
func (a *AggregationEntry) SpaceLeft() uint32 {
	return saturatingSub32(a.Size, uint32(len(a.Statements)))
}

// Clone returns a deep copy of the aggregation
func (a *AggregationEntry) Clone() *AggregationEntry {
	c := &AggregationEntry{
		ID:         a.ID,
		Size:       a.Size,
		Statements: make([]*StatementEntry, len(a.Statements)),
	}
	for i, s := range a.Statements {
		c.Statements[i] = &StatementEntry{
			Account:   s.Account,
			Statement: s.Statement,
		}
		if s.Reserve != nil {
			c.Statements[i].Reserve = new(uint256.Int).Set(s.Reserve)
		}
	}
	return c
}

// Leaves returns the statements in admission order
func (a *AggregationEntry) Leaves() []hash.Hash256 {
	leaves := make([]hash.Hash256, len(a.Statements))
	for i, s := range a.Statements {
		leaves[i] = s.Statement
	}
	return leaves
}

// IndexOf returns the position of the first occurrence of statement
func (a *AggregationEntry) IndexOf(statement hash.Hash256) (int, bool) {
	for i, s := range a.Statements {
		if s.Statement == statement {
			return i, true
		}
	}
	return 0, false
}

// TotalReserve returns the sum of the reserves of all statements
func (a *AggregationEntry) TotalReserve() *uint256.Int {
	total := new(uint256.Int)
	for _, s := range a.Statements {
		total = ledger.SaturatingAdd(total, s.Reserve)
	}
	return total
}

// Domain is an independent aggregation stream
type Domain struct {
	ID                 uint32
	Owner              Owner
	State              DomainState
	Next               *AggregationEntry
	MaxAggregationSize uint32
	ShouldPublish      map[uint64]*AggregationEntry
	PublishQueueSize   uint32
	Ticket             *ledger.Ticket
}

func newDomain(id uint32, owner Owner, size, queueSize uint32, ticket *ledger.Ticket) *Domain {
	return &Domain{
		ID:                 id,
		Owner:              owner,
		State:              DomainReady,
		Next:               NewAggregationEntry(1, size),
		MaxAggregationSize: size,
		ShouldPublish:      map[uint64]*AggregationEntry{},
		PublishQueueSize:   queueSize,
		Ticket:             ticket,
	}
}

// CanAddStatement returns true if one more statement can be admitted. The last free slot of Next is only taken
// when the publish queue can receive the completed aggregation.
func (d *Domain) CanAddStatement() bool {
	queueSpace := saturatingSub32(d.PublishQueueSize, uint32(len(d.ShouldPublish)))
	return queueSpace > 0 || d.Next.SpaceLeft() > 1
}

// IsQueueFull returns true when no completed aggregation can be queued
func (d *Domain) IsQueueFull() bool {
	return uint32(len(d.ShouldPublish)) >= d.PublishQueueSize
}

// PendingIDs returns the ids of the aggregations waiting to be published in ascending order
func (d *Domain) PendingIDs() []uint64 {
	ids := make([]uint64, 0, len(d.ShouldPublish))
	for id := range d.ShouldPublish {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// popNext replaces Next with a fresh aggregation and returns the old one
func (d *Domain) popNext() *AggregationEntry {
	popped := d.Next
	d.Next = NewAggregationEntry(popped.ID+1, popped.Size)
	return popped
}

// tryMarkRemovable moves a held domain without pending work to removable
func (d *Domain) tryMarkRemovable() bool {
	if d.State != DomainHold || len(d.ShouldPublish) != 0 || len(d.Next.Statements) != 0 {
		return false
	}
	d.State = DomainRemovable
	return true
}

// isAuthorized returns true if caller may manage the domain
func (d *Domain) isAuthorized(caller Owner) bool {
	return caller.IsManager() || d.Owner.Equal(caller)
}

func saturatingSub32(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}
