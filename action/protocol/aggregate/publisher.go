// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"context"

	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/crypto"
)

// Publish closes an aggregation of a domain, commits its statements to a merkle root and pays the statement
// reserves to the caller. Publishing the next aggregation closes it early, however many statements it holds.
// Anyone may publish, the gas charged depends on the statements actually aggregated.
// The aggregation stays queryable through StatementPath until the next BeginRound, even if the host later
// discards the state changes of the round. A host discarding them calls BeginRound to drop it.
func (p *Protocol) Publish(
	ctx context.Context,
	sm protocol.StateManager,
	caller address.Address,
	domainID uint32,
	aggregationID uint64,
) (*Receipt, error) {
	var (
		events   eventBuffer
		snapshot = sm.Snapshot()
	)
	if caller == nil {
		return p.reject(ctx, sm, snapshot, _opPublish, p.weights.PublishOnFailInvalidDomain(), ErrBadOrigin)
	}
	d, err := getDomain(sm, domainID)
	if err != nil {
		return p.reject(ctx, sm, snapshot, _opPublish, p.weights.PublishOnFailInvalidDomain(), err)
	}
	aggregation, err := takeAggregation(d, aggregationID)
	if err != nil {
		return p.reject(ctx, sm, snapshot, _opPublish, p.weights.PublishOnFailInvalidAggregation(), err)
	}
	count := uint32(len(aggregation.Statements))
	gas := p.weights.Publish(count)
	root := crypto.MerkleRoot(p.hasher, aggregation.Leaves())

	p.settle(sm, d.ID, aggregation, caller)
	if d.tryMarkRemovable() {
		events.add(&DomainStateChangedEvent{DomainID: d.ID, State: d.State})
	}
	if err := putDomain(sm, d); err != nil {
		return p.reject(ctx, sm, snapshot, _opPublish, gas, err)
	}
	events.add(&NewAggregationReceiptEvent{DomainID: d.ID, AggregationID: aggregation.ID, Receipt: root})

	p.mu.Lock()
	p.published = append(p.published, &PublishedAggregation{
		DomainID:    d.ID,
		Aggregation: aggregation,
		Root:        root,
	})
	p.mu.Unlock()

	receipt := p.accept(ctx, _opPublish, gas, events)
	receipt.DomainID = d.ID
	receipt.AggregationID = aggregation.ID
	receipt.Root = root
	receipt.StatementCount = count
	p.logger.Debug("Published aggregation",
		zap.Uint32("domain", d.ID),
		zap.Uint64("aggregation", aggregation.ID),
		zap.Uint32("statements", count),
		zap.String("publisher", caller.String()))
	return receipt, nil
}

// takeAggregation removes the aggregation to publish from the domain
func takeAggregation(d *Domain, aggregationID uint64) (*AggregationEntry, error) {
	if aggregationID == d.Next.ID {
		return d.popNext(), nil
	}
	aggregation, ok := d.ShouldPublish[aggregationID]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAggregationID, "domain %d has no aggregation %d", d.ID, aggregationID)
	}
	delete(d.ShouldPublish, aggregationID)
	return aggregation, nil
}

// settle pays the reserve of every statement to the publisher. The aggregation is already taken out of the
// domain, so settlement never fails: what cannot be transferred is logged.
func (p *Protocol) settle(sm protocol.StateManager, domainID uint32, aggregation *AggregationEntry, publisher address.Address) {
	for _, s := range aggregation.Statements {
		snapshot := sm.Snapshot()
		residual, err := p.currency.TransferHeld(sm, ledger.HoldReasonAggregate, s.Account, publisher, s.Reserve, true)
		if err != nil {
			if rerr := sm.Revert(snapshot); rerr != nil {
				p.logger.Error("Failed to revert settlement", zap.Error(rerr))
			}
			residual = s.Reserve
		}
		if residual != nil && !residual.IsZero() {
			p.logger.Warn("Statement reserve not fully settled",
				zap.Uint32("domain", domainID),
				zap.Uint64("aggregation", aggregation.ID),
				zap.String("account", s.Account.String()),
				zap.String("reserve", ledger.FormatAmount(s.Reserve)),
				zap.String("residual", ledger.FormatAmount(residual)),
				zap.Error(err))
		}
	}
}
