// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"context"
	"encoding/hex"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
)

// OnStatementVerified admits a verified statement into the next aggregation of its domain. Nothing is reported
// to the caller: a statement which cannot be aggregated yields a CannotAggregate event, a statement without
// domain is ignored.
func (p *Protocol) OnStatementVerified(
	ctx context.Context,
	sm protocol.StateManager,
	account address.Address,
	domainID *uint32,
	statement hash.Hash256,
) {
	var (
		events   eventBuffer
		snapshot = sm.Snapshot()
	)
	result, err := p.aggregateStatement(sm, account, domainID, statement, &events)
	if err != nil {
		_aggregateStatementMtc.WithLabelValues("error").Inc()
		p.logger.Error("Failed to aggregate statement",
			zap.String("statement", hex.EncodeToString(statement[:])),
			zap.Error(err))
		if err := sm.Revert(snapshot); err != nil {
			p.logger.Error("Failed to revert statement aggregation", zap.Error(err))
		}
		return
	}
	_aggregateStatementMtc.WithLabelValues(result).Inc()
	events.flush(p.sink)
}

// aggregateStatement returns the aggregation result, an error only on unexpected failures
func (p *Protocol) aggregateStatement(
	sm protocol.StateManager,
	account address.Address,
	domainID *uint32,
	statement hash.Hash256,
	events *eventBuffer,
) (string, error) {
	cannotAggregate := func(cause CannotAggregateCause) (string, error) {
		events.add(&CannotAggregateEvent{Statement: statement, Cause: cause})
		return cause.String(), nil
	}
	if account == nil {
		return cannotAggregate(CauseNoAccount)
	}
	if domainID == nil {
		return _statementIgnored, nil
	}
	d, err := getDomain(sm, *domainID)
	switch errors.Cause(err) {
	case nil:
	case ErrUnknownDomainID:
		return cannotAggregate(CauseDomainNotRegistered)
	default:
		return "", err
	}
	if d.State != DomainReady {
		return cannotAggregate(CauseInvalidDomainState)
	}
	if !d.CanAddStatement() {
		return cannotAggregate(CauseDomainStorageFull)
	}

	reserve := p.statementReserve(d)
	snapshot := sm.Snapshot()
	if err := p.currency.Hold(sm, ledger.HoldReasonAggregate, account, reserve); err != nil {
		if err := sm.Revert(snapshot); err != nil {
			return "", err
		}
		p.logger.Debug("Failed to hold statement reserve",
			zap.String("account", account.String()),
			zap.String("reserve", ledger.FormatAmount(reserve)),
			zap.Error(err))
		return cannotAggregate(CauseInsufficientFunds)
	}

	if err := d.Next.Append(&StatementEntry{
		Account:   account,
		Reserve:   reserve,
		Statement: statement,
	}); err != nil {
		return "", errors.Wrapf(err, "domain %d", d.ID)
	}
	events.add(&NewProofEvent{Statement: statement, DomainID: d.ID, AggregationID: d.Next.ID})
	if d.Next.IsFull() {
		full := d.popNext()
		d.ShouldPublish[full.ID] = full
		events.add(&AggregationCompleteEvent{DomainID: d.ID, AggregationID: full.ID})
		if d.IsQueueFull() {
			events.add(&DomainFullEvent{DomainID: d.ID})
		}
	}
	if d.tryMarkRemovable() {
		events.add(&DomainStateChangedEvent{DomainID: d.ID, State: d.State})
	}
	if err := putDomain(sm, d); err != nil {
		return "", err
	}
	return _statementAggregated, nil
}
