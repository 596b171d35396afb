// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
)

const (
	_opRegister   = "register"
	_opHold       = "hold"
	_opUnregister = "unregister"
	_opPublish    = "publish"
)

// Register creates a domain owned by owner. An account owner holds a storage deposit sized to the largest
// encoding of the domain, the manager pays neither deposit nor fee.
func (p *Protocol) Register(
	ctx context.Context,
	sm protocol.StateManager,
	owner Owner,
	maxAggregationSize uint32,
	publishQueueSize uint32,
) (uint32, *Receipt, error) {
	gas := p.weights.Register()
	if owner.IsManager() {
		gas = 0
	}
	var (
		events   eventBuffer
		snapshot = sm.Snapshot()
	)
	d, err := p.register(sm, owner, maxAggregationSize, publishQueueSize, &events)
	if err != nil {
		receipt, err := p.reject(ctx, sm, snapshot, _opRegister, gas, err)
		return 0, receipt, err
	}
	receipt := p.accept(ctx, _opRegister, gas, events)
	receipt.DomainID = d.ID
	p.logger.Info("Registered domain",
		zap.Uint32("domain", d.ID),
		zap.Stringer("owner", d.Owner),
		zap.Uint32("size", d.MaxAggregationSize),
		zap.Uint32("queue", d.PublishQueueSize))
	return d.ID, receipt, nil
}

func (p *Protocol) register(
	sm protocol.StateManager,
	owner Owner,
	size, queueSize uint32,
	events *eventBuffer,
) (*Domain, error) {
	if size == 0 || size > p.cfg.AggregationSize {
		return nil, errors.Wrapf(ErrInvalidDomainParams, "aggregation size %d out of [1, %d]", size, p.cfg.AggregationSize)
	}
	if queueSize == 0 || queueSize > p.cfg.MaxPendingPublishQueueSize {
		return nil, errors.Wrapf(ErrInvalidDomainParams, "publish queue size %d out of [1, %d]", queueSize, p.cfg.MaxPendingPublishQueueSize)
	}
	id, err := nextDomainID(sm)
	if err != nil {
		return nil, err
	}
	d := newDomain(id, owner, size, queueSize, nil)
	if !owner.IsManager() {
		ticket, err := p.ticketer.Acquire(sm, owner.Account(), EncodedSize(size, queueSize))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to acquire storage deposit of domain %d", id)
		}
		d.Ticket = ticket
	}
	if err := putDomain(sm, d); err != nil {
		return nil, err
	}
	events.add(&NewDomainEvent{DomainID: id})
	return d, nil
}

// Hold stops a domain from taking statements. A domain without pending work becomes removable at once.
func (p *Protocol) Hold(ctx context.Context, sm protocol.StateManager, caller Owner, domainID uint32) (*Receipt, error) {
	gas := p.weights.Hold()
	var (
		events   eventBuffer
		snapshot = sm.Snapshot()
	)
	d, err := p.authorizedDomain(sm, caller, domainID)
	if err == nil {
		err = p.hold(sm, d, &events)
	}
	if err != nil {
		return p.reject(ctx, sm, snapshot, _opHold, gas, err)
	}
	receipt := p.accept(ctx, _opHold, gas, events)
	receipt.DomainID = domainID
	return receipt, nil
}

func (p *Protocol) hold(sm protocol.StateManager, d *Domain, events *eventBuffer) error {
	if d.State != DomainReady {
		return errors.Wrapf(ErrInvalidDomainState, "domain %d is %s", d.ID, d.State)
	}
	prev := d.State
	d.State = DomainHold
	d.tryMarkRemovable()
	if err := putDomain(sm, d); err != nil {
		return err
	}
	if d.State != prev {
		events.add(&DomainStateChangedEvent{DomainID: d.ID, State: d.State})
	}
	return nil
}

// Unregister removes a removable domain and returns its storage deposit
func (p *Protocol) Unregister(ctx context.Context, sm protocol.StateManager, caller Owner, domainID uint32) (*Receipt, error) {
	gas := p.weights.Unregister()
	var (
		events   eventBuffer
		snapshot = sm.Snapshot()
	)
	d, err := p.authorizedDomain(sm, caller, domainID)
	if err == nil {
		err = p.unregister(sm, d, &events)
	}
	if err != nil {
		return p.reject(ctx, sm, snapshot, _opUnregister, gas, err)
	}
	receipt := p.accept(ctx, _opUnregister, gas, events)
	receipt.DomainID = domainID
	return receipt, nil
}

func (p *Protocol) unregister(sm protocol.StateManager, d *Domain, events *eventBuffer) error {
	if d.State != DomainRemovable {
		return errors.Wrapf(ErrInvalidDomainState, "domain %d is %s", d.ID, d.State)
	}
	p.releaseTicket(sm, d)
	d.State = DomainRemoved
	events.add(&DomainStateChangedEvent{DomainID: d.ID, State: d.State})
	return delDomain(sm, d.ID)
}

// releaseTicket returns the storage deposit of a domain being removed. A failure is logged and removal goes on,
// the deposit would be lost along with the domain otherwise.
func (p *Protocol) releaseTicket(sm protocol.StateManager, d *Domain) {
	if d.Ticket == nil {
		return
	}
	snapshot := sm.Snapshot()
	if err := p.ticketer.Release(sm, d.Ticket); err != nil {
		_aggregateOpMtc.WithLabelValues("releaseTicket", ReceiptStatusFailure.String()).Inc()
		p.logger.Error("Failed to release storage deposit",
			zap.Uint32("domain", d.ID),
			zap.Stringer("owner", d.Owner),
			zap.Error(err))
		if err := sm.Revert(snapshot); err != nil {
			p.logger.Error("Failed to revert storage deposit release", zap.Uint32("domain", d.ID), zap.Error(err))
		}
	}
	d.Ticket = nil
}

func (p *Protocol) authorizedDomain(sm protocol.StateManager, caller Owner, domainID uint32) (*Domain, error) {
	d, err := getDomain(sm, domainID)
	if err != nil {
		return nil, err
	}
	if !d.isAuthorized(caller) {
		return nil, errors.Wrapf(ErrBadOrigin, "%s cannot manage domain %d", caller, domainID)
	}
	return d, nil
}
