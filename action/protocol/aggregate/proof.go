// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"context"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/crypto"
)

// BeginRound forgets the aggregations published in the previous round. It must run before any other operation
// of the round.
func (p *Protocol) BeginRound(ctx context.Context) {
	height := protocol.MustGetBlockCtx(ctx).BlockHeight
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) > 0 {
		p.logger.Debug("Cleared published aggregations",
			zap.Uint64("round", p.round),
			zap.Int("count", len(p.published)))
	}
	p.round = height
	p.published = nil
}

// Round returns the height of the current round
func (p *Protocol) Round() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.round
}

// Published returns copies of the aggregations published in the current round
func (p *Protocol) Published() []PublishedAggregation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	published := make([]PublishedAggregation, len(p.published))
	for i, pa := range p.published {
		published[i] = PublishedAggregation{
			DomainID:    pa.DomainID,
			Aggregation: pa.Aggregation.Clone(),
			Root:        pa.Root,
		}
	}
	return published
}

// StatementPath returns the inclusion proof of statement in an aggregation published in the current round
func (p *Protocol) StatementPath(domainID uint32, aggregationID uint64, statement hash.Hash256) (*crypto.MerkleProof, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, pa := range p.published {
		if pa.DomainID != domainID || pa.Aggregation.ID != aggregationID {
			continue
		}
		index, ok := pa.Aggregation.IndexOf(statement)
		if !ok {
			return nil, &PathNotFoundError{
				DomainID:      domainID,
				AggregationID: aggregationID,
				Statement:     statement,
			}
		}
		return crypto.MerkleProofOf(p.hasher, pa.Aggregation.Leaves(), uint32(index))
	}
	return nil, errors.Wrapf(ErrReceiptNotPublished, "aggregation %d of domain %d", aggregationID, domainID)
}
