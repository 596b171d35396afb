// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"context"
	"sync"

	"github.com/holiman/uint256"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/crypto"
	"github.com/iotexproject/iotex-aggregator/pkg/log"
)

const (
	_protocolID = "aggregate"

	_statementAggregated = "aggregated"
	_statementIgnored    = "ignored"
)

var (
	_aggregateStatementMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotex_aggregate_statements",
			Help: "Verified statements by aggregation result",
		},
		[]string{"result"},
	)
	_aggregateOpMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iotex_aggregate_ops",
			Help: "Aggregate operations by receipt status",
		},
		[]string{"op", "status"},
	)
)

func init() {
	prometheus.MustRegister(_aggregateStatementMtc)
	prometheus.MustRegister(_aggregateOpMtc)
}

// DefaultConfig is the default config of the aggregate protocol
var DefaultConfig = Config{
	AggregationSize:            256,
	MaxPendingPublishQueueSize: 64,
	Hasher:                     "blake2b",
	Tip: TipConfig{
		Kind: TipNone,
	},
}

type (
	// Config is the config of the aggregate protocol
	Config struct {
		// AggregationSize bounds the aggregation size of every domain
		AggregationSize uint32 `yaml:"aggregationSize"`
		// MaxPendingPublishQueueSize bounds the publish queue size of every domain
		MaxPendingPublishQueueSize uint32    `yaml:"maxPendingPublishQueueSize"`
		Hasher                     string    `yaml:"hasher"`
		Tip                        TipConfig `yaml:"tip"`
	}

	// Currency escrows the publishing reserve of statements
	Currency interface {
		Hold(sm protocol.StateManager, reason ledger.HoldReason, who address.Address, amount *uint256.Int) error
		TransferHeld(sm protocol.StateManager, reason ledger.HoldReason, from, to address.Address, amount *uint256.Int, bestEffort bool) (*uint256.Int, error)
	}

	// Ticketer charges the storage deposit of domains
	Ticketer interface {
		Acquire(sm protocol.StateManager, who address.Address, footprint uint64) (*ledger.Ticket, error)
		Release(sm protocol.StateManager, ticket *ledger.Ticket) error
	}

	// Receipt is the outcome of an operation
	Receipt struct {
		Status         ReceiptStatus
		BlockHeight    uint64
		GasConsumed    uint64
		DomainID       uint32
		AggregationID  uint64
		Root           hash.Hash256
		StatementCount uint32
	}

	// PublishedAggregation is an aggregation published in the current round
	PublishedAggregation struct {
		DomainID    uint32
		Aggregation *AggregationEntry
		Root        hash.Hash256
	}

	// Protocol aggregates verified statements of domains into merkle roots
	Protocol struct {
		cfg      Config
		hasher   crypto.Hasher
		currency Currency
		ticketer Ticketer
		fee      FeeEstimator
		tip      TipPolicy
		weights  Weights
		sink     EventSink
		logger   *zap.Logger

		mu        sync.RWMutex
		round     uint64
		published []*PublishedAggregation
	}

	// Option is an option of the protocol
	Option func(*Protocol) error
)

// WithTipPolicy overrides the tip policy of the config
func WithTipPolicy(tip TipPolicy) Option {
	return func(p *Protocol) error {
		p.tip = tip
		return nil
	}
}

// WithWeights sets the gas table
func WithWeights(w Weights) Option {
	return func(p *Protocol) error {
		if w == nil {
			return errors.New("nil weights")
		}
		p.weights = w
		return nil
	}
}

// WithEventSink sets the receiver of events
func WithEventSink(sink EventSink) Option {
	return func(p *Protocol) error {
		p.sink = sink
		return nil
	}
}

// NewProtocol creates the aggregate protocol
func NewProtocol(cfg Config, currency Currency, ticketer Ticketer, fee FeeEstimator, opts ...Option) (*Protocol, error) {
	if cfg.AggregationSize == 0 || cfg.MaxPendingPublishQueueSize == 0 {
		return nil, errors.Wrapf(ErrInvalidDomainParams, "aggregation size %d, publish queue size %d", cfg.AggregationSize, cfg.MaxPendingPublishQueueSize)
	}
	if currency == nil || ticketer == nil || fee == nil {
		return nil, errors.New("currency, ticketer and fee estimator are required")
	}
	hasher, err := crypto.HasherByName(cfg.Hasher)
	if err != nil {
		return nil, err
	}
	tip, err := BuildTipPolicy(cfg.Tip)
	if err != nil {
		return nil, err
	}
	p := &Protocol{
		cfg:      cfg,
		hasher:   hasher,
		currency: currency,
		ticketer: ticketer,
		fee:      fee,
		tip:      tip,
		weights:  DefaultWeights{},
		sink:     NewLogEventSink(log.Logger(_protocolID)),
		logger:   log.Logger(_protocolID),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Config returns the config
func (p *Protocol) Config() Config {
	return p.cfg
}

// Hasher returns the hasher of the merkle trees
func (p *Protocol) Hasher() crypto.Hasher {
	return p.hasher
}

// Domain returns the domain of the id
func (p *Protocol) Domain(sr protocol.StateReader, id uint32) (*Domain, error) {
	return getDomain(sr, id)
}

func (p *Protocol) newReceipt(ctx context.Context, status ReceiptStatus, gas uint64) *Receipt {
	return &Receipt{
		Status:      status,
		BlockHeight: protocol.MustGetBlockCtx(ctx).BlockHeight,
		GasConsumed: gas,
	}
}

// reject reverts a failed operation and returns its receipt
func (p *Protocol) reject(
	ctx context.Context,
	sm protocol.StateManager,
	snapshot int,
	op string,
	gas uint64,
	err error,
) (*Receipt, error) {
	if rerr := sm.Revert(snapshot); rerr != nil {
		return nil, errors.Wrapf(rerr, "failed to revert %s", op)
	}
	re := toReceiptError(err)
	_aggregateOpMtc.WithLabelValues(op, re.ReceiptStatus().String()).Inc()
	if re.ReceiptStatus() == ReceiptStatusErrUnknown {
		p.logger.Error("Operation failed", zap.String("op", op), zap.Error(err))
	} else {
		p.logger.Debug("Operation rejected", zap.String("op", op), zap.Error(err))
	}
	return p.newReceipt(ctx, re.ReceiptStatus(), gas), re
}

// accept emits the events of a successful operation and returns its receipt
func (p *Protocol) accept(ctx context.Context, op string, gas uint64, events eventBuffer) *Receipt {
	receipt := p.newReceipt(ctx, ReceiptStatusSuccess, gas)
	_aggregateOpMtc.WithLabelValues(op, ReceiptStatusSuccess.String()).Inc()
	events.flush(p.sink)
	return receipt
}
