// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
)

// encoded length of a publish call: domain id and aggregation id plus the call selector
const _publishCallLen = uint32(13)

// tip kinds
const (
	TipNone    = "none"
	TipFixed   = "fixed"
	TipPercent = "percent"
)

type (
	// FeeEstimator estimates the fee of a call
	FeeEstimator interface {
		EstimateFee(callLen uint32, gas uint64) *uint256.Int
	}

	// TipPolicy returns the tip paid to publishers on top of the estimated fee, nil for no tip
	TipPolicy func(fee *uint256.Int) *uint256.Int

	// TipConfig selects the tip policy
	TipConfig struct {
		Kind    string `yaml:"kind"`
		Amount  string `yaml:"amount"`
		Percent uint64 `yaml:"percent"`
	}
)

// NoTip pays no tip
func NoTip(*uint256.Int) *uint256.Int {
	return nil
}

// FixedTip pays amount whatever the fee
func FixedTip(amount *uint256.Int) TipPolicy {
	return func(*uint256.Int) *uint256.Int {
		return new(uint256.Int).Set(amount)
	}
}

// PercentTip pays pct percent of the fee
func PercentTip(pct uint64) TipPolicy {
	return func(fee *uint256.Int) *uint256.Int {
		return ledger.SaturatingDiv(ledger.SaturatingMul(fee, uint256.NewInt(pct)), uint256.NewInt(100))
	}
}

// BuildTipPolicy creates the tip policy of the config
func BuildTipPolicy(cfg TipConfig) (TipPolicy, error) {
	switch cfg.Kind {
	case "", TipNone:
		return NoTip, nil
	case TipFixed:
		amount, err := ledger.ParseAmount(cfg.Amount)
		if err != nil {
			return nil, errors.Wrap(err, "invalid fixed tip")
		}
		return FixedTip(amount), nil
	case TipPercent:
		return PercentTip(cfg.Percent), nil
	default:
		return nil, errors.Errorf("unknown tip kind %s", cfg.Kind)
	}
}

// statementReserve is the share of one statement in the cost of publishing a full aggregation
func (p *Protocol) statementReserve(d *Domain) *uint256.Int {
	fee := p.fee.EstimateFee(_publishCallLen, p.weights.Publish(d.MaxAggregationSize))
	total := fee
	if p.tip != nil {
		total = ledger.SaturatingAdd(fee, p.tip(fee))
	}
	return ledger.SaturatingDiv(total, uint256.NewInt(uint64(d.Next.Size)))
}
