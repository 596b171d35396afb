// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import (
	"github.com/holiman/uint256"
)

// LinearFeeEstimator prices a call as BaseFee + ByteFee * callLen + GasPrice * gas
type LinearFeeEstimator struct {
	BaseFee  *uint256.Int
	ByteFee  *uint256.Int
	GasPrice *uint256.Int
}

// EstimateFee returns the fee of a call of callLen bytes consuming gas
func (e *LinearFeeEstimator) EstimateFee(callLen uint32, gas uint64) *uint256.Int {
	fee := SaturatingAdd(e.BaseFee, SaturatingMul(e.ByteFee, uint256.NewInt(uint64(callLen))))
	return SaturatingAdd(fee, SaturatingMul(e.GasPrice, uint256.NewInt(gas)))
}
