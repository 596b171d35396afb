// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// MaxAmount is the largest representable amount
var MaxAmount = new(uint256.Int).Not(new(uint256.Int))

// ZeroAmount returns a new zero amount
func ZeroAmount() *uint256.Int {
	return new(uint256.Int)
}

// SaturatingAdd returns a+b, clamped at MaxAmount
func SaturatingAdd(a, b *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).AddOverflow(orZero(a), orZero(b))
	if overflow {
		return new(uint256.Int).Set(MaxAmount)
	}
	return z
}

// SaturatingSub returns a-b, clamped at zero
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	z, underflow := new(uint256.Int).SubOverflow(orZero(a), orZero(b))
	if underflow {
		return new(uint256.Int)
	}
	return z
}

// SaturatingMul returns a*b, clamped at MaxAmount
func SaturatingMul(a, b *uint256.Int) *uint256.Int {
	z, overflow := new(uint256.Int).MulOverflow(orZero(a), orZero(b))
	if overflow {
		return new(uint256.Int).Set(MaxAmount)
	}
	return z
}

// SaturatingDiv returns a/b, or zero when b is zero
func SaturatingDiv(a, b *uint256.Int) *uint256.Int {
	// uint256 defines division by zero as zero
	return new(uint256.Int).Div(orZero(a), orZero(b))
}

// MinAmount returns the smaller of a and b
func MinAmount(a, b *uint256.Int) *uint256.Int {
	if orZero(a).Lt(orZero(b)) {
		return new(uint256.Int).Set(orZero(a))
	}
	return new(uint256.Int).Set(orZero(b))
}

// ParseAmount parses a decimal amount, the empty string being zero
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", s)
	}
	return v, nil
}

// FormatAmount returns the decimal form of an amount
func FormatAmount(v *uint256.Int) string {
	return orZero(v).ToBig().String()
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
