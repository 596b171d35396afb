// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

type (
	// Weights prices every operation in gas
	Weights interface {
		// Publish is the gas of publishing an aggregation of n statements
		Publish(n uint32) uint64
		PublishOnFailInvalidDomain() uint64
		PublishOnFailInvalidAggregation() uint64
		Register() uint64
		Hold() uint64
		Unregister() uint64
	}

	// DefaultWeights is the gas table used by default
	DefaultWeights struct{}
)

const (
	_publishBaseGas                     = uint64(30000)
	_publishPerStatementGas             = uint64(2500)
	_publishOnFailInvalidDomainGas      = uint64(5000)
	_publishOnFailInvalidAggregationGas = uint64(8000)
	_registerGas                        = uint64(20000)
	_holdGas                            = uint64(12000)
	_unregisterGas                      = uint64(15000)
)

func (DefaultWeights) Publish(n uint32) uint64 {
	return _publishBaseGas + _publishPerStatementGas*uint64(n)
}

func (DefaultWeights) PublishOnFailInvalidDomain() uint64 { return _publishOnFailInvalidDomainGas }

func (DefaultWeights) PublishOnFailInvalidAggregation() uint64 { return _publishOnFailInvalidAggregationGas }

func (DefaultWeights) Register() uint64 { return _registerGas }

func (DefaultWeights) Hold() uint64 { return _holdGas }

func (DefaultWeights) Unregister() uint64 { return _unregisterGas }
