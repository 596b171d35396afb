// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"math"

	"github.com/iotexproject/go-pkgs/byteutil"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/state"
)

// Namespace is the namespace domains are stored under
const Namespace = "Aggregate"

const _counterField protowire.Number = 1

var (
	_domainKeyPrefix = []byte("domain")
	_nextDomainIDKey = []byte("nextDomainID")
)

// counter is a persisted monotonic counter
type counter uint64

func (c counter) Serialize() ([]byte, error) {
	return state.AppendFixed64Field(nil, _counterField, uint64(c)), nil
}

func (c *counter) Deserialize(buf []byte) error {
	return state.ConsumeFields(buf, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != _counterField {
			return state.SkipField(num, typ, b)
		}
		v, n, err := state.ConsumeFixed64(typ, b)
		*c = counter(v)
		return n, err
	})
}

func domainKey(id uint32) []byte {
	key := make([]byte, 0, len(_domainKeyPrefix)+8)
	key = append(key, _domainKeyPrefix...)
	return append(key, byteutil.Uint64ToBytesBigEndian(uint64(id))...)
}

func getDomain(sr protocol.StateReader, id uint32) (*Domain, error) {
	d := Domain{}
	if err := sr.State(Namespace, domainKey(id), &d); err != nil {
		if errors.Cause(err) == state.ErrStateNotExist {
			return nil, errors.Wrapf(ErrUnknownDomainID, "domain %d", id)
		}
		return nil, errors.Wrapf(err, "failed to load domain %d", id)
	}
	return &d, nil
}

func putDomain(sm protocol.StateManager, d *Domain) error {
	if err := sm.PutState(Namespace, domainKey(d.ID), d); err != nil {
		return errors.Wrapf(err, "failed to store domain %d", d.ID)
	}
	return nil
}

func delDomain(sm protocol.StateManager, id uint32) error {
	if err := sm.DelState(Namespace, domainKey(id)); err != nil {
		return errors.Wrapf(err, "failed to delete domain %d", id)
	}
	return nil
}

// nextDomainID allocates a domain id. Ids are never reused.
func nextDomainID(sm protocol.StateManager) (uint32, error) {
	var c counter
	if err := sm.State(Namespace, _nextDomainIDKey, &c); err != nil && errors.Cause(err) != state.ErrStateNotExist {
		return 0, errors.Wrap(err, "failed to load next domain id")
	}
	if c > math.MaxUint32 {
		return 0, ErrDomainIDExhausted
	}
	if err := sm.PutState(Namespace, _nextDomainIDKey, c+1); err != nil {
		return 0, errors.Wrap(err, "failed to store next domain id")
	}
	return uint32(c), nil
}
