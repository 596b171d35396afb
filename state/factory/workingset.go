// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package factory

import (
	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/db"
	"github.com/iotexproject/iotex-aggregator/db/batch"
	"github.com/iotexproject/iotex-aggregator/state"
)

// WorkingSet stages state changes of one round on top of a KV store. Reads see the staged changes first.
// Nothing reaches the store until Commit. The host calls ResetSnapshots once an operation is done with its
// snapshots, later writes of the same key then replace the staged ones.
type WorkingSet struct {
	height uint64
	kv     db.KVStore
	cb     batch.CachedBatch
}

var _ protocol.StateManager = (*WorkingSet)(nil)

// NewWorkingSet creates a working set of the given round height
func NewWorkingSet(height uint64, kv db.KVStore) *WorkingSet {
	return &WorkingSet{
		height: height,
		kv:     kv,
		cb:     batch.NewCachedBatch(),
	}
}

// Height returns the round height of the working set
func (ws *WorkingSet) Height() uint64 {
	return ws.height
}

// State loads a state
func (ws *WorkingSet) State(ns string, key []byte, s state.Deserializer) error {
	data, err := ws.get(ns, key)
	if err != nil {
		return err
	}
	if err := s.Deserialize(data); err != nil {
		return errors.Wrapf(state.ErrStateDeserialization, "ns = %s, key = %x: %v", ns, key, err)
	}
	return nil
}

// PutState stages a state
func (ws *WorkingSet) PutState(ns string, key []byte, s state.Serializer) error {
	data, err := s.Serialize()
	if err != nil {
		return errors.Wrapf(state.ErrStateSerialization, "ns = %s, key = %x: %v", ns, key, err)
	}
	ws.cb.Put(ns, key, data, "failed to put state ns = %s, key = %x", ns, key)
	return nil
}

// DelState stages a deletion
func (ws *WorkingSet) DelState(ns string, key []byte) error {
	ws.cb.Delete(ns, key, "failed to delete state ns = %s, key = %x", ns, key)
	return nil
}

// Snapshot marks the staged changes
func (ws *WorkingSet) Snapshot() int {
	return ws.cb.Snapshot()
}

// ResetSnapshots forgets every snapshot, the staged changes are kept
func (ws *WorkingSet) ResetSnapshots() {
	ws.cb.ResetSnapshots()
}

// Revert drops the changes staged after the snapshot
func (ws *WorkingSet) Revert(snapshot int) error {
	return ws.cb.RevertSnapshot(snapshot)
}

// Commit writes all staged changes to the store atomically
func (ws *WorkingSet) Commit() error {
	if err := ws.kv.WriteBatch(ws.cb); err != nil {
		return errors.Wrapf(err, "failed to commit working set of height %d", ws.height)
	}
	return nil
}

// Discard drops every staged change
func (ws *WorkingSet) Discard() {
	ws.cb.Clear()
}

func (ws *WorkingSet) get(ns string, key []byte) ([]byte, error) {
	data, err := ws.cb.Get(ns, key)
	switch errors.Cause(err) {
	case nil:
		return data, nil
	case batch.ErrAlreadyDeleted:
		return nil, errors.Wrapf(state.ErrStateNotExist, "ns = %s, key = %x", ns, key)
	case batch.ErrNotExist:
	default:
		return nil, err
	}
	data, err = ws.kv.Get(ns, key)
	if err != nil {
		if errors.Cause(err) == db.ErrNotExist {
			return nil, errors.Wrapf(state.ErrStateNotExist, "ns = %s, key = %x", ns, key)
		}
		return nil, err
	}
	return data, nil
}
