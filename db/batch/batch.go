// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package batch

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrNotExist indicates the key is not staged in the batch
	ErrNotExist = errors.New("not exist in batch")
	// ErrAlreadyDeleted indicates the key has been deleted in the batch
	ErrAlreadyDeleted = errors.New("already deleted from batch")
	// ErrOutOfBound indicates an out of bound index
	ErrOutOfBound = errors.New("out of bound")
)

type (
	// KVStoreBatch defines a batch buffer interface that stages Put/Delete entries in sequential order
	// To use it, first start a new batch
	// b := NewBatch()
	// and keep batching Put/Delete operation into it
	// b.Put(bucket, k, v)
	// b.Delete(bucket, k, v)
	// once it's done, call KVStore interface's WriteBatch() to persist to underlying DB
	// KVStore.WriteBatch(b)
	// if commit succeeds, the batch is cleared
	// otherwise the batch is kept intact (so batch user can figure out what's wrong and attempt re-commit later)
	KVStoreBatch interface {
		// Lock locks the batch
		Lock()
		// Unlock unlocks the batch
		Unlock()
		// ClearAndUnlock clears the write queue and unlocks the batch
		ClearAndUnlock()
		// Put insert or update a record identified by (namespace, key)
		Put(string, []byte, []byte, string, ...interface{})
		// Delete deletes a record by (namespace, key)
		Delete(string, []byte, string, ...interface{})
		// Size returns the size of batch
		Size() int
		// Entry returns the entry at the index
		Entry(int) (*WriteInfo, error)
		// Clear clears entries staged in batch
		Clear()
	}

	// CachedBatch derives from Batch interface
	// A local cache is added to provide fast retrieval of pending Put/Delete entries, and the staged entries
	// can be rolled back to a snapshot
	CachedBatch interface {
		KVStoreBatch
		// Get gets a record by (namespace, key)
		Get(string, []byte) ([]byte, error)
		// Snapshot takes a snapshot of current cached batch
		Snapshot() int
		// RevertSnapshot sets the cached batch as the snapshot
		RevertSnapshot(int) error
		// ResetSnapshots clears all snapshots
		ResetSnapshots()
	}

	// baseKVStoreBatch is the base implementation of KVStoreBatch
	baseKVStoreBatch struct {
		mutex      sync.RWMutex
		writeQueue []*WriteInfo
	}

	kvKey struct {
		ns  string
		key string
	}

	// cachedBatch indexes the last write of every key. A write staged after the last snapshot is replaced
	// in place by a later write of the same key, resetting the snapshots keeps only the last write of each key.
	cachedBatch struct {
		*baseKVStoreBatch
		cache     map[kvKey]int
		snapshots []int
	}
)

// NewBatch returns a batch
func NewBatch() KVStoreBatch {
	return &baseKVStoreBatch{}
}

// Lock locks the batch
func (b *baseKVStoreBatch) Lock() {
	b.mutex.Lock()
}

// Unlock unlocks the batch
func (b *baseKVStoreBatch) Unlock() {
	b.mutex.Unlock()
}

// ClearAndUnlock clears the write queue and unlocks the batch
func (b *baseKVStoreBatch) ClearAndUnlock() {
	defer b.mutex.Unlock()
	b.writeQueue = nil
}

// Put inserts a <key, value> record
func (b *baseKVStoreBatch) Put(namespace string, key, value []byte, errorFormat string, errorArgs ...interface{}) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.batch(Put, namespace, key, value, errorFormat, errorArgs)
}

// Delete deletes a record
func (b *baseKVStoreBatch) Delete(namespace string, key []byte, errorFormat string, errorArgs ...interface{}) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.batch(Delete, namespace, key, nil, errorFormat, errorArgs)
}

// Size returns the size of batch
func (b *baseKVStoreBatch) Size() int {
	return len(b.writeQueue)
}

// Entry returns the entry at the index
func (b *baseKVStoreBatch) Entry(index int) (*WriteInfo, error) {
	if index < 0 || index >= len(b.writeQueue) {
		return nil, errors.Wrapf(ErrOutOfBound, "index %d, size %d", index, len(b.writeQueue))
	}
	return b.writeQueue[index], nil
}

// Clear clear write queue
func (b *baseKVStoreBatch) Clear() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.writeQueue = nil
}

func (b *baseKVStoreBatch) batch(op WriteType, namespace string, key, value []byte, errorFormat string, errorArgs interface{}) {
	b.writeQueue = append(b.writeQueue, NewWriteInfo(op, namespace, key, value, errorFormat, errorArgs))
}

// NewCachedBatch returns a new cached batch buffer
func NewCachedBatch() CachedBatch {
	return &cachedBatch{
		baseKVStoreBatch: &baseKVStoreBatch{},
		cache:            make(map[kvKey]int),
	}
}

// ClearAndUnlock clears the write queue, the cache and the snapshots and unlocks the batch
func (cb *cachedBatch) ClearAndUnlock() {
	defer cb.mutex.Unlock()
	cb.writeQueue = nil
	cb.cache = make(map[kvKey]int)
	cb.snapshots = nil
}

// Put inserts a <key, value> record
func (cb *cachedBatch) Put(namespace string, key, value []byte, errorFormat string, errorArgs ...interface{}) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.stage(Put, namespace, key, value, errorFormat, errorArgs)
}

// Delete deletes a record
func (cb *cachedBatch) Delete(namespace string, key []byte, errorFormat string, errorArgs ...interface{}) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.stage(Delete, namespace, key, nil, errorFormat, errorArgs)
}

func (cb *cachedBatch) stage(op WriteType, namespace string, key, value []byte, errorFormat string, errorArgs interface{}) {
	k := kvKey{namespace, string(key)}
	if i, ok := cb.cache[k]; ok && i >= cb.lastSnapshot() {
		cb.writeQueue[i] = NewWriteInfo(op, namespace, key, value, errorFormat, errorArgs)
		return
	}
	cb.batch(op, namespace, key, value, errorFormat, errorArgs)
	cb.cache[k] = len(cb.writeQueue) - 1
}

// lastSnapshot returns the first write position a revert can drop
func (cb *cachedBatch) lastSnapshot() int {
	if len(cb.snapshots) == 0 {
		return 0
	}
	return cb.snapshots[len(cb.snapshots)-1]
}

// Clear clear the cached batch buffer
func (cb *cachedBatch) Clear() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.writeQueue = nil
	cb.cache = make(map[kvKey]int)
	cb.snapshots = nil
}

// Get retrieves a record
func (cb *cachedBatch) Get(namespace string, key []byte) ([]byte, error) {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	i, ok := cb.cache[kvKey{namespace, string(key)}]
	if !ok {
		return nil, errors.Wrapf(ErrNotExist, "ns = %s, key = %x", namespace, key)
	}
	wi := cb.writeQueue[i]
	if wi.WriteType() == Delete {
		return nil, errors.Wrapf(ErrAlreadyDeleted, "ns = %s, key = %x", namespace, key)
	}
	return wi.Value(), nil
}

// Snapshot takes a snapshot of current cached batch
func (cb *cachedBatch) Snapshot() int {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.snapshots = append(cb.snapshots, len(cb.writeQueue))
	return len(cb.snapshots) - 1
}

// RevertSnapshot drops every write staged after the snapshot, and every later snapshot
func (cb *cachedBatch) RevertSnapshot(snapshot int) error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	if snapshot < 0 || snapshot >= len(cb.snapshots) {
		return errors.Wrapf(ErrOutOfBound, "invalid snapshot %d", snapshot)
	}
	cb.writeQueue = cb.writeQueue[:cb.snapshots[snapshot]]
	cb.snapshots = cb.snapshots[:snapshot+1]
	cb.cache = make(map[kvKey]int, len(cb.writeQueue))
	for i, wi := range cb.writeQueue {
		cb.cache[kvKey{wi.namespace, string(wi.key)}] = i
	}
	return nil
}

// ResetSnapshots clears all snapshots and drops the writes overridden by a later write of the same key
func (cb *cachedBatch) ResetSnapshots() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.snapshots = nil
	if len(cb.writeQueue) == len(cb.cache) {
		return
	}
	queue := make([]*WriteInfo, 0, len(cb.cache))
	for i, wi := range cb.writeQueue {
		k := kvKey{wi.namespace, string(wi.key)}
		if cb.cache[k] != i {
			continue
		}
		cb.cache[k] = len(queue)
		queue = append(queue, wi)
	}
	cb.writeQueue = queue
}
