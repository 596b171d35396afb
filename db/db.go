// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/iotexproject/iotex-aggregator/db/batch"
	"github.com/iotexproject/iotex-aggregator/pkg/lifecycle"
)

var (
	// ErrNotExist indicates certain item does not exist in database
	ErrNotExist = errors.New("not exist in DB")
	// ErrIO indicates the generic error of DB I/O operation
	ErrIO = errors.New("DB I/O operation error")
	// ErrDBNotStarted indicates the DB is used before Start or after Stop
	ErrDBNotStarted = errors.New("db has not started")
)

type (
	// KVStoreBasic is the interface of the basic KV store operations
	KVStoreBasic interface {
		lifecycle.StartStopper

		// Put insert or update a record identified by (namespace, key)
		Put(string, []byte, []byte) error
		// Get gets a record by (namespace, key)
		Get(string, []byte) ([]byte, error)
		// Delete deletes a record by (namespace, key)
		Delete(string, []byte) error
	}

	// KVStore is a KVStoreBasic which can atomically write a batch
	KVStore interface {
		KVStoreBasic
		// WriteBatch commits a batch
		WriteBatch(batch.KVStoreBatch) error
	}

	// memKVStore is the in-memory implementation of KVStore for testing purpose
	memKVStore struct {
		lifecycle.Readiness
		mu   sync.RWMutex
		data map[string]map[string][]byte
	}
)

// NewMemKVStore instantiates an in-memory KV store
func NewMemKVStore() KVStore {
	return &memKVStore{
		data: make(map[string]map[string][]byte),
	}
}

func (m *memKVStore) Start(_ context.Context) error { return m.TurnOn() }

func (m *memKVStore) Stop(_ context.Context) error { return m.TurnOff() }

// Put inserts a <key, value> record
func (m *memKVStore) Put(namespace string, key, value []byte) error {
	if !m.IsReady() {
		return ErrDBNotStarted
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(namespace, key, value)
	return nil
}

// Get retrieves a record
func (m *memKVStore) Get(namespace string, key []byte) ([]byte, error) {
	if !m.IsReady() {
		return nil, ErrDBNotStarted
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.data[namespace]
	if !ok {
		return nil, errors.Wrapf(ErrNotExist, "namespace = %s doesn't exist", namespace)
	}
	v, ok := bucket[string(key)]
	if !ok {
		return nil, errors.Wrapf(ErrNotExist, "key = %x doesn't exist", key)
	}
	value := make([]byte, len(v))
	copy(value, v)
	return value, nil
}

// Delete deletes a record
func (m *memKVStore) Delete(namespace string, key []byte) error {
	if !m.IsReady() {
		return ErrDBNotStarted
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if bucket, ok := m.data[namespace]; ok {
		delete(bucket, string(key))
	}
	return nil
}

// WriteBatch commits a batch
func (m *memKVStore) WriteBatch(b batch.KVStoreBatch) error {
	if !m.IsReady() {
		return ErrDBNotStarted
	}
	b.Lock()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < b.Size(); i++ {
		write, err := b.Entry(i)
		if err != nil {
			b.Unlock()
			return err
		}
		switch write.WriteType() {
		case batch.Put:
			m.put(write.Namespace(), write.Key(), write.Value())
		case batch.Delete:
			if bucket, ok := m.data[write.Namespace()]; ok {
				delete(bucket, string(write.Key()))
			}
		}
	}
	b.ClearAndUnlock()
	return nil
}

func (m *memKVStore) put(namespace string, key, value []byte) {
	bucket, ok := m.data[namespace]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[namespace] = bucket
	}
	v := make([]byte, len(value))
	copy(v, value)
	bucket[string(key)] = v
}
