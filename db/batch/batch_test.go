// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package batch

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var (
	_bucket1 = "test_ns1"
	_testK1  = [3][]byte{[]byte("key_1"), []byte("key_2"), []byte("key_3")}
	_testV1  = [3][]byte{[]byte("value_1"), []byte("value_2"), []byte("value_3")}
)

func TestBaseKVStoreBatch(t *testing.T) {
	r := require.New(t)

	b := NewBatch()
	r.Equal(0, b.Size())
	b.Put(_bucket1, _testK1[0], _testV1[0], "failed to put %x", _testK1[0])
	b.Delete(_bucket1, _testK1[1], "")
	r.Equal(2, b.Size())

	wi, err := b.Entry(0)
	r.NoError(err)
	r.Equal(Put, wi.WriteType())
	r.Equal(_bucket1, wi.Namespace())
	r.Equal(_testK1[0], wi.Key())
	r.Equal(_testV1[0], wi.Value())
	r.Equal("failed to put 6b65795f31", wi.Error())

	wi, err = b.Entry(1)
	r.NoError(err)
	r.Equal(Delete, wi.WriteType())

	_, err = b.Entry(2)
	r.Equal(ErrOutOfBound, errors.Cause(err))

	b.Lock()
	b.ClearAndUnlock()
	r.Equal(0, b.Size())
}

func TestCachedBatch(t *testing.T) {
	r := require.New(t)

	cb := NewCachedBatch()
	_, err := cb.Get(_bucket1, _testK1[0])
	r.Equal(ErrNotExist, errors.Cause(err))

	cb.Put(_bucket1, _testK1[0], _testV1[0], "")
	v, err := cb.Get(_bucket1, _testK1[0])
	r.NoError(err)
	r.Equal(_testV1[0], v)

	s0 := cb.Snapshot()
	r.Equal(0, s0)
	cb.Put(_bucket1, _testK1[0], _testV1[1], "")
	cb.Put(_bucket1, _testK1[1], _testV1[1], "")
	s1 := cb.Snapshot()
	r.Equal(1, s1)
	cb.Delete(_bucket1, _testK1[1], "")
	_, err = cb.Get(_bucket1, _testK1[1])
	r.Equal(ErrAlreadyDeleted, errors.Cause(err))

	r.NoError(cb.RevertSnapshot(s1))
	v, err = cb.Get(_bucket1, _testK1[1])
	r.NoError(err)
	r.Equal(_testV1[1], v)

	r.NoError(cb.RevertSnapshot(s0))
	r.Equal(1, cb.Size())
	v, err = cb.Get(_bucket1, _testK1[0])
	r.NoError(err)
	r.Equal(_testV1[0], v)
	_, err = cb.Get(_bucket1, _testK1[1])
	r.Equal(ErrNotExist, errors.Cause(err))

	// snapshot 1 was dropped by reverting to 0
	r.Equal(ErrOutOfBound, errors.Cause(cb.RevertSnapshot(s1)))

	cb.ResetSnapshots()
	r.Equal(ErrOutOfBound, errors.Cause(cb.RevertSnapshot(s0)))

	cb.Clear()
	r.Equal(0, cb.Size())
	_, err = cb.Get(_bucket1, _testK1[0])
	r.Equal(ErrNotExist, errors.Cause(err))
}

func TestCachedBatchCollapsesWrites(t *testing.T) {
	r := require.New(t)

	cb := NewCachedBatch()
	for i := 0; i < 10000; i++ {
		s := cb.Snapshot()
		cb.Put(_bucket1, _testK1[0], _testV1[i%3], "")
		if i%2 == 1 {
			r.NoError(cb.RevertSnapshot(s))
		}
		cb.ResetSnapshots()
	}
	r.Equal(1, cb.Size())
	v, err := cb.Get(_bucket1, _testK1[0])
	r.NoError(err)
	r.Equal(_testV1[9998%3], v)
	r.Empty(cb.(*cachedBatch).snapshots)

	// writes older than the last snapshot survive a revert
	s := cb.Snapshot()
	cb.Put(_bucket1, _testK1[0], _testV1[1], "")
	cb.Put(_bucket1, _testK1[0], _testV1[2], "")
	cb.Delete(_bucket1, _testK1[1], "")
	r.Equal(3, cb.Size())
	_, err = cb.Get(_bucket1, _testK1[1])
	r.Equal(ErrAlreadyDeleted, errors.Cause(err))
	r.NoError(cb.RevertSnapshot(s))
	r.Equal(1, cb.Size())
	v, err = cb.Get(_bucket1, _testK1[0])
	r.NoError(err)
	r.Equal(_testV1[9998%3], v)
	_, err = cb.Get(_bucket1, _testK1[1])
	r.Equal(ErrNotExist, errors.Cause(err))

	// a delete replaces a put of the same snapshot
	cb.ResetSnapshots()
	cb.Delete(_bucket1, _testK1[0], "")
	r.Equal(1, cb.Size())
	wi, err := cb.Entry(0)
	r.NoError(err)
	r.Equal(Delete, wi.WriteType())
}
