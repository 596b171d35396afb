// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package crypto

import (
	"encoding/binary"
	"testing"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testLeaves(n int) []hash.Hash256 {
	leaves := make([]hash.Hash256, n)
	for i := range leaves {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(i))
		leaves[i] = hash.Hash256b(b[:])
	}
	return leaves
}

func TestMerkleRoot(t *testing.T) {
	r := require.New(t)
	for _, hasher := range []Hasher{Blake2bHasher, KeccakHasher} {
		r.Equal(hash.ZeroHash256, MerkleRoot(hasher, nil))

		leaves := testLeaves(3)
		h0, h1, h2 := hasher(leaves[0][:]), hasher(leaves[1][:]), hasher(leaves[2][:])
		r.Equal(h0, MerkleRoot(hasher, leaves[:1]))
		r.Equal(hashNode(hasher, h0, h1), MerkleRoot(hasher, leaves[:2]))
		// the odd node is promoted, not duplicated
		r.Equal(hashNode(hasher, hashNode(hasher, h0, h1), h2), MerkleRoot(hasher, leaves))
	}
	r.NotEqual(MerkleRoot(Blake2bHasher, testLeaves(4)), MerkleRoot(KeccakHasher, testLeaves(4)))
	// leaf order matters
	leaves := testLeaves(4)
	swapped := []hash.Hash256{leaves[1], leaves[0], leaves[2], leaves[3]}
	r.NotEqual(MerkleRoot(Blake2bHasher, leaves), MerkleRoot(Blake2bHasher, swapped))
}

func TestMerkleProof(t *testing.T) {
	r := require.New(t)
	for _, hasher := range []Hasher{Blake2bHasher, KeccakHasher} {
		for n := 1; n <= 33; n++ {
			leaves := testLeaves(n)
			root := MerkleRoot(hasher, leaves)
			for i := range leaves {
				p, err := MerkleProofOf(hasher, leaves, uint32(i))
				r.NoError(err)
				r.Equal(root, p.Root)
				r.EqualValues(n, p.NumberOfLeaves)
				r.EqualValues(i, p.LeafIndex)
				r.Equal(leaves[i], p.Leaf)
				r.True(p.Verify(hasher), "n = %d, i = %d", n, i)
			}
			_, err := MerkleProofOf(hasher, leaves, uint32(n))
			r.Equal(ErrLeafIndexOutOfRange, errors.Cause(err))
		}
	}
}

func TestVerifyMerkleProofRejects(t *testing.T) {
	r := require.New(t)
	leaves := testLeaves(7)
	p, err := MerkleProofOf(Blake2bHasher, leaves, 5)
	r.NoError(err)
	r.True(p.Verify(Blake2bHasher))

	r.False(p.Verify(KeccakHasher))
	r.False(VerifyMerkleProof(Blake2bHasher, p.Root, p.Proof, p.NumberOfLeaves, p.LeafIndex, leaves[4]))
	r.False(VerifyMerkleProof(Blake2bHasher, p.Root, p.Proof, p.NumberOfLeaves, 4, p.Leaf))
	r.False(VerifyMerkleProof(Blake2bHasher, p.Root, p.Proof, p.NumberOfLeaves, 7, p.Leaf))
	r.False(VerifyMerkleProof(Blake2bHasher, hash.ZeroHash256, p.Proof, p.NumberOfLeaves, p.LeafIndex, p.Leaf))
	r.False(VerifyMerkleProof(Blake2bHasher, p.Root, append(p.Proof, leaves[0]), p.NumberOfLeaves, p.LeafIndex, p.Leaf))
	r.False(VerifyMerkleProof(Blake2bHasher, p.Root, p.Proof[1:], p.NumberOfLeaves, p.LeafIndex, p.Leaf))

	tampered := append([]hash.Hash256{}, p.Proof...)
	tampered[0] = leaves[0]
	r.False(VerifyMerkleProof(Blake2bHasher, p.Root, tampered, p.NumberOfLeaves, p.LeafIndex, p.Leaf))

	empty := NewMerkleTree(Blake2bHasher, nil)
	r.Zero(empty.Size())
	_, err = empty.Proof(0, leaves[0])
	r.Equal(ErrLeafIndexOutOfRange, errors.Cause(err))
}

func TestHasherByName(t *testing.T) {
	r := require.New(t)
	data := []byte("statement")
	for name, expected := range map[string]Hasher{
		"":          Blake2bHasher,
		"blake2b":   Blake2bHasher,
		"Keccak":    KeccakHasher,
		"keccak256": KeccakHasher,
	} {
		h, err := HasherByName(name)
		r.NoError(err)
		r.Equal(expected(data), h(data))
	}
	_, err := HasherByName("sha1")
	r.Error(err)
}
