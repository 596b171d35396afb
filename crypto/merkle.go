// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package crypto

import (
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

// ErrLeafIndexOutOfRange is returned when a proof is requested for a leaf the tree does not have
var ErrLeafIndexOutOfRange = errors.New("leaf index out of range")

type (
	// Hasher hashes a byte slice into a 32-byte digest
	Hasher func([]byte) hash.Hash256

	// Merkle is a binary merkle tree over hashed leaves. An odd node at the end of a layer is promoted
	// to the next layer unchanged.
	Merkle struct {
		hasher Hasher
		layers [][]hash.Hash256
	}

	// MerkleProof proves that Leaf is the LeafIndex-th of NumberOfLeaves leaves committed to by Root
	MerkleProof struct {
		Root           hash.Hash256
		Proof          []hash.Hash256
		NumberOfLeaves uint32
		LeafIndex      uint32
		Leaf           hash.Hash256
	}
)

// Blake2bHasher hashes with blake2b-256
func Blake2bHasher(data []byte) hash.Hash256 {
	return hash.Hash256b(data)
}

// KeccakHasher hashes with keccak-256
func KeccakHasher(data []byte) hash.Hash256 {
	return hash.Hash256(ethcrypto.Keccak256Hash(data))
}

// HasherByName returns the hasher of the given name
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", "blake2b":
		return Blake2bHasher, nil
	case "keccak", "keccak256":
		return KeccakHasher, nil
	default:
		return nil, errors.Errorf("unknown hasher %s", name)
	}
}

// NewMerkleTree creates a merkle tree given the leaves
func NewMerkleTree(hasher Hasher, leaves []hash.Hash256) *Merkle {
	mk := &Merkle{hasher: hasher}
	if len(leaves) == 0 {
		return mk
	}
	layer := make([]hash.Hash256, len(leaves))
	for i := range leaves {
		layer[i] = hasher(leaves[i][:])
	}
	mk.layers = append(mk.layers, layer)
	for len(layer) > 1 {
		next := make([]hash.Hash256, 0, (len(layer)+1)>>1)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				break
			}
			next = append(next, hashNode(hasher, layer[i], layer[i+1]))
		}
		mk.layers = append(mk.layers, next)
		layer = next
	}
	return mk
}

// HashTree returns the root hash of the merkle tree, the zero hash if the tree has no leaves
func (mk *Merkle) HashTree() hash.Hash256 {
	if len(mk.layers) == 0 {
		return hash.ZeroHash256
	}
	return mk.layers[len(mk.layers)-1][0]
}

// Size returns the number of leaves
func (mk *Merkle) Size() int {
	if len(mk.layers) == 0 {
		return 0
	}
	return len(mk.layers[0])
}

// Proof builds the inclusion proof of the index-th leaf
func (mk *Merkle) Proof(index uint32, leaf hash.Hash256) (*MerkleProof, error) {
	if int(index) >= mk.Size() {
		return nil, errors.Wrapf(ErrLeafIndexOutOfRange, "index %d, size %d", index, mk.Size())
	}
	var (
		path = make([]hash.Hash256, 0, len(mk.layers))
		idx  = int(index)
	)
	for _, layer := range mk.layers[:len(mk.layers)-1] {
		if sibling := idx ^ 1; sibling < len(layer) {
			path = append(path, layer[sibling])
		}
		idx >>= 1
	}
	return &MerkleProof{
		Root:           mk.HashTree(),
		Proof:          path,
		NumberOfLeaves: uint32(mk.Size()),
		LeafIndex:      index,
		Leaf:           leaf,
	}, nil
}

// MerkleRoot computes the merkle root of the leaves
func MerkleRoot(hasher Hasher, leaves []hash.Hash256) hash.Hash256 {
	return NewMerkleTree(hasher, leaves).HashTree()
}

// MerkleProofOf builds the inclusion proof of leaves[index]
func MerkleProofOf(hasher Hasher, leaves []hash.Hash256, index uint32) (*MerkleProof, error) {
	if int(index) >= len(leaves) {
		return nil, errors.Wrapf(ErrLeafIndexOutOfRange, "index %d, size %d", index, len(leaves))
	}
	return NewMerkleTree(hasher, leaves).Proof(index, leaves[index])
}

// VerifyMerkleProof checks that leaf is the leafIndex-th of numberOfLeaves leaves committed to by root
func VerifyMerkleProof(
	hasher Hasher,
	root hash.Hash256,
	proof []hash.Hash256,
	numberOfLeaves uint32,
	leafIndex uint32,
	leaf hash.Hash256,
) bool {
	if leafIndex >= numberOfLeaves {
		return false
	}
	var (
		computed = hasher(leaf[:])
		idx      = leafIndex
		width    = numberOfLeaves
		used     = 0
	)
	for width > 1 {
		switch {
		case idx&1 == 1:
			if used == len(proof) {
				return false
			}
			computed = hashNode(hasher, proof[used], computed)
			used++
		case idx+1 < width:
			if used == len(proof) {
				return false
			}
			computed = hashNode(hasher, computed, proof[used])
			used++
		}
		idx >>= 1
		width = (width + 1) >> 1
	}
	return used == len(proof) && computed == root
}

// Verify checks the proof with the hasher
func (p *MerkleProof) Verify(hasher Hasher) bool {
	return VerifyMerkleProof(hasher, p.Root, p.Proof, p.NumberOfLeaves, p.LeafIndex, p.Leaf)
}

func hashNode(hasher Hasher, left, right hash.Hash256) hash.Hash256 {
	buf := make([]byte, 0, 64)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return hasher(buf)
}
