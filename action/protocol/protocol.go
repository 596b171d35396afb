// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package protocol

import (
	"github.com/iotexproject/iotex-aggregator/state"
)

type (
	// StateReader defines an interface to read states
	StateReader interface {
		// State loads the state stored under (namespace, key) into s, returning state.ErrStateNotExist if absent
		State(string, []byte, state.Deserializer) error
	}

	// StateManager defines the state DB interface the protocols mutate
	StateManager interface {
		StateReader
		// PutState stages the serialized state under (namespace, key)
		PutState(string, []byte, state.Serializer) error
		// DelState stages the deletion of (namespace, key)
		DelState(string, []byte) error
		// Snapshot marks the current staged changes
		Snapshot() int
		// Revert drops every change staged after the snapshot
		Revert(int) error
	}
)
