// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package batch

import "fmt"

const (
	// Put indicate the type of write operation to be Put
	Put WriteType = iota
	// Delete indicate the type of write operation to be Delete
	Delete
)

type (
	// WriteType is the type of write
	WriteType uint8

	// WriteInfo is the struct to store Put/Delete operation info
	WriteInfo struct {
		writeType   WriteType
		namespace   string
		key         []byte
		value       []byte
		errorFormat string
		errorArgs   interface{}
	}
)

// NewWriteInfo creates a new write info, keeping its own copy of key and value
func NewWriteInfo(writeType WriteType, namespace string, key, value []byte, errorFormat string, errorArgs interface{}) *WriteInfo {
	wi := &WriteInfo{
		writeType:   writeType,
		namespace:   namespace,
		key:         make([]byte, len(key)),
		errorFormat: errorFormat,
		errorArgs:   errorArgs,
	}
	copy(wi.key, key)
	if value != nil {
		wi.value = make([]byte, len(value))
		copy(wi.value, value)
	}
	return wi
}

// Namespace returns the namespace of a write info
func (wi *WriteInfo) Namespace() string { return wi.namespace }

// WriteType returns the type of a write info
func (wi *WriteInfo) WriteType() WriteType { return wi.writeType }

// Key returns a copy of key
func (wi *WriteInfo) Key() []byte {
	key := make([]byte, len(wi.key))
	copy(key, wi.key)
	return key
}

// Value returns a copy of value
func (wi *WriteInfo) Value() []byte {
	value := make([]byte, len(wi.value))
	copy(value, wi.value)
	return value
}

// Error returns the error string of a write info
func (wi *WriteInfo) Error() string {
	if wi.errorFormat == "" {
		return ""
	}
	if args, ok := wi.errorArgs.([]interface{}); ok {
		return fmt.Sprintf(wi.errorFormat, args...)
	}
	return fmt.Sprintf(wi.errorFormat, wi.errorArgs)
}
