// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are written in protobuf wire format. Every field is always emitted, with a fixed width where the
// record size must be predictable, so the encoding of a record is canonical.

// AppendBytesField appends a length-delimited field
func AppendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// AppendFixed32Field appends a fixed32 field
func AppendFixed32Field(b []byte, num protowire.Number, v uint32) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, v)
}

// AppendFixed64Field appends a fixed64 field
func AppendFixed64Field(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

// FieldHandler consumes the value of one field and returns the number of bytes consumed
type FieldHandler func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// ConsumeFields walks every field of a message. Fields the handler does not know should be skipped with SkipField.
func ConsumeFields(b []byte, handle FieldHandler) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(protowire.ParseError(n), "failed to consume tag")
		}
		b = b[n:]
		m, err := handle(num, typ, b)
		if err != nil {
			return errors.Wrapf(err, "failed to consume field %d", num)
		}
		b = b[m:]
	}
	return nil
}

// SkipField consumes the value of an unknown field
func SkipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

// ConsumeBytes consumes a length-delimited value
func ConsumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errors.Errorf("unexpected wire type %d", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

// ConsumeFixedBytes consumes a length-delimited value of exactly size bytes
func ConsumeFixedBytes(typ protowire.Type, b []byte, size int) ([]byte, int, error) {
	v, n, err := ConsumeBytes(typ, b)
	if err != nil {
		return nil, 0, err
	}
	if len(v) != size {
		return nil, 0, errors.Errorf("unexpected length %d, expecting %d", len(v), size)
	}
	return v, n, nil
}

// ConsumeFixed32 consumes a fixed32 value
func ConsumeFixed32(typ protowire.Type, b []byte) (uint32, int, error) {
	if typ != protowire.Fixed32Type {
		return 0, 0, errors.Errorf("unexpected wire type %d", typ)
	}
	v, n := protowire.ConsumeFixed32(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

// ConsumeFixed64 consumes a fixed64 value
func ConsumeFixed64(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.Fixed64Type {
		return 0, 0, errors.Errorf("unexpected wire type %d", typ)
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}
