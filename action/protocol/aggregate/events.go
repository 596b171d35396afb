// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"encoding/hex"
	"sync"

	"github.com/iotexproject/go-pkgs/hash"
	"go.uber.org/zap"
)

type (
	// Event is a notification of the aggregate protocol
	Event interface {
		Name() string
		Fields() []zap.Field
	}

	// EventSink receives events, it must not fail
	EventSink interface {
		Emit(Event)
	}

	// NewDomainEvent is emitted when a domain is registered
	NewDomainEvent struct {
		DomainID uint32
	}

	// DomainStateChangedEvent is emitted when the state of a domain changes
	DomainStateChangedEvent struct {
		DomainID uint32
		State    DomainState
	}

	// CannotAggregateEvent is emitted when a verified statement is not aggregated
	CannotAggregateEvent struct {
		Statement hash.Hash256
		Cause     CannotAggregateCause
	}

	// NewProofEvent is emitted when a statement is admitted into an aggregation
	NewProofEvent struct {
		Statement     hash.Hash256
		DomainID      uint32
		AggregationID uint64
	}

	// AggregationCompleteEvent is emitted when an aggregation is full and queued for publishing
	AggregationCompleteEvent struct {
		DomainID      uint32
		AggregationID uint64
	}

	// NewAggregationReceiptEvent is emitted when an aggregation is published
	NewAggregationReceiptEvent struct {
		DomainID      uint32
		AggregationID uint64
		Receipt       hash.Hash256
	}

	// DomainFullEvent is emitted when the publish queue of a domain is full
	DomainFullEvent struct {
		DomainID uint32
	}
)

func (e *NewDomainEvent) Name() string { return "NewDomain" }

func (e *NewDomainEvent) Fields() []zap.Field {
	return []zap.Field{zap.Uint32("domain", e.DomainID)}
}

func (e *DomainStateChangedEvent) Name() string { return "DomainStateChanged" }

func (e *DomainStateChangedEvent) Fields() []zap.Field {
	return []zap.Field{zap.Uint32("domain", e.DomainID), zap.Stringer("state", e.State)}
}

func (e *CannotAggregateEvent) Name() string { return "CannotAggregate" }

func (e *CannotAggregateEvent) Fields() []zap.Field {
	return []zap.Field{zap.String("statement", hex.EncodeToString(e.Statement[:])), zap.Stringer("cause", e.Cause)}
}

func (e *NewProofEvent) Name() string { return "NewProof" }

func (e *NewProofEvent) Fields() []zap.Field {
	return []zap.Field{
		zap.String("statement", hex.EncodeToString(e.Statement[:])),
		zap.Uint32("domain", e.DomainID),
		zap.Uint64("aggregation", e.AggregationID),
	}
}

func (e *AggregationCompleteEvent) Name() string { return "AggregationComplete" }

func (e *AggregationCompleteEvent) Fields() []zap.Field {
	return []zap.Field{zap.Uint32("domain", e.DomainID), zap.Uint64("aggregation", e.AggregationID)}
}

func (e *NewAggregationReceiptEvent) Name() string { return "NewAggregationReceipt" }

func (e *NewAggregationReceiptEvent) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint32("domain", e.DomainID),
		zap.Uint64("aggregation", e.AggregationID),
		zap.String("receipt", hex.EncodeToString(e.Receipt[:])),
	}
}

func (e *DomainFullEvent) Name() string { return "DomainFull" }

func (e *DomainFullEvent) Fields() []zap.Field {
	return []zap.Field{zap.Uint32("domain", e.DomainID)}
}

// MemEventSink keeps every event in memory
type MemEventSink struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemEventSink creates an in-memory sink
func NewMemEventSink() *MemEventSink {
	return &MemEventSink{}
}

// Emit records the event
func (s *MemEventSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns the recorded events
func (s *MemEventSink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

// Reset drops the recorded events
func (s *MemEventSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// LogEventSink writes every event to a logger
type LogEventSink struct {
	logger *zap.Logger
}

// NewLogEventSink creates a sink logging at info level
func NewLogEventSink(logger *zap.Logger) *LogEventSink {
	return &LogEventSink{logger: logger}
}

// Emit logs the event
func (s *LogEventSink) Emit(e Event) {
	s.logger.Info(e.Name(), e.Fields()...)
}

// MultiEventSink fans events out to several sinks
type MultiEventSink []EventSink

// Emit forwards the event to every sink
func (m MultiEventSink) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// eventBuffer holds the events of an operation until it succeeds
type eventBuffer []Event

func (b *eventBuffer) add(e Event) {
	*b = append(*b, e)
}

func (b eventBuffer) flush(sink EventSink) {
	if sink == nil {
		return
	}
	for _, e := range b {
		sink.Emit(e)
	}
}
