// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package aggregate

import (
	"fmt"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownDomainID is the error that the domain does not exist
	ErrUnknownDomainID = errors.New("unknown domain id")
	// ErrInvalidAggregationID is the error that the domain has no such aggregation to publish
	ErrInvalidAggregationID = errors.New("invalid aggregation id")
	// ErrInvalidDomainParams is the error that the aggregation size or publish queue size is out of bound
	ErrInvalidDomainParams = errors.New("invalid domain parameters")
	// ErrInvalidDomainState is the error that the domain state does not allow the operation
	ErrInvalidDomainState = errors.New("invalid domain state")
	// ErrBadOrigin is the error that the caller is neither the domain owner nor the manager
	ErrBadOrigin = errors.New("bad origin")
	// ErrDomainIDExhausted is the error that no domain id is left
	ErrDomainIDExhausted = errors.New("domain id exhausted")
	// ErrAggregationFull is the error that the aggregation has no free slot
	ErrAggregationFull = errors.New("aggregation is full")
	// ErrReceiptNotPublished is the error that the aggregation was not published in the current round
	ErrReceiptNotPublished = errors.New("receipt not published")
	// ErrStatementNotFound is the error that the statement is not part of the published aggregation
	ErrStatementNotFound = errors.New("statement not found")
)

// ReceiptStatus is the status code of an operation receipt
type ReceiptStatus uint64

// receipt status codes
const (
	ReceiptStatusFailure ReceiptStatus = iota
	ReceiptStatusSuccess
)

// receipt status codes of rejected operations
const (
	ReceiptStatusErrUnknown ReceiptStatus = iota + 100
	ReceiptStatusErrUnknownDomainID
	ReceiptStatusErrInvalidAggregationID
	ReceiptStatusErrInvalidDomainParams
	ReceiptStatusErrInvalidDomainState
	ReceiptStatusErrBadOrigin
)

func (s ReceiptStatus) String() string {
	switch s {
	case ReceiptStatusFailure:
		return "Failure"
	case ReceiptStatusSuccess:
		return "Success"
	case ReceiptStatusErrUnknown:
		return "ErrUnknown"
	case ReceiptStatusErrUnknownDomainID:
		return "ErrUnknownDomainID"
	case ReceiptStatusErrInvalidAggregationID:
		return "ErrInvalidAggregationID"
	case ReceiptStatusErrInvalidDomainParams:
		return "ErrInvalidDomainParams"
	case ReceiptStatusErrInvalidDomainState:
		return "ErrInvalidDomainState"
	case ReceiptStatusErrBadOrigin:
		return "ErrBadOrigin"
	default:
		return "Unknown"
	}
}

type (
	// ReceiptError indicates a rejected operation, the status goes into the receipt
	ReceiptError interface {
		Error() string
		ReceiptStatus() ReceiptStatus
	}

	handleError struct {
		err           error
		failureStatus ReceiptStatus
	}
)

func (h *handleError) Error() string {
	return h.err.Error()
}

func (h *handleError) Unwrap() error {
	return h.err
}

func (h *handleError) Cause() error {
	return errors.Cause(h.err)
}

func (h *handleError) ReceiptStatus() ReceiptStatus {
	return h.failureStatus
}

// toReceiptError attaches the receipt status matching err
func toReceiptError(err error) ReceiptError {
	if re, ok := err.(ReceiptError); ok {
		return re
	}
	status := ReceiptStatusErrUnknown
	switch errors.Cause(err) {
	case ErrUnknownDomainID:
		status = ReceiptStatusErrUnknownDomainID
	case ErrInvalidAggregationID:
		status = ReceiptStatusErrInvalidAggregationID
	case ErrInvalidDomainParams:
		status = ReceiptStatusErrInvalidDomainParams
	case ErrInvalidDomainState:
		status = ReceiptStatusErrInvalidDomainState
	case ErrBadOrigin:
		status = ReceiptStatusErrBadOrigin
	}
	return &handleError{
		err:           err,
		failureStatus: status,
	}
}

// PathNotFoundError is the error that a statement is not part of a published aggregation
type PathNotFoundError struct {
	DomainID      uint32
	AggregationID uint64
	Statement     hash.Hash256
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("statement %x not found in aggregation %d of domain %d", e.Statement, e.AggregationID, e.DomainID)
}

// Is matches ErrStatementNotFound
func (e *PathNotFoundError) Is(target error) bool {
	return target == ErrStatementNotFound
}

// CannotAggregateCause is the reason a verified statement was not aggregated
type CannotAggregateCause uint8

const (
	// CauseNoAccount means the statement has no submitter account
	CauseNoAccount CannotAggregateCause = iota
	// CauseDomainNotRegistered means the domain does not exist
	CauseDomainNotRegistered
	// CauseInvalidDomainState means the domain is not ready
	CauseInvalidDomainState
	// CauseDomainStorageFull means the domain cannot take another statement
	CauseDomainStorageFull
	// CauseInsufficientFunds means the submitter cannot cover the publishing reserve
	CauseInsufficientFunds
)

func (c CannotAggregateCause) String() string {
	switch c {
	case CauseNoAccount:
		return "NoAccount"
	case CauseDomainNotRegistered:
		return "DomainNotRegistered"
	case CauseInvalidDomainState:
		return "InvalidDomainState"
	case CauseDomainStorageFull:
		return "DomainStorageFull"
	case CauseInsufficientFunds:
		return "InsufficientFunds"
	default:
		return "Unknown"
	}
}
