// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/iotexproject/go-pkgs/byteutil"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/action/protocol/aggregate"
	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/config"
	"github.com/iotexproject/iotex-aggregator/db"
	"github.com/iotexproject/iotex-aggregator/pkg/lifecycle"
	"github.com/iotexproject/iotex-aggregator/pkg/log"
	"github.com/iotexproject/iotex-aggregator/state/factory"
)

const (
	_metaNamespace = "Meta"
	_managerName   = "manager"
)

var (
	_roundKey = []byte("round")

	_initLogOnce sync.Once
	_initLogErr  error
)

// engine runs one round of the aggregation protocol over the configured store
type engine struct {
	ctx      context.Context
	lc       *lifecycle.Lifecycle
	kv       db.KVStore
	ws       *factory.WorkingSet
	currency *ledger.Currency
	p        *aggregate.Protocol
	events   *aggregate.MemEventSink
}

func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.New(_configPaths)
	if err != nil {
		return nil, err
	}
	_initLogOnce.Do(func() {
		_initLogErr = log.InitLoggers(cfg.Log, cfg.SubLogs)
	})
	if _initLogErr != nil {
		return nil, errors.Wrap(_initLogErr, "failed to init loggers")
	}
	kv, err := db.CreateKVStore(cfg.DB)
	if err != nil {
		return nil, err
	}
	lc := &lifecycle.Lifecycle{}
	lc.Add(kv)
	if err := lc.OnStart(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to start db")
	}
	e, err := startRound(ctx, cfg, kv)
	if err != nil {
		if stopErr := lc.OnStop(ctx); stopErr != nil {
			log.L().Error("Failed to stop db", zap.Error(stopErr))
		}
		return nil, err
	}
	e.lc = lc
	return e, nil
}

func startRound(ctx context.Context, cfg config.Config, kv db.KVStore) (*engine, error) {
	height, err := lastRound(kv)
	if err != nil {
		return nil, err
	}
	height++
	currency := ledger.NewCurrency()
	ticketer, err := cfg.Ledger.Ticketer(currency)
	if err != nil {
		return nil, err
	}
	fee, err := cfg.Ledger.FeeEstimator()
	if err != nil {
		return nil, err
	}
	events := aggregate.NewMemEventSink()
	p, err := aggregate.NewProtocol(cfg.Aggregate, currency, ticketer, fee,
		aggregate.WithEventSink(aggregate.MultiEventSink{
			events,
			aggregate.NewLogEventSink(log.Logger("aggregate")),
		}))
	if err != nil {
		return nil, err
	}
	ctx = protocol.WithBlockCtx(ctx, protocol.BlockCtx{
		BlockHeight:    height,
		BlockTimeStamp: time.Now(),
	})
	p.BeginRound(ctx)
	return &engine{
		ctx:      ctx,
		kv:       kv,
		ws:       factory.NewWorkingSet(height, kv),
		currency: currency,
		p:        p,
		events:   events,
	}, nil
}

func lastRound(kv db.KVStore) (uint64, error) {
	v, err := kv.Get(_metaNamespace, _roundKey)
	switch errors.Cause(err) {
	case nil:
		if len(v) != 8 {
			return 0, errors.Errorf("invalid round record of %d bytes", len(v))
		}
		return byteutil.BytesToUint64BigEndian(v), nil
	case db.ErrNotExist:
		return 0, nil
	default:
		return 0, errors.Wrap(err, "failed to read round")
	}
}

// roundRecord is the height of the last committed round
type roundRecord uint64

func (r roundRecord) Serialize() ([]byte, error) {
	return byteutil.Uint64ToBytesBigEndian(uint64(r)), nil
}

// commit persists the state changes of the round together with its height
func (e *engine) commit() error {
	if err := e.ws.PutState(_metaNamespace, _roundKey, roundRecord(e.ws.Height())); err != nil {
		return err
	}
	return e.ws.Commit()
}

// discard drops the changes of the round, aggregations it published included
func (e *engine) discard() {
	e.ws.Discard()
	e.p.BeginRound(e.ctx)
}

func (e *engine) close() error {
	return e.lc.OnStop(e.ctx)
}

// runRound opens the engine, runs op and commits the round. Events emitted by op are printed to w.
func runRound(ctx context.Context, w io.Writer, op func(e *engine) error) (err error) {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := e.close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed to stop db")
		}
	}()
	if err := op(e); err != nil {
		e.discard()
		return err
	}
	e.ws.ResetSnapshots()
	if err := e.commit(); err != nil {
		return errors.Wrap(err, "failed to commit round")
	}
	printEvents(w, e.events.Events())
	return nil
}

// view opens the engine and runs op without committing anything
func view(ctx context.Context, op func(e *engine) error) (err error) {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		e.discard()
		if closeErr := e.close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed to stop db")
		}
	}()
	return op(e)
}

func printReceipt(w io.Writer, r *aggregate.Receipt) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "status: %s, height: %d, gas: %d\n", r.Status, r.BlockHeight, r.GasConsumed)
}

func printEvents(w io.Writer, events []aggregate.Event) {
	if len(events) == 0 {
		return
	}
	tb := table.New("Event", "Fields").WithWriter(w)
	for _, e := range events {
		tb.AddRow(e.Name(), formatFields(e.Fields()))
	}
	tb.Print()
}

func formatFields(fields []zap.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f.AddTo(enc)
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key, enc.Fields[f.Key]))
	}
	return strings.Join(parts, " ")
}

func parseAddress(s string) (address.Address, error) {
	addr, err := address.FromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %s", s)
	}
	return addr, nil
}

func parseOwner(s string) (aggregate.Owner, error) {
	if s == _managerName {
		return aggregate.ManagerOwner(), nil
	}
	addr, err := parseAddress(s)
	if err != nil {
		return aggregate.Owner{}, err
	}
	return aggregate.AccountOwner(addr), nil
}

func parseStatement(s string) (hash.Hash256, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return hash.ZeroHash256, errors.Wrapf(err, "invalid statement %s", s)
	}
	if len(b) != len(hash.ZeroHash256) {
		return hash.ZeroHash256, errors.Errorf("statement %s is not 32 bytes", s)
	}
	return hash.BytesToHash256(b), nil
}
