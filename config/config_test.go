// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-aggregator/action/protocol/aggregate"
	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/db"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	r := require.New(t)

	cfg, err := New(nil)
	r.NoError(err)
	r.Equal(Default.Aggregate, cfg.Aggregate)
	r.Equal(Default.Ledger, cfg.Ledger)
	r.Equal(Default.DB, cfg.DB)
}

func TestNewConfigWithWrongConfigPath(t *testing.T) {
	r := require.New(t)

	_, err := New([]string{"wrong_path"})
	r.Error(err)
}

func TestNewConfigWithOverride(t *testing.T) {
	r := require.New(t)

	t.Setenv("AGGREGATE_DB_PATH", "/tmp/override.db")
	path := writeConfig(t, `
aggregate:
    aggregationSize: 32
    maxPendingPublishQueueSize: 16
    hasher: keccak
    tip:
        kind: percent
        percent: 10
ledger:
    gasPrice: "1"
db:
    dbType: pebbledb
    dbPath: ${AGGREGATE_DB_PATH}
`)
	cfg, err := New([]string{path})
	r.NoError(err)
	r.EqualValues(32, cfg.Aggregate.AggregationSize)
	r.EqualValues(16, cfg.Aggregate.MaxPendingPublishQueueSize)
	r.Equal("keccak", cfg.Aggregate.Hasher)
	r.Equal(aggregate.TipPercent, cfg.Aggregate.Tip.Kind)
	r.EqualValues(10, cfg.Aggregate.Tip.Percent)
	r.Equal("1", cfg.Ledger.GasPrice)
	// untouched values keep their default
	r.Equal(Default.Ledger.ByteDeposit, cfg.Ledger.ByteDeposit)
	r.Equal(db.DBPebble, cfg.DB.DBType)
	r.Equal("/tmp/override.db", cfg.DB.DbPath)
	r.Equal(Default.DB.NumRetries, cfg.DB.NumRetries)

	fee, err := cfg.Ledger.FeeEstimator()
	r.NoError(err)
	r.Equal(uint256.NewInt(1), fee.GasPrice)
	ticketer, err := cfg.Ledger.Ticketer(ledger.NewCurrency())
	r.NoError(err)
	r.NotNil(ticketer)
}

func TestValidates(t *testing.T) {
	r := require.New(t)

	for _, v := range []struct {
		name   string
		modify func(*Config)
	}{
		{"zero aggregation size", func(cfg *Config) { cfg.Aggregate.AggregationSize = 0 }},
		{"zero queue size", func(cfg *Config) { cfg.Aggregate.MaxPendingPublishQueueSize = 0 }},
		{"unknown hasher", func(cfg *Config) { cfg.Aggregate.Hasher = "md5" }},
		{"unknown tip", func(cfg *Config) { cfg.Aggregate.Tip.Kind = "bribe" }},
		{"bad fixed tip", func(cfg *Config) { cfg.Aggregate.Tip = aggregate.TipConfig{Kind: aggregate.TipFixed, Amount: "-3"} }},
		{"bad gas price", func(cfg *Config) { cfg.Ledger.GasPrice = "1.5" }},
		{"bad deposit", func(cfg *Config) { cfg.Ledger.ByteDeposit = "x" }},
		{"unknown db", func(cfg *Config) { cfg.DB.DBType = "leveldb" }},
		{"empty db path", func(cfg *Config) { cfg.DB.DbPath = "" }},
	} {
		t.Run(v.name, func(t *testing.T) {
			cfg := Default
			v.modify(&cfg)
			var err error
			for _, validate := range Validates {
				if err = validate(cfg); err != nil {
					break
				}
			}
			r.Equal(ErrInvalidCfg, errors.Cause(err))
		})
	}

	// memory store needs no path
	cfg := Default
	cfg.DB = db.Config{DBType: db.DBMemory}
	r.NoError(ValidateDB(cfg))
	r.NoError(DoNotValidate(Config{}))
}
