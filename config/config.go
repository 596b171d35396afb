// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"

	"github.com/pkg/errors"
	uconfig "go.uber.org/config"

	"github.com/iotexproject/iotex-aggregator/action/protocol/aggregate"
	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
	"github.com/iotexproject/iotex-aggregator/crypto"
	"github.com/iotexproject/iotex-aggregator/db"
	"github.com/iotexproject/iotex-aggregator/pkg/log"
)

// IMPORTANT: to define a config, add a field or a new config type to the existing config types. In addition, provide
// the default value in Default var.

var (
	// Default is the default config
	Default = Config{
		Aggregate: aggregate.DefaultConfig,
		Ledger: Ledger{
			BaseFee:     "0",
			ByteFee:     "1000000000000",
			GasPrice:    "1000000000000",
			BaseDeposit: "1000000000000000000",
			ByteDeposit: "10000000000000",
		},
		DB:      db.DefaultConfig,
		SubLogs: make(map[string]log.GlobalConfig),
	}

	// ErrInvalidCfg indicates the invalid config value
	ErrInvalidCfg = errors.New("invalid config value")

	// Validates is the collection config validation functions
	Validates = []Validate{
		ValidateAggregate,
		ValidateLedger,
		ValidateDB,
	}
)

type (
	// Ledger is the config of the reference ledger. Amounts are decimal strings.
	Ledger struct {
		BaseFee     string `yaml:"baseFee"`
		ByteFee     string `yaml:"byteFee"`
		GasPrice    string `yaml:"gasPrice"`
		BaseDeposit string `yaml:"baseDeposit"`
		ByteDeposit string `yaml:"byteDeposit"`
	}

	// Config is the root config
	Config struct {
		Aggregate aggregate.Config            `yaml:"aggregate"`
		Ledger    Ledger                      `yaml:"ledger"`
		DB        db.Config                   `yaml:"db"`
		Log       log.GlobalConfig            `yaml:"log"`
		SubLogs   map[string]log.GlobalConfig `yaml:"subLogs"`
	}

	// Validate is the interface of validating the config
	Validate func(Config) error
)

// New creates a config instance. It first loads the default configs. If the config paths are not empty, it will read
// from the files and override the default configs. By default, we will validate the config using the collection of
// validation functions.
func New(configPaths []string, validates ...Validate) (Config, error) {
	opts := make([]uconfig.YAMLOption, 0)
	opts = append(opts, uconfig.Static(Default))
	opts = append(opts, uconfig.Expand(os.LookupEnv))
	for _, path := range configPaths {
		if path != "" {
			opts = append(opts, uconfig.File(path))
		}
	}
	yaml, err := uconfig.NewYAML(opts...)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to init config")
	}

	var cfg Config
	if err := yaml.Get(uconfig.Root).Populate(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal YAML config to struct")
	}

	// By default, the config needs to pass all the validation
	if len(validates) == 0 {
		validates = Validates
	}
	for _, validate := range validates {
		if err := validate(cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to validate config")
		}
	}
	return cfg, nil
}

// DoNotValidate validates the given config
func DoNotValidate(cfg Config) error { return nil }

// ValidateAggregate validates the aggregate protocol config
func ValidateAggregate(cfg Config) error {
	if cfg.Aggregate.AggregationSize == 0 {
		return errors.Wrap(ErrInvalidCfg, "aggregation size must be positive")
	}
	if cfg.Aggregate.MaxPendingPublishQueueSize == 0 {
		return errors.Wrap(ErrInvalidCfg, "max pending publish queue size must be positive")
	}
	if _, err := crypto.HasherByName(cfg.Aggregate.Hasher); err != nil {
		return errors.Wrap(ErrInvalidCfg, err.Error())
	}
	if _, err := aggregate.BuildTipPolicy(cfg.Aggregate.Tip); err != nil {
		return errors.Wrap(ErrInvalidCfg, err.Error())
	}
	return nil
}

// ValidateLedger validates the ledger amounts
func ValidateLedger(cfg Config) error {
	if _, err := cfg.Ledger.FeeEstimator(); err != nil {
		return errors.Wrap(ErrInvalidCfg, err.Error())
	}
	if _, err := cfg.Ledger.Ticketer(ledger.NewCurrency()); err != nil {
		return errors.Wrap(ErrInvalidCfg, err.Error())
	}
	return nil
}

// ValidateDB validates the db config
func ValidateDB(cfg Config) error {
	switch cfg.DB.DBType {
	case db.DBBolt, db.DBPebble:
		if cfg.DB.DbPath == "" {
			return errors.Wrap(ErrInvalidCfg, "db path is empty")
		}
	case db.DBMemory:
	default:
		return errors.Wrapf(ErrInvalidCfg, "unknown db type %s", cfg.DB.DBType)
	}
	return nil
}

// FeeEstimator creates the fee estimator
func (l Ledger) FeeEstimator() (*ledger.LinearFeeEstimator, error) {
	baseFee, err := ledger.ParseAmount(l.BaseFee)
	if err != nil {
		return nil, errors.Wrap(err, "base fee")
	}
	byteFee, err := ledger.ParseAmount(l.ByteFee)
	if err != nil {
		return nil, errors.Wrap(err, "byte fee")
	}
	gasPrice, err := ledger.ParseAmount(l.GasPrice)
	if err != nil {
		return nil, errors.Wrap(err, "gas price")
	}
	return &ledger.LinearFeeEstimator{
		BaseFee:  baseFee,
		ByteFee:  byteFee,
		GasPrice: gasPrice,
	}, nil
}

// Ticketer creates the storage deposit ticketer on top of the currency
func (l Ledger) Ticketer(currency *ledger.Currency) (*ledger.DepositTicketer, error) {
	baseDeposit, err := ledger.ParseAmount(l.BaseDeposit)
	if err != nil {
		return nil, errors.Wrap(err, "base deposit")
	}
	byteDeposit, err := ledger.ParseAmount(l.ByteDeposit)
	if err != nil {
		return nil, errors.Wrap(err, "byte deposit")
	}
	return ledger.NewDepositTicketer(currency, baseDeposit, byteDeposit), nil
}
