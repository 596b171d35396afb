// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/iotexproject/iotex-aggregator/action/protocol/aggregate"
	"github.com/iotexproject/iotex-aggregator/config"
	"github.com/iotexproject/iotex-aggregator/db"
)

// ConfigCmd prints the effective config
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective config of the engine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(_configPaths)
		if err != nil {
			return err
		}
		// loggers are left out, zap encoders cannot be marshaled
		out, err := yaml.Marshal(&struct {
			Aggregate aggregate.Config `yaml:"aggregate"`
			Ledger    config.Ledger    `yaml:"ledger"`
			DB        db.Config        `yaml:"db"`
		}{
			Aggregate: cfg.Aggregate,
			Ledger:    cfg.Ledger,
			DB:        cfg.DB,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}
