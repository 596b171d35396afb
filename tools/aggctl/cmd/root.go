// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"
)

var _configPaths []string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:          "aggctl",
	Short:        "aggctl drives the statement aggregation engine, one round per invocation",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringSliceVar(&_configPaths, "config", nil, "config files, later ones override earlier ones")

	RootCmd.AddCommand(Fund)
	RootCmd.AddCommand(Balance)
	RootCmd.AddCommand(Register)
	RootCmd.AddCommand(Hold)
	RootCmd.AddCommand(Unregister)
	RootCmd.AddCommand(Submit)
	RootCmd.AddCommand(Publish)
	RootCmd.AddCommand(DomainInfo)
	RootCmd.AddCommand(ConfigCmd)
}
