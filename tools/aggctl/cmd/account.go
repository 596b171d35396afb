// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"github.com/iotexproject/iotex-address/address"
	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
)

// Fund credits an account
var Fund = &cobra.Command{
	Use:   "fund ADDRESS AMOUNT",
	Short: "Credit an account with AMOUNT",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := ledger.ParseAmount(args[1])
		if err != nil {
			return err
		}
		return runRound(cmd.Context(), cmd.OutOrStdout(), func(e *engine) error {
			if err := e.currency.Deposit(e.ws, addr, amount); err != nil {
				return err
			}
			return printAccounts(cmd, e, []address.Address{addr})
		})
	},
}

// Balance prints the balance and holds of accounts
var Balance = &cobra.Command{
	Use:   "balance ADDRESS...",
	Short: "Print the balance and holds of accounts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs := make([]address.Address, 0, len(args))
		for _, arg := range args {
			addr, err := parseAddress(arg)
			if err != nil {
				return err
			}
			addrs = append(addrs, addr)
		}
		return view(cmd.Context(), func(e *engine) error {
			return printAccounts(cmd, e, addrs)
		})
	},
}

func printAccounts(cmd *cobra.Command, e *engine, addrs []address.Address) error {
	tb := table.New("Address", "Balance", "Free", ledger.HoldReasonAggregate.String(), ledger.HoldReasonStorageDeposit.String()).
		WithWriter(cmd.OutOrStdout())
	for _, addr := range addrs {
		acct, err := e.currency.Account(e.ws, addr)
		if err != nil {
			return errors.Wrapf(err, "failed to read account %s", addr.String())
		}
		tb.AddRow(
			addr.String(),
			ledger.FormatAmount(acct.Balance()),
			ledger.FormatAmount(acct.Free()),
			ledger.FormatAmount(acct.Held(ledger.HoldReasonAggregate)),
			ledger.FormatAmount(acct.Held(ledger.HoldReasonStorageDeposit)),
		)
	}
	tb.Print()
	return nil
}
