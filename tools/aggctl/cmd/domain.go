// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/iotexproject/iotex-aggregator/action/protocol"
	"github.com/iotexproject/iotex-aggregator/action/protocol/aggregate"
	"github.com/iotexproject/iotex-aggregator/action/protocol/ledger"
)

var (
	_owner     string
	_caller    string
	_size      uint32
	_queueSize uint32
)

// Register creates a domain
var Register = &cobra.Command{
	Use:   "register",
	Short: "Register a domain owned by an account or by the manager",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := parseOwner(_owner)
		if err != nil {
			return err
		}
		return runRound(cmd.Context(), cmd.OutOrStdout(), func(e *engine) error {
			id, receipt, err := e.p.Register(e.ctx, e.ws, owner, _size, _queueSize)
			printReceipt(cmd.OutOrStdout(), receipt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "domain: %d\n", id)
			return nil
		})
	},
}

// Hold stops a domain from admitting statements
var Hold = &cobra.Command{
	Use:   "hold DOMAIN",
	Short: "Put a domain on hold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeDomain(cmd, args[0], (*aggregate.Protocol).Hold)
	},
}

// Unregister removes a removable domain and refunds its storage deposit
var Unregister = &cobra.Command{
	Use:   "unregister DOMAIN",
	Short: "Remove a domain once all its aggregations are published",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeDomain(cmd, args[0], (*aggregate.Protocol).Unregister)
	},
}

// DomainInfo prints a domain
var DomainInfo = &cobra.Command{
	Use:   "domain DOMAIN",
	Short: "Print the state and pending aggregations of a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseDomainID(args[0])
		if err != nil {
			return err
		}
		return view(cmd.Context(), func(e *engine) error {
			d, err := e.p.Domain(e.ws, id)
			if err != nil {
				return err
			}
			printDomain(cmd, d)
			return nil
		})
	},
}

type domainOp func(*aggregate.Protocol, context.Context, protocol.StateManager, aggregate.Owner, uint32) (*aggregate.Receipt, error)

func changeDomain(cmd *cobra.Command, arg string, op domainOp) error {
	id, err := parseDomainID(arg)
	if err != nil {
		return err
	}
	caller, err := parseOwner(_caller)
	if err != nil {
		return err
	}
	return runRound(cmd.Context(), cmd.OutOrStdout(), func(e *engine) error {
		receipt, err := op(e.p, e.ctx, e.ws, caller, id)
		printReceipt(cmd.OutOrStdout(), receipt)
		return err
	})
}

func parseDomainID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid domain id %s", s)
	}
	return uint32(id), nil
}

func printDomain(cmd *cobra.Command, d *aggregate.Domain) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "domain: %d\nowner: %s\nstate: %s\nsize: %d\nqueue: %d/%d\n",
		d.ID, d.Owner, d.State, d.MaxAggregationSize, len(d.ShouldPublish), d.PublishQueueSize)
	if d.Ticket != nil {
		fmt.Fprintf(w, "deposit: %s\n", ledger.FormatAmount(d.Ticket.Amount))
	}
	tb := table.New("Aggregation", "Statements", "Size", "Reserve").WithWriter(w)
	for _, id := range d.PendingIDs() {
		a := d.ShouldPublish[id]
		tb.AddRow(a.ID, len(a.Statements), a.Size, ledger.FormatAmount(a.TotalReserve()))
	}
	tb.AddRow(fmt.Sprintf("%d (next)", d.Next.ID), len(d.Next.Statements), d.Next.Size, ledger.FormatAmount(d.Next.TotalReserve()))
	tb.Print()
}

func init() {
	Register.Flags().StringVar(&_owner, "owner", _managerName, "owner address, or \"manager\"")
	Register.Flags().Uint32Var(&_size, "size", 0, "maximum number of statements of an aggregation")
	Register.Flags().Uint32Var(&_queueSize, "queue", 0, "maximum number of aggregations waiting to be published")
	for _, c := range []*cobra.Command{Hold, Unregister} {
		c.Flags().StringVar(&_caller, "caller", _managerName, "caller address, or \"manager\"")
	}
}
