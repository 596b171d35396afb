// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/iotexproject/iotex-aggregator/action/protocol/aggregate"
)

var (
	_publisher string
	_proofs    bool
)

// Publish closes an aggregation and commits it to a merkle root
var Publish = &cobra.Command{
	Use:   "publish DOMAIN AGGREGATION",
	Short: "Publish an aggregation of a domain and collect its statement reserves",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		domainID, err := parseDomainID(args[0])
		if err != nil {
			return err
		}
		aggregationID, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid aggregation id %s", args[1])
		}
		caller, err := parseAddress(_publisher)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		return runRound(cmd.Context(), w, func(e *engine) error {
			receipt, err := e.p.Publish(e.ctx, e.ws, caller, domainID, aggregationID)
			printReceipt(w, receipt)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "root: %s\nstatements: %d\n", hex.EncodeToString(receipt.Root[:]), receipt.StatementCount)
			if !_proofs {
				return nil
			}
			return printProofs(cmd, e.p, domainID, aggregationID)
		})
	},
}

// printProofs prints and verifies the inclusion proof of every statement of a published aggregation
func printProofs(cmd *cobra.Command, p *aggregate.Protocol, domainID uint32, aggregationID uint64) error {
	tb := table.New("Index", "Statement", "Siblings", "Verified").WithWriter(cmd.OutOrStdout())
	for _, pa := range p.Published() {
		if pa.DomainID != domainID || pa.Aggregation.ID != aggregationID {
			continue
		}
		for i, s := range pa.Aggregation.Statements {
			proof, err := p.StatementPath(domainID, aggregationID, s.Statement)
			if err != nil {
				return err
			}
			verified := proof.Root == pa.Root && proof.Verify(p.Hasher())
			if !verified {
				return errors.Errorf("proof of statement %x does not verify", s.Statement[:])
			}
			tb.AddRow(i, hex.EncodeToString(s.Statement[:]), len(proof.Proof), verified)
		}
	}
	tb.Print()
	return nil
}

func init() {
	Publish.Flags().StringVar(&_publisher, "caller", "", "publisher address collecting the reserves")
	Publish.Flags().BoolVar(&_proofs, "proofs", false, "print and verify the proof of every statement")
	_ = Publish.MarkFlagRequired("caller")
}
