// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/spf13/cobra"
)

var (
	_account  string
	_domainID uint32
	_hashText bool
)

// Submit hands verified statements to the batcher
var Submit = &cobra.Command{
	Use:   "submit STATEMENT...",
	Short: "Aggregate verified statements of an account",
	Long:  "Aggregate verified statements of an account. A statement is a 32-byte hex string, " +
		"or any text hashed with blake2b when --text is set. Without --domain the statements are ignored.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := parseAddress(_account)
		if err != nil {
			return err
		}
		statements := make([]hash.Hash256, 0, len(args))
		for _, arg := range args {
			if _hashText {
				statements = append(statements, hash.Hash256b([]byte(arg)))
				continue
			}
			s, err := parseStatement(arg)
			if err != nil {
				return err
			}
			statements = append(statements, s)
		}
		var domainID *uint32
		if cmd.Flags().Changed("domain") {
			id := _domainID
			domainID = &id
		}
		return runRound(cmd.Context(), cmd.OutOrStdout(), func(e *engine) error {
			for _, s := range statements {
				e.p.OnStatementVerified(e.ctx, e.ws, account, domainID, s)
				e.ws.ResetSnapshots()
			}
			return nil
		})
	},
}

func init() {
	Submit.Flags().StringVar(&_account, "account", "", "account which submitted the statements")
	Submit.Flags().Uint32Var(&_domainID, "domain", 0, "domain to aggregate the statements in")
	Submit.Flags().BoolVar(&_hashText, "text", false, "hash the arguments instead of decoding them")
	_ = Submit.MarkFlagRequired("account")
}
