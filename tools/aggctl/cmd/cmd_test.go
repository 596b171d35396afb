// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotexproject/iotex-aggregator/test/identityset"
	"github.com/iotexproject/iotex-aggregator/testutil"
)

const _testConfig = `
db:
  dbType: boltdb
  dbPath: %s
ledger:
  baseFee: "0"
  byteFee: "0"
  gasPrice: "1"
  baseDeposit: "0"
  byteDeposit: "1"
aggregate:
  aggregationSize: 4
  maxPendingPublishQueueSize: 2
`

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAggctlRounds(t *testing.T) {
	r := require.New(t)

	dbPath, err := testutil.PathOfTempFile("aggctl.db")
	r.NoError(err)
	defer testutil.CleanupPath(t, dbPath)
	cfgPath, err := testutil.PathOfTempFile("aggctl.yaml")
	r.NoError(err)
	defer testutil.CleanupPath(t, cfgPath)
	r.NoError(os.WriteFile(cfgPath, []byte(fmt.Sprintf(_testConfig, dbPath)), 0600))

	var (
		owner     = identityset.Address(0).String()
		submitter = identityset.Address(1).String()
		publisher = identityset.Address(2).String()
		cfgFlag   = "--config=" + cfgPath
	)

	out, err := run(t, "config", cfgFlag)
	r.NoError(err)
	r.Contains(out, "aggregationSize: 4")
	r.Contains(out, "dbPath: "+dbPath)

	for _, addr := range []string{owner, submitter} {
		out, err := run(t, "fund", addr, "1000000", cfgFlag)
		r.NoError(err)
		r.Contains(out, addr)
	}

	out, err = run(t, "register", "--owner", owner, "--size", "4", "--queue", "2", cfgFlag)
	r.NoError(err)
	r.Contains(out, "status: Success")
	r.Contains(out, "height: 3")
	r.Contains(out, "domain: 0")
	r.Contains(out, "NewDomain")

	t.Run("oversized domain is rejected", func(t *testing.T) {
		out, err := run(t, "register", "--owner", owner, "--size", "5", "--queue", "2", cfgFlag)
		require.Error(t, err)
		require.Contains(t, out, "status: ErrInvalidDomainParams")
	})

	out, err = run(t, "submit", "--account", submitter, "--domain", "0", "--text", "a", "b", "c", "d", cfgFlag)
	r.NoError(err)
	r.Contains(out, "NewProof")
	r.Contains(out, "AggregationComplete")

	out, err = run(t, "domain", "0", cfgFlag)
	r.NoError(err)
	r.Contains(out, "state: Ready")
	r.Contains(out, "queue: 1/2")
	r.Contains(out, "2 (next)")

	// publishing a pending aggregation pays the reserves of its 4 statements to the publisher
	out, err = run(t, "publish", "--caller", publisher, "--proofs", "0", "1", cfgFlag)
	r.NoError(err)
	r.Contains(out, "status: Success")
	r.Contains(out, "statements: 4")
	r.Contains(out, "NewAggregationReceipt")
	r.Contains(out, "true")

	out, err = run(t, "balance", publisher, submitter, cfgFlag)
	r.NoError(err)
	r.Contains(out, "40000")
	r.Contains(out, "960000")

	out, err = run(t, "publish", "--caller", publisher, "0", "1", cfgFlag)
	r.Error(err)
	r.Contains(out, "status: ErrInvalidAggregationID")

	out, err = run(t, "hold", "--caller", submitter, "0", cfgFlag)
	r.Error(err)
	r.Contains(out, "status: ErrBadOrigin")

	out, err = run(t, "hold", "--caller", owner, "0", cfgFlag)
	r.NoError(err)
	r.Contains(out, "DomainStateChanged")

	out, err = run(t, "unregister", "--caller", owner, "0", cfgFlag)
	r.NoError(err)
	r.Contains(out, "status: Success")

	_, err = run(t, "domain", "0", cfgFlag)
	r.Error(err)

	// the storage deposit is refunded, the whole balance is free again
	out, err = run(t, "balance", owner, cfgFlag)
	r.NoError(err)
	r.Equal(2, strings.Count(out, "1000000"))
}
