// Copyright (c) 2025 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLoggers(t *testing.T) {
	r := require.New(t)
	r.NotNil(L())
	r.NotNil(S())

	r.Error(InitLoggers(GlobalConfig{}, map[string]GlobalConfig{_globalLoggerName: {}}))

	zapCfg := zap.NewDevelopmentConfig()
	r.NoError(InitLoggers(GlobalConfig{Zap: &zapCfg}, map[string]GlobalConfig{"sub": {}}))
	r.NotNil(Logger("sub"))
	// unknown names fall back to the global logger
	r.NotNil(Logger("unknown"))
	r.Error(InitLoggers(GlobalConfig{Zap: &zapCfg}, map[string]GlobalConfig{"sub": {}}))
}
