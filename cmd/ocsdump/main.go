// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

// ocsdump pulls every computer out of an OCS Inventory server, optionally
// prunes each record down to its stable subset, and writes one YAML file per
// machine into a directory meant to live under version control.
package main

import (
	"fmt"
	"os"

	"github.com/xmidt-org/arrange"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/gnustavo/ocsclient/ocs"
)

const applicationName = "ocsdump"

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func newClient(cfg Config, logger *zap.Logger, measures ocs.Measures) (*ocs.Client, error) {
	return ocs.New(ocs.Config{
		Address:  cfg.OCS.Address,
		Username: cfg.OCS.Username,
		Password: cfg.OCS.Password,
		Logger:   logger,
		Measures: &measures,
	})
}

func main() {
	v, logger, err := setup(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		arrange.LoggerFunc(logger.Sugar().Infof),
		fx.Supply(logger, v),
		fx.Provide(
			func() touchstone.Config { return touchstone.Config{} },
			touchstone.New,
			touchstone.NewFactory,
			newConfig,
			newClient,
		),
		ocs.ProvideMetrics(),
		fx.Invoke(run),
	)

	if err := app.Err(); err != nil {
		logger.Error("dump failed", zap.Error(err))
		os.Exit(1)
	}
}
