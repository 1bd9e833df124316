// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"emperror.dev/emperror"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnustavo/ocsclient/model"
	"github.com/gnustavo/ocsclient/ocs"
	"github.com/gnustavo/ocsclient/prune"
)

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type dumpIn struct {
	fx.In
	Config Config
	Logger *zap.Logger
	Client *ocs.Client
}

func run(in dumpIn) error {
	return dump(context.Background(), in.Config, in.Logger, in.Client)
}

func dump(ctx context.Context, cfg Config, logger *zap.Logger, client *ocs.Client) error {
	fields, err := cfg.fieldTable()
	if err != nil {
		return err
	}
	pruner := prune.New(fields, prune.WithLogger(logger))

	if err := os.MkdirAll(cfg.Dump.Directory, 0o755); err != nil {
		return emperror.Wrap(err, "failed creating the dump directory")
	}

	it := client.Computers(ocs.Params{})
	count := 0
	for {
		computer, err := it.Next(ctx)
		if errors.Is(err, ocs.ErrEndOfComputers) {
			break
		}
		if err != nil {
			return emperror.Wrap(err, "failed fetching computers")
		}
		count++

		if cfg.Dump.Prune {
			pruner.Prune(computer)
		}

		path := filepath.Join(cfg.Dump.Directory, snapshotName(computer, count)+".yaml")
		data, err := yaml.Marshal(computer)
		if err != nil {
			return emperror.WrapWith(err, "failed marshalling a computer record", "file", path)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return emperror.WrapWith(err, "failed writing a snapshot", "file", path)
		}
		logger.Info("wrote snapshot", zap.String("file", path))
	}

	logger.Info("dump complete", zap.Int("computers", count))
	return nil
}

// snapshotName picks a stable file name for a record: its TAG when the
// deployment assigns one, the hardware name otherwise, and a sequence number
// as the last resort.
func snapshotName(c model.Computer, seq int) string {
	name := c.Tag()
	if name == "" {
		if hw := c.Hardware(); hw != nil {
			name, _ = hw["NAME"].(string)
		}
	}
	if name == "" {
		name = fmt.Sprintf("computer-%04d", seq)
	}
	return unsafeNameRe.ReplaceAllString(name, "-")
}
