// SPDX-FileCopyrightText: 2025 The ocsclient authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/gnustavo/ocsclient/model"
)

// Config is the full ocsdump configuration, unmarshalled from the viper
// sources set up in setup.go.
type Config struct {
	OCS struct {
		// Address is the base URL of the OCS server.
		Address  string `mapstructure:"address" validate:"required,url"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"ocs"`

	Dump struct {
		// Directory receives one YAML snapshot file per machine.
		Directory string `mapstructure:"directory" validate:"required"`

		// Prune reduces each record to its diff-friendly subset before
		// writing. On by default through newConfig.
		Prune bool `mapstructure:"prune"`
	} `mapstructure:"dump"`

	// Fields maps OCS custom-field IDs to the names pruned records should
	// carry, i.e. "3": "Location".
	Fields map[string]string `mapstructure:"fields"`
}

func newConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("dump.prune", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// fieldTable converts the configured custom-field map to the table the
// pruner consumes. Non-numeric IDs are a configuration error.
func (cfg Config) fieldTable() (model.FieldTable, error) {
	table := model.FieldTable{}
	for id, name := range cfg.Fields {
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("invalid custom field ID %q: %w", id, err)
		}
		table[n] = name
	}
	return table, nil
}
