// Package commands provides the command-line interface for the sealfile tool.
//
// It implements commands for:
//   - encryption
//   - decryption
//   - container inspection
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ovesen/sealfile/internal/config"
)

// loadConfig binds the command's own and inherited flags into viper and
// unmarshals the merged flag/env state into a Config, with args as the
// positional files.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return nil, fmt.Errorf("binding inherited flags: %w", err)
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Files = args

	return &cfg, nil
}
