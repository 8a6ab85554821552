package commands

import (
	"github.com/spf13/cobra"

	"github.com/ovesen/sealfile/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
// Without arguments the current directory is walked, picking up files with
// the encrypted suffix.
func NewDecryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "decrypt [flags] [paths...]",
		Aliases: []string{"dec"},
		Short:   "Decrypt files",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}

			cfg.Decrypt = true

			if err := cfg.Validate(); err != nil {
				return err
			}

			return logic.Run(cfg)
		},
	}
}
