// Package config holds the runtime configuration assembled from flags and
// environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config carries all settings for a single invocation.
type Config struct {
	// Passphrase given directly on the command line or via environment.
	Passphrase string `mapstructure:"passphrase"`

	// PassphraseFile is a path to a file holding the passphrase.
	PassphraseFile string `mapstructure:"passphrase-file"`

	// Output is an explicit output path, valid only for a single input file.
	Output string `mapstructure:"output"`

	// Parallel is the number of files processed concurrently.
	Parallel int `mapstructure:"parallel" validate:"min=1"`

	EncryptSuffix string `mapstructure:"encrypt-ext"`
	DecryptSuffix string `mapstructure:"decrypt-ext"`

	// Include and Exclude are glob patterns applied to resolved files.
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	IncludeFrom string   `mapstructure:"include-from"`
	ExcludeFrom string   `mapstructure:"exclude-from"`

	Quiet              bool `mapstructure:"quiet"`
	Stats              bool `mapstructure:"stats"`
	Dry                bool `mapstructure:"dry-run"`
	Delete             bool `mapstructure:"delete"`
	Progress           bool `mapstructure:"progress"`
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`

	// Decrypt selects the direction; set by the subcommand, not a flag.
	Decrypt bool `mapstructure:"-"`

	// Files are the resolved positional arguments.
	Files []string `mapstructure:"-" validate:"min=1"`
}

// Validate checks the configuration against the struct tags plus the
// cross-field rules that tags cannot express.
func (c Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	if c.Passphrase != "" && c.PassphraseFile != "" {
		return errors.New("passphrase and passphrase-file are mutually exclusive")
	}

	if c.Output != "" && len(c.Files) != 1 {
		return errors.New("output can only be used with a single input file")
	}

	return nil
}
