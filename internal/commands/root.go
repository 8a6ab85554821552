package commands

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute builds the command tree and runs it.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "sealfile [flags] command [flags]",
		Short: "Passphrase-based file encryption utility",
		Long: `A passphrase-based file encryption utility. Files are encrypted with
AES-256 using a per-file key derived from the passphrase and a random
nonce stored in the file itself, so only the passphrase is needed to
decrypt. The format carries no authentication tag: a wrong passphrase
surfaces as a malformed file, not as an explicit rejection.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	viper.SetEnvPrefix("SEALFILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.PersistentFlags().StringP("passphrase", "p", "", "Passphrase (prefer the prompt or a passphrase file)")
	root.PersistentFlags().StringP("passphrase-file", "f", "", "Path to a file holding the passphrase")
	root.PersistentFlags().IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().Bool("stats", false, "Print a processing summary to stderr")
	root.PersistentFlags().Bool("dry-run", false, "Preview what would be processed without writing anything")
	root.PersistentFlags().Bool("delete", false, "Delete the original file after successful encryption/decryption")
	root.PersistentFlags().Bool("progress", false, "Show a progress bar per file")
	root.PersistentFlags().Bool("preserve-timestamps", false, "Copy the input's modification time to the output")

	root.PersistentFlags().StringP("output", "o", "", "Output path, valid for a single input file only")
	root.PersistentFlags().String("encrypt-ext", ".enc", "Suffix to append to encrypted files")
	root.PersistentFlags().String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")

	root.PersistentFlags().StringSlice("include", nil, "Glob patterns of files to include when walking directories")
	root.PersistentFlags().StringSlice("exclude", nil, "Glob patterns of files to exclude")
	root.PersistentFlags().String("include-from", "", "JSONC file with include patterns")
	root.PersistentFlags().String("exclude-from", "", "JSONC file with exclude patterns")

	root.AddCommand(NewEncryptCommand(), NewDecryptCommand(), NewInspectCommand())

	return root
}
