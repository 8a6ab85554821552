// Package logic implements the core business logic for the encryption/decryption.
package logic

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ovesen/sealfile/internal/config"
	"github.com/ovesen/sealfile/internal/encryption"
	"github.com/ovesen/sealfile/internal/filter"
	"github.com/ovesen/sealfile/internal/terminal"
)

// Run is the main logic of the application.
func Run(cfg *config.Config) error {
	scanned, excluded, start, done, err := preamble(cfg)
	if done || err != nil {
		return err
	}

	passphrase, err := resolvePassphrase(cfg)
	if err != nil {
		return fmt.Errorf("resolving passphrase: %w", err)
	}

	proc := encryption.NewProcessor(cfg, passphrase)

	processed, errored, totalSize, err := proc.ProcessFiles()

	if cfg.Stats {
		printStats(scanned, excluded, processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// RunInspect prints the container layout and nonce of each file without
// requiring a passphrase.
func RunInspect(cfg *config.Config) error {
	var failures int

	for _, file := range cfg.Files {
		if err := inspectFile(file); err != nil {
			failures++

			fmt.Fprintf(os.Stderr, "Error inspecting %q: %v\n", file, err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d file(s) could not be inspected", failures)
	}

	return nil
}

func inspectFile(filename string) error {
	file, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	info, err := encryption.Inspect(file)
	if err != nil {
		return err
	}

	fmt.Printf("%s:\n", filename)
	fmt.Printf("  Size:   %s (%d bytes)\n", humanize.IBytes(uint64(max(0, info.Size))), info.Size)
	fmt.Printf("  Chunks: %d\n", info.Chunks)
	fmt.Printf("  Nonce:  %s\n", hex.EncodeToString(info.Nonce[:]))

	if !info.Aligned {
		fmt.Printf("  Warn:   data region is not chunk-aligned\n")
	}

	return nil
}

// preamble resolves files and handles dry run. Returns done=true if dry run was executed.
func preamble(cfg *config.Config) (int, int, time.Time, bool, error) {
	start := time.Now()

	scanned, err := resolveFiles(cfg)
	if err != nil {
		return 0, 0, start, false, fmt.Errorf("resolving files: %w", err)
	}

	excluded := scanned - len(cfg.Files)

	if cfg.Dry {
		return scanned, excluded, start, true, dryRun(cfg, scanned, excluded, start)
	}

	return scanned, excluded, start, false, nil
}

// resolveFiles normalizes positional args, expands directories, and applies
// include/exclude filtering. Returns the total number of files scanned
// before filtering.
func resolveFiles(cfg *config.Config) (int, error) {
	includes := append([]string{}, cfg.Include...)
	excludes := append([]string{}, cfg.Exclude...)

	if cfg.IncludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.IncludeFrom)
		if err != nil {
			return 0, fmt.Errorf("loading include patterns: %w", err)
		}

		includes = append(includes, patterns...)
	}

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return 0, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	hasIncludes := len(cfg.Include) > 0 || cfg.IncludeFrom != ""

	if cfg.Decrypt && !hasIncludes && cfg.EncryptSuffix != "" {
		includes = append(includes, "*"+cfg.EncryptSuffix)
		hasIncludes = true
	}

	files, scanned, err := filter.Resolve(cfg.Files, includes, excludes, hasIncludes)
	if err != nil {
		return scanned, fmt.Errorf("filtering files: %w", err)
	}

	cfg.Files = files

	return scanned, nil
}

// resolvePassphrase turns the configured passphrase source into the byte
// sequence handed to the codec. Interactive prompting is the fallback, with
// double entry before encryption.
func resolvePassphrase(cfg *config.Config) ([]byte, error) {
	switch {
	case cfg.Passphrase != "":
		return []byte(cfg.Passphrase), nil

	case cfg.PassphraseFile != "":
		data, err := os.ReadFile(cfg.PassphraseFile)
		if err != nil {
			return nil, fmt.Errorf("reading passphrase file: %w", err)
		}

		return []byte(strings.TrimRight(string(data), "\r\n")), nil

	case cfg.Decrypt:
		return terminal.ReadPassphrase("Passphrase: ")

	default:
		return terminal.ReadPassphraseConfirmed("Passphrase: ", "Confirm passphrase: ")
	}
}

// dryRun previews what would be processed without actually encrypting/decrypting.
//
//nolint:unparam // signature kept for consistency with Run callers
func dryRun(cfg *config.Config, scanned, excluded int, start time.Time) error {
	var totalSize int64

	processed := len(cfg.Files)

	for _, file := range cfg.Files {
		if !cfg.Quiet {
			fmt.Printf("Processed %q -> %q\n", file, outputPath(file, cfg)) //nolint:forbidigo
		}

		if cfg.Stats {
			if info, err := os.Stat(file); err == nil {
				if cfg.Decrypt {
					totalSize += encryption.MaxDecryptedSize(info.Size())
				} else {
					totalSize += encryption.EncryptedSize(info.Size())
				}
			}
		}
	}

	if cfg.Stats {
		printStats(scanned, excluded, processed, 0, totalSize, time.Since(start))
	}

	return nil
}

func outputPath(filename string, cfg *config.Config) string {
	if cfg.Output != "" {
		return cfg.Output
	}

	ext := cfg.EncryptSuffix

	if cfg.Decrypt {
		filename = strings.TrimSuffix(filename, cfg.EncryptSuffix)
		ext = cfg.DecryptSuffix
	}

	return filepath.Join(filepath.Dir(filename), filepath.Base(filename)+ext)
}

func printStats(scanned, excluded, processed, errored int, totalSize int64, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", processed)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", errored)
	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(uint64(max(0, totalSize))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
