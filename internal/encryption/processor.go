package encryption

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ovesen/sealfile/internal/config"
	"github.com/ovesen/sealfile/internal/fileutil"
)

// Processor handles the encryption and decryption of files.
type Processor struct {
	// cfg contains runtime configuration options
	cfg *config.Config

	// codec performs the actual stream transformation
	codec *Codec

	// passphrase is the secret handed to the codec for every file
	passphrase []byte

	// results channels processing outcomes to the printer goroutine
	results chan Result
}

// NewProcessor creates a Processor for the given configuration and
// passphrase bytes.
func NewProcessor(cfg *config.Config, passphrase []byte) *Processor {
	return &Processor{
		cfg:        cfg,
		codec:      New(),
		passphrase: passphrase,
		results:    make(chan Result, len(cfg.Files)),
	}
}

// ProcessFiles concurrently processes all files specified in the
// configuration. Returns the number of successfully processed files, the
// number of errors, and the total output size.
func (p *Processor) ProcessFiles() (processed, errored int, totalSize int64, err error) {
	group := errgroup.Group{}
	group.SetLimit(p.cfg.Parallel)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range p.results {
			if result.Error != nil {
				errored++

				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", result.Input, result.Error)

				continue
			}

			processed++
			totalSize += result.OutputSize

			if !p.cfg.Quiet {
				fmt.Printf("Processed %q -> %q\n", result.Input, result.Output)
			}

			if p.cfg.Delete {
				if err := os.Remove(result.Input); err != nil {
					fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", result.Input, err)
				} else if !p.cfg.Quiet {
					fmt.Printf("Deleted %q\n", result.Input)
				}
			}
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			outPath := p.outputPath(file)

			size, err := p.processFile(file, outPath)
			if err != nil {
				p.results <- Result{Input: file, Error: err}

				return err
			}

			p.results <- Result{Input: file, Output: outPath, OutputSize: size}

			return nil
		})
	}

	err = group.Wait()

	close(p.results)

	<-done // Wait for printer to finish

	if err != nil {
		return processed, errored, totalSize, fmt.Errorf("processing files: %w", err)
	}

	return processed, errored, totalSize, nil
}

// processFile encrypts or decrypts a single file. The output goes through
// a temp file and an atomic rename, so a failed run leaves no partial file
// behind and never touches an existing file at outPath — which is the
// input itself when a suffixless container is decrypted in place.
func (p *Processor) processFile(filename, outPath string) (size int64, err error) {
	tc, err := fileutil.NewTempContext(filename, outPath)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	inFile, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return 0, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	label := filepath.Base(filename)

	if p.cfg.Decrypt {
		err = p.codec.Decrypt(p.sink(tc.TmpFile, tc.SrcInfo.Size()-TrailerSize, label), inFile, p.passphrase)
	} else {
		err = p.codec.Encrypt(p.sink(tc.TmpFile, EncryptedSize(tc.SrcInfo.Size()), label), inFile, p.passphrase)
	}

	if err != nil {
		return 0, err
	}

	if err = tc.TmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temporary file: %w", err)
	}

	if err = inFile.Close(); err != nil {
		return 0, fmt.Errorf("closing input file: %w", err)
	}

	if err = os.Rename(tc.TmpName, outPath); err != nil {
		return 0, fmt.Errorf("renaming output file: %w", err)
	}

	size, err = fileutil.FinalizeOutput(outPath, p.cfg.PreserveTimestamps, tc.SrcInfo.ModTime())
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	return size, nil
}

// sink wraps the output file with a progress bar when enabled. The label
// names the input file, since the output is still an anonymous temp file.
func (p *Processor) sink(file *os.File, total int64, label string) TruncateWriter {
	if !p.cfg.Progress {
		return file
	}

	return &progressFile{
		File: file,
		bar:  progressbar.DefaultBytes(total, label),
	}
}

// progressFile counts written bytes into a progress bar while keeping the
// Truncate method Decrypt needs.
type progressFile struct {
	*os.File
	bar *progressbar.ProgressBar
}

func (p *progressFile) Write(data []byte) (int, error) {
	n, err := p.File.Write(data)
	p.bar.Add(n)

	return n, err
}

// outputPath generates the output file path based on the input filename
// and the configured suffixes for encryption/decryption.
func (p *Processor) outputPath(filename string) string {
	if p.cfg.Output != "" {
		return p.cfg.Output
	}

	ext := p.cfg.EncryptSuffix

	if p.cfg.Decrypt {
		filename = strings.TrimSuffix(filename, p.cfg.EncryptSuffix)
		ext = p.cfg.DecryptSuffix
	}

	return filepath.Join(filepath.Dir(filename),
		filepath.Base(filename)+ext)
}
