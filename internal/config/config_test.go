package config_test

import (
	"testing"

	"github.com/ovesen/sealfile/internal/config"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := config.Config{
		Passphrase: "hunter2",
		Parallel:   4,
		Files:      []string{"a.txt"},
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(*config.Config) {},
		},
		{
			name:   "passphrase file instead",
			mutate: func(c *config.Config) { c.Passphrase = ""; c.PassphraseFile = "secret.txt" },
		},
		{
			name:   "no passphrase source falls back to prompt",
			mutate: func(c *config.Config) { c.Passphrase = "" },
		},
		{
			name:    "both passphrase sources",
			mutate:  func(c *config.Config) { c.PassphraseFile = "secret.txt" },
			wantErr: true,
		},
		{
			name:    "no files",
			mutate:  func(c *config.Config) { c.Files = nil },
			wantErr: true,
		},
		{
			name:    "zero parallel",
			mutate:  func(c *config.Config) { c.Parallel = 0 },
			wantErr: true,
		},
		{
			name:   "output with single file",
			mutate: func(c *config.Config) { c.Output = "out.bin" },
		},
		{
			name: "output with multiple files",
			mutate: func(c *config.Config) {
				c.Output = "out.bin"
				c.Files = []string{"a.txt", "b.txt"}
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tc.mutate(&cfg)

			err := cfg.Validate()

			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}

			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
