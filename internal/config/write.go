package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const header = `# Tasker configuration
# Every key can be overridden with a TASKER_* environment variable,
# e.g. TASKER_SERVER_PORT=9000 or TASKER_DATABASE_DRIVER=postgres.
`

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	return Write(path, DefaultConfig())
}

// Write renders cfg as YAML to path, creating the parent directory.
func Write(path string, cfg *Config) error {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
