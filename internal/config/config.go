package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the main configuration for b2b.
type Config struct {
	LogDir          string `toml:"log_dir"`
	CredentialsPath string `toml:"credentials_path"`

	// Incremental and Dedup are the default per-pass switches; the CLI can
	// override them per run.
	Incremental bool `toml:"incremental"`
	Dedup       bool `toml:"dedup"`

	SingleBucketMode bool   `toml:"single_bucket_mode"`
	SingleBucketName string `toml:"single_bucket_name"`

	Folders []FolderConfig `toml:"folders"`
	Ignore  []string       `toml:"ignore"`

	Store   StoreConfig   `toml:"store"`
	History HistoryConfig `toml:"history"`
}

// FolderConfig is one folder to back up. Bucket is only consulted when
// single-bucket mode is off.
type FolderConfig struct {
	Path   string `toml:"path"`
	Bucket string `toml:"bucket,omitempty"`
}

// StoreConfig selects the destination-store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "s3" or "memory"

	// S3PathStyle forces path-style addressing (only used when Type == "s3").
	S3PathStyle bool `toml:"s3_path_style,omitempty"`
}

// HistoryConfig selects where the run-history database lives.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type HistoryConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir:          filepath.Join(baseDir, "log"),
		CredentialsPath: filepath.Join(baseDir, "credentials.age"),
		Incremental:     true,
		Dedup:           true,
		Store:           StoreConfig{Type: "s3"},
		History:         HistoryConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "data")},
	}
}

// AddFolder adds a folder to the backup configuration, replacing any existing
// entry for the same path.
func (c *Config) AddFolder(path, bucket string) {
	for i := range c.Folders {
		if c.Folders[i].Path == path {
			c.Folders[i].Bucket = bucket
			return
		}
	}
	c.Folders = append(c.Folders, FolderConfig{Path: path, Bucket: bucket})
}

// RemoveFolder removes a folder from the backup configuration.
// Returns false if the folder was not configured.
func (c *Config) RemoveFolder(path string) bool {
	for i := range c.Folders {
		if c.Folders[i].Path == path {
			c.Folders = append(c.Folders[:i], c.Folders[i+1:]...)
			return true
		}
	}
	return false
}

// SetSingleBucketMode switches between single-bucket and per-folder modes.
func (c *Config) SetSingleBucketMode(enabled bool, bucketName string) {
	c.SingleBucketMode = enabled
	if enabled {
		c.SingleBucketName = bucketName
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a Config to the specified file path, creating the directory if
// needed. CLI commands that mutate configuration call this after each change.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := Save(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
