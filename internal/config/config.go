package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ve-data-science/vedatool/internal/utils"
)

var (
	// ErrNotFound indicates that no configuration file exists yet. This is a
	// configuration error, distinct from any validation or sync error, and
	// the fix is always to run `vedatool configure`.
	ErrNotFound = errors.New("config: not found, run `vedatool configure`")

	// ErrExists indicates that configure was run against an existing config file.
	ErrExists = errors.New("config: file already exists")
)

const (
	appDirName     = "vedatool"
	configFileName = "config.json"
)

// DefaultPath returns the platform config file path, e.g.
// ~/.config/vedatool/config.json on Linux.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName, configFileName)
}

// Config holds the persisted settings needed to reach the transfer service
// and locate the local repository clone. Loaded once per invocation and
// passed explicitly into components.
type Config struct {
	// RepositoryPath is the absolute path of the local repository root.
	RepositoryPath string `json:"repository_path"`

	// ServerURL is the base URL of the transfer service API.
	ServerURL string `json:"server_url"`

	// ClientID identifies this application to the transfer service.
	ClientID string `json:"client_id"`

	// RemoteEndpoint is the identifier of the shared remote collection.
	RemoteEndpoint string `json:"remote_endpoint"`

	// LocalEndpoint is the identifier of the local collection. Populated
	// during configure, possibly by the transfer service itself.
	LocalEndpoint string `json:"local_endpoint"`

	// Path the config was loaded from. Not persisted.
	Path string `json:"-"`
}

// DataDir returns the data tree the manifests describe.
func (c *Config) DataDir() string {
	return filepath.Join(c.RepositoryPath, "data")
}

// AnalysisDir returns the analysis tree holding scripts and notebooks.
func (c *Config) AnalysisDir() string {
	return filepath.Join(c.RepositoryPath, "analysis")
}

// StateDir returns the directory holding tool state such as the sync journal.
func (c *Config) StateDir() string {
	return filepath.Join(c.RepositoryPath, ".vedatool")
}

func (c *Config) Validate() error {
	repoPath, err := utils.ResolvePath(c.RepositoryPath)
	if err != nil {
		return fmt.Errorf("config: repository path: %w", err)
	}
	if !utils.DirExists(repoPath) {
		return fmt.Errorf("config: repository path is not a directory: %s", repoPath)
	}
	c.RepositoryPath = repoPath

	if c.ClientID == "" {
		return errors.New("config: client id missing")
	}
	if c.RemoteEndpoint == "" {
		return errors.New("config: remote endpoint missing")
	}

	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("config: invalid server url: %s", c.ServerURL)
		}
	}

	return nil
}

// Save writes the config to path. Fails with ErrExists unless overwrite is set.
func (c *Config) Save(path string, overwrite bool) error {
	if !overwrite && utils.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}

	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Load reads and validates the config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (%s)", ErrNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
