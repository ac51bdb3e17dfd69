// Package config provides configuration management for the Heimdex Editor.
// Values are layered defaults, then an optional editor.yaml in the data
// directory, then HEIMDEX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultPort          = 8787
	DefaultLogLevel      = "info"
	DefaultDataDir       = ".heimdex-editor"
	DefaultSnapGrid      = 1.0
	DefaultSnapThreshold = 0.2
	DefaultInitialZoom   = 20.0
	DefaultCellWidth     = 10.0

	EnvPrefix = "HEIMDEX"

	// Config file looked up in the data directory
	FileName = "editor"
	FileType = "yaml"

	// Database filename
	DBFilename = "editor.db"
)

// Keys
const (
	KeyPort          = "port"
	KeyLogLevel      = "log_level"
	KeyDataDir       = "data_dir"
	KeyHeadless      = "headless"
	KeyTray          = "tray"
	KeyMPVSocket     = "mpv_socket"
	KeyFFprobePath   = "ffprobe_path"
	KeySnapGrid      = "snap_grid"
	KeySnapThreshold = "snap_threshold"
	KeyInitialZoom   = "initial_zoom"
	KeyCellWidth     = "cell_width"
	KeyWatchFolders  = "watch_folders"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	Headless() bool
	TrayEnabled() bool
	MPVSocket() string
	FFprobePath() string
	SnapGrid() float64
	SnapThreshold() float64
	InitialZoom() float64
	CellWidth() float64
	WatchFolders() []string
}

type ViperConfig struct {
	v *viper.Viper
}

// New reads configuration from the environment and, when present, the data
// directory's editor.yaml.
func New() (*ViperConfig, error) {
	v := viper.New()

	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyDataDir, defaultDataDir())
	v.SetDefault(KeyHeadless, false)
	v.SetDefault(KeyTray, false)
	v.SetDefault(KeyMPVSocket, "")
	v.SetDefault(KeyFFprobePath, "")
	v.SetDefault(KeySnapGrid, DefaultSnapGrid)
	v.SetDefault(KeySnapThreshold, DefaultSnapThreshold)
	v.SetDefault(KeyInitialZoom, DefaultInitialZoom)
	v.SetDefault(KeyCellWidth, DefaultCellWidth)
	v.SetDefault(KeyWatchFolders, []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	v.AddConfigPath(v.GetString(KeyDataDir))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &ViperConfig{v: v}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ViperConfig) validate() error {
	if p := c.Port(); p < 1 || p > 65535 {
		return fmt.Errorf("invalid %s: port must be between 1 and 65535", KeyPort)
	}
	if c.SnapGrid() <= 0 {
		return fmt.Errorf("invalid %s: must be positive", KeySnapGrid)
	}
	if c.SnapThreshold() < 0 {
		return fmt.Errorf("invalid %s: must not be negative", KeySnapThreshold)
	}
	if c.CellWidth() <= 0 {
		return fmt.Errorf("invalid %s: must be positive", KeyCellWidth)
	}
	return nil
}

// Port returns the HTTP server port
func (c *ViperConfig) Port() int {
	return c.v.GetInt(KeyPort)
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *ViperConfig) LogLevel() string {
	return c.v.GetString(KeyLogLevel)
}

// DataDir returns the data directory path
func (c *ViperConfig) DataDir() string {
	return c.v.GetString(KeyDataDir)
}

// DBPath returns the full path to the SQLite database file
func (c *ViperConfig) DBPath() string {
	return filepath.Join(c.DataDir(), DBFilename)
}

// Headless disables the terminal editor; only the HTTP API runs.
func (c *ViperConfig) Headless() bool {
	return c.v.GetBool(KeyHeadless)
}

func (c *ViperConfig) TrayEnabled() bool {
	return c.v.GetBool(KeyTray)
}

// MPVSocket is the mpv --input-ipc-server path. Empty selects the built-in
// clock player.
func (c *ViperConfig) MPVSocket() string {
	return c.v.GetString(KeyMPVSocket)
}

func (c *ViperConfig) FFprobePath() string {
	return c.v.GetString(KeyFFprobePath)
}

func (c *ViperConfig) SnapGrid() float64 {
	return c.v.GetFloat64(KeySnapGrid)
}

func (c *ViperConfig) SnapThreshold() float64 {
	return c.v.GetFloat64(KeySnapThreshold)
}

func (c *ViperConfig) InitialZoom() float64 {
	return c.v.GetFloat64(KeyInitialZoom)
}

// CellWidth is how many timeline pixels one terminal column spans.
func (c *ViperConfig) CellWidth() float64 {
	return c.v.GetFloat64(KeyCellWidth)
}

// WatchFolders lists folders whose media is imported automatically. The
// environment form is whitespace separated.
func (c *ViperConfig) WatchFolders() []string {
	return c.v.GetStringSlice(KeyWatchFolders)
}

// ConfigFile returns the file that was read, or "" when none was found.
func (c *ViperConfig) ConfigFile() string {
	return c.v.ConfigFileUsed()
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
