// Package config loads runtime settings from defaults, a TOML file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"done/logging"
	"done/utils"
)

const (
	// AppName is the configuration directory name.
	AppName = "done"

	// ConfigFile is the configuration filename looked up in the config dir.
	ConfigFile = "done.toml"
)

// Run modes.
const (
	ModeServe = "serve"
	ModeTUI   = "tui"
)

// Defaults.
const (
	DefaultDriver = utils.DriverSQLite
	DefaultDSN    = "./done.db"
	DefaultListen = ":3000"
)

// Config holds runtime settings.
type Config struct {
	DBDriver   string `toml:"db_driver"`
	DBDSN      string `toml:"db_dsn"`
	StorageKey string `toml:"storage_key"`
	Listen     string `toml:"listen"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`
	Mode       string `toml:"mode"`

	// File is the config file that was read, empty if none.
	File string `toml:"-"`
}

// Default returns a Config with every field at its default.
func Default() *Config {
	return &Config{
		DBDriver:   DefaultDriver,
		DBDSN:      DefaultDSN,
		StorageKey: utils.DefaultKey,
		Listen:     DefaultListen,
		LogLevel:   "info",
		LogFormat:  "text",
		Mode:       ModeServe,
	}
}

type flagValues struct {
	configFile string
	driver     string
	dsn        string
	key        string
	listen     string
	logLevel   string
	logFormat  string
	tui        bool
}

func registerFlags(fs *flag.FlagSet, v *flagValues) {
	fs.StringVar(&v.configFile, "config", "", "path to a TOML config file")
	fs.StringVar(&v.driver, "driver", "", "database driver (sqlite or mysql)")
	fs.StringVar(&v.dsn, "dsn", "", "database data source name")
	fs.StringVar(&v.key, "key", "", "storage key the task list is kept under")
	fs.StringVar(&v.listen, "listen", "", "HTTP listen address")
	fs.StringVar(&v.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&v.logFormat, "log-format", "", "log format (text, json, logfmt)")
	fs.BoolVar(&v.tui, "tui", false, "run the terminal interface instead of the HTTP server")
}

// Load parses args with fs and layers defaults, the config file,
// environment variables and flags.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	var fv flagValues
	registerFlags(fs, &fv)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := Default()

	path := fv.configFile
	if path == "" {
		path = os.Getenv("DONE_CONFIG")
	}
	explicit := path != ""
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), ConfigFile)
	}
	if err := loadFile(cfg, path, explicit); err != nil {
		return nil, err
	}

	loadFromEnv(cfg)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.DBDriver = fv.driver
		case "dsn":
			cfg.DBDSN = fv.dsn
		case "key":
			cfg.StorageKey = fv.key
		case "listen":
			cfg.Listen = fv.listen
		case "log-level":
			cfg.LogLevel = fv.logLevel
		case "log-format":
			cfg.LogFormat = fv.logFormat
		case "tui":
			if fv.tui {
				cfg.Mode = ModeTUI
			} else {
				cfg.Mode = ModeServe
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes the TOML file at path over cfg. A missing file is only an
// error when the path was given explicitly.
func loadFile(cfg *Config, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.File = path
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("DONE_DB_DRIVER"); v != "" {
		cfg.DBDriver = v
	}
	if v := os.Getenv("DONE_DB_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("DONE_STORAGE_KEY"); v != "" {
		cfg.StorageKey = v
	}
	if v := os.Getenv("DONE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("DONE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DONE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("DONE_MODE"); v != "" {
		cfg.Mode = v
	}
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.DBDriver != utils.DriverSQLite && c.DBDriver != utils.DriverMySQL {
		return fmt.Errorf("invalid db_driver %q: must be %s or %s", c.DBDriver, utils.DriverSQLite, utils.DriverMySQL)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("db_dsn is empty")
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("storage_key is empty")
	}
	if c.Mode != ModeServe && c.Mode != ModeTUI {
		return fmt.Errorf("invalid mode %q: must be %s or %s", c.Mode, ModeServe, ModeTUI)
	}
	if c.Mode == ModeServe && strings.TrimSpace(c.Listen) == "" {
		return fmt.Errorf("listen is empty")
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}
