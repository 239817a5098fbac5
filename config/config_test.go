package config_test

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"done/config"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("done", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// isolate points the default config dir at an empty temp dir and clears env
// overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		"DONE_CONFIG", "DONE_DB_DRIVER", "DONE_DB_DSN", "DONE_STORAGE_KEY",
		"DONE_LISTEN", "DONE_LOG_LEVEL", "DONE_LOG_FORMAT", "DONE_MODE",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.Default()
	if *cfg != *want {
		t.Errorf("expected %+v, got %+v", want, cfg)
	}
	if cfg.StorageKey != "toDoList" {
		t.Errorf("expected storage key toDoList, got %q", cfg.StorageKey)
	}
}

func TestLoad_DefaultFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, config.AppName, config.ConfigFile)
	writeFile(t, path, "listen = \":8080\"\nlog_level = \"debug\"\n")

	cfg, err := config.Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected listen :8080, got %q", cfg.Listen)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.File != path {
		t.Errorf("expected file %q, got %q", path, cfg.File)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "listen = \":1111\"\nstorage_key = \"fromFile\"\ndb_dsn = \"file.db\"\n")
	t.Setenv("DONE_LISTEN", ":2222")
	t.Setenv("DONE_STORAGE_KEY", "fromEnv")

	cfg, err := config.Load(newFlagSet(), []string{"-config", path, "-listen", ":3333"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":3333" {
		t.Errorf("expected flag to win, got %q", cfg.Listen)
	}
	if cfg.StorageKey != "fromEnv" {
		t.Errorf("expected env to win over file, got %q", cfg.StorageKey)
	}
	if cfg.DBDSN != "file.db" {
		t.Errorf("expected file value, got %q", cfg.DBDSN)
	}
}

func TestLoad_TUIFlag(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(newFlagSet(), []string{"-tui"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != config.ModeTUI {
		t.Errorf("expected mode %q, got %q", config.ModeTUI, cfg.Mode)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		args    []string
		wantErr string
	}{
		{name: "missing explicit file", args: []string{"-config", "/nonexistent/done.toml"}, wantErr: "reading config file"},
		{name: "bad toml", file: "listen = ", wantErr: "loading config file"},
		{name: "unknown key", file: "colour = \"pink\"\n", wantErr: "unknown keys: colour"},
		{name: "bad driver", args: []string{"-driver", "postgres"}, wantErr: "invalid db_driver"},
		{name: "empty key", args: []string{"-key", " "}, wantErr: "storage_key is empty"},
		{name: "bad log level", args: []string{"-log-level", "loud"}, wantErr: "invalid log_level"},
		{name: "bad mode", file: "mode = \"gui\"\n", wantErr: "invalid mode"},
		{name: "unknown flag", args: []string{"-nope"}, wantErr: "parsing flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			args := tt.args
			if tt.file != "" {
				path := filepath.Join(dir, "test.toml")
				writeFile(t, path, tt.file)
				args = append([]string{"-config", path}, args...)
			}

			_, err := config.Load(newFlagSet(), args)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
