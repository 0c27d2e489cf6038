package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/taskdesk/internal/core/config"
)

// Flags carries the root command's persistent flags into subcommands.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// As names the acting user (ID or email) in local mode. Remote mode takes
	// the identity from the token.
	As string

	RecoverDB bool

	// Set by the root Before hook.
	Config *config.Config
}

// DefaultConfigPath is $XDG_CONFIG_HOME/taskdesk/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.yaml")
}

// DefaultDataDir is $XDG_DATA_HOME/taskdesk.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// xdgDir resolves the taskdesk directory under an XDG base variable, using
// the fallback path under $HOME when the variable is unset.
func xdgDir(env string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	return filepath.Join(base, "taskdesk")
}
