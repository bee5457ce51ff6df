package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// BoxsyncConfigPath returns the boxsync configuration directory.
// BOXSYNC_HOME wins, then $XDG_CONFIG_HOME/boxsync, then ~/.config/boxsync.
func BoxsyncConfigPath() string {
	if dir := os.Getenv("BOXSYNC_HOME"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "boxsync")
	}
	return filepath.Join(HomeDir(), ".config", "boxsync")
}

// KnownHostsPath returns the default OpenSSH known_hosts file
func KnownHostsPath() string {
	return filepath.Join(HomeDir(), ".ssh", "known_hosts")
}

// ExpandPath expands a leading ~ and resolves relative paths against baseDir.
func ExpandPath(p, baseDir string) string {
	if p == "" {
		return ""
	}
	if p == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(HomeDir(), p[2:])
	}
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
