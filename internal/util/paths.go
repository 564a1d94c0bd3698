package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the pdparty home directory. Tests point it at a temp dir.
const HomeEnv = "PDPARTY_HOME"

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// PdpartyHome returns the directory holding pdparty's own state
// (config, lock files). Defaults to ~/.pdparty.
func PdpartyHome() string {
	if v := os.Getenv(HomeEnv); v != "" {
		return v
	}
	return filepath.Join(HomeDir(), ".pdparty")
}

// ConfigPath returns the directory containing config files.
func ConfigPath() string {
	return PdpartyHome()
}

// LocksPath returns the directory used for cross-process sync locks.
func LocksPath() string {
	return filepath.Join(PdpartyHome(), "locks")
}

// DocumentsPath returns the default user-writable destination root.
func DocumentsPath() string {
	return filepath.Join(HomeDir(), "Documents", "PdParty")
}

// ResourcesPath returns the default bundled resource root, a "resources"
// directory next to the running executable.
func ResourcesPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "resources"
	}
	return filepath.Join(filepath.Dir(exe), "resources")
}

// ExpandPath expands a leading ~ and resolves relative paths against baseDir.
// Empty input yields an empty string.
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
