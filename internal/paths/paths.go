package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName names the per-user configuration directory.
const AppName = "bkp"

// ConfigDirEnv overrides the configuration directory when set.
const ConfigDirEnv = "BKP_CONFIG_DIR"

// Default file names inside the configuration directory.
const (
	DefaultManifestName = "bkp.txt"
	DefaultLogName      = "bkp.log"
	ConfigFileName      = "config.yaml"
)

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrConfigHomeNotFound indicates no platform config root is available.
	ErrConfigHomeNotFound = errors.New("config home not found")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	if home == "" {
		return "", ErrHomeDirNotFound
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns the bkp configuration directory without creating it.
//
// An explicit override wins, then $BKP_CONFIG_DIR, then <ConfigHome>/bkp.
// Relative overrides are made absolute against the working directory.
func ConfigDir(override string) (string, error) {
	dir := override
	if dir == "" {
		dir = os.Getenv(ConfigDirEnv)
	}
	if dir == "" {
		root := ConfigHome()
		if root == "" {
			return "", ErrConfigHomeNotFound
		}
		dir = filepath.Join(root, AppName)
	}

	dir = ExpandHome(dir)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", dir)
	}
	return abs, nil
}

// EnsureConfigDir resolves the configuration directory and creates it if needed.
func EnsureConfigDir(override string) (string, error) {
	dir, err := ConfigDir(override)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && !info.IsDir():
		return "", errors.Newf("%s exists and is not a directory", dir)
	case err == nil:
		return dir, nil
	case !os.IsNotExist(err):
		return "", errors.Wrapf(err, "checking %s", dir)
	}

	if err := EnsureDir(dir, DefaultDirPerm); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}
	return dir, nil
}

// InConfigDir joins name onto the configuration directory.
func InConfigDir(configDir, name string) string {
	return filepath.Join(configDir, name)
}

// ExpandHome expands a leading ~ to the user's home directory.
// Paths that do not start with ~ (or ~user forms) are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}

	home, err := ResolveHome()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
