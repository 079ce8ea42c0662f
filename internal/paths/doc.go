// Package paths resolves the per-user locations bkp works with.
//
// The configuration directory holds the manifest (bkp.txt), the log file
// (bkp.log) and the optional config.yaml, and it is also where entries with
// the "default" destination are backed up. It is <ConfigHome>/bkp, where
// ConfigHome comes from github.com/adrg/xdg:
//
//	Linux:   ~/.config/bkp
//	macOS:   ~/Library/Application Support/bkp
//	Windows: %LOCALAPPDATA%\bkp
//
// $BKP_CONFIG_DIR or the --config-dir flag replace it entirely.
package paths
