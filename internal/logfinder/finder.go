// Package logfinder locates the Wakfu chat log directory and file.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// EnvLogDir is the environment variable overriding the log directory.
const EnvLogDir = "WAKFULOG_LOGDIR"

// logPattern matches the chat log and its rotated siblings. The Ankama
// launcher writes "wakfu_chat.log" and rotates to "wakfu_chat.log.N".
const logPattern = "wakfu_chat*.log*"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// DefaultLogDirs returns candidate chat log directories in priority
// order. The launcher keeps game logs under its own data directory.
func DefaultLogDirs() []string {
	// zaap/gamesLogs/wakfu/logs under the launcher data dir.
	suffix := filepath.Join("zaap", "gamesLogs", "wakfu", "logs")

	var dirs []string
	if appData := os.Getenv("APPDATA"); appData != "" {
		dirs = append(dirs, filepath.Join(appData, suffix))
	}
	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		dirs = append(dirs, filepath.Join(userProfile, "AppData", "Roaming", suffix))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		// Linux installs keep the launcher data under ~/.config.
		dirs = append(dirs, filepath.Join(home, ".config", suffix))
	}
	return dirs
}

// FindLogDir returns the Wakfu chat log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. WAKFULOG_LOGDIR environment variable
//  3. Auto-detect from DefaultLogDirs()
//
// Returns ErrLogDirNotFound if no valid directory is found. The
// returned path has symlinks resolved for consistency.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveAndValidateLogDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified directory is invalid or contains no chat logs", ErrLogDirNotFound)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveAndValidateLogDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrLogDirNotFound, EnvLogDir)
	}

	for _, dir := range DefaultLogDirs() {
		if resolved := resolveAndValidateLogDir(dir); resolved != "" {
			return resolved, nil
		}
	}
	return "", ErrLogDirNotFound
}

// logCandidate caches the modification time so files deleted between
// stat and sort cannot skew the ordering.
type logCandidate struct {
	path    string
	modTime int64
}

// FindLatestLogFile returns the most recently modified chat log in dir.
// The live log is the newest; rotated siblings are older.
//
// Returns ErrNoLogFiles if the directory holds no chat logs.
func FindLatestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logPattern))
	if err != nil {
		return "", fmt.Errorf("globbing chat logs: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoLogFiles
	}

	candidates := make([]logCandidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, logCandidate{
			path:    m,
			modTime: info.ModTime().UnixNano(),
		})
	}
	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}

// resolveAndValidateLogDir resolves symlinks and confirms the directory
// actually holds chat logs. Returns "" when invalid.
func resolveAndValidateLogDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return ""
	}

	matches, err := filepath.Glob(filepath.Join(resolved, logPattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return resolved
}
