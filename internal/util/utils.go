package util

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// GetAbsolutePath resolves a given path to its absolute form, handling
// ~, ./, ../, UNC paths, and symlinks.
func GetAbsolutePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("path is empty")
	}

	// UNC paths on Windows stay as-is.
	if runtime.GOOS == "windows" && strings.HasPrefix(path, `\\`) {
		return path, nil
	}

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", pkgerrors.Wrap(err, "resolve home directory")
		}
		path = filepath.Join(home, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", pkgerrors.Wrap(err, "get absolute path")
	}

	// Resolve symlinks, but allow non-existent paths.
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		return resolvedPath, nil
	}
	if os.IsNotExist(err) {
		return absPath, nil
	}
	return "", pkgerrors.Wrap(err, "resolve symlinks")
}
