package util

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading "~/" and makes the path absolute.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
