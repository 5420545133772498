package config

import (
	"os"
	"path/filepath"
	"strings"
)

// BaseDir anchors relative runtime paths. NADI_HOME wins, then the
// directory of the running binary, then the working directory.
func BaseDir() string {
	if home := strings.TrimSpace(os.Getenv(envPrefix + "HOME")); home != "" {
		return filepath.Clean(home)
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResolveRuntimePath returns raw, or fallback when raw is blank, made
// absolute against BaseDir.
func ResolveRuntimePath(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(BaseDir(), target)
}
