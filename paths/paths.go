package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".concierge"), nil
}

func SessionsDir() string {
	dir, err := StateDir()
	if err != nil {
		// Should never happen after startup; keep a sane fallback.
		return ".concierge/sessions"
	}
	return filepath.Join(dir, "sessions")
}

func EnsureStateDirs() error {
	dir, err := StateDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	sdir := SessionsDir()
	if err := os.MkdirAll(sdir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", sdir, err)
	}
	return nil
}
