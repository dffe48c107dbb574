package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DotEnvFiles are loaded, in order, by LoadDotEnv. Variables already set in
// the environment are never overwritten.
var DotEnvFiles = []string{".env", ".env.local"}

// LoadDotEnv loads the given files, or DotEnvFiles when none are given, into
// the process environment. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = DotEnvFiles
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}
