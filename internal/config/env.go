package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local from the working directory and from
// dir. Variables already set in the process environment win.
func loadEnvFiles(dir string) {
	seen := map[string]bool{}
	for _, base := range []string{".", dir} {
		for _, name := range envFiles {
			path := filepath.Join(base, name)
			abs, err := filepath.Abs(path)
			if err != nil || seen[abs] {
				continue
			}
			seen[abs] = true
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := godotenv.Load(path); err != nil {
				slog.Warn("Failed to load env file", slog.String("path", path), slog.String("error", err.Error()))
				continue
			}
			slog.Debug("Loaded environment variables", slog.String("path", path))
		}
	}
}
