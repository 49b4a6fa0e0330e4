package config

import (
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads the given env files if they exist. Variables already set
// in the process environment win. Errors are ignored.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}
