package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// loadDotenv reads .env into the process environment once. Variables that
// are already set win over the file.
func loadDotenv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// LoadEnv returns the values of all required variables, or an error naming
// every one that is missing.
func LoadEnv(requiredVars []string) (map[string]string, error) {
	loadDotenv()

	envVars := make(map[string]string, len(requiredVars))
	var missing []string
	for _, key := range requiredVars {
		value := strings.TrimSpace(os.Getenv(key))
		if value == "" {
			missing = append(missing, key)
			continue
		}
		envVars[key] = value
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return envVars, nil
}

// EnvOr returns the trimmed value of key or fallback when unset.
func EnvOr(key, fallback string) string {
	loadDotenv()
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
