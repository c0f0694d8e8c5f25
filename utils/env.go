package utils

import (
	"os"
)

// GetEnv reads key from the environment, falling back when it's unset or empty
func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}
