package config

import (
	"os"
	"strings"
)

// GetSecret resolves a secret from envVar, then from the file named by
// envVar_FILE (Docker and Kubernetes secret mounts), then defaultValue.
// An unreadable or empty file falls through to the default.
func GetSecret(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := readSecretFile(os.Getenv(envVar + "_FILE")); ok {
		return value
	}
	return defaultValue
}

func readSecretFile(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(data))
	return value, value != ""
}
