// Package utils provides global helper functions for this web service
package utils

import (
	"os"
	"strings"
)

// GetEnvOrFile returns the value of the environment variable `key`.
// If `key_FILE` is set, it reads the file at that path and returns its
// trimmed contents instead, so secrets can be mounted rather than exported.
func GetEnvOrFile(key string) (string, error) {
	if filePath := strings.TrimSpace(os.Getenv(key + "_FILE")); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}

	return os.Getenv(key), nil
}

// LookupEnvOrFile is GetEnvOrFile that also reports whether the key was set.
func LookupEnvOrFile(key string) (string, bool, error) {
	if strings.TrimSpace(os.Getenv(key+"_FILE")) != "" {
		v, err := GetEnvOrFile(key)
		return v, true, err
	}
	v, ok := os.LookupEnv(key)
	return v, ok, nil
}
