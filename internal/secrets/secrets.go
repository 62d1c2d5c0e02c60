// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// from an optional .env file. Each file in the directory represents one
// secret: the filename is the key name and the file contents (trimmed)
// are the value.
//
// Supported key files: usda-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// USDAAPIKey is the secret holding the FoodData Central API key.
const USDAAPIKey = "usda-api-key"

// EnvUSDAAPIKey overrides any stored USDA key.
const EnvUSDAAPIKey = "NUTRISCAN_USDA_API_KEY"

// DemoKey is the rate-limited key FoodData Central accepts without signup.
const DemoKey = "DEMO_KEY"

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv reads a .env file without touching the process environment.
// Variable names are converted to secret key names, so USDA_API_KEY
// becomes usda-api-key. A missing file returns an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	secrets := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		secrets[keyName(k)] = v
	}
	return secrets, nil
}

func keyName(envVar string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(envVar)), "_", "-")
}

// Merge copies entries of src that dst does not already hold.
func Merge(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
	return dst
}

// USDAKey resolves the FoodData Central API key: an explicit flag value,
// then NUTRISCAN_USDA_API_KEY, then the usda-api-key secret, then DEMO_KEY.
func USDAKey(flagValue string, secrets map[string]string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUSDAAPIKey)); v != "" {
		return v
	}
	if v := secrets[USDAAPIKey]; v != "" {
		return v
	}
	return DemoKey
}
