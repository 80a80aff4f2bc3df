// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. The
// file name is the key name and the trimmed contents are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfvision/internal/logging"
	"github.com/pdiddy/pdfvision/pkg/types"
)

// Key file names.
const (
	OpenAIKey = "openai-api-key"
	GeminiKey = "gemini-api-key"
)

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty map. Unreadable files are logged and skipped.
func Load(dir string, log logging.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logging.OrDefault(log).Warnf("could not read secret %s: %v", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// KeyName returns the secret file that holds the API key for provider.
func KeyName(provider types.VisionProvider) string {
	if provider == types.ProviderGemini {
		return GeminiKey
	}
	return OpenAIKey
}

// APIKey returns the configured key when set, else the provider's key from
// the loaded secrets.
func APIKey(configured string, provider types.VisionProvider, loaded map[string]string) string {
	if configured != "" {
		return configured
	}
	return loaded[KeyName(provider)]
}
