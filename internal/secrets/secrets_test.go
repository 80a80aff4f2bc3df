// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfvision/internal/logging"
	"github.com/pdiddy/pdfvision/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIKey, "  sk-abc123  \n")
				writeFile(t, dir, GeminiKey, "AIza-xyz\n")
				return dir
			},
			want: map[string]string{OpenAIKey: "sk-abc123", GeminiKey: "AIza-xyz"},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files, dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIKey, "sk-real")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{OpenAIKey: "sk-real"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), logging.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	dir := t.TempDir()
	writeFile(t, dir, OpenAIKey, "sk-good")
	bad := filepath.Join(dir, GeminiKey)
	require.NoError(t, os.WriteFile(bad, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	got, err := Load(dir, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{OpenAIKey: "sk-good"}, got)
}

func TestAPIKey(t *testing.T) {
	loaded := map[string]string{OpenAIKey: "sk-file", GeminiKey: "g-file"}

	tests := []struct {
		name       string
		configured string
		provider   types.VisionProvider
		want       string
	}{
		{"configured wins", "sk-flag", types.ProviderOpenAI, "sk-flag"},
		{"openai from file", "", types.ProviderOpenAI, "sk-file"},
		{"gemini from file", "", types.ProviderGemini, "g-file"},
		{"default provider", "", "", "sk-file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, APIKey(tt.configured, tt.provider, loaded))
		})
	}
	assert.Empty(t, APIKey("", types.ProviderGemini, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
