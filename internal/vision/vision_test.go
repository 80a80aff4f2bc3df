// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfvision/pkg/types"
)

func TestBuildUserPrompt(t *testing.T) {
	p := DefaultPrompts()

	t.Run("no regions", func(t *testing.T) {
		got, err := BuildUserPrompt(p, nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultPrompt, got)
	})

	t.Run("with regions", func(t *testing.T) {
		got, err := BuildUserPrompt(p, []string{"0_0.png", "0_1.png"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, DefaultPrompt))
		assert.Contains(t, got, "red box and label (0_0.png, 0_1.png).")
		assert.NotContains(t, got, "%s")
	})
}

func TestNewPrompts(t *testing.T) {
	p, err := NewPrompts(types.VisionConfig{
		RolePrompt:   "role",
		Prompt:       "base\n",
		RegionPrompt: "see {{.Labels}}",
	})
	require.NoError(t, err)
	assert.Equal(t, "role", p.Role)

	got, err := BuildUserPrompt(p, []string{"2_0.png"})
	require.NoError(t, err)
	assert.Equal(t, "base\nsee 2_0.png", got)

	_, err = NewPrompts(types.VisionConfig{RegionPrompt: "{{.Labels"})
	assert.ErrorContains(t, err, "parsing region prompt")
}

func TestDefaultPrompts(t *testing.T) {
	p := DefaultPrompts()
	assert.Equal(t, DefaultRolePrompt, p.Role)
	assert.Contains(t, p.Base, "Do not wrap the content with ```markdown ```")
}

// chatServer serves /chat/completions with the given status and body and
// records the last request.
func chatServer(t *testing.T, status int, body string, calls *int32, last *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		if last != nil {
			_ = json.Unmarshal(data, last)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const completion = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"# Page\n\n![](0_0.png)"}}]}`

func TestOpenAIBackend_Transcribe(t *testing.T) {
	var calls int32
	var req map[string]any
	srv := chatServer(t, http.StatusOK, completion, &calls, &req)

	b := NewOpenAIBackend("sk-test", srv.URL+"/", "gpt-4o")
	got, err := b.Transcribe(context.Background(), Request{
		Image:        []byte{0x89, 'P', 'N', 'G'},
		MIMEType:     "image/png",
		SystemPrompt: "role",
		UserPrompt:   "convert",
	})
	require.NoError(t, err)
	assert.Equal(t, "# Page\n\n![](0_0.png)", got)
	assert.Equal(t, int32(1), calls)

	assert.Equal(t, "gpt-4o", req["model"])
	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)

	system := msgs[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, "role", system["content"])

	user := msgs[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "convert", parts[0].(map[string]any)["text"])
	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"]
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}), url)
}

func TestOpenAIBackend_EmptyChoices(t *testing.T) {
	var calls int32
	srv := chatServer(t, http.StatusOK, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`, &calls, nil)

	_, err := NewOpenAIBackend("sk-test", srv.URL+"/", "gpt-4o").Transcribe(context.Background(), Request{})
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestOpenAIBackend_ErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := chatServer(t, http.StatusInternalServerError, `{"error":{"message":"overloaded","type":"server_error"}}`, &calls, nil)

	_, err := NewOpenAIBackend("sk-test", srv.URL+"/", "gpt-4o").Transcribe(context.Background(), Request{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyResponse))
	assert.Contains(t, err.Error(), "calling chat completions")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func geminiServer(t *testing.T, body string, last *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		if last != nil {
			_ = json.Unmarshal(data, last)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiBackend_Transcribe(t *testing.T) {
	var req map[string]any
	srv := geminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":"| a | b |"}]}}]}`, &req)

	b, err := NewGeminiBackend(context.Background(), "key", srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, b.model)

	got, err := b.Transcribe(context.Background(), Request{
		Image:        []byte("png"),
		SystemPrompt: "role",
		UserPrompt:   "convert",
	})
	require.NoError(t, err)
	assert.Equal(t, "| a | b |", got)

	contents := req["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "convert", parts[0].(map[string]any)["text"])
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.NotNil(t, req["systemInstruction"])
}

func TestGeminiBackend_EmptyCandidates(t *testing.T) {
	srv := geminiServer(t, `{"candidates":[]}`, nil)
	b, err := NewGeminiBackend(context.Background(), "key", srv.URL, "gemini-2.5-pro")
	require.NoError(t, err)

	_, err = b.Transcribe(context.Background(), Request{Image: []byte("png")})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNew(t *testing.T) {
	b, err := New(context.Background(), types.VisionConfig{Provider: types.ProviderOpenAI, Model: "gpt-4o", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIBackend{}, b)

	_, err = New(context.Background(), types.VisionConfig{Provider: types.ProviderGemini})
	assert.ErrorContains(t, err, "missing API key")

	_, err = New(context.Background(), types.VisionConfig{Provider: "mistral"})
	assert.ErrorContains(t, err, "unknown vision provider")
}
