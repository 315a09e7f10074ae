package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	calls  int
	reply  string
	err    error
	prompt string
	images []Image
	wait   time.Duration
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, images []Image) (string, error) {
	s.calls++
	s.prompt = prompt
	s.images = images
	if s.wait > 0 {
		select {
		case <-time.After(s.wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func TestNewProviderRegistry(t *testing.T) {
	for _, name := range []string{"gemini", "Gemini", "gemini_legacy", "openai", "openrouter"} {
		p, err := NewProvider(name, map[string]interface{}{"api_key": "k"})
		require.NoError(t, err, name)
		require.NotEmpty(t, p.Name())
	}
	_, err := NewProvider("", nil)
	require.Error(t, err)
	_, err = NewProvider("claude-ish", nil)
	require.Error(t, err)
}

func TestProviderWithoutKeyIsUnavailable(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	p, err := NewProvider("openai", nil)
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), "m", "hi", nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAIProviderSendsImages(t *testing.T) {
	var got openAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  [] "}}]}`))
	}))
	defer srv.Close()

	p := &openAIProvider{apiKey: "secret", baseURL: srv.URL, client: srv.Client()}
	out, err := p.Generate(context.Background(), "gpt", "find", []Image{{MIMEType: "image/png", Data: []byte{1, 2}}})
	require.NoError(t, err)
	require.Equal(t, "[]", out)
	require.Equal(t, "gpt", got.Model)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 2)
	require.Equal(t, "find", got.Messages[0].Content[0].Text)
	require.Equal(t, "data:image/png;base64,AQI=", got.Messages[0].Content[1].ImageURL.URL)
}

func TestOpenAIProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("quota"))
	}))
	defer srv.Close()

	p := &openrouterProvider{apiKey: "k", baseURL: srv.URL, client: srv.Client()}
	_, err := p.Generate(context.Background(), "m", "x", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota")
}

func TestManagerFindQuestions(t *testing.T) {
	gen := &stubGenerator{reply: " [] "}
	m := NewManager(gen, ManagerConfig{})
	out, err := m.FindQuestions(context.Background(), "--- Page 1 of a.pdf ---", "vectors", []Image{{MIMEType: "image/png"}})
	require.NoError(t, err)
	require.Equal(t, "[]", out)
	require.Equal(t, 1, gen.calls)
	require.Len(t, gen.images, 1)
	require.Contains(t, gen.prompt, "--- Page 1 of a.pdf ---")
	require.Contains(t, gen.prompt, `"vectors"`)
}

func TestManagerEmptyAndErrors(t *testing.T) {
	m := NewManager(&stubGenerator{reply: "   "}, ManagerConfig{})
	_, err := m.FindQuestions(context.Background(), "", "q", nil)
	require.Error(t, err)

	boom := errors.New("boom")
	m = NewManager(&stubGenerator{err: boom}, ManagerConfig{})
	_, err = m.FindQuestions(context.Background(), "", "q", nil)
	require.ErrorIs(t, err, boom)

	m = NewManager(nil, ManagerConfig{})
	_, err = m.FindQuestions(context.Background(), "", "q", nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestManagerTimeout(t *testing.T) {
	gen := &stubGenerator{reply: "[]", wait: 5 * time.Second}
	m := NewManager(gen, ManagerConfig{Timeout: 1})
	start := time.Now()
	_, err := m.FindQuestions(context.Background(), "", "q", nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 4*time.Second)
}

func TestBuildSearchPromptSchema(t *testing.T) {
	p := BuildSearchPrompt("TEXT", "integration")
	for _, field := range []string{"page_number", "source_filename", "question_index", "description", "quote"} {
		require.True(t, strings.Contains(p, `"`+field+`"`), field)
	}
	require.Contains(t, p, "TEXT")
}
