package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content any    `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 4)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, "assistant", body.Messages[2].Role)
		assert.Equal(t, "user", body.Messages[3].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Photosynthesis is..."}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig("")
	cfg.Provider = ProviderOpenAI
	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL + "/"
	cfg.MaxRetries = 0

	client, err := NewOpenAIClient(cfg, NoopObserver{})
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:         TaskAssistant,
		SystemPrompt: "You are SAHAYAK",
		UserPrompt:   "Explain photosynthesis",
		History: []Message{
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "Hello! How can I help?"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Photosynthesis is...", resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
}

func TestOpenAIClient_RejectsImages(t *testing.T) {
	cfg := testConfig("")
	cfg.APIKey = "sk-test"
	client, err := NewOpenAIClient(cfg, NoopObserver{})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{
		Task:   TaskOCR,
		Images: []Image{{MIMEType: "image/png", Data: []byte{1}}},
	})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(testConfig(""), NoopObserver{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), testConfig(""), NoopObserver{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGeminiHistory_MapsAssistantToModel(t *testing.T) {
	got := geminiHistory([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, genai.Text("hello"), got[1].Parts[0])
}

func TestGeminiParts_TextThenImages(t *testing.T) {
	parts := geminiParts(GenerateRequest{
		UserPrompt: "transcribe",
		Images:     []Image{{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}},
	})
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("transcribe"), parts[0])
	blob, ok := parts[1].(*genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", blob.MIMEType)
}

func TestFirstText_JoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Addition "), genai.Text("is combining")}}},
		},
	}
	assert.Equal(t, "Addition is combining", firstText(resp))
	assert.Equal(t, "", firstText(nil))
}

func TestNewClient_SelectsProvider(t *testing.T) {
	cfg := testConfig("http://localhost:11434")
	c, closer, err := NewClient(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer closer.Close()
	_, ok := c.(*ollamaClient)
	assert.True(t, ok)

	cfg.Enabled = false
	c, _, err = NewClient(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, disabledClient{}, c)

	cfg.Enabled = true
	cfg.Provider = ProviderOpenAI
	cfg.APIKey = "sk-test"
	c, _, err = NewClient(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	cfg.Provider = "bard"
	_, _, err = NewClient(context.Background(), cfg, nil)
	assert.Error(t, err)
}
