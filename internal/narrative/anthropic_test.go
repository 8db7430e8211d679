package narrative_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dungeon/internal/narrative"
)

func TestAnthropicProvider_PrefillsJSON(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		System   []struct{ Text string } `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "test-model",
			"content": [{"type": "text", "text": "\"story\":\"Rain falls.\",\"choices\":[\"a\",\"b\",\"c\"]}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`))
	}))
	defer srv.Close()

	p := narrative.NewAnthropicProvider("key", "test-model", 0.8, 800, anthropicoption.WithBaseURL(srv.URL))
	out, err := p.Complete(context.Background(), narrative.Prompt{System: "sys", User: "usr"})
	require.NoError(t, err)

	resp, err := narrative.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "Rain falls.", resp.Story)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.System, 1)
	assert.Equal(t, "sys", got.System[0].Text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "{", got.Messages[1].Content[0].Text)
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	p := narrative.NewAnthropicProvider("key", "test-model", 0.8, 800, anthropicoption.WithBaseURL(srv.URL))
	_, err := p.Complete(context.Background(), narrative.Prompt{System: "sys", User: "usr"})
	assert.Error(t, err)
	assert.Equal(t, "anthropic", p.Name())
}

func TestGeminiProvider_Construct(t *testing.T) {
	p, err := narrative.NewGeminiProvider(context.Background(), "key", "gemini-2.5-flash", 0.8, 800)
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())
	assert.NoError(t, p.Close())
}
