package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Model:      "test-model",
		HTTPClient: srv.Client(),
	}
}

func TestChatCompletionReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"content":"hello back"}}]}`))
	}))
	defer srv.Close()

	content, err := newTestClient(srv).ChatCompletion(context.Background(), []Message{
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", content)
}

func TestChatCompletionRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ChatCompletion(context.Background(), nil)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestChatCompletionQuotaExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ChatCompletion(context.Background(), nil)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
}

func TestChatCompletionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).ChatCompletion(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrQuotaExhausted)
	assert.Contains(t, err.Error(), "500")
}

func TestStreamChatCompletionReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"streamed\"}}]}\n\ndata: [DONE]\n\n"))
	}))
	defer srv.Close()

	body, err := newTestClient(srv).StreamChatCompletion(context.Background(), nil)
	require.NoError(t, err)
	defer body.Close()

	content, err := CollectContent(body)
	require.NoError(t, err)
	assert.Equal(t, "streamed", content)
}
