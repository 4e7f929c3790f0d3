package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateBodyShortUntouched(t *testing.T) {
	assert.Equal(t, "короткий текст", TruncateBody("короткий текст"))
}

func TestTruncateBodyLongGetsEllipsis(t *testing.T) {
	long := strings.Repeat("я", 200)
	got := TruncateBody(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, 141, utf8.RuneCountInString(got))
}

func TestQueuePostsToGateway(t *testing.T) {
	var got QueueInput
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications/queue", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Gateway-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"deliveries":2}`)
	}))
	defer server.Close()

	n := NewNotifier(server.URL, "secret")
	result, err := n.Queue(context.Background(), QueueInput{
		UserID: "u1",
		Type:   NotifyAssistantMessage,
		Title:  "AIc ответил",
		Body:   strings.Repeat("a", 300),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Deliveries)
	assert.Equal(t, "normal", got.Priority)
	assert.Equal(t, 141, utf8.RuneCountInString(got.Body))
}

func TestQueueGatewayErrorSurfacesToCaller(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewNotifier(server.URL, "")
	_, err := n.Queue(context.Background(), QueueInput{UserID: "u1", Type: "test", Title: "t", Body: "b"})
	assert.Error(t, err)
}

func TestQueueWithoutGatewayConfiguredSkips(t *testing.T) {
	n := NewNotifier("", "")
	result, err := n.Queue(context.Background(), QueueInput{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}
