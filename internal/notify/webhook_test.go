package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifierDelivers(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(srv.URL, srv.Client())
	n := acceptedNotification()
	require.NoError(t, notifier.Notify(context.Background(), n))

	assert.Equal(t, n.TicketID, received.TicketID)
	assert.Equal(t, Subject(n), received.Subject)
	assert.Contains(t, received.Message, "Status: ACEITO")
}

func TestWebhookNotifierRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(srv.URL, srv.Client())
	err := notifier.Notify(context.Background(), acceptedNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestWebhookNotifierUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	notifier := NewWebhookNotifier(srv.URL, nil)
	err := notifier.Notify(context.Background(), acceptedNotification())
	assert.Error(t, err)
}
