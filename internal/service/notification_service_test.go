package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ppdb-api/pkg/config"
	"github.com/noah-isme/ppdb-api/pkg/jobs"
)

func newNotificationService(apiURL, token string) *NotificationService {
	return NewNotificationService(
		config.WhatsAppConfig{APIURL: apiURL, Token: token, Timeout: time.Second},
		config.NotifyConfig{Workers: 1},
		nil,
		nil,
	)
}

func whatsAppJob(to, message string) jobs.Job {
	return jobs.Job{ID: "job-1", Type: jobTypeWhatsApp, Payload: whatsAppMessage{To: to, Message: message}}
}

func TestDeliverPostsFormWithAuthorization(t *testing.T) {
	var gotAuth, gotTarget, gotMessage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotAuth = r.Header.Get("Authorization")
		gotTarget = r.FormValue("target")
		gotMessage = r.FormValue("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := newNotificationService(server.URL, "gateway-token")
	err := svc.deliver(context.Background(), whatsAppJob("628123456789", "Halo"))
	require.NoError(t, err)
	assert.Equal(t, "gateway-token", gotAuth)
	assert.Equal(t, "628123456789", gotTarget)
	assert.Equal(t, "Halo", gotMessage)
}

func TestDeliverEmptyTokenSkipsGateway(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := newNotificationService(server.URL, "")
	err := svc.deliver(context.Background(), whatsAppJob("628123456789", "Halo"))
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDeliverGatewayErrorIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newNotificationService(server.URL, "gateway-token")
	err := svc.deliver(context.Background(), whatsAppJob("628123456789", "Halo"))
	require.Error(t, err)
}

func TestEnqueueBeforeStartIsSwallowed(t *testing.T) {
	svc := newNotificationService("http://localhost:0", "token")
	// Must not panic or block; the error is logged and dropped.
	svc.Enqueue("628123456789", "Halo")
}

func TestEnqueueDeliversThroughQueue(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		received <- r.FormValue("target")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := newNotificationService(server.URL, "gateway-token")
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	defer func() {
		cancel()
		svc.Stop()
	}()

	svc.Enqueue("628123456789", "Halo")
	select {
	case target := <-received:
		assert.Equal(t, "628123456789", target)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}
