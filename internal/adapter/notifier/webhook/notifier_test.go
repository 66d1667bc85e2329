package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"framex/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastNotifier(baseURL string, retries int) *Notifier {
	n := NewNotifier(baseURL, 2*time.Second, retries)
	n.backoff = &Backoff{Min: time.Millisecond, Max: 2 * time.Millisecond, Factor: 2.0}
	return n
}

func TestNotifier_DeliversPayload(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notify", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := fastNotifier(srv.URL, 0)
	n.Notify(context.Background(), port.Notification{
		UserID:   "alice",
		JobID:    "job-1",
		Status:   port.NotifySuccess,
		VideoURL: "/outputs/frames_job-1.zip",
	})

	assert.Equal(t, "alice", got.ID)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "/outputs/frames_job-1.zip", got.VideoURL)
	assert.Empty(t, got.ErrorMessage)
}

func TestNotifier_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := fastNotifier(srv.URL, 3)
	n.Notify(context.Background(), port.Notification{JobID: "job-1", Status: port.NotifyError, ErrorMessage: "boom"})

	assert.Equal(t, int32(3), calls.Load())
}

func TestNotifier_GivesUpSilently(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := fastNotifier(srv.URL, 2)
	// Must not panic nor block; the method has no error to return.
	n.Notify(context.Background(), port.Notification{JobID: "job-1", Status: port.NotifyError})

	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestNotifier_UnreachableEndpoint(t *testing.T) {
	n := fastNotifier("http://127.0.0.1:1", 1)
	n.Notify(context.Background(), port.Notification{JobID: "job-1", Status: port.NotifyError})
}

func TestNotifier_EmptyBaseURLIsDisabled(t *testing.T) {
	n := fastNotifier("", 5)
	n.Notify(context.Background(), port.Notification{JobID: "job-1", Status: port.NotifySuccess})
}

func TestBackoff_Duration(t *testing.T) {
	b := &Backoff{Min: time.Second, Max: 4 * time.Second, Factor: 2.0}

	assert.Equal(t, time.Second, b.Duration(1))
	assert.Equal(t, 2*time.Second, b.Duration(2))
	assert.Equal(t, 4*time.Second, b.Duration(3))
	assert.Equal(t, 4*time.Second, b.Duration(10), "capped at max")
	assert.Equal(t, time.Second, b.Duration(0))
}

func TestBackoff_Jitter(t *testing.T) {
	b := NewBackoff(time.Second, 4*time.Second, 2.0)

	for i := 0; i < 50; i++ {
		d := b.Duration(2)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}
