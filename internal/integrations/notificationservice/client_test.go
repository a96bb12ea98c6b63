package notificationservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestClient_Notify(t *testing.T) {
	var got notificationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/notifications", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})
	err := c.Notify(context.Background(), Notification{
		UserID: 42,
		Title:  "Парковка заканчивается",
		Body:   "Осталось 15 минут",
		Delay:  90 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "Парковка заканчивается", got.Title)
	assert.Equal(t, int64(90), got.DelaySeconds)
}

func TestClient_Notify_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Code: 503, Message: "down"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nopLogger{})
	err := c.Notify(context.Background(), Notification{UserID: 1, Title: "t"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Contains(t, err.Error(), "down")
}

func TestNotify_InvalidNotification(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", time.Second, nopLogger{})
	assert.ErrorIs(t, c.Notify(context.Background(), Notification{Title: "t"}), ErrInvalidNotification)

	ln := NewLogNotifier(nopLogger{})
	assert.ErrorIs(t, ln.Notify(context.Background(), Notification{UserID: 1}), ErrInvalidNotification)
	assert.NoError(t, ln.Notify(context.Background(), Notification{UserID: 1, Title: "t"}))
}
