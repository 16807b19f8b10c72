package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPNotifier_PostsJSON(t *testing.T) {
	var (
		gotMethod string
		gotType   string
		gotBody   map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, time.Second)
	ev := newAlertEvent(sweepTime, "Unknown device detected on local network. Device IP: 10.0.0.5")
	require.NoError(t, n.Notify(context.Background(), ev))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, map[string]string{
		"timestamp":        "2026-10-18T09:30:05",
		"eventDescription": "Unknown device detected on local network. Device IP: 10.0.0.5",
	}, gotBody)
}

func TestHTTPNotifier_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewHTTPNotifier(srv.URL, time.Second).Notify(context.Background(), AlertEvent{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "500")
}

func TestHTTPNotifier_CreatedIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	assert.NoError(t, NewHTTPNotifier(srv.URL, time.Second).Notify(context.Background(), AlertEvent{}))
}

func TestHTTPNotifier_TimeoutIsBounded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := NewHTTPNotifier(srv.URL, 50*time.Millisecond).Notify(context.Background(), AlertEvent{})
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewNotifier(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	n := newNotifier(NotifyConfig{}, log)
	require.IsType(t, &LogNotifier{}, n)
	require.NoError(t, n.Notify(context.Background(), AlertEvent{Timestamp: "t", Description: "d"}))
	assert.Equal(t, 1, logs.Len())

	assert.IsType(t, &HTTPNotifier{}, newNotifier(NotifyConfig{URL: "http://127.0.0.1:1", Timeout: time.Second}, log))
}
