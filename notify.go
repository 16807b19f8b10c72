package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const alertTimeLayout = "2006-01-02T15:04:05"

// AlertEvent is the payload of one outward notification.
type AlertEvent struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"eventDescription"`
}

func newAlertEvent(at time.Time, description string) AlertEvent {
	return AlertEvent{
		Timestamp:   at.Format(alertTimeLayout),
		Description: description,
	}
}

// Notifier delivers one alert event. Implementations decide delivery guarantees;
// the dispatcher never retries.
type Notifier interface {
	Notify(ctx context.Context, ev AlertEvent) error
}

// HTTPNotifier posts events as JSON. Any non-2xx status is a delivery failure.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

func NewHTTPNotifier(url string, timeout time.Duration) *HTTPNotifier {
	return &HTTPNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, ev AlertEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status code %d", ErrDeliveryFailed, resp.StatusCode)
	}
	return nil
}

// LogNotifier writes events to the logger. Used when no endpoint is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev AlertEvent) error {
	n.log.Warn("🚨 Alert",
		zap.String("timestamp", ev.Timestamp),
		zap.String("event", ev.Description))
	return nil
}

func newNotifier(cfg NotifyConfig, log *zap.Logger) Notifier {
	if cfg.URL == "" {
		return NewLogNotifier(log)
	}
	return NewHTTPNotifier(cfg.URL, cfg.Timeout)
}
