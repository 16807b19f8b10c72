package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

// HistoryClient reads alert events back from the remote alert store.
type HistoryClient struct {
	allURL    string
	filterURL string
	client    *http.Client
}

func NewHistoryClient(cfg HistoryConfig, timeout time.Duration) *HistoryClient {
	return &HistoryClient{
		allURL:    cfg.AllURL,
		filterURL: cfg.FilterURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (h *HistoryClient) All(ctx context.Context) ([]AlertEvent, error) {
	if h.allURL == "" {
		return nil, ErrNoHistoryURL
	}
	return h.get(ctx, h.allURL)
}

// Between returns the events from start to end (YYYY-MM-DD, both at midnight).
func (h *HistoryClient) Between(ctx context.Context, start, end string) ([]AlertEvent, error) {
	if h.filterURL == "" {
		return nil, ErrNoHistoryURL
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}

	q := url.Values{}
	q.Set("startDateTime", start+"T00:00:00")
	q.Set("endDateTime", end+"T00:00:00")

	// the filter URL is configured with its own trailing "?" or "&"
	return h.get(ctx, h.filterURL+q.Encode())
}

func (h *HistoryClient) get(ctx context.Context, u string) ([]AlertEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status code %d", ErrRemoteQuery, resp.StatusCode)
	}

	var events []AlertEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrRemoteQuery, err)
	}
	return events, nil
}

func printHistory(w io.Writer, title string, events []AlertEvent) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%-20s | %-40s\n", "Timestamp", "Event Description")
	fmt.Fprintln(w, separator)
	for _, ev := range events {
		fmt.Fprintf(w, "%-20s | %-40s\n", ev.Timestamp, ev.Description)
	}
}
