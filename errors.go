package main

import "errors"

var (
	// Interface / range errors
	ErrNoUsableInterface   = errors.New("no usable interface found")
	ErrNoIPv4              = errors.New("no IPv4 address found on interface")
	ErrInvalidRange        = errors.New("invalid address range")
	ErrUnsupportedPlatform = errors.New("ARP sweep not supported on this platform")

	// Registry errors
	ErrInvalidEntry = errors.New("invalid registry entry")

	// Alerting errors
	ErrDeliveryFailed = errors.New("notification delivery failed")
	ErrLocalIO        = errors.New("local log write failed")

	// Remote history errors
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrRemoteQuery  = errors.New("remote log query failed")
	ErrNoHistoryURL = errors.New("history endpoint not configured")
)
