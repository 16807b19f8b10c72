package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NotifyMode selects which new records produce an outward notification.
type NotifyMode string

const (
	// NotifyUnknown alerts only on records with no registry match.
	NotifyUnknown NotifyMode = "unknown"
	// NotifyAll alerts on every new record except the ignore name.
	NotifyAll NotifyMode = "all"
)

// Dispatcher writes new records to the device log and fires one notification per alert.
type Dispatcher struct {
	devices    *DeviceLog
	eventPath  string
	notifier   Notifier
	mode       NotifyMode
	ignoreName string
	log        *zap.Logger
}

func NewDispatcher(cfg Config, notifier Notifier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		devices:    NewDeviceLog(cfg.Log.Path),
		eventPath:  cfg.Log.EventPath,
		notifier:   notifier,
		mode:       cfg.Notify.Mode,
		ignoreName: cfg.Notify.IgnoreName,
		log:        log,
	}
}

// Dispatch handles the new records of one cycle. Delivery failures are logged
// and dropped. A local log failure does not stop the notifications; it is
// returned once they have all been attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, at time.Time, records []DeviceRecord) error {
	if len(records) == 0 {
		return nil
	}

	var errs []error
	if err := d.devices.Append(at, records); err != nil {
		errs = append(errs, err)
	}

	var eventLines []string
	for _, r := range records {
		desc, ok := d.describe(r)
		if !ok {
			continue
		}

		if r.Unknown() {
			eventLines = append(eventLines,
				fmt.Sprintf("Unknown device detected on network. Device IP: %s, Device MAC: %s", r.IP, r.MAC))
		}

		if err := d.notifier.Notify(ctx, newAlertEvent(at, desc)); err != nil {
			d.log.Warn("Failed to send alert",
				zap.String("ip", r.IP),
				zap.String("mac", r.MAC),
				zap.Error(err))
		}
	}

	if d.eventPath != "" && len(eventLines) > 0 {
		if err := appendBlock(d.eventPath, at, eventLines); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// describe returns the notification text for r, or false when r is filtered out.
func (d *Dispatcher) describe(r DeviceRecord) (string, bool) {
	switch d.mode {
	case NotifyAll:
		if d.ignoreName != "" && r.Name == d.ignoreName {
			return "", false
		}
		if r.Unknown() {
			return unknownDescription(r), true
		}
		return fmt.Sprintf("New device detected on local network. Device: %s, Device IP: %s, Device MAC: %s",
			r.Name, r.IP, r.MAC), true
	default:
		if !r.Unknown() {
			return "", false
		}
		return unknownDescription(r), true
	}
}

func unknownDescription(r DeviceRecord) string {
	return fmt.Sprintf("Unknown device detected on local network. Device IP: %s, Device MAC: %s", r.IP, r.MAC)
}
