package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	logHeaderLayout = "2006-01-02 15:04:05"
	separatorWidth  = 60
)

var separator = strings.Repeat("-", separatorWidth)

// appendBlock opens path for append, writes one framed block and closes it.
// Nothing is held open between calls.
func appendBlock(path string, at time.Time, lines []string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrLocalIO, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Devices found at %s\n", at.Format(logHeaderLayout))
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w, separator)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	return nil
}

// DeviceLog is the append-only record of sweeps that found new devices.
type DeviceLog struct {
	path string
}

func NewDeviceLog(path string) *DeviceLog {
	return &DeviceLog{path: path}
}

func (l *DeviceLog) Path() string {
	return l.path
}

func (l *DeviceLog) Append(at time.Time, records []DeviceRecord) error {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("%s %s %s", r.Name, r.IP, r.MAC))
	}
	return appendBlock(l.path, at, lines)
}

// readLocalLog copies a log file to w, followed by an end marker.
func readLocalLog(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(w, "Log Report (%s):\n\n", path)
	if _, err := io.Copy(w, f); err != nil {
		return err
	}
	fmt.Fprintln(w, "--End of Log--")
	return nil
}
