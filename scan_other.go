//go:build !linux && !darwin

package main

import "context"

type unsupportedProber struct{}

func NewProber(opts ProbeOptions) (Prober, *sweepTarget, error) {
	target, err := resolveTarget(opts)
	if err != nil {
		return nil, nil, err
	}
	return unsupportedProber{}, target, nil
}

func (unsupportedProber) Sweep(context.Context) ([]DiscoveredHost, error) {
	return nil, ErrUnsupportedPlatform
}
