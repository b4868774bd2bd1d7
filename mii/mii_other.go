//go:build !linux

package mii

import "errors"

type Bus struct{}

func Open(ifname string) (*Bus, error) {
	return nil, errors.ErrUnsupported
}

func (bus *Bus) Name() string { return "" }

func (bus *Bus) Close() error {
	return errors.ErrUnsupported
}

func (bus *Bus) PHYAddr() (uint8, error) {
	return 0, errors.ErrUnsupported
}

func (bus *Bus) Read(phyAddr, devAddr uint8, regAddr uint16) (uint16, error) {
	return 0, errors.ErrUnsupported
}

func (bus *Bus) Write(phyAddr, devAddr uint8, regAddr, value uint16) error {
	return errors.ErrUnsupported
}
