// Package realtek implements the driver for the Realtek Fast/Gigabit Ethernet
// PHYs sharing the generic RTL identifier. The chips expose vendor registers
// through a page-switched window at registers 0x10-0x17 selected by register 0x1f.
//
// Operations are meant to be installed in a [phy.Registry] with [Register]
// and invoked through [phy.Device] entry points which hold the device lock.
package realtek

import (
	"log/slog"

	"github.com/soypat/rtlphy/internal"
	"github.com/soypat/rtlphy/phy"
)

const (
	// PHYIDGeneric is the identifier shared by the generic FE/GE parts.
	PHYIDGeneric = 0x001cc800
	// PHYIDMask is the device table mask. Revision bits are ignored.
	PHYIDMask = 0xfffffc00

	// DriverName is the name the driver registers under.
	DriverName = "Generic FE-GE Realtek PHY"
)

var feGE = &phy.Driver{
	Name:      DriverName,
	PHYID:     PHYIDGeneric,
	PHYIDMask: PHYIDMask,
	Match:     MatchGeneric,
	ReadPage: func(dev *phy.Device) (uint16, error) {
		return ReadPage(dev)
	},
	WritePage: func(dev *phy.Device, page uint16) error {
		return WritePage(dev, page)
	},
	ReadStatus: ReadStatus,
	Suspend:    Suspend,
	Resume:     Resume,
	ReadMMD:    ReadMMD,
	WriteMMD:   WriteMMD,
}

// Driver returns the generic FE-GE driver.
func Driver() *phy.Driver { return feGE }

// Register adds the driver to reg.
func Register(reg *phy.Registry, log *slog.Logger) error {
	err := reg.Register(feGE)
	if err != nil {
		return err
	}
	internal.LogAttrs(log, slog.LevelInfo, "realtek phy driver loaded")
	return nil
}

// Unregister removes the driver from reg.
func Unregister(reg *phy.Registry, log *slog.Logger) {
	reg.Unregister(feGE)
	internal.LogAttrs(log, slog.LevelInfo, "realtek phy driver unloaded")
}

// MatchGeneric claims devices with the generic identifier that do not support
// 2.5Gbps. 2.5G capable parts share the identifier but need a dedicated driver.
func MatchGeneric(dev *phy.Device) bool {
	return dev.ID() == PHYIDGeneric && !Supports2500(dev)
}

// Suspend powers down the PHY.
func Suspend(dev *phy.Device) error {
	return phy.GenericSuspend(dev)
}

// Resume powers up the PHY.
func Resume(dev *phy.Device) error {
	return phy.GenericResume(dev)
}
