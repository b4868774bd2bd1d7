package realtek

import (
	"log/slog"

	"github.com/soypat/rtlphy/internal"
	"github.com/soypat/rtlphy/phy"
)

// These PHYs lack the Clause 45 EEE registers. Their contents live in vendor
// pages and are reached through the page window instead.

type mmdAddr struct {
	devnum uint8
	regnum uint16
}

type access uint8

const (
	accessRead access = 1 << iota
	accessWrite
)

type vendorReg struct {
	page   uint16
	reg    uint16
	access access
}

var eeeRegs = map[mmdAddr]vendorReg{
	{phy.MMDPCS, phy.AddrPCSEEEAbility}:     {page: 0xa5c, reg: 0x12, access: accessRead},
	{phy.MMDAN, phy.AddrANEEEAdvertisement}: {page: 0xa5d, reg: 0x10, access: accessRead | accessWrite},
	{phy.MMDAN, phy.AddrANEEELinkPartner}:   {page: 0xa5d, reg: 0x11, access: accessRead},
}

// lookupEEE returns the vendor register emulating (devnum, regnum) for acc.
func lookupEEE(devnum uint8, regnum uint16, acc access) (vendorReg, bool) {
	vr, ok := eeeRegs[mmdAddr{devnum, regnum}]
	if !ok || vr.access&acc == 0 {
		return vendorReg{}, false
	}
	return vr, true
}

// ReadMMD emulates reads of the EEE MMD registers. Any other register
// returns [phy.ErrNotSupported] without bus access.
// The caller must hold the device lock.
func ReadMMD(dev *phy.Device, devnum uint8, regnum uint16) (uint16, error) {
	vr, ok := lookupEEE(devnum, regnum, accessRead)
	if !ok {
		return 0, phy.ErrNotSupported
	}
	v, err := readInPage(dev, vr.page, vr.reg)
	if err != nil {
		internal.LogAttrs(dev.Logger(), slog.LevelError, "rtl:mmd-read", slog.Uint64("devnum", uint64(devnum)),
			internal.SlogReg("regnum", regnum), slog.String("err", err.Error()))
	}
	return v, err
}

// WriteMMD emulates writes of the EEE advertisement register. Any other register
// returns [phy.ErrNotSupported] without bus access.
// The caller must hold the device lock.
func WriteMMD(dev *phy.Device, devnum uint8, regnum, value uint16) error {
	vr, ok := lookupEEE(devnum, regnum, accessWrite)
	if !ok {
		return phy.ErrNotSupported
	}
	err := writeInPage(dev, vr.page, vr.reg, value)
	if err != nil {
		internal.LogAttrs(dev.Logger(), slog.LevelError, "rtl:mmd-write", slog.Uint64("devnum", uint64(devnum)),
			internal.SlogReg("regnum", regnum), slog.String("err", err.Error()))
	}
	return err
}
