// Package mii implements phy.MDIOBus on top of the MII ioctls a Linux network
// interface driver exposes for its MDIO bus.
package mii

import "github.com/soypat/rtlphy/phy"

var _ phy.MDIOBus = (*Bus)(nil)

const (
	phyIDC45     = 0x8000
	phyIDPrtMask = 0x03e0
	phyIDDevMask = 0x001f
)

// phyID encodes the phy_id field of an MII ioctl request. A non-zero devAddr
// selects Clause 45 framing with phyAddr as the port address.
func phyID(phyAddr, devAddr uint8) uint16 {
	if devAddr == 0 {
		return uint16(phyAddr) & phyIDDevMask
	}
	return phyIDC45 | (uint16(phyAddr)<<5)&phyIDPrtMask | uint16(devAddr)&phyIDDevMask
}
