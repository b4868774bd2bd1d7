package realtek

import "github.com/soypat/rtlphy/phy"

const (
	pageCapability   = 0xa61
	regCapability    = 0x13
	supports2500Full = 1 << 13
)

// Supports2500 reports whether the PHY advertises 2500BASE-T support.
// Bus errors are treated as no support so that probing never fails matching.
// Runs without the device lock held; each transaction takes the lock.
func Supports2500(dev phy.RegisterAccess) bool {
	v, err := readInPageLocked(dev, pageCapability, regCapability)
	return err == nil && v&supports2500Full != 0
}
