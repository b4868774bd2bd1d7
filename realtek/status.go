package realtek

import (
	"log/slog"

	"github.com/soypat/rtlphy/internal"
	"github.com/soypat/rtlphy/phy"
)

const (
	pagePHYStatus = 0xa43
	regPHYStatus  = 0x12
	// speedMask selects the resolved speed field of the PHY status register.
	speedMask = 0x0630
)

// ReadStatus refreshes link state with the generic procedure and then
// replaces the speed with the one the PHY resolved, which also covers
// speeds the standard registers cannot express.
// The caller must hold the device lock.
func ReadStatus(dev *phy.Device) error {
	err := phy.GenericReadStatus(dev)
	if err != nil {
		return err
	}
	return setSpeed(dev)
}

// setSpeed performs no bus access when the link is down.
func setSpeed(dev *phy.Device) error {
	if !dev.Link() {
		return nil
	}
	v, err := readInPage(dev, pagePHYStatus, regPHYStatus)
	if err != nil {
		return err
	}
	mbps, ok := decodeSpeed(v)
	if !ok {
		internal.LogAttrs(dev.Logger(), slog.LevelDebug, "rtl:speed-unknown", internal.SlogReg("status", v))
		return nil
	}
	dev.SetSpeed(mbps)
	return nil
}

// decodeSpeed maps the speed field of the PHY status register to Mbps.
// ok is false for encodings with no known speed.
func decodeSpeed(status uint16) (mbps int, ok bool) {
	switch status & speedMask {
	case 0x0000:
		return 10, true
	case 0x0010:
		return 100, true
	case 0x0020:
		return 1000, true
	case 0x0200:
		return 10_000, true
	case 0x0210:
		return 2500, true
	case 0x0220:
		return 5000, true
	}
	return 0, false
}
