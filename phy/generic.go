package phy

// Generic Clause 22 behavior. Used by Device entry points when the bound driver
// leaves an operation nil and callable by drivers wrapping the base behavior.
// All functions require the device lock to be held.
//
// Inspired by drivers/net/phy/phy_device.c

// GenericReadStatus updates link, speed and duplex from the standard registers.
//
// Per IEEE 802.3:
//   - BMSR.LinkStatus is latched-low, so the first read clears any previous fault
//   - BMSR.ANComplete must be set before link parameters are valid (when AN enabled)
func GenericReadStatus(dev *Device) error {
	_, err := dev.LocklessRead(AddrBMSR)
	if err != nil {
		return err
	}
	v, err := dev.LocklessRead(AddrBMSR)
	if err != nil {
		return err
	}
	status := BMSR(v)
	dev.link = status.LinkUp()
	dev.setLinkMode(LinkDown)
	if !dev.link {
		return nil
	}
	v, err = dev.LocklessRead(AddrBMCR)
	if err != nil {
		return err
	}
	ctl := BMCR(v)
	if ctl&BMCRANEnable == 0 {
		dev.setLinkMode(ctl.ForcedLinkMode())
		return nil
	} else if !status.AutoNegotiationComplete() {
		return nil
	}

	mode := LinkDown
	if status&BMSRExtStatus != 0 {
		gbcr, err := dev.LocklessRead(AddrGBCR)
		if err != nil {
			return err
		}
		gbsr, err := dev.LocklessRead(AddrGBSR)
		if err != nil {
			return err
		}
		mode = GBSR(gbsr).Common(GBCR(gbcr))
	}
	if mode == LinkDown {
		anar, err := dev.LocklessRead(AddrANAR)
		if err != nil {
			return err
		}
		anlpar, err := dev.LocklessRead(AddrANLPAR)
		if err != nil {
			return err
		}
		mode = (ANAR(anar) & ANAR(anlpar)).LinkMode()
	}
	dev.setLinkMode(mode)
	return nil
}

// GenericSuspend sets the BMCR power down bit.
func GenericSuspend(dev *Device) error {
	ctl, err := dev.LocklessRead(AddrBMCR)
	if err != nil {
		return err
	}
	return dev.LocklessWrite(AddrBMCR, ctl|uint16(BMCRPowerDown))
}

// GenericResume clears the BMCR power down bit.
func GenericResume(dev *Device) error {
	ctl, err := dev.LocklessRead(AddrBMCR)
	if err != nil {
		return err
	}
	return dev.LocklessWrite(AddrBMCR, ctl&^uint16(BMCRPowerDown))
}

// GenericReadMMD reads an MMD register through the Clause 22 indirect access registers.
func GenericReadMMD(dev *Device, devnum uint8, regnum uint16) (uint16, error) {
	err := mmdIndirect(dev, devnum, regnum)
	if err != nil {
		return 0, err
	}
	return dev.LocklessRead(regMMDData)
}

// GenericWriteMMD writes an MMD register through the Clause 22 indirect access registers.
func GenericWriteMMD(dev *Device, devnum uint8, regnum, value uint16) error {
	err := mmdIndirect(dev, devnum, regnum)
	if err != nil {
		return err
	}
	return dev.LocklessWrite(regMMDData, value)
}

// mmdIndirect latches the MMD register address and leaves the data register
// pointing at it.
func mmdIndirect(dev *Device, devnum uint8, regnum uint16) error {
	if devnum == 0 || uint16(devnum) > mmdDevMask {
		return ErrInvalidAddr
	}
	dev16 := uint16(devnum)
	err := dev.LocklessWrite(regMMDControl, mmdFuncAddr|dev16)
	if err != nil {
		return err
	}
	err = dev.LocklessWrite(regMMDData, regnum)
	if err != nil {
		return err
	}
	return dev.LocklessWrite(regMMDControl, mmdFuncData|dev16)
}
