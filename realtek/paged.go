package realtek

import "github.com/soypat/rtlphy/phy"

// regPageSelect selects the bank seen through the vendor register window.
// Page 0 is the standard register bank. Only the functions in this file
// write it, and every sequence selecting a non-default page ends on page 0.
const regPageSelect = 0x1f

// WritePage selects page. The caller must hold the device lock.
func WritePage(dev phy.LocklessAccess, page uint16) error {
	return dev.LocklessWrite(regPageSelect, page)
}

// ReadPage returns the selected page. The caller must hold the device lock.
func ReadPage(dev phy.LocklessAccess) (uint16, error) {
	return dev.LocklessRead(regPageSelect)
}

// inPage selects page, runs fn and then selects page 0 whatever the outcome.
// The first error is returned; a failed restoration is only reported when
// everything before it succeeded.
func inPage(dev phy.LocklessAccess, page uint16, fn func() error) error {
	err := WritePage(dev, page)
	if err == nil {
		err = fn()
	}
	errRestore := WritePage(dev, 0)
	if err == nil {
		err = errRestore
	}
	return err
}

// readInPage reads reg on page and returns to page 0.
// The caller must hold the device lock.
func readInPage(dev phy.LocklessAccess, page, reg uint16) (v uint16, err error) {
	err = inPage(dev, page, func() (err error) {
		v, err = dev.LocklessRead(reg)
		return err
	})
	return v, err
}

// writeInPage writes reg on page and returns to page 0.
// The caller must hold the device lock.
func writeInPage(dev phy.LocklessAccess, page, reg, value uint16) error {
	return inPage(dev, page, func() error {
		return dev.LocklessWrite(reg, value)
	})
}

// readInPageLocked is readInPage for callers not holding the device lock.
// Each transaction acquires the lock on its own.
func readInPageLocked(dev phy.RegisterAccess, page, reg uint16) (v uint16, err error) {
	err = dev.Write(regPageSelect, page)
	if err == nil {
		v, err = dev.Read(reg)
	}
	errRestore := dev.Write(regPageSelect, 0)
	if err == nil {
		err = errRestore
	}
	return v, err
}
