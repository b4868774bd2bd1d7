// Package phy provides Ethernet PHY management via MDIO.
// It implements the host side of a PHY driver model: a Device handle
// guarding register access with a device-wide lock, a Driver operation
// table with generic IEEE 802.3 Clause 22 fallbacks and a Registry that
// binds drivers to devices by identifier.
package phy

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soypat/rtlphy/internal"
)

// MDIOBus is a HAL for MDIO bus access supporting both Clause 22 and Clause 45 devices.
// Implementations should use devaddr to select the framing:
//   - devaddr=0: Clause 22 framing (devaddr ignored in transaction)
//   - devaddr>=1: Clause 45 framing (PMA/PMD=1, WIS=2, PCS=3, PHY XS=4, DTE XS=5, AN=7)
//
// Register address range: Clause 22 uses 0-31, Clause 45 uses 0-65535.
// Invalid combinations of devaddr and regAddr may or may not return an error
// depending on the implementation or result in undefined behavior.
type MDIOBus interface {
	// Read reads a 16-bit register from the PHY.
	Read(phyAddr, devAddr uint8, regAddr uint16) (value uint16, err error)
	// Write writes a 16-bit value to a PHY register.
	Write(phyAddr, devAddr uint8, regAddr, value uint16) error
}

// RegisterAccess is the locking register access set. Every call acquires
// the device lock for the duration of a single transaction, so it must not be
// used while the lock is already held, i.e: from any Driver operation other than Match.
type RegisterAccess interface {
	Read(regAddr uint16) (uint16, error)
	Write(regAddr, value uint16) error
}

// LocklessAccess is the register access set for callers already holding the
// device lock. Driver operations invoked through a Device entry point run with
// the lock held and must use this set.
type LocklessAccess interface {
	LocklessRead(regAddr uint16) (uint16, error)
	LocklessWrite(regAddr, value uint16) error
}

var (
	_ RegisterAccess = (*Device)(nil)
	_ LocklessAccess = (*Device)(nil)
)

// FindClause22PHYs finds all regular non-clause45 PHYs on the MDIO bus and writes them to dst.
// FindClause22PHYs returns error only if unable to find no PHYs.
func FindClause22PHYs(mdio MDIOBus, dst []uint8) (n int, err error) {
	const maxAddr = 31
	if len(dst) < 32 {
		return -1, errShortBuffer
	}
	n = 0
	for addr := uint8(0); addr <= maxAddr; addr++ {
		val, err := mdio.Read(addr, 0, AddrBMSR)
		if err != nil {
			continue
		}
		// Basic status has some bits that must be zero and one, so if this check fails then we know its a bad address.
		if val != 0xffff && val != 0x0000 {
			dst[n] = addr
			n++
		}
		time.Sleep(150 * time.Microsecond)
	}
	if n <= 0 {
		err = errors.New("no phy found")
	}
	return n, err
}

// Device is the handle to a single PHY on an MDIO bus. Register transactions
// and link state updates are serialized by a device-wide lock which the
// Device entry points (ReadStatus, Suspend, Resume, ReadMMD, WriteMMD,
// ReadPage, WritePage) hold while running the bound Driver's operation.
type Device struct {
	mu     sync.Mutex
	mdio   MDIOBus
	drv    *Driver
	logger logger
	id     uint32
	speed  int
	duplex Duplex
	link   bool
	// phyaddr is the Clause 22 PHY address (0-31).
	phyaddr uint8
}

// ConfigureAs22 resets all state of device to be used as a Clause22 device. Does not do a software reset.
func (phy *Device) ConfigureAs22(mdio MDIOBus, phyAddr uint8) error {
	if phyAddr > 31 {
		return ErrInvalidAddr
	} else if mdio == nil {
		return ErrInvalidConfig
	}
	phy.mu.Lock()
	defer phy.mu.Unlock()
	phy.mdio = mdio
	phy.phyaddr = phyAddr
	phy.drv = nil
	phy.id = 0
	phy.speed = 0
	phy.duplex = DuplexUnknown
	phy.link = false
	return nil
}

// SetLogger sets the logger used by the device and passed on to drivers via [Device.Logger].
func (phy *Device) SetLogger(log *slog.Logger) {
	phy.logger = logger{log: log}
}

// Logger returns the device logger. May be nil.
func (phy *Device) Logger() *slog.Logger { return phy.logger.log }

// PHYAddr returns the PHY address on the MDIO bus (0-31).
func (phy *Device) PHYAddr() uint8 {
	return phy.phyaddr
}

// ReadID reads the PHY Identifier registers 2 and 3 and stores the
// 32-bit identifier returned by [Device.ID].
func (phy *Device) ReadID() (uint32, error) {
	id1, err := phy.Read(regPhyId1)
	if err != nil {
		return 0, err
	}
	id2, err := phy.Read(regPhyId2)
	if err != nil {
		return 0, err
	}
	phy.id = uint32(id1)<<16 | uint32(id2)
	phy.logger.debug("phy:id", slog.Uint64("addr", uint64(phy.phyaddr)), slog.Uint64("id", uint64(phy.id)))
	return phy.id, nil
}

// ID returns the chip identifier last read by [Device.ReadID].
func (phy *Device) ID() uint32 { return phy.id }

// Driver returns the driver bound to the device by [Registry.Attach], or nil.
func (phy *Device) Driver() *Driver {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	return phy.drv
}

// Link reports the link state from the last status refresh.
func (phy *Device) Link() bool { return phy.link }

// Speed returns the link speed in Mbps from the last status refresh, 0 if unknown.
func (phy *Device) Speed() int { return phy.speed }

// Duplex returns the duplex from the last status refresh.
func (phy *Device) Duplex() Duplex { return phy.duplex }

// SetLink sets the link state. Drivers call it with the device lock held.
func (phy *Device) SetLink(up bool) { phy.link = up }

// SetSpeed sets the link speed in Mbps. Drivers call it with the device lock held.
func (phy *Device) SetSpeed(mbps int) { phy.speed = mbps }

// SetDuplex sets the link duplex. Drivers call it with the device lock held.
func (phy *Device) SetDuplex(d Duplex) { phy.duplex = d }

func (phy *Device) setLinkMode(lm LinkMode) {
	phy.speed = lm.SpeedMbps()
	switch {
	case lm == LinkDown:
		phy.duplex = DuplexUnknown
	case lm.IsFullDuplex():
		phy.duplex = DuplexFull
	default:
		phy.duplex = DuplexHalf
	}
}

// Read reads a Clause 22 register acquiring the device lock.
func (phy *Device) Read(regAddr uint16) (uint16, error) {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	return phy.rread(regAddr)
}

// Write writes a Clause 22 register acquiring the device lock.
func (phy *Device) Write(regAddr, value uint16) error {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	return phy.rwrite(regAddr, value)
}

// LocklessRead reads a Clause 22 register. The caller must hold the device lock.
func (phy *Device) LocklessRead(regAddr uint16) (uint16, error) {
	return phy.rread(regAddr)
}

// LocklessWrite writes a Clause 22 register. The caller must hold the device lock.
func (phy *Device) LocklessWrite(regAddr, value uint16) error {
	return phy.rwrite(regAddr, value)
}

// ReadStatus refreshes link, speed and duplex using the bound driver's
// ReadStatus operation or [GenericReadStatus].
func (phy *Device) ReadStatus() error {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	var err error
	if phy.drv != nil && phy.drv.ReadStatus != nil {
		err = phy.drv.ReadStatus(phy)
	} else {
		err = GenericReadStatus(phy)
	}
	if err != nil {
		phy.logger.logerr("phy:status", slog.String("err", err.Error()))
		return err
	}
	phy.logger.debug("phy:status", slog.Bool("link", phy.link), slog.Int("speed", phy.speed), slog.String("duplex", phy.duplex.String()))
	return nil
}

// Suspend powers down the PHY using the bound driver's Suspend operation or [GenericSuspend].
func (phy *Device) Suspend() error {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	if phy.drv != nil && phy.drv.Suspend != nil {
		return phy.drv.Suspend(phy)
	}
	return GenericSuspend(phy)
}

// Resume powers up the PHY using the bound driver's Resume operation or [GenericResume].
func (phy *Device) Resume() error {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	if phy.drv != nil && phy.drv.Resume != nil {
		return phy.drv.Resume(phy)
	}
	return GenericResume(phy)
}

// ReadMMD reads a Clause 45 MMD register. Drivers may emulate MMD registers
// the hardware lacks and return [ErrNotSupported] for the rest.
func (phy *Device) ReadMMD(devnum uint8, regnum uint16) (uint16, error) {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	if phy.drv != nil && phy.drv.ReadMMD != nil {
		return phy.drv.ReadMMD(phy, devnum, regnum)
	}
	return GenericReadMMD(phy, devnum, regnum)
}

// WriteMMD writes a Clause 45 MMD register. See [Device.ReadMMD].
func (phy *Device) WriteMMD(devnum uint8, regnum, value uint16) error {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	if phy.drv != nil && phy.drv.WriteMMD != nil {
		return phy.drv.WriteMMD(phy, devnum, regnum, value)
	}
	return GenericWriteMMD(phy, devnum, regnum, value)
}

// ReadPage returns the selected register page of PHYs with banked registers.
// Returns [ErrNotSupported] if the bound driver has no page operations.
func (phy *Device) ReadPage() (uint16, error) {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	if phy.drv == nil || phy.drv.ReadPage == nil {
		return 0, ErrNotSupported
	}
	return phy.drv.ReadPage(phy)
}

// WritePage selects a register page. See [Device.ReadPage].
func (phy *Device) WritePage(page uint16) error {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	if phy.drv == nil || phy.drv.WritePage == nil {
		return ErrNotSupported
	}
	return phy.drv.WritePage(phy, page)
}

// BasicControl reads the Basic Mode Control Register (BMCR, register 0).
func (phy *Device) BasicControl() (BMCR, error) {
	ctl, err := phy.Read(AddrBMCR)
	return BMCR(ctl), err
}

// BasicStatus reads the Basic Mode Status Register (BMSR, register 1).
func (phy *Device) BasicStatus() (BMSR, error) {
	stat, err := phy.Read(AddrBMSR)
	return BMSR(stat), err
}

// Advertisement reads the current Auto-Negotiation Advertisement Register.
func (phy *Device) Advertisement() (ANAR, error) {
	val, err := phy.Read(AddrANAR)
	return ANAR(val), err
}

// LinkPartnerAdvertisement reads what the link partner is advertising (ANLPAR).
func (phy *Device) LinkPartnerAdvertisement() (ANAR, error) {
	val, err := phy.Read(AddrANLPAR)
	return ANAR(val), err
}

// RestartAutoNeg enables auto-negotiation and restarts it.
func (phy *Device) RestartAutoNeg() error {
	phy.mu.Lock()
	defer phy.mu.Unlock()
	ctl, err := phy.rread(AddrBMCR)
	if err != nil {
		return err
	}
	return phy.rwrite(AddrBMCR, ctl|uint16(BMCRANEnable|BMCRANRestart))
}

// ResetPHY performs a software reset and waits for completion.
// Returns an error on IO error on MDIO bus or on timeout during wait for register reset.
func (phy *Device) ResetPHY() (err error) {
	err = phy.Write(AddrBMCR, uint16(BMCRReset))
	if err != nil {
		return err
	}
	// Wait for reset to complete (bit self-clears).
	// IEEE 802.3 allows up to 500ms.
	const maxPolls = 50
	const resetTimeout = 500 * time.Millisecond // As per standard.
	var ctl BMCR
	for i := 0; i < maxPolls; i++ {
		time.Sleep(resetTimeout / maxPolls)
		ctl, err = phy.BasicControl()
		if err != nil {
			continue
		}
		if ctl&BMCRReset == 0 {
			return nil
		}
	}
	if err != nil {
		return err
	}
	return ErrResetTimeout
}

func (phy *Device) rread(regaddr uint16) (uint16, error) {
	v, err := phy.mdio.Read(phy.phyaddr, 0, regaddr)
	if phy.logger.logenabled(internal.LevelTrace) {
		phy.logger.trace("mdio:read", internal.SlogReg("reg", regaddr), internal.SlogReg("val", v), slog.Bool("err", err != nil))
	}
	return v, err
}

func (phy *Device) rwrite(regaddr, value uint16) error {
	err := phy.mdio.Write(phy.phyaddr, 0, regaddr, value)
	if phy.logger.logenabled(internal.LevelTrace) {
		phy.logger.trace("mdio:write", internal.SlogReg("reg", regaddr), internal.SlogReg("val", value), slog.Bool("err", err != nil))
	}
	return err
}
