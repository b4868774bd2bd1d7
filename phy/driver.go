package phy

import (
	"log/slog"
	"slices"
	"sync"
)

// Driver is the operation table of a PHY driver. Nil operations fall back to
// the generic Clause 22 behavior. All operations except Match are invoked with
// the device lock held and must use [LocklessAccess]. Match runs before the
// device is bound, without the lock, and must use [RegisterAccess].
type Driver struct {
	// Name is a human readable driver name. Must be unique within a Registry.
	Name string
	// PHYID and PHYIDMask form the device table entry: a device is supported
	// when its identifier masked with PHYIDMask equals PHYID masked with PHYIDMask.
	PHYID     uint32
	PHYIDMask uint32

	// Match, if set, replaces the device table comparison when binding.
	Match func(dev *Device) bool

	ReadPage   func(dev *Device) (uint16, error)
	WritePage  func(dev *Device, page uint16) error
	ReadStatus func(dev *Device) error
	Suspend    func(dev *Device) error
	Resume     func(dev *Device) error
	ReadMMD    func(dev *Device, devnum uint8, regnum uint16) (uint16, error)
	WriteMMD   func(dev *Device, devnum uint8, regnum, value uint16) error
}

// GenericDriver is bound by [Registry.Attach] when no registered driver matches.
var GenericDriver = &Driver{Name: "Generic PHY"}

// Supports reports whether id is in the driver's device table.
func (drv *Driver) Supports(id uint32) bool {
	return id&drv.PHYIDMask == drv.PHYID&drv.PHYIDMask
}

func (drv *Driver) matches(dev *Device) bool {
	if drv.Match != nil {
		return drv.Match(dev)
	}
	return drv.Supports(dev.ID())
}

// Registry holds registered drivers and binds them to devices.
// Registry methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	drivers []*Driver
	logger  logger
}

// SetLogger sets the logger used by the registry.
func (r *Registry) SetLogger(log *slog.Logger) {
	r.mu.Lock()
	r.logger = logger{log: log}
	r.mu.Unlock()
}

// Register adds drivers to the registry. Either all drivers are registered
// or none are.
func (r *Registry) Register(drivers ...*Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, drv := range drivers {
		if drv == nil || drv.Name == "" {
			return ErrInvalidConfig
		}
		if r.indexOf(drv.Name) >= 0 || slices.ContainsFunc(drivers[:i], func(d *Driver) bool { return d.Name == drv.Name }) {
			return ErrDuplicateDriver
		}
	}
	for _, drv := range drivers {
		r.drivers = append(r.drivers, drv)
		r.logger.info("phy:register", slog.String("driver", drv.Name),
			slog.Uint64("id", uint64(drv.PHYID)), slog.Uint64("mask", uint64(drv.PHYIDMask)))
	}
	return nil
}

// Unregister removes drivers from the registry. Devices already bound keep their driver.
func (r *Registry) Unregister(drivers ...*Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, drv := range drivers {
		if drv == nil {
			continue
		}
		idx := r.indexOf(drv.Name)
		if idx < 0 {
			continue
		}
		r.drivers = slices.Delete(r.drivers, idx, idx+1)
		r.logger.info("phy:unregister", slog.String("driver", drv.Name))
	}
}

// Drivers returns the registered drivers in registration order.
func (r *Registry) Drivers() []*Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.drivers)
}

// Supports reports whether any registered driver's device table covers id.
func (r *Registry) Supports(id uint32) bool {
	for _, drv := range r.Drivers() {
		if drv.Supports(id) {
			return true
		}
	}
	return false
}

// Match returns the first registered driver that claims dev, or nil.
// dev's identifier must have been read with [Device.ReadID]. Driver Match
// functions may perform register transactions.
func (r *Registry) Match(dev *Device) *Driver {
	for _, drv := range r.Drivers() {
		if drv.matches(dev) {
			return drv
		}
	}
	return nil
}

// Attach reads dev's identifier, binds the first matching driver and returns it.
// If no registered driver matches [GenericDriver] is bound. Returns [ErrNoDriver]
// if no PHY responds at the device address.
func (r *Registry) Attach(dev *Device) (*Driver, error) {
	if dev.mdio == nil {
		return nil, ErrInvalidConfig
	}
	id, err := dev.ReadID()
	if err != nil {
		return nil, err
	} else if id == 0 || id == 0xffff_ffff {
		return nil, ErrNoDriver
	}
	drv := r.Match(dev)
	if drv == nil {
		drv = GenericDriver
	}
	dev.mu.Lock()
	dev.drv = drv
	dev.mu.Unlock()
	r.mu.Lock()
	r.logger.info("phy:attach", slog.String("driver", drv.Name),
		slog.Uint64("addr", uint64(dev.PHYAddr())), slog.Uint64("id", uint64(id)))
	r.mu.Unlock()
	return drv, nil
}

// Detach unbinds dev's driver.
func (r *Registry) Detach(dev *Device) {
	dev.mu.Lock()
	dev.drv = nil
	dev.mu.Unlock()
}

func (r *Registry) indexOf(name string) int {
	return slices.IndexFunc(r.drivers, func(d *Driver) bool { return d.Name == name })
}
