//go:build linux

package mii

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Bus is an MDIO bus reached through a network interface's MII ioctls.
// The interface driver serializes transactions so Bus is safe for concurrent use.
type Bus struct {
	fd   int // AF_INET socket used only as an ioctl handle.
	name string
}

// Open returns the MDIO bus behind network interface ifname.
func Open(ifname string) (*Bus, error) {
	if len(ifname) >= unix.IFNAMSIZ {
		return nil, errors.New("interface name too long")
	} else if ifname == "" {
		return nil, errors.New("empty interface name")
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("mii socket open: %w", err)
	}
	return &Bus{fd: fd, name: ifname}, nil
}

// Name returns the network interface name.
func (bus *Bus) Name() string { return bus.name }

// Close releases the socket.
func (bus *Bus) Close() error {
	return unix.Close(bus.fd)
}

// PHYAddr returns the address of the PHY the interface driver is attached to.
func (bus *Bus) PHYAddr() (uint8, error) {
	ifr := makeifreq(bus.name)
	err := ioctl(bus.fd, unix.SIOCGMIIPHY, &ifr)
	if err != nil {
		return 0, fmt.Errorf("%s: get phy: %w", bus.name, err)
	}
	return uint8(ifr.data().phyID & 0x1f), nil
}

// Read implements phy.MDIOBus. devAddr 0 selects Clause 22 framing.
func (bus *Bus) Read(phyAddr, devAddr uint8, regAddr uint16) (uint16, error) {
	ifr := makeifreq(bus.name)
	d := ifr.data()
	d.phyID = phyID(phyAddr, devAddr)
	d.regNum = regAddr
	err := ioctl(bus.fd, unix.SIOCGMIIREG, &ifr)
	if err != nil {
		return 0, err
	}
	return d.valOut, nil
}

// Write implements phy.MDIOBus. devAddr 0 selects Clause 22 framing.
func (bus *Bus) Write(phyAddr, devAddr uint8, regAddr, value uint16) error {
	ifr := makeifreq(bus.name)
	d := ifr.data()
	d.phyID = phyID(phyAddr, devAddr)
	d.regNum = regAddr
	d.valIn = value
	return ioctl(bus.fd, unix.SIOCSMIIREG, &ifr)
}

func ioctl(fd int, request uintptr, ifr *ifreq) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, uintptr(unsafe.Pointer(ifr)))
	if errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}

func makeifreq(name string) ifreq {
	var ifr ifreq
	copy(ifr.Name[:], name)
	return ifr
}

type ifreq struct {
	Name [unix.IFNAMSIZ]byte
	Data [24]byte // ifr_ifru union.
}

// miiData is struct mii_ioctl_data, which the kernel overlays on ifr_ifru.
type miiData struct {
	phyID  uint16
	regNum uint16
	valIn  uint16
	valOut uint16
}

func (ifr *ifreq) data() *miiData {
	return (*miiData)(unsafe.Pointer(&ifr.Data[0]))
}
