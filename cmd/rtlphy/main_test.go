package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/soypat/rtlphy/internal/config"
	"github.com/soypat/rtlphy/internal/mdiotest"
	"github.com/soypat/rtlphy/phy"
	"github.com/soypat/rtlphy/realtek"
)

func newAttached(t *testing.T) (*phy.Device, *mdiotest.Bus, *phy.Registry) {
	t.Helper()
	var reg phy.Registry
	if err := realtek.Register(&reg, nil); err != nil {
		t.Fatal(err)
	}
	bus := mdiotest.New(4, realtek.PHYIDGeneric)
	var dev phy.Device
	if err := dev.ConfigureAs22(bus, 4); err != nil {
		t.Fatal(err)
	}
	drv, err := reg.Attach(&dev)
	if err != nil {
		t.Fatal(err)
	} else if drv != realtek.Driver() {
		t.Fatalf("bound %q", drv.Name)
	}
	return &dev, bus, &reg
}

func TestScan(t *testing.T) {
	_, bus, reg := newAttached(t)
	var buf bytes.Buffer
	err := scan(&buf, reg, bus)
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "addr=4 ") || !strings.Contains(out, realtek.DriverName) || !strings.Contains(out, "table=true") {
		t.Fatalf("unexpected scan output %q", out)
	}
}

func TestStatusCommand(t *testing.T) {
	dev, bus, _ := newAttached(t)
	bus.Set(0, phy.AddrBMCR, uint16(phy.BMCRANEnable))
	bus.Set(0, phy.AddrBMSR, uint16(phy.BMSRLinkStatus|phy.BMSRANComplete))
	bus.Set(0, phy.AddrANAR, uint16(phy.ANAR100Full))
	bus.Set(0, phy.AddrANLPAR, uint16(phy.ANAR100Full))
	bus.Set(0xa43, 0x12, 0x0010)
	var buf bytes.Buffer
	err := runCommand(&buf, dev, config.DeviceConfig{}, "status", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "link: up speed=100Mbps duplex=full") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestEEECommands(t *testing.T) {
	dev, bus, _ := newAttached(t)
	bus.Set(0xa5c, 0x12, uint16(phy.EEE100TX|phy.EEE1000T))
	var buf bytes.Buffer
	err := runCommand(&buf, dev, config.DeviceConfig{}, "eee", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "ability: 100TX|1000T") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	mask := uint16(phy.EEE1000T)
	dc := config.DeviceConfig{EEEAdvertise: &mask}
	buf.Reset()
	err = runCommand(&buf, dev, dc, "eee-adv", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := bus.Get(0xa5d, 0x10); got != mask {
		t.Fatalf("advertisement %#x", got)
	}
	if bus.Get(0, phy.AddrBMCR)&uint16(phy.BMCRANRestart) == 0 {
		t.Fatal("auto-negotiation not restarted")
	}
	if bus.Page() != 0 {
		t.Fatalf("left on page %#x", bus.Page())
	}

	err = runCommand(&buf, dev, dc, "eee-adv", []string{"0x6"})
	if err != nil {
		t.Fatal(err)
	} else if got := bus.Get(0xa5d, 0x10); got != 0x6 {
		t.Fatalf("advertisement %#x", got)
	}
	err = runCommand(&buf, dev, dc, "eee-adv", []string{"0x100"})
	if err == nil {
		t.Fatal("expected reserved bits error")
	}
	err = runCommand(&buf, dev, config.DeviceConfig{}, "eee-adv", nil)
	if err == nil {
		t.Fatal("expected missing mask error")
	}
}

func TestUnknownCommand(t *testing.T) {
	dev, _, _ := newAttached(t)
	err := runCommand(&bytes.Buffer{}, dev, config.DeviceConfig{}, "frobnicate", nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadConfigInterface(t *testing.T) {
	cfg, err := loadConfig("", "eth0", 2, "debug")
	if err != nil {
		t.Fatal(err)
	}
	d := cfg.Devices[0]
	if d.Name != "eth0" || d.PHYAddr == nil || *d.PHYAddr != 2 {
		t.Fatalf("device %+v", d)
	}
	_, err = loadConfig("", "eth0", 40, "")
	if err == nil {
		t.Fatal("expected phy address error")
	}
}
