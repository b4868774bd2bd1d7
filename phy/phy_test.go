package phy_test

import (
	"errors"
	"testing"

	"github.com/soypat/rtlphy/internal/mdiotest"
	"github.com/soypat/rtlphy/phy"
)

var _ phy.MDIOBus = (*mdiotest.Bus)(nil)

const testAddr = 1

func newDevice(t *testing.T, id uint32) (*phy.Device, *mdiotest.Bus) {
	t.Helper()
	bus := mdiotest.New(testAddr, id)
	var dev phy.Device
	err := dev.ConfigureAs22(bus, testAddr)
	if err != nil {
		t.Fatal(err)
	}
	return &dev, bus
}

func TestConfigureAs22(t *testing.T) {
	var dev phy.Device
	if err := dev.ConfigureAs22(mdiotest.New(0, 0), 32); err != phy.ErrInvalidAddr {
		t.Errorf("addr 32: got %v", err)
	}
	if err := dev.ConfigureAs22(nil, 0); err != phy.ErrInvalidConfig {
		t.Errorf("nil bus: got %v", err)
	}
}

func TestReadID(t *testing.T) {
	dev, _ := newDevice(t, 0x001cc916)
	id, err := dev.ReadID()
	if err != nil {
		t.Fatal(err)
	} else if id != 0x001cc916 || dev.ID() != id {
		t.Fatalf("got id %#x", id)
	}
}

func TestFindClause22PHYs(t *testing.T) {
	bus := mdiotest.New(7, 0x1234)
	var addrs [32]uint8
	n, err := phy.FindClause22PHYs(bus, addrs[:])
	if err != nil {
		t.Fatal(err)
	} else if n != 1 || addrs[0] != 7 {
		t.Fatalf("found %v", addrs[:n])
	}
	_, err = phy.FindClause22PHYs(bus, addrs[:4])
	if err == nil {
		t.Fatal("expected error on short buffer")
	}
}

func TestRegistry(t *testing.T) {
	var reg phy.Registry
	a := &phy.Driver{Name: "a", PHYID: 0x0011_2230, PHYIDMask: 0xffff_fff0}
	b := &phy.Driver{Name: "b", PHYID: 0x0011_2200, PHYIDMask: 0xffff_ff00}
	if err := reg.Register(a, b); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(&phy.Driver{Name: "a"}); err != phy.ErrDuplicateDriver {
		t.Errorf("duplicate: got %v", err)
	}
	if err := reg.Register(&phy.Driver{Name: "c"}, &phy.Driver{Name: "c"}); err != phy.ErrDuplicateDriver {
		t.Errorf("duplicate within call: got %v", err)
	}
	if err := reg.Register(&phy.Driver{}); err != phy.ErrInvalidConfig {
		t.Errorf("unnamed: got %v", err)
	}
	if len(reg.Drivers()) != 2 {
		t.Fatalf("failed registrations leaked: %d drivers", len(reg.Drivers()))
	}

	tests := []struct {
		id   uint32
		want *phy.Driver
	}{
		{id: 0x0011_2235, want: a}, // registration order wins.
		{id: 0x0011_22f5, want: b},
		{id: 0x0011_2300, want: phy.GenericDriver},
	}
	for _, tc := range tests {
		dev, _ := newDevice(t, tc.id)
		got, err := reg.Attach(dev)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want || dev.Driver() != tc.want {
			t.Errorf("id %#x: bound %q, want %q", tc.id, got.Name, tc.want.Name)
		}
	}

	reg.Unregister(a)
	dev, _ := newDevice(t, 0x0011_2235)
	if got := reg.Match(dev); got != nil {
		// ID not read yet: matches nothing.
		t.Errorf("matched %q before ReadID", got.Name)
	}
	if got, _ := reg.Attach(dev); got != b {
		t.Errorf("after unregister bound %q", got.Name)
	}
	reg.Detach(dev)
	if dev.Driver() != nil {
		t.Error("driver still bound after Detach")
	}
}

func TestRegistryMatchOverride(t *testing.T) {
	var reg phy.Registry
	calls := 0
	drv := &phy.Driver{
		Name:      "picky",
		PHYID:     0x0011_2200,
		PHYIDMask: 0xffff_ff00,
		Match: func(dev *phy.Device) bool {
			calls++
			// Match runs unlocked and may use locking access.
			v, err := dev.Read(phy.AddrBMCR)
			return err == nil && v == 0x1234
		},
	}
	if err := reg.Register(drv); err != nil {
		t.Fatal(err)
	}
	dev, bus := newDevice(t, 0x0011_2201)
	got, err := reg.Attach(dev)
	if err != nil {
		t.Fatal(err)
	} else if got != phy.GenericDriver {
		t.Errorf("Match override ignored, bound %q", got.Name)
	}
	bus.Set(0, phy.AddrBMCR, 0x1234)
	got, _ = reg.Attach(dev)
	if got != drv {
		t.Errorf("bound %q", got.Name)
	}
	if calls != 2 {
		t.Errorf("Match called %d times", calls)
	}
}

func TestAttachNoPHY(t *testing.T) {
	var reg phy.Registry
	bus := mdiotest.New(2, 0x1234)
	var dev phy.Device
	if err := dev.ConfigureAs22(bus, 5); err != nil {
		t.Fatal(err)
	}
	_, err := reg.Attach(&dev)
	if err != phy.ErrNoDriver {
		t.Fatalf("got %v", err)
	}
}

func TestGenericReadStatus(t *testing.T) {
	const (
		linkAN = phy.BMSRLinkStatus | phy.BMSRANComplete
	)
	tests := []struct {
		name   string
		bmcr   phy.BMCR
		bmsr   phy.BMSR
		gbcr   phy.GBCR
		gbsr   phy.GBSR
		anar   phy.ANAR
		anlpar phy.ANAR
		link   bool
		speed  int
		duplex phy.Duplex
	}{
		{name: "down", bmcr: phy.BMCRANEnable, bmsr: phy.BMSRANComplete},
		{name: "forced100F", bmcr: phy.BMCRSpeed100 | phy.BMCRFullDuplex, bmsr: phy.BMSRLinkStatus,
			link: true, speed: 100, duplex: phy.DuplexFull},
		{name: "forced10H", bmsr: phy.BMSRLinkStatus, link: true, speed: 10, duplex: phy.DuplexHalf},
		{name: "an-incomplete", bmcr: phy.BMCRANEnable, bmsr: phy.BMSRLinkStatus, link: true},
		{name: "an1000F", bmcr: phy.BMCRANEnable, bmsr: linkAN | phy.BMSRExtStatus,
			gbcr: phy.GBCR1000Full | phy.GBCR1000Half, gbsr: phy.GBSRPartner1000Full,
			link: true, speed: 1000, duplex: phy.DuplexFull},
		{name: "an1000-not-shared", bmcr: phy.BMCRANEnable, bmsr: linkAN | phy.BMSRExtStatus,
			gbcr: phy.GBCR1000Half, gbsr: phy.GBSRPartner1000Full,
			anar: phy.ANAR100Full | phy.ANAR10Full, anlpar: phy.ANAR100Full,
			link: true, speed: 100, duplex: phy.DuplexFull},
		{name: "an10H", bmcr: phy.BMCRANEnable, bmsr: linkAN,
			anar: phy.ANAR10Half | phy.ANAR100Full, anlpar: phy.ANAR10Half,
			link: true, speed: 10, duplex: phy.DuplexHalf},
	}
	for _, tc := range tests {
		dev, bus := newDevice(t, 0x1234)
		dev.SetSpeed(999)
		bus.Set(0, phy.AddrBMCR, uint16(tc.bmcr))
		bus.Set(0, phy.AddrBMSR, uint16(tc.bmsr))
		bus.Set(0, phy.AddrGBCR, uint16(tc.gbcr))
		bus.Set(0, phy.AddrGBSR, uint16(tc.gbsr))
		bus.Set(0, phy.AddrANAR, uint16(tc.anar))
		bus.Set(0, phy.AddrANLPAR, uint16(tc.anlpar))
		err := dev.ReadStatus()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if dev.Link() != tc.link || dev.Speed() != tc.speed || dev.Duplex() != tc.duplex {
			t.Errorf("%s: got link=%v speed=%d duplex=%v, want link=%v speed=%d duplex=%v", tc.name,
				dev.Link(), dev.Speed(), dev.Duplex(), tc.link, tc.speed, tc.duplex)
		}
	}
}

func TestGenericReadStatusError(t *testing.T) {
	dev, bus := newDevice(t, 0x1234)
	bus.FailRead(0, phy.AddrBMSR, mdiotest.ErrBus)
	err := dev.ReadStatus()
	if !errors.Is(err, mdiotest.ErrBus) {
		t.Fatalf("got %v", err)
	}
}

func TestGenericMMDIndirect(t *testing.T) {
	dev, bus := newDevice(t, 0x1234)
	bus.SetMMD(phy.MMDPCS, phy.AddrPCSEEEAbility, uint16(phy.EEE100TX|phy.EEE1000T))
	bus.Reset()
	got, err := dev.EEEAbility()
	if err != nil {
		t.Fatal(err)
	} else if got != phy.EEE100TX|phy.EEE1000T {
		t.Fatalf("got %v", got)
	}
	want := []mdiotest.Txn{
		{Op: mdiotest.OpWrite, Reg: 0x0d, Value: uint16(phy.MMDPCS)},
		{Op: mdiotest.OpWrite, Reg: 0x0e, Value: phy.AddrPCSEEEAbility},
		{Op: mdiotest.OpWrite, Reg: 0x0d, Value: 0x4000 | uint16(phy.MMDPCS)},
		{Op: mdiotest.OpRead, Reg: 0x0e, Value: uint16(got)},
	}
	txns := bus.Txns()
	if len(txns) != len(want) {
		t.Fatalf("got transactions %+v", txns)
	}
	for i := range want {
		if txns[i] != want[i] {
			t.Errorf("txn %d: got %+v, want %+v", i, txns[i], want[i])
		}
	}

	err = dev.SetEEEAdvertisement(phy.EEE1000T)
	if err != nil {
		t.Fatal(err)
	}
	if v := bus.MMD(phy.MMDAN, phy.AddrANEEEAdvertisement); v != uint16(phy.EEE1000T) {
		t.Fatalf("advertisement %#x", v)
	}
	_, err = dev.ReadMMD(0, 0)
	if err != phy.ErrInvalidAddr {
		t.Fatalf("devnum 0: got %v", err)
	}
}

func TestEEEActive(t *testing.T) {
	dev, bus := newDevice(t, 0x1234)
	bus.SetMMD(phy.MMDAN, phy.AddrANEEEAdvertisement, uint16(phy.EEE100TX|phy.EEE1000T))
	bus.SetMMD(phy.MMDAN, phy.AddrANEEELinkPartner, uint16(phy.EEE1000T))
	active, err := dev.EEEActive()
	if err != nil || active {
		t.Fatalf("link down: active=%v err=%v", active, err)
	}
	dev.SetLink(true)
	dev.SetSpeed(1000)
	active, err = dev.EEEActive()
	if err != nil || !active {
		t.Fatalf("1000: active=%v err=%v", active, err)
	}
	dev.SetSpeed(100)
	active, err = dev.EEEActive()
	if err != nil || active {
		t.Fatalf("100: active=%v err=%v", active, err)
	}
}

func TestEEEModesString(t *testing.T) {
	if s := (phy.EEE100TX | phy.EEE10GKR).String(); s != "100TX|10GKR" {
		t.Errorf("got %q", s)
	}
	if s := phy.EEEModes(0).String(); s != "none" {
		t.Errorf("got %q", s)
	}
}

func TestSuspendResumeGeneric(t *testing.T) {
	dev, bus := newDevice(t, 0x1234)
	bus.Set(0, phy.AddrBMCR, uint16(phy.BMCRANEnable))
	if err := dev.Suspend(); err != nil {
		t.Fatal(err)
	}
	ctl, err := dev.BasicControl()
	if err != nil {
		t.Fatal(err)
	} else if ctl&phy.BMCRPowerDown == 0 {
		t.Fatal("power down bit not set")
	}
	if err := dev.Resume(); err != nil {
		t.Fatal(err)
	}
	ctl, _ = dev.BasicControl()
	if ctl != phy.BMCRANEnable {
		t.Fatalf("BMCR %#x after resume", ctl)
	}
}

func TestRestartAutoNeg(t *testing.T) {
	dev, bus := newDevice(t, 0x1234)
	bus.Set(0, phy.AddrBMCR, uint16(phy.BMCRFullDuplex))
	if err := dev.RestartAutoNeg(); err != nil {
		t.Fatal(err)
	}
	want := phy.BMCRFullDuplex | phy.BMCRANEnable | phy.BMCRANRestart
	if got := phy.BMCR(bus.Get(0, phy.AddrBMCR)); got != want {
		t.Fatalf("BMCR %#x, want %#x", got, want)
	}
}

func TestResetPHYTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("reset waits for the full IEEE 802.3 timeout")
	}
	// The simulated reset bit never self-clears.
	dev, _ := newDevice(t, 0x1234)
	err := dev.ResetPHY()
	if err != phy.ErrResetTimeout {
		t.Fatalf("got %v", err)
	}
}

func TestLinkModeString(t *testing.T) {
	if s := phy.Link2500FDX.String(); s != "2.5G-F" {
		t.Errorf("got %q", s)
	}
	if s := phy.LinkMode(200).String(); s != "LinkMode(?)" {
		t.Errorf("got %q", s)
	}
}
