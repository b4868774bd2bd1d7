package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/soypat/rtlphy/internal/config"
	"github.com/soypat/rtlphy/mii"
	"github.com/soypat/rtlphy/phy"
	"github.com/soypat/rtlphy/realtek"
)

const usage = `usage: rtlphy [flags] <command> [args]

commands:
  scan            list PHYs on each device's MDIO bus
  status          refresh and print link state
  eee             print EEE ability, advertisement and link partner modes
  eee-adv [mask]  write the EEE advertisement and restart auto-negotiation
  suspend         power down the PHY
  resume          power up the PHY
  reset           software reset the PHY

flags:
`

func main() {
	err := run()
	if err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	var (
		flagConfig = "rtlphy.yaml"
		flagIface  = ""
		flagAddr   = -1
		flagDevice = ""
		flagLevel  = ""
	)
	flag.StringVar(&flagConfig, "c", flagConfig, "Configuration file.")
	flag.StringVar(&flagIface, "i", flagIface, "Network interface to use instead of the configuration file.")
	flag.IntVar(&flagAddr, "addr", flagAddr, "PHY address when using -i. Negative asks the interface driver.")
	flag.StringVar(&flagDevice, "dev", flagDevice, "Only operate on the configured device with this name.")
	flag.StringVar(&flagLevel, "log", flagLevel, "Log level override: trace, debug, info, warn or error.")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		return errors.New("missing command")
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	cfg, err := loadConfig(flagConfig, flagIface, flagAddr, flagLevel)
	if err != nil {
		return err
	}
	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))

	var reg phy.Registry
	reg.SetLogger(lg)
	err = realtek.Register(&reg, lg)
	if err != nil {
		return err
	}
	defer realtek.Unregister(&reg, lg)

	found := false
	for _, dc := range cfg.Devices {
		if flagDevice != "" && dc.Name != flagDevice {
			continue
		}
		found = true
		err = runDevice(os.Stdout, lg, &reg, dc, cmd, args)
		if err != nil {
			return fmt.Errorf("%s: %w", dc.Name, err)
		}
	}
	if !found {
		return fmt.Errorf("device %q not configured", flagDevice)
	}
	return nil
}

func loadConfig(path, iface string, addr int, level string) (*config.Config, error) {
	var cfg *config.Config
	if iface != "" {
		cfg = &config.Config{Devices: []config.DeviceConfig{{Interface: iface}}}
		if addr >= 0 {
			a := uint8(min(addr, 255))
			cfg.Devices[0].PHYAddr = &a
		}
	} else {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if level != "" {
		cfg.Log.Level = level
	}
	config.Normalize(cfg)
	return cfg, config.Validate(cfg)
}

func runDevice(w io.Writer, lg *slog.Logger, reg *phy.Registry, dc config.DeviceConfig, cmd string, args []string) error {
	bus, err := mii.Open(dc.Interface)
	if err != nil {
		return err
	}
	defer bus.Close()
	if cmd == "scan" {
		return scan(w, reg, bus)
	}

	var addr uint8
	if dc.PHYAddr != nil {
		addr = *dc.PHYAddr
	} else {
		addr, err = bus.PHYAddr()
		if err != nil {
			return err
		}
	}
	var dev phy.Device
	err = dev.ConfigureAs22(bus, addr)
	if err != nil {
		return err
	}
	dev.SetLogger(lg.With(slog.String("dev", dc.Name)))
	_, err = reg.Attach(&dev)
	if err != nil {
		return err
	}
	return runCommand(w, &dev, dc, cmd, args)
}

func scan(w io.Writer, reg *phy.Registry, bus phy.MDIOBus) error {
	var addrs [32]uint8
	n, err := phy.FindClause22PHYs(bus, addrs[:])
	if err != nil {
		return err
	}
	for _, addr := range addrs[:n] {
		var dev phy.Device
		err = dev.ConfigureAs22(bus, addr)
		if err != nil {
			return err
		}
		id, err := dev.ReadID()
		if err != nil {
			fmt.Fprintf(w, "addr=%d id=? err=%v\n", addr, err)
			continue
		}
		drv := phy.GenericDriver
		if m := reg.Match(&dev); m != nil {
			drv = m
		}
		fmt.Fprintf(w, "addr=%d id=%#08x table=%v driver=%q\n", addr, id, reg.Supports(id), drv.Name)
	}
	return nil
}

func runCommand(w io.Writer, dev *phy.Device, dc config.DeviceConfig, cmd string, args []string) error {
	switch cmd {
	case "status":
		return status(w, dev)
	case "eee":
		return eee(w, dev)
	case "eee-adv":
		return eeeAdvertise(w, dev, dc, args)
	case "suspend":
		return dev.Suspend()
	case "resume":
		return dev.Resume()
	case "reset":
		return dev.ResetPHY()
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func status(w io.Writer, dev *phy.Device) error {
	err := dev.ReadStatus()
	if err != nil {
		return err
	}
	anar, err := dev.Advertisement()
	if err != nil {
		return err
	}
	anlpar, err := dev.LinkPartnerAdvertisement()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "addr=%d id=%#08x driver=%q\n", dev.PHYAddr(), dev.ID(), dev.Driver().Name)
	if !dev.Link() {
		fmt.Fprintln(w, "link: down")
	} else {
		fmt.Fprintf(w, "link: up speed=%dMbps duplex=%s\n", dev.Speed(), dev.Duplex())
	}
	fmt.Fprintf(w, "advertise: %s partner: %s\n", anar.LinkMode(), anlpar.LinkMode())
	return nil
}

func eee(w io.Writer, dev *phy.Device) error {
	err := dev.ReadStatus()
	if err != nil {
		return err
	}
	printModes := func(name string, modes phy.EEEModes, err error) error {
		switch {
		case errors.Is(err, phy.ErrNotSupported):
			fmt.Fprintf(w, "%s: not supported\n", name)
		case err != nil:
			return fmt.Errorf("%s: %w", name, err)
		default:
			fmt.Fprintf(w, "%s: %s\n", name, modes)
		}
		return nil
	}
	modes, err := dev.EEEAbility()
	if err = printModes("ability", modes, err); err != nil {
		return err
	}
	modes, err = dev.EEEAdvertisement()
	if err = printModes("advertise", modes, err); err != nil {
		return err
	}
	modes, err = dev.EEELinkPartner()
	if err = printModes("partner", modes, err); err != nil {
		return err
	}
	active, err := dev.EEEActive()
	if errors.Is(err, phy.ErrNotSupported) {
		return nil
	} else if err != nil {
		return err
	}
	fmt.Fprintf(w, "active: %v\n", active)
	return nil
}

func eeeAdvertise(w io.Writer, dev *phy.Device, dc config.DeviceConfig, args []string) error {
	var modes phy.EEEModes
	switch {
	case len(args) > 0:
		v, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return fmt.Errorf("bad EEE mask: %w", err)
		}
		modes = phy.EEEModes(v)
	case dc.EEEAdvertise != nil:
		modes = phy.EEEModes(*dc.EEEAdvertise)
	default:
		return errors.New("eee-adv: no mask given and eee_advertise not configured")
	}
	if modes&^phy.EEEModeAll != 0 {
		return fmt.Errorf("EEE mask %#x sets reserved bits", uint16(modes))
	}
	err := dev.SetEEEAdvertisement(modes)
	if err != nil {
		return err
	}
	err = dev.RestartAutoNeg()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "advertise: %s\n", modes)
	return nil
}
