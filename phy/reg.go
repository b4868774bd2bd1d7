package phy

// See https://github.com/PieVo/mdio-tool/blob/master/mii.h

// Registers 0..15 as defined by 802.3.
const (
	// First two registers are BMCR and BMSR. See below.

	regPhyId1 = 0x02
	regPhyId2 = 0x03

	// Clause 22 access to Clause 45 MMD registers (IEEE 802.3 Annex 22D).
	regMMDControl = 0x0d
	regMMDData    = 0x0e

	mmdFuncAddr = 0x0000 // MMD control: address function.
	mmdFuncData = 0x4000 // MMD control: data, no post increment.
	mmdDevMask  = 0x001f
)

// BMCR represents the Basic Mode Control Register at address 0x00.
// Reference: IEEE 802.3 Clause 22.2.4.1
type BMCR uint16

const (
	AddrBMCR = 0x00 // Address of Basic Mode Control Register.

	BMCRSpeed1000  BMCR = 0x0040 // MSB of Speed (1000Mbps)
	BMCRCollision  BMCR = 0x0080 // Collision test
	BMCRFullDuplex BMCR = 0x0100 // Full duplex mode
	BMCRANRestart  BMCR = 0x0200 // Restart auto-negotiation
	BMCRIsolate    BMCR = 0x0400 // Isolate PHY from MII
	BMCRPowerDown  BMCR = 0x0800 // Power down PHY
	BMCRANEnable   BMCR = 0x1000 // Enable auto-negotiation
	BMCRSpeed100   BMCR = 0x2000 // Select 100Mbps
	BMCRLoopback   BMCR = 0x4000 // Enable TXD loopback
	BMCRReset      BMCR = 0x8000 // Software reset (self-clearing)
)

// ForcedLinkMode returns the link mode selected by the speed and duplex bits.
// Only meaningful with auto-negotiation disabled.
func (ctl BMCR) ForcedLinkMode() LinkMode {
	full := ctl&BMCRFullDuplex != 0
	switch {
	case ctl&BMCRSpeed1000 != 0 && full:
		return Link1000FDX
	case ctl&BMCRSpeed1000 != 0:
		return Link1000HDX
	case ctl&BMCRSpeed100 != 0 && full:
		return Link100FDX
	case ctl&BMCRSpeed100 != 0:
		return Link100HDX
	case full:
		return Link10FDX
	default:
		return Link10HDX
	}
}

// BMSR represents the Basic Mode Status Register at address 0x01.
// Reference: IEEE 802.3 Clause 22.2.4.2
type BMSR uint16

const (
	AddrBMSR = 0x01 // Address of Basic Mode Status Register.

	BMSRExtCap      BMSR = 0x0001 // Extended register capability
	BMSRJabber      BMSR = 0x0002 // Jabber detected
	BMSRLinkStatus  BMSR = 0x0004 // Link status (1=up)
	BMSRANCap       BMSR = 0x0008 // Auto-negotiation capable
	BMSRRemoteFault BMSR = 0x0010 // Remote fault detected
	BMSRANComplete  BMSR = 0x0020 // Auto-negotiation complete
	BMSRNoPreamble  BMSR = 0x0040 // Preamble suppression capable
	BMSRExtStatus   BMSR = 0x0100 // Extended status in register 15
	BMSR100Half2    BMSR = 0x0200 // 100BASE-T2 half-duplex capable
	BMSR100Full2    BMSR = 0x0400 // 100BASE-T2 full-duplex capable
	BMSR10Half      BMSR = 0x0800 // 10Mbps half-duplex capable
	BMSR10Full      BMSR = 0x1000 // 10Mbps full-duplex capable
	BMSR100Half     BMSR = 0x2000 // 100Mbps half-duplex capable
	BMSR100Full     BMSR = 0x4000 // 100Mbps full-duplex capable
	BMSR100Base4    BMSR = 0x8000 // 100BASE-T4 capable
)

// LinkUp reports the link status bit. The bit is latched-low.
func (s BMSR) LinkUp() bool { return s&BMSRLinkStatus != 0 }

// AutoNegotiationComplete reports whether link parameters from auto-negotiation are valid.
func (s BMSR) AutoNegotiationComplete() bool { return s&BMSRANComplete != 0 }

// ANAR represents the Auto-Negotiation Advertisement Register value at address 0x04.
// ANLPAR (Link Partner Ability Register at 0x05) shares the same bit layout.
// Reference: IEEE 802.3 Clause 28.2.4.1
type ANAR uint16

const (
	AddrANAR   = 0x04 // Address of Auto-Negotiation Advertisement Register.
	AddrANLPAR = 0x05 // Address of Auto-Negotiation Link Partner Advertisement Register.
	AddrANER   = 0x06 // Address of Auto-Negotiation Error Register.

	ANARSelector     ANAR = 0x001f // Protocol selector mask
	ANARSelector8023 ANAR = 0x0001 // IEEE 802.3 selector value (required)
	ANAR10Half       ANAR = 0x0020 // 10BASE-T half-duplex
	ANAR10Full       ANAR = 0x0040 // 10BASE-T full-duplex
	ANAR100Half      ANAR = 0x0080 // 100BASE-TX half-duplex
	ANAR100Full      ANAR = 0x0100 // 100BASE-TX full-duplex
	ANAR100BaseT4    ANAR = 0x0200 // 100BASE-T4
	ANARPause        ANAR = 0x0400 // Pause capability
	ANARPauseAsym    ANAR = 0x0800 // Asymmetric pause
	ANARRemoteFault  ANAR = 0x2000 // Remote fault
	ANARAck          ANAR = 0x4000 // Acknowledge (ANLPAR only)
	ANARNextPage     ANAR = 0x8000 // Next page capable

	ANARSpeedMask ANAR = ANAR10Half | ANAR10Full | ANAR100Half | ANAR100Full | ANAR100BaseT4
)

// LinkMode returns the highest priority LinkMode from the ANAR speed bits.
// Priority order per IEEE 802.3 Annex 28B.3.
// Returns LinkDown if no speed bits are set.
func (a ANAR) LinkMode() LinkMode {
	switch {
	case a&ANAR100Full != 0:
		return Link100FDX
	case a&ANAR100BaseT4 != 0:
		return Link100T4
	case a&ANAR100Half != 0:
		return Link100HDX
	case a&ANAR10Full != 0:
		return Link10FDX
	case a&ANAR10Half != 0:
		return Link10HDX
	default:
		return LinkDown
	}
}

// GBCR represents the 1000BASE-T Control Register at address 0x09.
// Reference: IEEE 802.3 Clause 40.5.1.1
type GBCR uint16

const (
	AddrGBCR = 0x09 // Address of 1000BASE-T Control Register.

	GBCR1000Half GBCR = 0x0100 // Advertise 1000BASE-T half-duplex
	GBCR1000Full GBCR = 0x0200 // Advertise 1000BASE-T full-duplex
)

// GBSR represents the 1000BASE-T Status Register at address 0x0a.
// Link partner ability bits sit two positions above the matching GBCR bits.
type GBSR uint16

const (
	AddrGBSR = 0x0a // Address of 1000BASE-T Status Register.

	GBSRPartner1000Half GBSR = 0x0400 // Link partner 1000BASE-T half-duplex
	GBSRPartner1000Full GBSR = 0x0800 // Link partner 1000BASE-T full-duplex
)

// Common returns the gigabit modes both ends advertise.
func (s GBSR) Common(ctl GBCR) LinkMode {
	common := GBCR(s>>2) & ctl
	switch {
	case common&GBCR1000Full != 0:
		return Link1000FDX
	case common&GBCR1000Half != 0:
		return Link1000HDX
	default:
		return LinkDown
	}
}

// Clause 45 MMD device addresses.
const (
	MMDPMAPMD uint8 = 1
	MMDWIS    uint8 = 2
	MMDPCS    uint8 = 3
	MMDPHYXS  uint8 = 4
	MMDDTEXS  uint8 = 5
	MMDAN     uint8 = 7
)

// Clause 45 register addresses carrying Energy Efficient Ethernet state.
const (
	AddrPCSEEEAbility      = 0x14 // PCS EEE capability (3.20)
	AddrANEEEAdvertisement = 0x3c // AN EEE advertisement (7.60)
	AddrANEEELinkPartner   = 0x3d // AN EEE link partner ability (7.61)
)

// LinkMode represents the negotiated/force-set Ethernet link speed and duplex mode.
//
// Naming convention:
//   - H/HDX: Half-duplex (one direction at a time)
//   - F/FDX: Full-duplex (simultaneous bidirectional)
//   - T4: 100BASE-T4 (100Mbps over 4 twisted pairs, legacy)
//   - G: Gigabit, implies number is multiplied by 1000 (1G=1000M)
type LinkMode uint8

const (
	LinkDown    LinkMode = iota // down
	Link10HDX                   // 10M-H
	Link10FDX                   // 10M-F
	Link100HDX                  // 100M-H
	Link100FDX                  // 100M-F
	Link100T4                   // 100M-T4
	Link1000HDX                 // 1000M-H
	Link1000FDX                 // 1000M-F

	// Speeds beyond gigabit, full-duplex only:

	Link2500FDX // 2.5G-F
	Link5GFDX   // 5G-F
	Link10GFDX  // 10G-F
)

var linkModeNames = [...]string{
	LinkDown:    "down",
	Link10HDX:   "10M-H",
	Link10FDX:   "10M-F",
	Link100HDX:  "100M-H",
	Link100FDX:  "100M-F",
	Link100T4:   "100M-T4",
	Link1000HDX: "1000M-H",
	Link1000FDX: "1000M-F",
	Link2500FDX: "2.5G-F",
	Link5GFDX:   "5G-F",
	Link10GFDX:  "10G-F",
}

func (lm LinkMode) String() string {
	if int(lm) < len(linkModeNames) {
		return linkModeNames[lm]
	}
	return "LinkMode(?)"
}

// SpeedMbps returns the link speed in megabits per second.
func (lm LinkMode) SpeedMbps() int {
	switch lm {
	case Link10HDX, Link10FDX:
		return 10
	case Link100HDX, Link100FDX, Link100T4:
		return 100
	case Link1000HDX, Link1000FDX:
		return 1000
	case Link2500FDX:
		return 2500
	case Link5GFDX:
		return 5000
	case Link10GFDX:
		return 10_000
	default:
		return 0
	}
}

// IsFullDuplex returns true if the link mode is full duplex.
func (lm LinkMode) IsFullDuplex() bool {
	switch lm {
	case Link10FDX, Link100FDX, Link1000FDX, Link2500FDX, Link5GFDX, Link10GFDX:
		return true
	default:
		return false
	}
}

// Duplex is the duplex state of a link as tracked by a Device.
type Duplex uint8

const (
	DuplexUnknown Duplex = iota
	DuplexHalf
	DuplexFull
)

func (d Duplex) String() string {
	switch d {
	case DuplexHalf:
		return "half"
	case DuplexFull:
		return "full"
	default:
		return "unknown"
	}
}
