package phy

import "strings"

// EEEModes is the Energy Efficient Ethernet mode bitfield shared by the PCS EEE
// capability register (3.20) and the AN EEE advertisement and link partner
// registers (7.60, 7.61).
// Reference: IEEE 802.3 Clause 45.2.3.10
type EEEModes uint16

const (
	EEE100TX   EEEModes = 0x0002 // 100BASE-TX EEE
	EEE1000T   EEEModes = 0x0004 // 1000BASE-T EEE
	EEE10GT    EEEModes = 0x0008 // 10GBASE-T EEE
	EEE1000KX  EEEModes = 0x0010 // 1000BASE-KX EEE
	EEE10GKX4  EEEModes = 0x0020 // 10GBASE-KX4 EEE
	EEE10GKR   EEEModes = 0x0040 // 10GBASE-KR EEE
	EEEModeAll EEEModes = EEE100TX | EEE1000T | EEE10GT | EEE1000KX | EEE10GKX4 | EEE10GKR
)

func (m EEEModes) String() string {
	if m&EEEModeAll == 0 {
		return "none"
	}
	names := [...]struct {
		bit  EEEModes
		name string
	}{
		{EEE100TX, "100TX"}, {EEE1000T, "1000T"}, {EEE10GT, "10GT"},
		{EEE1000KX, "1000KX"}, {EEE10GKX4, "10GKX4"}, {EEE10GKR, "10GKR"},
	}
	var sb strings.Builder
	for _, n := range names {
		if m&n.bit == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(n.name)
	}
	return sb.String()
}

// EEEAbility reads the modes for which the PHY supports EEE.
func (phy *Device) EEEAbility() (EEEModes, error) {
	v, err := phy.ReadMMD(MMDPCS, AddrPCSEEEAbility)
	return EEEModes(v), err
}

// EEEAdvertisement reads the EEE modes advertised during auto-negotiation.
func (phy *Device) EEEAdvertisement() (EEEModes, error) {
	v, err := phy.ReadMMD(MMDAN, AddrANEEEAdvertisement)
	return EEEModes(v), err
}

// SetEEEAdvertisement writes the EEE modes to advertise. The new advertisement
// takes effect after auto-negotiation restarts.
func (phy *Device) SetEEEAdvertisement(modes EEEModes) error {
	return phy.WriteMMD(MMDAN, AddrANEEEAdvertisement, uint16(modes))
}

// EEELinkPartner reads the EEE modes advertised by the link partner.
func (phy *Device) EEELinkPartner() (EEEModes, error) {
	v, err := phy.ReadMMD(MMDAN, AddrANEEELinkPartner)
	return EEEModes(v), err
}

// EEEActive reports whether EEE was negotiated for the current link, that is the
// link is up and both ends advertise EEE for the resolved speed.
// Link state is the one from the last [Device.ReadStatus].
func (phy *Device) EEEActive() (bool, error) {
	if !phy.Link() {
		return false, nil
	}
	adv, err := phy.EEEAdvertisement()
	if err != nil {
		return false, err
	}
	lp, err := phy.EEELinkPartner()
	if err != nil {
		return false, err
	}
	var mode EEEModes
	switch phy.Speed() {
	case 100:
		mode = EEE100TX
	case 1000:
		mode = EEE1000T
	case 10_000:
		mode = EEE10GT
	default:
		return false, nil
	}
	return adv&lp&mode != 0, nil
}
