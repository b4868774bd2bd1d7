// Package mdiotest provides an in-memory PHY register file with page-switched
// vendor registers for testing drivers against phy.MDIOBus.
package mdiotest

import (
	"errors"
	"sync"
)

// RegPageSelect is the register that selects the active page. Reads and writes
// of every other register address the active page.
const RegPageSelect = 0x1f

const (
	regMMDControl = 0x0d
	regMMDData    = 0x0e
)

// ErrBus is a generic bus failure usable by tests for fault injection.
var ErrBus = errors.New("mdiotest: bus fault")

// Op is the kind of a recorded transaction.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
)

func (op Op) String() string {
	if op == OpWrite {
		return "write"
	}
	return "read"
}

// Txn is a recorded bus transaction. Page is the page active when the
// transaction was issued.
type Txn struct {
	Op    Op
	Page  uint16
	Reg   uint16
	Value uint16
	Err   error
}

type pageReg struct {
	page, reg uint16
}

type mmdReg struct {
	dev uint16
	reg uint16
}

// Bus simulates a single Clause 22 PHY at Addr. Addresses without a PHY read
// as 0xffff, like an MDIO bus with pull-ups. Bus is safe for concurrent use.
type Bus struct {
	Addr uint8

	mu         sync.Mutex
	page       uint16
	regs       map[pageReg]uint16
	mmd        map[mmdReg]uint16
	mmdCtl     uint16
	mmdAddr    uint16
	readFault  map[pageReg]error
	writeFault map[pageReg]error
	pageFault  map[uint16]error
	txns       []Txn
}

// New returns a Bus with a PHY at addr reporting identifier id.
func New(addr uint8, id uint32) *Bus {
	b := &Bus{
		Addr:       addr,
		regs:       make(map[pageReg]uint16),
		mmd:        make(map[mmdReg]uint16),
		readFault:  make(map[pageReg]error),
		writeFault: make(map[pageReg]error),
		pageFault:  make(map[uint16]error),
	}
	b.Set(0, 0x02, uint16(id>>16))
	b.Set(0, 0x03, uint16(id))
	// BMSR reads non-zero so bus scans find the PHY.
	b.Set(0, 0x01, 0x7949)
	return b
}

// Set stores value at reg of page without recording a transaction.
func (b *Bus) Set(page, reg, value uint16) {
	b.mu.Lock()
	b.regs[pageReg{page, reg}] = value
	b.mu.Unlock()
}

// Get returns the value at reg of page without recording a transaction.
func (b *Bus) Get(page, reg uint16) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.regs[pageReg{page, reg}]
}

// SetMMD stores an MMD register reachable through Clause 22 indirect access.
func (b *Bus) SetMMD(devnum uint8, reg, value uint16) {
	b.mu.Lock()
	b.mmd[mmdReg{uint16(devnum), reg}] = value
	b.mu.Unlock()
}

// MMD returns an MMD register value.
func (b *Bus) MMD(devnum uint8, reg uint16) uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mmd[mmdReg{uint16(devnum), reg}]
}

// Page returns the currently selected page.
func (b *Bus) Page() uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// FailRead makes reads of reg on page fail with err. A nil err clears the fault.
func (b *Bus) FailRead(page, reg uint16, err error) {
	b.mu.Lock()
	setFault(b.readFault, pageReg{page, reg}, err)
	b.mu.Unlock()
}

// FailWrite makes writes of reg on page fail with err. A nil err clears the fault.
func (b *Bus) FailWrite(page, reg uint16, err error) {
	b.mu.Lock()
	setFault(b.writeFault, pageReg{page, reg}, err)
	b.mu.Unlock()
}

// FailPageSelect makes selecting page fail with err. A nil err clears the fault.
func (b *Bus) FailPageSelect(page uint16, err error) {
	b.mu.Lock()
	setFault(b.pageFault, page, err)
	b.mu.Unlock()
}

// Txns returns the transactions recorded since creation or the last Reset.
func (b *Bus) Txns() []Txn {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Txn(nil), b.txns...)
}

// Reset clears the transaction log.
func (b *Bus) Reset() {
	b.mu.Lock()
	b.txns = b.txns[:0]
	b.mu.Unlock()
}

// Read implements phy.MDIOBus.
func (b *Bus) Read(phyAddr, devAddr uint8, regAddr uint16) (uint16, error) {
	if phyAddr != b.Addr {
		return 0xffff, nil
	} else if devAddr != 0 {
		return 0xffff, errors.New("mdiotest: clause 45 framing not supported")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	txn := Txn{Op: OpRead, Page: b.page, Reg: regAddr}
	key := pageReg{b.page, regAddr}
	switch {
	case b.readFault[key] != nil:
		txn.Err = b.readFault[key]
	case regAddr == RegPageSelect:
		txn.Value = b.page
	case b.page == 0 && regAddr == regMMDData && b.mmdCtl&0xc000 != 0:
		txn.Value = b.mmd[mmdReg{b.mmdCtl & 0x1f, b.mmdAddr}]
	default:
		txn.Value = b.regs[key]
	}
	b.txns = append(b.txns, txn)
	return txn.Value, txn.Err
}

// Write implements phy.MDIOBus.
func (b *Bus) Write(phyAddr, devAddr uint8, regAddr, value uint16) error {
	if phyAddr != b.Addr {
		return nil
	} else if devAddr != 0 {
		return errors.New("mdiotest: clause 45 framing not supported")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	txn := Txn{Op: OpWrite, Page: b.page, Reg: regAddr, Value: value}
	key := pageReg{b.page, regAddr}
	switch {
	case regAddr == RegPageSelect && b.pageFault[value] != nil:
		txn.Err = b.pageFault[value]
	case b.writeFault[key] != nil:
		txn.Err = b.writeFault[key]
	case regAddr == RegPageSelect:
		b.page = value
	case b.page == 0 && regAddr == regMMDControl:
		b.mmdCtl = value
	case b.page == 0 && regAddr == regMMDData && b.mmdCtl&0xc000 == 0:
		b.mmdAddr = value
	case b.page == 0 && regAddr == regMMDData:
		b.mmd[mmdReg{b.mmdCtl & 0x1f, b.mmdAddr}] = value
	default:
		b.regs[key] = value
	}
	b.txns = append(b.txns, txn)
	return txn.Err
}

func setFault[K comparable](m map[K]error, k K, err error) {
	if err == nil {
		delete(m, k)
		return
	}
	m[k] = err
}
