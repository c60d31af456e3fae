package efctest

import (
	"fmt"

	"github.com/moffa90/go-eefc/efc"
)

// ROMEntry is the simulated address of the IAP routine; the word at
// efc.IAPVectorAddr points here.
const ROMEntry = 0x02000100

// CommandRecord is one command accepted by the simulated controller.
type CommandRecord struct {
	Bank int
	Cmd  efc.Command
	Arg  uint32
	IAP  bool
}

// Device simulates a PIC32CX-MT target: flash array, EEFC controllers and
// the IAP ROM vector. It implements efc.Bus; its Call method satisfies
// efc.CallFunc for exercising the IAP path.
//
// The zero value is not usable; create devices with NewDevice.
type Device struct {
	geom  efc.Geometry
	flash []byte
	banks []*bankState

	gpnvm      uint32
	uniqueID   [efc.UniqueIDSize]byte
	uidMode    bool
	descriptor [efc.DescriptorWords]uint32

	// Commands records every accepted command in issue order.
	Commands []CommandRecord

	forced map[efc.Command]efc.Status
}

type bankState struct {
	fmr     uint32
	sticky  efc.Status // error flags, clear on FSR read
	ready   bool
	latch   []byte
	results []uint32
	locks   []uint32 // one bit per region, bank-relative numbering
}

// NewDevice creates a simulated target with the given geometry. The flash
// array starts fully erased (0xFF) and all regions unlocked.
func NewDevice(geom efc.Geometry) *Device {
	d := &Device{
		geom:   geom,
		flash:  make([]byte, geom.Size),
		forced: make(map[efc.Command]efc.Status),
	}
	for i := range d.flash {
		d.flash[i] = 0xFF
	}
	for range geom.Banks {
		b := &bankState{
			ready: true,
			latch: make([]byte, geom.PageSize),
			locks: make([]uint32, geom.LockBits/32),
		}
		resetLatch(b.latch)
		d.banks = append(d.banks, b)
	}
	d.descriptor = [efc.DescriptorWords]uint32{
		0x00414850, // interface description
		geom.Size,
		geom.PageSize,
		uint32(len(geom.Banks)),
	}
	return d
}

// Geometry returns the geometry the device was created with.
func (d *Device) Geometry() efc.Geometry {
	return d.geom
}

// Read32 implements efc.Bus.
func (d *Device) Read32(addr uint32) (uint32, error) {
	if bank, off, ok := d.regOffset(addr); ok {
		return d.readReg(bank, off), nil
	}
	if d.geom.Contains(addr) {
		return d.readFlash32(addr &^ efc.WriteAliasFlag), nil
	}
	if addr == efc.IAPVectorAddr {
		return ROMEntry, nil
	}
	return 0, nil
}

// Write32 implements efc.Bus.
func (d *Device) Write32(addr, value uint32) error {
	if bank, off, ok := d.regOffset(addr); ok {
		d.writeReg(bank, off, value)
		return nil
	}
	if d.geom.Contains(addr) {
		// Any store into the flash window lands in the owning
		// controller's page latch, at the page-relative offset.
		direct := addr &^ efc.WriteAliasFlag
		bank, _, offset, err := efc.Translate(&d.geom, direct)
		if err != nil {
			return err
		}
		latch := d.banks[bank].latch
		word := offset &^ 3
		latch[word] = byte(value)
		latch[word+1] = byte(value >> 8)
		latch[word+2] = byte(value >> 16)
		latch[word+3] = byte(value >> 24)
		return nil
	}
	return nil
}

// Call implements efc.CallFunc for the simulated IAP routine: bank index
// in r0, the packed command word in r1. Like the ROM routine it performs
// the command and waits for completion before returning.
func (d *Device) Call(pc, r0, r1 uint32) (uint32, error) {
	if pc != ROMEntry {
		return 0, fmt.Errorf("efctest: call to 0x%08X outside ROM", pc)
	}
	if int(r0) >= len(d.banks) {
		return 0, fmt.Errorf("efctest: no controller %d", r0)
	}
	d.command(int(r0), r1, true)
	return 0, nil
}

// ForceError makes the next occurrences of cmd fail with the given status
// flags instead of executing.
func (d *Device) ForceError(cmd efc.Command, status efc.Status) {
	d.forced[cmd] = status
}

// register access

func (d *Device) regOffset(addr uint32) (bank int, off uint32, ok bool) {
	for i, b := range d.geom.Banks {
		if addr >= b.Regs && addr < b.Regs+0x10 {
			return i, addr - b.Regs, true
		}
	}
	return 0, 0, false
}

func (d *Device) readReg(bank int, off uint32) uint32 {
	b := d.banks[bank]
	switch off {
	case efc.RegFMR:
		return b.fmr
	case efc.RegFSR:
		st := b.sticky
		b.sticky = 0 // error flags clear on read
		v := uint32(st)
		if b.ready {
			v |= uint32(efc.StatusReady)
		}
		return v
	case efc.RegFRR:
		if len(b.results) == 0 {
			return 0
		}
		v := b.results[0]
		b.results = b.results[1:]
		return v
	}
	return 0
}

func (d *Device) writeReg(bank int, off, value uint32) {
	b := d.banks[bank]
	switch off {
	case efc.RegFMR:
		b.fmr = value
	case efc.RegFCR:
		d.command(bank, value, false)
	}
}

// command execution

func (d *Device) command(bank int, word uint32, viaIAP bool) {
	if word>>efc.FCRKeyShift != efc.KeyPassword {
		return // wrong key, silently ignored
	}
	cmd := efc.Command(word & efc.FCRCmdMask)
	arg := (word & efc.FCRArgMask) >> efc.FCRArgShift

	d.Commands = append(d.Commands, CommandRecord{Bank: bank, Cmd: cmd, Arg: arg, IAP: viaIAP})

	b := d.banks[bank]
	b.ready = true

	if st, ok := d.forced[cmd]; ok {
		b.sticky |= st
		return
	}

	switch cmd {
	case efc.CmdGetDescriptor:
		b.results = d.descriptor[:]
	case efc.CmdWritePage:
		d.writePage(bank, arg)
	case efc.CmdWritePageLock:
		if d.writePage(bank, arg) {
			d.setLock(bank, arg, true)
		}
	case efc.CmdEraseAll:
		d.eraseAll(bank)
	case efc.CmdEraseSector:
		d.eraseSector(bank, arg)
	case efc.CmdErasePages:
		d.erasePages(bank, arg)
	case efc.CmdSetLockBit:
		d.setLock(bank, arg, true)
	case efc.CmdClearLockBit:
		d.setLock(bank, arg, false)
	case efc.CmdGetLockBit:
		b.results = append([]uint32(nil), b.locks...)
	case efc.CmdSetGPNVMBit:
		d.setGPNVM(bank, arg, true)
	case efc.CmdClearGPNVMBit:
		d.setGPNVM(bank, arg, false)
	case efc.CmdGetGPNVMBit:
		b.results = []uint32{d.gpnvm}
	case efc.CmdStartUniqueID:
		d.uidMode = true
		b.ready = false // FRDY stays low until SPUI
	case efc.CmdStopUniqueID:
		d.uidMode = false
	default:
		b.sticky |= efc.StatusCommandError
	}
}

func (d *Device) bankPages() uint32 {
	return d.geom.BankSize() / d.geom.PageSize
}

func (d *Device) writePage(bank int, page uint32) bool {
	b := d.banks[bank]
	if page >= d.bankPages() {
		b.sticky |= efc.StatusCommandError
		return false
	}
	if d.regionLocked(bank, page) {
		b.sticky |= efc.StatusLockError
		return false
	}
	base := uint32(bank)*d.geom.BankSize() + page*d.geom.PageSize
	copy(d.flash[base:base+d.geom.PageSize], b.latch)
	resetLatch(b.latch)
	return true
}

func (d *Device) eraseAll(bank int) {
	b := d.banks[bank]
	for _, w := range b.locks {
		if w != 0 {
			b.sticky |= efc.StatusLockError
			return
		}
	}
	base := uint32(bank) * d.geom.BankSize()
	fill(d.flash[base:base+d.geom.BankSize()], 0xFF)
}

func (d *Device) eraseSector(bank int, page uint32) {
	b := d.banks[bank]
	if page >= d.bankPages() {
		b.sticky |= efc.StatusCommandError
		return
	}
	pagesPerSector := d.geom.SectorSize / d.geom.PageSize
	first := page - page%pagesPerSector
	for p := first; p < first+pagesPerSector; p++ {
		if d.regionLocked(bank, p) {
			b.sticky |= efc.StatusLockError
			return
		}
	}
	base := uint32(bank)*d.geom.BankSize() + first*d.geom.PageSize
	fill(d.flash[base:base+d.geom.SectorSize], 0xFF)
}

func (d *Device) erasePages(bank int, arg uint32) {
	b := d.banks[bank]
	count := uint32(4) << (arg & 3)
	first := (arg >> 2) &^ (count - 1)
	if first+count > d.bankPages() {
		b.sticky |= efc.StatusCommandError
		return
	}
	for p := first; p < first+count; p++ {
		if d.regionLocked(bank, p) {
			b.sticky |= efc.StatusLockError
			return
		}
	}
	base := uint32(bank)*d.geom.BankSize() + first*d.geom.PageSize
	fill(d.flash[base:base+count*d.geom.PageSize], 0xFF)
}

func (d *Device) regionLocked(bank int, page uint32) bool {
	region := page / d.geom.PagesPerRegion()
	return d.banks[bank].locks[region/32]&(1<<(region%32)) != 0
}

func (d *Device) setLock(bank int, page uint32, lock bool) {
	b := d.banks[bank]
	if page >= d.bankPages() {
		b.sticky |= efc.StatusCommandError
		return
	}
	region := page / d.geom.PagesPerRegion()
	if lock {
		b.locks[region/32] |= 1 << (region % 32)
	} else {
		b.locks[region/32] &^= 1 << (region % 32)
	}
}

func (d *Device) setGPNVM(bank int, bit uint32, set bool) {
	if bit >= efc.MaxGPNVMBits {
		d.banks[bank].sticky |= efc.StatusCommandError
		return
	}
	if set {
		d.gpnvm |= 1 << bit
	} else {
		d.gpnvm &^= 1 << bit
	}
}

// flash reads

func (d *Device) readFlash32(addr uint32) uint32 {
	off := addr - d.geom.Base
	if d.uidMode && off < efc.UniqueIDSize {
		// Unique-ID mode maps the identifier over the window start.
		id := d.uniqueID[off:]
		return le32(id)
	}
	return le32(d.flash[off:])
}

// test helpers

// FlashBytes returns the live backing array of the simulated flash.
func (d *Device) FlashBytes() []byte {
	return d.flash
}

// ReadFlash copies n bytes of flash content starting at the mapped addr.
func (d *Device) ReadFlash(addr, n uint32) []byte {
	off := addr - d.geom.Base
	out := make([]byte, n)
	copy(out, d.flash[off:])
	return out
}

// SeedFlash writes data directly into the array at the mapped addr,
// bypassing the controller. Intended for arranging test preconditions.
func (d *Device) SeedFlash(addr uint32, data []byte) {
	copy(d.flash[addr-d.geom.Base:], data)
}

// SetUniqueID sets the factory identifier returned in unique-ID mode.
func (d *Device) SetUniqueID(id [efc.UniqueIDSize]byte) {
	d.uniqueID = id
}

// GPNVM reports the simulated GPNVM bit.
func (d *Device) GPNVM(bit uint8) bool {
	return d.gpnvm&(1<<bit) != 0
}

// CommandCount returns how many times cmd was accepted.
func (d *Device) CommandCount(cmd efc.Command) int {
	n := 0
	for _, rec := range d.Commands {
		if rec.Cmd == cmd {
			n++
		}
	}
	return n
}

func resetLatch(latch []byte) {
	fill(latch, 0xFF)
}

func fill(p []byte, b byte) {
	for i := range p {
		p[i] = b
	}
}

func le32(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}
