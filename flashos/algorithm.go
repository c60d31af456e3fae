package flashos

import (
	"bytes"

	"github.com/moffa90/go-eefc/efc"
	"github.com/moffa90/go-eefc/flashd"
)

// Host return codes. The contract is numeric: 0 succeeds, 1 fails.
const (
	OK     = 0
	Failed = 1
)

// Function is the operation code the host passes to Init and UnInit.
type Function uint32

const (
	FunctionErase   Function = 1
	FunctionProgram Function = 2
	FunctionVerify  Function = 3
)

// Boot-mode GPNVM bits set during Init so the part boots from flash.
var bootModeBits = [...]uint8{5, 6}

// addressMask strips alias bits so host-supplied addresses land in the
// on-chip flash window.
const addressMask = 0x01FFFFFF

// Algorithm implements the programming-host contract for one target. The
// host drives it strictly sequentially: Init, then erase/program/verify
// calls, then UnInit.
//
// Algorithm is NOT safe for concurrent use.
type Algorithm struct {
	bus  efc.Bus
	geom efc.Geometry
	dev  Device
	opts []flashd.Option

	drv  *flashd.Driver
	base uint32
}

// New creates an Algorithm for the target behind bus. The driver session
// itself is created in Init, as the host contract requires. Options are
// forwarded to flashd.New; IAP mode is not meaningful here because the
// host halts the target CPU before calling in.
func New(bus efc.Bus, geom efc.Geometry, opts ...flashd.Option) *Algorithm {
	if bus == nil {
		panic("bus cannot be nil")
	}
	return &Algorithm{
		bus:  bus,
		geom: geom,
		dev:  NewDevice("PIC32CXMTG 2MB Flash", geom),
		opts: opts,
	}
}

// Device returns the descriptor for the host to read.
func (a *Algorithm) Device() Device {
	return a.dev
}

// Init prepares the target for the given operation: it opens the driver
// session, sets the boot-mode GPNVM bits and records addr as the session
// base. The clock argument is accepted for contract compatibility and
// unused. Returns OK or Failed.
func (a *Algorithm) Init(addr, clock uint32, fn Function) int {
	drv, err := flashd.New(a.bus, a.geom, a.opts...)
	if err != nil {
		return Failed
	}
	for _, bit := range bootModeBits {
		if err := drv.SetGPNVM(bit); err != nil {
			return Failed
		}
	}
	a.drv = drv
	a.base = addr
	return OK
}

// UnInit ends the session. Nothing needs tearing down, so it always
// returns OK.
func (a *Algorithm) UnInit(fn Function) int {
	a.drv = nil
	return OK
}

// EraseChip erases the whole flash array. Returns OK or Failed.
func (a *Algorithm) EraseChip() int {
	if a.drv == nil {
		return Failed
	}
	if err := a.drv.Erase(a.base); err != nil {
		return Failed
	}
	return OK
}

// EraseSector erases the sector containing addr. The covering lock
// regions are cleared first; a locked sector would otherwise fail the
// erase outright. Returns OK or Failed.
func (a *Algorithm) EraseSector(addr uint32) int {
	if a.drv == nil {
		return Failed
	}
	addr &= addressMask

	size := a.dev.SectorSize(addr - a.dev.BaseAddr)
	if size == 0 {
		return Failed
	}
	start := addr - (addr-a.dev.BaseAddr)%size

	if _, _, err := a.drv.Unlock(start, start+size); err != nil {
		return Failed
	}
	if err := a.drv.EraseSector(start); err != nil {
		return Failed
	}
	return OK
}

// ProgramPage writes data to flash starting at addr. The host usually
// passes one page at a time but any span inside the window is accepted.
// Returns OK or Failed.
func (a *Algorithm) ProgramPage(addr uint32, data []byte) int {
	if a.drv == nil {
		return Failed
	}
	if err := a.drv.Write(addr&addressMask, data); err != nil {
		return Failed
	}
	return OK
}

// Verify compares flash content at addr against data. It returns
// addr+len(data) on an exact match and addr otherwise; the host treats
// any other value as the failure location.
func (a *Algorithm) Verify(addr uint32, data []byte) uint32 {
	if a.drv == nil {
		return addr
	}
	target := addr & addressMask

	// Reads go through word accesses, so each chunk starts at the aligned
	// address below the compare position.
	var buf [260]byte
	for read := 0; read < len(data); {
		pos := target + uint32(read)
		aligned := pos &^ 3
		lead := int(pos - aligned)

		n := len(data) - read
		if n > 256 {
			n = 256
		}
		if err := efc.ReadBytes(a.bus, aligned, buf[:lead+n]); err != nil {
			return addr
		}
		if !bytes.Equal(buf[lead:lead+n], data[read:read+n]) {
			return addr
		}
		read += n
	}
	return addr + uint32(len(data))
}
