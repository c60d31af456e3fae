package efc

// Bank describes one EEFC controller instance: the address of its register
// block. Each bank owns an equal share of the flash array.
type Bank struct {
	// Regs is the base address of the controller's register block
	Regs uint32
}

// Geometry describes one target's flash array and its controllers. The
// values are fixed per device and never change at runtime.
type Geometry struct {
	// Base is the first mapped address of the flash array
	Base uint32

	// Size is the total size of the flash array in bytes
	Size uint32

	// PageSize is the programming page size in bytes
	PageSize uint32

	// SectorSize is the erase sector size in bytes
	SectorSize uint32

	// LockRegionSize is the size of one lock region in bytes
	LockRegionSize uint32

	// Pages is the total page count of the array
	Pages uint32

	// LockBits is the total lock region (lock bit) count
	LockBits uint32

	// Banks lists the controller instances. The flash array is split
	// evenly across them: the lower part maps to Banks[0], and so on.
	Banks []Bank
}

// PIC32CX2051MTG is the 2 MiB flash of the PIC32CX2051MTG variants, served
// by a single controller.
var PIC32CX2051MTG = Geometry{
	Base:           0x01000000,
	Size:           0x00200000,
	PageSize:       512,
	SectorSize:     0x20000,
	LockRegionSize: 8192,
	Pages:          4096,
	LockBits:       256,
	Banks:          []Bank{{Regs: SEFC0Base}},
}

// PIC32CX0212MTG is the 256 KiB flash of the PIC32CX0212MTG variants.
var PIC32CX0212MTG = Geometry{
	Base:           0x01000000,
	Size:           0x00040000,
	PageSize:       512,
	SectorSize:     0x20000,
	LockRegionSize: 8192,
	Pages:          512,
	LockBits:       32,
	Banks:          []Bank{{Regs: SEFC0Base}},
}

// BankSize returns the span of flash owned by one controller.
func (g *Geometry) BankSize() uint32 {
	return g.Size / uint32(len(g.Banks))
}

// PagesPerRegion returns the number of pages in one lock region.
func (g *Geometry) PagesPerRegion() uint32 {
	return g.LockRegionSize / g.PageSize
}

// Contains reports whether addr lies inside the flash window. The
// write-alias bits are ignored so aliased addresses qualify too.
func (g *Geometry) Contains(addr uint32) bool {
	addr &^= WriteAliasFlag
	return addr >= g.Base && addr < g.Base+g.Size
}

// Translate converts a linear flash address into the owning bank index, the
// page number relative to that bank, and the byte offset within the page.
//
// The address must lie within the flash window; out-of-range addresses are
// a caller bug and reported as *AddressRangeError.
func Translate(g *Geometry, addr uint32) (bank int, page, offset uint32, err error) {
	addr &^= WriteAliasFlag
	if !g.Contains(addr) {
		return 0, 0, 0, &AddressRangeError{Addr: addr, Base: g.Base, Size: g.Size}
	}
	rel := addr - g.Base
	bankSize := g.BankSize()
	bank = int(rel / bankSize)
	rel -= uint32(bank) * bankSize
	return bank, rel / g.PageSize, rel % g.PageSize, nil
}

// ComputeAddress is the inverse of Translate: it maps (bank, page, offset)
// back to the linear flash address. page is bank-relative and may equal the
// bank's page count with offset 0, naming the exclusive end of the bank.
func ComputeAddress(g *Geometry, bank int, page, offset uint32) (uint32, error) {
	if bank < 0 || bank >= len(g.Banks) ||
		page > g.Pages/uint32(len(g.Banks)) || offset >= g.PageSize {
		return 0, &PageRangeError{Bank: bank, Page: page, Offset: offset}
	}
	return g.Base + uint32(bank)*g.BankSize() + page*g.PageSize + offset, nil
}
