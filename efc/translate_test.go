package efc

import (
	"errors"
	"testing"
)

// dualBank is a synthetic geometry exercising the split-array translation.
var dualBank = Geometry{
	Base:           0x01000000,
	Size:           0x00200000,
	PageSize:       512,
	SectorSize:     0x20000,
	LockRegionSize: 8192,
	Pages:          4096,
	LockBits:       256,
	Banks:          []Bank{{Regs: SEFC0Base}, {Regs: SEFC1Base}},
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name       string
		geom       *Geometry
		addr       uint32
		wantBank   int
		wantPage   uint32
		wantOffset uint32
	}{
		{
			name: "flash base",
			geom: &PIC32CX2051MTG, addr: 0x01000000,
			wantBank: 0, wantPage: 0, wantOffset: 0,
		},
		{
			name: "unaligned address",
			geom: &PIC32CX2051MTG, addr: 0x01000000 + 3*512 + 17,
			wantBank: 0, wantPage: 3, wantOffset: 17,
		},
		{
			name: "last byte",
			geom: &PIC32CX2051MTG, addr: 0x011FFFFF,
			wantBank: 0, wantPage: 4095, wantOffset: 511,
		},
		{
			name: "write alias maps like direct address",
			geom: &PIC32CX2051MTG, addr: 0xA1000200,
			wantBank: 0, wantPage: 1, wantOffset: 0,
		},
		{
			name: "dual bank lower half",
			geom: &dualBank, addr: 0x010FFFFF,
			wantBank: 0, wantPage: 2047, wantOffset: 511,
		},
		{
			name: "dual bank upper half is bank relative",
			geom: &dualBank, addr: 0x01100000,
			wantBank: 1, wantPage: 0, wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank, page, offset, err := Translate(tt.geom, tt.addr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bank != tt.wantBank || page != tt.wantPage || offset != tt.wantOffset {
				t.Errorf("Translate(0x%08X) = (%d, %d, %d), want (%d, %d, %d)",
					tt.addr, bank, page, offset, tt.wantBank, tt.wantPage, tt.wantOffset)
			}
		})
	}
}

func TestTranslateOutOfRange(t *testing.T) {
	for _, addr := range []uint32{0x00FFFFFC, 0x01200000, 0x20000000, 0} {
		_, _, _, err := Translate(&PIC32CX2051MTG, addr)
		var rangeErr *AddressRangeError
		if !errors.As(err, &rangeErr) {
			t.Errorf("Translate(0x%08X) error = %v, want *AddressRangeError", addr, err)
		}
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	for _, geom := range []*Geometry{&PIC32CX2051MTG, &PIC32CX0212MTG, &dualBank} {
		// Step through the window with a stride that is coprime to the
		// page size so every page offset pattern gets visited.
		for addr := geom.Base; addr < geom.Base+geom.Size; addr += 509 {
			bank, page, offset, err := Translate(geom, addr)
			if err != nil {
				t.Fatalf("Translate(0x%08X): %v", addr, err)
			}
			back, err := ComputeAddress(geom, bank, page, offset)
			if err != nil {
				t.Fatalf("ComputeAddress(%d, %d, %d): %v", bank, page, offset, err)
			}
			if back != addr {
				t.Fatalf("round trip 0x%08X -> (%d, %d, %d) -> 0x%08X",
					addr, bank, page, offset, back)
			}
		}
	}
}

func TestComputeAddressRange(t *testing.T) {
	tests := []struct {
		name   string
		bank   int
		page   uint32
		offset uint32
	}{
		{name: "negative bank", bank: -1},
		{name: "bank beyond geometry", bank: 1},
		{name: "page beyond count", page: 4097},
		{name: "offset beyond page", offset: 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeAddress(&PIC32CX2051MTG, tt.bank, tt.page, tt.offset)
			var pageErr *PageRangeError
			if !errors.As(err, &pageErr) {
				t.Errorf("error = %v, want *PageRangeError", err)
			}
		})
	}
}

func TestGeometryDerived(t *testing.T) {
	if got := PIC32CX2051MTG.PagesPerRegion(); got != 16 {
		t.Errorf("PagesPerRegion() = %d, want 16", got)
	}
	if got := dualBank.BankSize(); got != 0x00100000 {
		t.Errorf("BankSize() = 0x%X, want 0x100000", got)
	}
	if PIC32CX2051MTG.Pages*PIC32CX2051MTG.PageSize != PIC32CX2051MTG.Size {
		t.Error("page count does not cover the flash size")
	}
	if PIC32CX2051MTG.LockBits*PIC32CX2051MTG.LockRegionSize != PIC32CX2051MTG.Size {
		t.Error("lock bits do not cover the flash size")
	}
}
