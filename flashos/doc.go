// Package flashos adapts the flashd driver to the flat function contract
// that generic flash-programming hosts call: Init, UnInit, EraseChip,
// EraseSector, ProgramPage and Verify, plus the static device descriptor
// the host reads to learn the flash layout.
//
// # Basic Usage
//
//	alg := flashos.New(bus, efc.PIC32CX2051MTG)
//	if alg.Init(0x01000000, 0, flashos.FunctionProgram) != flashos.OK {
//	    // target refused boot-mode configuration
//	}
//	defer alg.UnInit(flashos.FunctionProgram)
//
//	if alg.ProgramPage(0x01000000, firmware) != flashos.OK {
//	    // programming failed
//	}
//
// Return values follow the host convention: 0 for success, 1 for failure,
// and Verify returns an address instead. Rich errors stay inside flashd;
// this layer deliberately collapses them.
package flashos
