// Package efc implements the register-level interface to the Enhanced
// Embedded Flash Controller (EEFC) found on Microchip PIC32CX-MT devices.
//
// # Overview
//
// The EEFC mediates every erase, program, lock and configuration operation
// on the on-chip flash through four memory-mapped registers:
//
//	EEFC_FMR  mode register (wait states, ready interrupt enable)
//	EEFC_FCR  command register (keyed; commands without the key are ignored)
//	EEFC_FSR  status register (ready flag plus sticky error flags)
//	EEFC_FRR  result register (streams command results word by word)
//
// This package provides:
//   - Controller: accessors for one EEFC instance's register block
//   - Issuer: the command-issue strategy (Direct register polling, or the
//     IAP routine resident in boot ROM)
//   - Translate / ComputeAddress: linear flash address to (bank, page,
//     offset) and back, over a Geometry that describes the target
//
// # Hardware Independence
//
// This package does NOT implement target access. Users must provide a Bus
// implementation for their specific transport (debug probe, on-target
// memory mapping, or the efctest simulator):
//
//	type MyProbe struct {
//	    // ... your probe implementation
//	}
//
//	func (p *MyProbe) Read32(addr uint32) (uint32, error)  { ... }
//	func (p *MyProbe) Write32(addr, value uint32) error    { ... }
//
// All access is word-sized. The flash write latch explicitly forbids byte
// and half-word stores, so a Bus only ever needs 32-bit operations.
package efc
