package efc

import "encoding/binary"

// Bus provides 32-bit access to the target's memory map: flash windows,
// EEFC register blocks and the boot ROM. Implementations are debug-probe
// transports, on-target mappings, or the efctest simulator.
//
// All flash data is little-endian, matching the target CPU.
type Bus interface {
	// Read32 reads the word at addr.
	Read32(addr uint32) (uint32, error)

	// Write32 writes value to addr.
	Write32(addr, value uint32) error
}

// CallFunc invokes a routine on the target at pc with two register
// arguments and returns its result. It is only needed for the IAP command
// path; buses that cannot execute target code simply don't provide one.
type CallFunc func(pc, r0, r1 uint32) (uint32, error)

// ReadBytes fills p from target memory starting at addr using word reads.
// addr must be word-aligned; len(p) need not be a word multiple.
func ReadBytes(bus Bus, addr uint32, p []byte) error {
	var word [4]byte
	for len(p) > 0 {
		v, err := bus.Read32(addr)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(word[:], v)
		n := copy(p, word[:])
		p = p[n:]
		addr += 4
	}
	return nil
}

// WriteWords stores p to target memory at addr strictly as 32-bit word
// writes. len(p) must be a multiple of 4; the flash write latch corrupts
// data on narrower stores, so there is no byte tail handling.
func WriteWords(bus Bus, addr uint32, p []byte) error {
	for i := 0; i < len(p); i += 4 {
		if err := bus.Write32(addr+uint32(i), binary.LittleEndian.Uint32(p[i:])); err != nil {
			return err
		}
	}
	return nil
}
