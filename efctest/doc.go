// Package efctest provides a behavioral simulation of a PIC32CX-MT target
// for testing flash drivers and algorithms without hardware.
//
// Device implements efc.Bus over a simulated memory map: the flash array,
// the write latch of each controller, the EEFC register blocks and the boot
// ROM IAP vector. Commands written to the command register execute
// immediately at command-level fidelity: keyed writes, lock regions, GPNVM
// bits, unique-ID mode, result streaming and clear-on-read status flags all
// behave as the datasheet describes.
//
//	dev := efctest.NewDevice(efc.PIC32CX2051MTG)
//	drv, err := flashd.New(dev, dev.Geometry())
//
// The simulator is not timing-accurate: commands never stay busy, and the
// write-page command copies the latch verbatim instead of modeling NOR
// program physics. Both are sufficient for driver-level tests, which assert
// command sequences and resulting flash content.
package efctest
