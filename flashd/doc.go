// Package flashd provides the flash driver for PIC32CX-MT on-chip flash:
// programming, erasing, locking and unlocking through the EEFC.
//
// # Overview
//
// A Driver is one programming session over a target. It owns the page
// scratch buffer and the command-issue mode, and exposes:
//   - Write: read-merge-write page programming for arbitrary ranges
//   - Erase / EraseSector: bulk and sector erase
//   - Lock / Unlock / IsLocked: lock-region management
//   - GPNVM bit access, factory unique ID and flash descriptor reads
//
// Writing 8-bit and 16-bit data to the flash latch is not allowed and may
// lead to unpredictable data corruption, so Write stages every page in a
// scratch buffer and commits it with aligned word stores only.
//
// # Basic Usage
//
//	// User provides target access (efc.Bus)
//	bus := myprobe.Open("serial-number")
//
//	drv, err := flashd.New(bus, efc.PIC32CX2051MTG)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, _, err := drv.Unlock(0x01000000, 0x01020000); err != nil {
//	    log.Fatal(err)
//	}
//	if err := drv.Write(0x01000000, firmware); err != nil {
//	    log.Fatal(err)
//	}
//
// # Command Modes
//
// By default commands are written to the controller's command register and
// completion is busy-polled. When the target CPU executes from the flash
// bank being modified, configure the IAP path instead, which routes
// commands through the boot ROM routine:
//
//	drv, err := flashd.New(bus, geom, flashd.WithIAP(probe.Call))
//
// # Concurrency
//
// A Driver is single-threaded and non-reentrant: the page buffer and the
// controller registers are shared mutable state, and the hardware accepts
// one command in flight per controller. The caller serializes. Completion
// waits are unbounded; a stalled controller blocks forever, and bounded
// waits are the host tool's responsibility.
//
// # Error Handling
//
// Hardware command failures surface as *efc.CommandError carrying the
// status flags. Precondition violations (address out of window, nil
// buffer) surface as *efc.AddressRangeError, ErrNilBuffer or
// *BitRangeError before any command is issued. The driver never retries:
// the first failure is reported and the flash keeps whatever partial state
// the hardware left (pages already committed stay committed, regions
// already locked stay locked).
package flashd
