package efc

import (
	"fmt"
	"strings"
)

// Status is the EEFC_FSR register value. Command issue reports the subset
// selected by StatusErrorMask.
type Status uint32

// Ready reports whether the ready flag is set.
func (s Status) Ready() bool {
	return s&StatusReady != 0
}

// Errors returns the error flags carried by the status word.
func (s Status) Errors() Status {
	return s & StatusErrorMask
}

// String names the error flags, e.g. "lock error|command error".
func (s Status) String() string {
	var names []string
	if s&StatusLockError != 0 {
		names = append(names, "lock error")
	}
	if s&StatusCommandError != 0 {
		names = append(names, "command error")
	}
	if s&StatusFlashError != 0 {
		names = append(names, "flash error")
	}
	if len(names) == 0 {
		return "ok"
	}
	return strings.Join(names, "|")
}

// CommandError reports a command the controller completed with one or more
// error flags raised.
type CommandError struct {
	// Cmd is the command that failed
	Cmd Command

	// Arg is the argument the command was issued with
	Arg uint32

	// Status holds the error flags observed after completion
	Status Status
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s command failed: %s (status 0x%02X, arg 0x%X)",
		e.Cmd, e.Status, uint32(e.Status), e.Arg)
}

// IsCommandError returns true if the error is a *CommandError.
func IsCommandError(err error) bool {
	_, ok := err.(*CommandError)
	return ok
}

// AddressRangeError reports an address outside the flash window.
type AddressRangeError struct {
	Addr uint32
	Base uint32
	Size uint32
}

func (e *AddressRangeError) Error() string {
	return fmt.Sprintf("address 0x%08X outside flash window [0x%08X, 0x%08X)",
		e.Addr, e.Base, e.Base+e.Size)
}

// PageRangeError reports a (bank, page, offset) triple that does not name a
// location in the flash array.
type PageRangeError struct {
	Bank   int
	Page   uint32
	Offset uint32
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("invalid flash location: bank %d page %d offset %d",
		e.Bank, e.Page, e.Offset)
}
