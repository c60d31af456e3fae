package efc

// Register offsets within an EEFC register block.
const (
	// RegFMR is the EEFC Flash Mode Register offset
	RegFMR = 0x00

	// RegFCR is the EEFC Flash Command Register offset
	RegFCR = 0x04

	// RegFSR is the EEFC Flash Status Register offset
	RegFSR = 0x08

	// RegFRR is the EEFC Flash Result Register offset
	RegFRR = 0x0C
)

// EEFC_FMR fields.
const (
	// FMRFlashReadyInterrupt enables the flash ready interrupt source
	FMRFlashReadyInterrupt = 1 << 0

	// FMRWaitStateShift is the bit position of the FWS field
	FMRWaitStateShift = 8

	// FMRWaitStateMask masks the FWS field (wait-state cycle count)
	FMRWaitStateMask = 0xF << FMRWaitStateShift
)

// EEFC_FCR fields. A command is accepted only when the FKEY field carries
// the fixed password; anything else is silently ignored by hardware.
const (
	// KeyPassword is the FKEY value that unlocks the command register (0x5A)
	KeyPassword = 0x5A

	// FCRKeyShift is the bit position of the FKEY field
	FCRKeyShift = 24

	// FCRArgShift is the bit position of the FARG field
	FCRArgShift = 8

	// FCRArgMask masks the FARG field (command argument)
	FCRArgMask = 0xFFFF << FCRArgShift

	// FCRCmdMask masks the FCMD field (command code)
	FCRCmdMask = 0xFF
)

// EEFC_FSR bits. The error flags are sticky and clear on read, so a status
// read consumes them; see Controller.Status.
const (
	// StatusReady indicates the controller is idle and ready for a command
	StatusReady Status = 1 << 0

	// StatusCommandError indicates a bad command or argument was rejected
	StatusCommandError Status = 1 << 1

	// StatusLockError indicates programming hit at least one locked region
	StatusLockError Status = 1 << 2

	// StatusFlashError indicates a flash memory (lock sequence) error
	StatusFlashError Status = 1 << 3

	// StatusErrorMask selects the error bits reported by command issue
	StatusErrorMask = StatusCommandError | StatusLockError | StatusFlashError
)

// Command is an EEFC command code, written to the FCMD field of EEFC_FCR.
type Command uint8

// EEFC command set.
const (
	CmdGetDescriptor      Command = 0x00 // GETD: get flash descriptor
	CmdWritePage          Command = 0x01 // WP: write page
	CmdWritePageLock      Command = 0x02 // WPL: write page and lock
	CmdEraseAll           Command = 0x05 // EA: erase all
	CmdErasePages         Command = 0x07 // EPA: erase pages
	CmdSetLockBit         Command = 0x08 // SLB: set lock bit
	CmdClearLockBit       Command = 0x09 // CLB: clear lock bit
	CmdGetLockBit         Command = 0x0A // GLB: get lock bit
	CmdSetGPNVMBit        Command = 0x0B // SGPB: set GPNVM bit
	CmdClearGPNVMBit      Command = 0x0C // CGPB: clear GPNVM bit
	CmdGetGPNVMBit        Command = 0x0D // GGPB: get GPNVM bit
	CmdStartUniqueID      Command = 0x0E // STUI: start read unique identifier
	CmdStopUniqueID       Command = 0x0F // SPUI: stop read unique identifier
	CmdGetCalibrationBit  Command = 0x10 // GCALB: get CALIB bit
	CmdEraseSector        Command = 0x11 // ES: erase sector
	CmdWriteUserSignature Command = 0x12 // WUS: write user signature
	CmdEraseUserSignature Command = 0x13 // EUS: erase user signature
	CmdStartUserSignature Command = 0x14 // STUS: start read user signature
	CmdStopUserSignature  Command = 0x15 // SPUS: stop read user signature
)

// String returns the datasheet mnemonic for the command.
func (c Command) String() string {
	switch c {
	case CmdGetDescriptor:
		return "GETD"
	case CmdWritePage:
		return "WP"
	case CmdWritePageLock:
		return "WPL"
	case CmdEraseAll:
		return "EA"
	case CmdErasePages:
		return "EPA"
	case CmdSetLockBit:
		return "SLB"
	case CmdClearLockBit:
		return "CLB"
	case CmdGetLockBit:
		return "GLB"
	case CmdSetGPNVMBit:
		return "SGPB"
	case CmdClearGPNVMBit:
		return "CGPB"
	case CmdGetGPNVMBit:
		return "GGPB"
	case CmdStartUniqueID:
		return "STUI"
	case CmdStopUniqueID:
		return "SPUI"
	case CmdGetCalibrationBit:
		return "GCALB"
	case CmdEraseSector:
		return "ES"
	case CmdWriteUserSignature:
		return "WUS"
	case CmdEraseUserSignature:
		return "EUS"
	case CmdStartUserSignature:
		return "STUS"
	case CmdStopUserSignature:
		return "SPUS"
	}
	return "unknown"
}

// Memory map constants shared by the PIC32CX-MT family.
const (
	// WriteAliasFlag selects the internal-write alias of the flash window.
	// Stores through this alias land in the controller's page latch instead
	// of the direct read mapping.
	WriteAliasFlag = 0xA0000000

	// IAPVectorAddr holds the pointer to the IAP routine in boot ROM
	IAPVectorAddr = 0x02000008

	// SEFC0Base is the register block address of the first controller
	SEFC0Base = 0x460E0000

	// SEFC1Base is the register block address of the second controller,
	// on devices that have one
	SEFC1Base = 0x460E0200

	// MaxGPNVMBits is the number of implemented GPNVM bits
	MaxGPNVMBits = 9

	// UniqueIDSize is the size of the factory unique identifier in bytes
	UniqueIDSize = 16

	// DescriptorWords is the number of result words of the GETD command
	// consumed by this driver
	DescriptorWords = 4
)
