package efc

import (
	"errors"
	"testing"
)

// scriptBus is a word-addressed fake memory that records every write.
type scriptBus struct {
	mem    map[uint32]uint32
	writes []busWrite
	calls  []busCall
	rdErr  error
	wrErr  error
}

type busWrite struct {
	addr  uint32
	value uint32
}

type busCall struct {
	pc, r0, r1 uint32
}

func newScriptBus() *scriptBus {
	return &scriptBus{mem: make(map[uint32]uint32)}
}

func (b *scriptBus) Read32(addr uint32) (uint32, error) {
	if b.rdErr != nil {
		return 0, b.rdErr
	}
	return b.mem[addr], nil
}

func (b *scriptBus) Write32(addr, value uint32) error {
	if b.wrErr != nil {
		return b.wrErr
	}
	b.mem[addr] = value
	b.writes = append(b.writes, busWrite{addr, value})
	return nil
}

func (b *scriptBus) Call(pc, r0, r1 uint32) (uint32, error) {
	b.calls = append(b.calls, busCall{pc, r0, r1})
	return 0, nil
}

func TestCommandWord(t *testing.T) {
	tests := []struct {
		cmd  Command
		arg  uint32
		want uint32
	}{
		{CmdEraseAll, 0, 0x5A000005},
		{CmdWritePage, 100, 0x5A006401},
		{CmdEraseSector, 0x100, 0x5A010011},
		{CmdSetGPNVMBit, 6, 0x5A00060B},
	}

	for _, tt := range tests {
		if got := commandWord(tt.cmd, tt.arg); got != tt.want {
			t.Errorf("commandWord(%s, %d) = 0x%08X, want 0x%08X", tt.cmd, tt.arg, got, tt.want)
		}
	}
}

func TestSetWaitStatePreservesFields(t *testing.T) {
	bus := newScriptBus()
	bus.mem[SEFC0Base+RegFMR] = 0x01010001 // unrelated bits plus FRDY enable

	c := NewController(bus, 0, SEFC0Base)
	if err := c.SetWaitState(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := bus.mem[SEFC0Base+RegFMR]; got != 0x01010501 {
		t.Errorf("FMR = 0x%08X, want 0x01010501", got)
	}
}

func TestReadyInterruptEnable(t *testing.T) {
	bus := newScriptBus()
	c := NewController(bus, 0, SEFC0Base)

	if err := c.EnableReadyInterrupt(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bus.mem[SEFC0Base+RegFMR]&FMRFlashReadyInterrupt == 0 {
		t.Error("enable did not set the FRDY bit")
	}

	if err := c.DisableReadyInterrupt(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bus.mem[SEFC0Base+RegFMR]&FMRFlashReadyInterrupt != 0 {
		t.Error("disable did not clear the FRDY bit")
	}
}

func TestDirectIssue(t *testing.T) {
	tests := []struct {
		name     string
		fsr      uint32
		wantErrs Status
	}{
		{name: "clean completion", fsr: uint32(StatusReady), wantErrs: 0},
		{
			name:     "lock error reported",
			fsr:      uint32(StatusReady | StatusLockError),
			wantErrs: StatusLockError,
		},
		{
			name:     "multiple errors reported",
			fsr:      uint32(StatusReady | StatusCommandError | StatusFlashError),
			wantErrs: StatusCommandError | StatusFlashError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newScriptBus()
			bus.mem[SEFC0Base+RegFSR] = tt.fsr

			c := NewController(bus, 0, SEFC0Base)
			st, err := Direct{}.Issue(c, CmdEraseSector, 0x40)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if st != tt.wantErrs {
				t.Errorf("status = 0x%X, want 0x%X", uint32(st), uint32(tt.wantErrs))
			}

			want := busWrite{SEFC0Base + RegFCR, commandWord(CmdEraseSector, 0x40)}
			if len(bus.writes) != 1 || bus.writes[0] != want {
				t.Errorf("writes = %v, want single %v", bus.writes, want)
			}
		})
	}
}

func TestDirectIssueBusError(t *testing.T) {
	bus := newScriptBus()
	bus.wrErr = errors.New("probe detached")

	c := NewController(bus, 0, SEFC0Base)
	if _, err := (Direct{}).Issue(c, CmdEraseAll, 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestIAPIssue(t *testing.T) {
	bus := newScriptBus()
	bus.mem[IAPVectorAddr] = 0x02000101
	bus.mem[SEFC1Base+RegFSR] = uint32(StatusReady)

	c := NewController(bus, 1, SEFC1Base)
	st, err := IAP{Call: bus.Call}.Issue(c, CmdWritePage, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != 0 {
		t.Errorf("status = 0x%X, want 0", uint32(st))
	}

	want := busCall{0x02000101, 1, commandWord(CmdWritePage, 7)}
	if len(bus.calls) != 1 || bus.calls[0] != want {
		t.Errorf("calls = %v, want single %v", bus.calls, want)
	}
	if len(bus.writes) != 0 {
		t.Errorf("IAP issue wrote registers directly: %v", bus.writes)
	}
}

func TestIAPIssueWithoutCall(t *testing.T) {
	bus := newScriptBus()
	c := NewController(bus, 0, SEFC0Base)

	if _, err := (IAP{}).Issue(c, CmdWritePage, 0); !errors.Is(err, ErrNoCallFunc) {
		t.Errorf("error = %v, want ErrNoCallFunc", err)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{0, "ok"},
		{StatusLockError, "lock error"},
		{StatusLockError | StatusCommandError, "lock error|command error"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(0x%X).String() = %q, want %q", uint32(tt.status), got, tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	err := &CommandError{Cmd: CmdWritePage, Arg: 33, Status: StatusLockError}
	want := "WP command failed: lock error (status 0x04, arg 0x21)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
