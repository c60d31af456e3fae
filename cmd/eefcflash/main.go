// Command eefcflash programs PIC32CX-MT flash images through the flashos
// algorithm. It runs against a file-backed simulated target, which makes
// it a workbench for firmware layout and for the programming flow itself;
// point it at real hardware by swapping the bus construction in openTarget.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/moffa90/go-eefc/efc"
	"github.com/moffa90/go-eefc/efctest"
	"github.com/moffa90/go-eefc/flashd"
	"github.com/moffa90/go-eefc/flashos"
	"github.com/moffa90/go-eefc/fwimage"
)

var cli struct {
	Image   string `short:"i" default:"flash.img" help:"File backing the simulated target's flash array."`
	Verbose bool   `short:"v" help:"Log every driver operation."`

	Info     InfoCmd     `cmd:"" help:"Print the device descriptor and flash state."`
	Erase    EraseCmd    `cmd:"" help:"Erase the whole chip or one sector."`
	Program  ProgramCmd  `cmd:"" help:"Program a firmware file (Intel HEX or raw binary)."`
	Verify   VerifyCmd   `cmd:"" help:"Compare a firmware file against flash content."`
	UniqueID UniqueIDCmd `cmd:"" name:"unique-id" help:"Read the factory unique identifier."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("eefcflash"),
		kong.Description("PIC32CX-MT EEFC flash programming tool."),
		kong.UsageOnError(),
	)

	target, err := openTarget()
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(target))
}

// Target bundles what every subcommand needs: the host-contract algorithm,
// the simulated device behind it and the backing file to persist.
type Target struct {
	alg  *flashos.Algorithm
	dev  *efctest.Device
	path string
}

func openTarget() (*Target, error) {
	dev := efctest.NewDevice(efc.PIC32CX2051MTG)

	if data, err := os.ReadFile(cli.Image); err == nil {
		if len(data) != len(dev.FlashBytes()) {
			return nil, fmt.Errorf("%s holds %d bytes, flash is %d", cli.Image, len(data), len(dev.FlashBytes()))
		}
		copy(dev.FlashBytes(), data)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var opts []flashd.Option
	if cli.Verbose {
		opts = append(opts, flashd.WithLogger(consoleLogger{}))
	}

	return &Target{
		alg:  flashos.New(dev, dev.Geometry(), opts...),
		dev:  dev,
		path: cli.Image,
	}, nil
}

func (t *Target) save() error {
	return os.WriteFile(t.path, t.dev.FlashBytes(), 0o644)
}

// session wraps a host-contract call window around op.
func (t *Target) session(fn flashos.Function, op func() error) error {
	dev := t.alg.Device()
	if t.alg.Init(dev.BaseAddr, 0, fn) != flashos.OK {
		return fmt.Errorf("target initialization failed")
	}
	defer t.alg.UnInit(fn)
	return op()
}

type InfoCmd struct{}

func (c *InfoCmd) Run(t *Target) error {
	dev := t.alg.Device()
	bold := color.New(color.Bold)

	bold.Println(dev.Name)
	fmt.Printf("  base        0x%08X\n", dev.BaseAddr)
	fmt.Printf("  size        %d KiB\n", dev.Size/1024)
	fmt.Printf("  page size   %d bytes\n", dev.PageSize)
	fmt.Printf("  sectors     %d x %d KiB\n", len(dev.Sectors), dev.Sectors[0].Size/1024)

	used := 0
	for _, b := range t.dev.FlashBytes() {
		if b != dev.Erased {
			used++
		}
	}
	fmt.Printf("  programmed  %d bytes\n", used)
	return nil
}

type EraseCmd struct {
	Sector string `help:"Erase only the sector containing this address."`
}

func (c *EraseCmd) Run(t *Target) error {
	err := t.session(flashos.FunctionErase, func() error {
		if c.Sector != "" {
			addr, err := parseAddr(c.Sector)
			if err != nil {
				return err
			}
			if t.alg.EraseSector(addr) != flashos.OK {
				return fmt.Errorf("erase sector at 0x%08X failed", addr)
			}
			color.Green("sector at 0x%08X erased", addr)
			return nil
		}
		if t.alg.EraseChip() != flashos.OK {
			return fmt.Errorf("chip erase failed")
		}
		color.Green("chip erased")
		return nil
	})
	if err != nil {
		return err
	}
	return t.save()
}

type ProgramCmd struct {
	File   string `arg:"" help:"Firmware file (.hex, .ihex or raw binary)."`
	Addr   string `help:"Load address for raw binaries." default:"0x01000000"`
	Verify bool   `help:"Verify after programming."`
}

func (c *ProgramCmd) Run(t *Target) error {
	base, err := parseAddr(c.Addr)
	if err != nil {
		return err
	}
	img, err := fwimage.Load(c.File, base)
	if err != nil {
		return err
	}
	if img.Size() == 0 {
		return fmt.Errorf("%s contains no data", c.File)
	}

	err = t.session(flashos.FunctionProgram, func() error {
		for _, seg := range img.Segments {
			if t.alg.ProgramPage(seg.Addr, seg.Data) != flashos.OK {
				return fmt.Errorf("programming %d bytes at 0x%08X failed", len(seg.Data), seg.Addr)
			}
			if c.Verify {
				want := seg.Addr + uint32(len(seg.Data))
				if got := t.alg.Verify(seg.Addr, seg.Data); got != want {
					return fmt.Errorf("verify mismatch at 0x%08X", got)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	color.Green("%d bytes programmed", img.Size())
	return t.save()
}

type VerifyCmd struct {
	File string `arg:"" help:"Firmware file (.hex, .ihex or raw binary)."`
	Addr string `help:"Load address for raw binaries." default:"0x01000000"`
}

func (c *VerifyCmd) Run(t *Target) error {
	base, err := parseAddr(c.Addr)
	if err != nil {
		return err
	}
	img, err := fwimage.Load(c.File, base)
	if err != nil {
		return err
	}

	return t.session(flashos.FunctionVerify, func() error {
		for _, seg := range img.Segments {
			want := seg.Addr + uint32(len(seg.Data))
			if got := t.alg.Verify(seg.Addr, seg.Data); got != want {
				color.Red("mismatch at 0x%08X", got)
				return fmt.Errorf("flash content differs from %s", c.File)
			}
		}
		color.Green("%d bytes match", img.Size())
		return nil
	})
}

type UniqueIDCmd struct{}

func (c *UniqueIDCmd) Run(t *Target) error {
	drv, err := flashd.New(t.dev, t.dev.Geometry())
	if err != nil {
		return err
	}
	id, err := drv.ReadUniqueID()
	if err != nil {
		return err
	}
	fmt.Printf("% X\n", id)
	return nil
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	return uint32(v), nil
}

// consoleLogger adapts driver logging to colored console output.
type consoleLogger struct{}

func (consoleLogger) Debug(msg string, kv ...interface{}) {
	fmt.Fprintln(os.Stderr, append([]interface{}{color.HiBlackString("debug:"), msg}, kv...)...)
}

func (consoleLogger) Info(msg string, kv ...interface{}) {
	fmt.Fprintln(os.Stderr, append([]interface{}{"info:", msg}, kv...)...)
}

func (consoleLogger) Error(msg string, kv ...interface{}) {
	fmt.Fprintln(os.Stderr, append([]interface{}{color.RedString("error:"), msg}, kv...)...)
}
