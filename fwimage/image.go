package fwimage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marcinbor85/gohex"
)

// Segment is a contiguous run of firmware bytes at a load address.
type Segment struct {
	// Addr is the load address of the first byte
	Addr uint32

	// Data is the segment content
	Data []byte
}

// Image is a parsed firmware image: one or more non-overlapping segments
// in ascending address order.
type Image struct {
	Segments []Segment
}

// Size returns the total payload size in bytes across all segments.
func (img *Image) Size() int {
	n := 0
	for _, s := range img.Segments {
		n += len(s.Data)
	}
	return n
}

// Span returns the address range [start, end) covered by the image,
// including any gaps between segments. Both are zero for an empty image.
func (img *Image) Span() (start, end uint32) {
	if len(img.Segments) == 0 {
		return 0, 0
	}
	first := img.Segments[0]
	last := img.Segments[len(img.Segments)-1]
	return first.Addr, last.Addr + uint32(len(last.Data))
}

// ParseHex parses an Intel HEX stream. Load addresses come from the file.
func ParseHex(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}

	img := &Image{}
	for _, seg := range mem.GetDataSegments() {
		data := make([]byte, len(seg.Data))
		copy(data, seg.Data)
		img.Segments = append(img.Segments, Segment{Addr: seg.Address, Data: data})
	}
	sort.Slice(img.Segments, func(i, j int) bool {
		return img.Segments[i].Addr < img.Segments[j].Addr
	})
	return img, nil
}

// ParseBin reads a raw binary stream as a single segment at base.
func ParseBin(r io.Reader, base uint32) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read binary: %w", err)
	}
	if len(data) == 0 {
		return &Image{}, nil
	}
	return &Image{Segments: []Segment{{Addr: base, Data: data}}}, nil
}

// Load reads a firmware file, picking the format by extension: .hex and
// .ihex parse as Intel HEX, anything else as raw binary placed at base.
func Load(path string, base uint32) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex":
		return ParseHex(f)
	default:
		return ParseBin(f, base)
	}
}

// DumpHex writes the image as Intel HEX with 16 data bytes per record.
func (img *Image) DumpHex(w io.Writer) error {
	mem := gohex.NewMemory()
	for _, s := range img.Segments {
		if err := mem.AddBinary(s.Addr, s.Data); err != nil {
			return fmt.Errorf("dump hex: %w", err)
		}
	}
	return mem.DumpIntelHex(w, 16)
}
