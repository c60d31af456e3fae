package flashd

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-eefc/efc"
)

// ErrNilBuffer is returned by Write when the data buffer is nil.
var ErrNilBuffer = errors.New("flashd: nil data buffer")

// BitRangeError reports a GPNVM bit number beyond the implemented bits.
type BitRangeError struct {
	Bit uint8
}

func (e *BitRangeError) Error() string {
	return fmt.Sprintf("GPNVM bit %d out of range: device implements bits 0-%d",
		e.Bit, efc.MaxGPNVMBits-1)
}
