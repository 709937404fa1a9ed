// Package header encodes the PACx container header and the per-sub-archive
// header.
package header

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/pacx/internal/bin"
	"github.com/meigma/pacx/internal/pactype"
)

// Signature opens every container and sub-archive.
const Signature = "PACx"

// Format versions written by this package.
const (
	ContainerVersion = 403
	SubVersion       = 402
)

// Endianness flags.
const (
	LittleEndianFlag = 'L'
	BigEndianFlag    = 'B'
)

// ByteOrder maps a big-endian flag to a binary.ByteOrder.
func ByteOrder(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func writePreamble(w *bin.Writer, version uint16, bigEndian bool) {
	w.WriteString(Signature)
	w.WriteString(fmt.Sprintf("%03d", version))
	if bigEndian {
		w.WriteU8(BigEndianFlag)
	} else {
		w.WriteU8(LittleEndianFlag)
	}
}

// readPreamble checks the signature and version digits and switches r to the
// declared byte order.
func readPreamble(r *bin.Reader) (version uint16, bigEndian bool, err error) {
	sig, err := r.Fixed(len(Signature))
	if err != nil {
		return 0, false, err
	}
	if sig != Signature {
		return 0, false, fmt.Errorf("%w: expected %q, got %q", pactype.ErrSignature, Signature, sig)
	}
	digits, err := r.Fixed(3)
	if err != nil {
		return 0, false, err
	}
	for i := range len(digits) {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, false, fmt.Errorf("%w: invalid version %q", pactype.ErrSignature, digits)
		}
		version = version*10 + uint16(c-'0')
	}
	flag, err := r.U8()
	if err != nil {
		return 0, false, err
	}
	bigEndian = flag == BigEndianFlag
	r.SetOrder(ByteOrder(bigEndian))
	return version, bigEndian, nil
}
