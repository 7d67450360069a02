// Package serialization persists model parameters as a flat name-to-tensor
// mapping in a small binary container: magic bytes, version, flags, a JSON
// index describing every tensor, raw tensor data, and a trailing CRC-32 of
// everything before it. Loading is all-or-nothing; any name or shape
// mismatch against a freshly constructed model fails the whole load and
// names the offending parameter.
package serialization

import (
	"errors"
	"time"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// Container constants.
const (
	MagicBytes    = "WVAE"
	FormatVersion = 1
)

// Flags stored in the fixed header.
const (
	// FlagHalfPrecision marks float32 tensor data stored as IEEE 754
	// half-precision to halve checkpoint size.
	FlagHalfPrecision uint32 = 1 << 0
)

// Data type strings used by the JSON index.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeFloat16 = "float16"
)

// Common errors.
var (
	ErrInvalidMagic       = errors.New("serialization: invalid magic bytes")
	ErrUnsupportedVersion = errors.New("serialization: unsupported format version")
	ErrChecksumMismatch   = errors.New("serialization: checksum mismatch, file may be corrupted")
	ErrTruncated          = errors.New("serialization: file truncated")
)

// Header is the JSON index of a checkpoint file.
type Header struct {
	FormatVersion int          `json:"format_version"`
	CreatedAt     time.Time    `json:"created_at"`
	Tensors       []TensorMeta `json:"tensors"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name string `json:"name"`
	// DType is the in-memory type; Stored is the on-disk type, which
	// differs when half-precision storage is enabled.
	DType  string `json:"dtype"`
	Stored string `json:"stored"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	default:
		return "unknown"
	}
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	default:
		return 0, false
	}
}
