package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/x448/float16"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

const fixedHeaderSize = 4 + 4 + 4 + 8 // magic, version, flags, header size

// Load reads a checkpoint back into a flat name-to-tensor mapping on the
// given device. The trailing checksum is verified before any tensor is
// decoded.
func Load(path string, device tensor.Device) (map[string]*tensor.RawTensor, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("serialization: read %s: %w", path, err)
	}
	if len(buf) < fixedHeaderSize+crc32.Size {
		return nil, ErrTruncated
	}

	body, tail := buf[:len(buf)-crc32.Size], buf[len(buf)-crc32.Size:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(tail) {
		return nil, ErrChecksumMismatch
	}

	if string(body[:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(body[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	headerSize := binary.LittleEndian.Uint64(body[12:20])
	if uint64(len(body)) < fixedHeaderSize+headerSize {
		return nil, ErrTruncated
	}

	var header Header
	if err := json.Unmarshal(body[fixedHeaderSize:fixedHeaderSize+headerSize], &header); err != nil {
		return nil, fmt.Errorf("serialization: unmarshal header: %w", err)
	}
	data := body[fixedHeaderSize+headerSize:]

	tensors := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		raw, err := decodeTensor(meta, data, device)
		if err != nil {
			return nil, err
		}
		tensors[meta.Name] = raw
	}
	return tensors, nil
}

func decodeTensor(meta TensorMeta, data []byte, device tensor.Device) (*tensor.RawTensor, error) {
	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("serialization: tensor %q has unknown dtype %q", meta.Name, meta.DType)
	}
	if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(data)) {
		return nil, fmt.Errorf("serialization: tensor %q extends beyond data section", meta.Name)
	}
	section := data[meta.Offset : meta.Offset+meta.Size]

	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, device)
	if err != nil {
		return nil, fmt.Errorf("serialization: tensor %q: %w", meta.Name, err)
	}

	switch {
	case meta.Stored == meta.DType:
		if len(section) != raw.ByteSize() {
			return nil, fmt.Errorf("serialization: tensor %q data size %d does not match shape %v",
				meta.Name, len(section), meta.Shape)
		}
		copy(raw.Data(), section)
	case meta.Stored == DTypeFloat16 && dtype == tensor.Float32:
		dst := raw.AsFloat32()
		if len(section) != 2*len(dst) {
			return nil, fmt.Errorf("serialization: tensor %q data size %d does not match shape %v",
				meta.Name, len(section), meta.Shape)
		}
		for i := range dst {
			bits := binary.LittleEndian.Uint16(section[2*i:])
			dst[i] = float16.Frombits(bits).Float32()
		}
	default:
		return nil, fmt.Errorf("serialization: tensor %q stored as %q cannot decode to %q",
			meta.Name, meta.Stored, meta.DType)
	}
	return raw, nil
}
