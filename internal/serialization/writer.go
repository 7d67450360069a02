package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"sort"
	"time"

	"github.com/x448/float16"

	"github.com/cyandjinnie/speech-course/internal/tensor"
)

// SaveOptions controls checkpoint encoding.
type SaveOptions struct {
	// HalfPrecision stores float32 tensors as float16 on disk. Float64
	// tensors are always stored at full width.
	HalfPrecision bool
}

// Save writes a flat name-to-tensor mapping to path. Tensors are laid out
// in sorted name order so identical state produces identical bytes.
func Save(path string, tensors map[string]*tensor.RawTensor, opts SaveOptions) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	var data bytes.Buffer
	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(names)),
	}
	for _, name := range names {
		raw := tensors[name]
		offset := int64(data.Len())
		stored := dtypeToString(raw.DType())
		if opts.HalfPrecision && raw.DType() == tensor.Float32 {
			stored = DTypeFloat16
			for _, f := range raw.AsFloat32() {
				var b [2]byte
				binary.LittleEndian.PutUint16(b[:], float16.Fromfloat32(f).Bits())
				data.Write(b[:])
			}
		} else {
			data.Write(raw.Data())
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Stored: stored,
			Shape:  append([]int(nil), raw.Shape()...),
			Offset: offset,
			Size:   int64(data.Len()) - offset,
		})
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("serialization: marshal header: %w", err)
	}

	var file bytes.Buffer
	file.WriteString(MagicBytes)
	binary.Write(&file, binary.LittleEndian, uint32(FormatVersion))
	flags := uint32(0)
	if opts.HalfPrecision {
		flags |= FlagHalfPrecision
	}
	binary.Write(&file, binary.LittleEndian, flags)
	binary.Write(&file, binary.LittleEndian, uint64(len(headerJSON)))
	file.Write(headerJSON)
	file.Write(data.Bytes())
	binary.Write(&file, binary.LittleEndian, crc32.ChecksumIEEE(file.Bytes()))

	if err := os.WriteFile(path, file.Bytes(), 0o644); err != nil {
		return fmt.Errorf("serialization: write %s: %w", path, err)
	}
	return nil
}
