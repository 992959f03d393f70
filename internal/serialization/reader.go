package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/detkit-ml/detkit/internal/tensor"
)

// maxHeaderSize bounds the JSON header to keep a corrupted size field from
// triggering a huge allocation.
const maxHeaderSize = 100 << 20 // 100 MB

// Reader reads checkpoints from .dkpt format.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	version    uint32
	dataOffset int64 // Offset where tensor data starts
	dataSize   int64 // Size of the data section
	closed     bool
}

// NewReader creates a new .dkpt file reader and validates the header.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := &Reader{file: file}

	if err := reader.parseHeader(); err != nil {
		_ = file.Close() // Best effort close on error
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	reader.dataSize = fileInfo.Size() - reader.dataOffset

	if err := reader.validateTensors(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return reader, nil
}

// parseHeader reads and parses the .dkpt file header.
func (r *Reader) parseHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return ErrInvalidMagic
	}

	if err := binary.Read(r.file, binary.LittleEndian, &r.version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}
	if r.version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, r.version, FormatVersion)
	}

	if err := binary.Read(r.file, binary.LittleEndian, &r.flags); err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(r.file, binary.LittleEndian, &headerSize); err != nil {
		return fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("failed to unmarshal header: %w", err)
	}

	currentPos := int64(4+4+4+8) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	r.dataOffset = currentPos + padding

	return nil
}

// validateTensors checks that every tensor's offset and size lie within the
// data section and match its declared shape and dtype.
func (r *Reader) validateTensors() error {
	for _, meta := range r.header.Tensors {
		if meta.Offset < 0 || meta.Size < 0 {
			return fmt.Errorf("%w: tensor %q", ErrNegativeOffset, meta.Name)
		}
		if meta.Offset+meta.Size > r.dataSize {
			return fmt.Errorf("%w: tensor %q", ErrOutOfBounds, meta.Name)
		}

		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return fmt.Errorf("tensor %q: unknown dtype %q", meta.Name, meta.DType)
		}
		expected := int64(tensor.Shape(meta.Shape).NumElements() * dtype.Size())
		if meta.Size != expected {
			return fmt.Errorf("tensor %q: size %d does not match shape %v of dtype %s (%d bytes)",
				meta.Name, meta.Size, meta.Shape, meta.DType, expected)
		}
	}
	return nil
}

// Header returns the parsed file header.
func (r *Reader) Header() Header {
	return r.header
}

// ReadStateDict reads all tensors and returns them as a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, ErrReaderClosed
	}

	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		dtype, _ := stringToDtype(meta.DType)
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}

		if _, err := r.file.ReadAt(raw.Data(), r.dataOffset+meta.Offset); err != nil {
			return nil, fmt.Errorf("failed to read tensor %q: %w", meta.Name, err)
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}

// Close closes the underlying file. The reader cannot be used afterwards.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
