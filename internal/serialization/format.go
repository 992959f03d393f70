// Package serialization implements the .dkpt checkpoint format: a small
// binary container for named tensors used to persist model parameters
// together with their EMA shadow buffers.
//
// File layout:
//
//	[4 bytes]  magic "DKPT"
//	[4 bytes]  format version (uint32, little endian)
//	[4 bytes]  flags (uint32, little endian)
//	[8 bytes]  header size (uint64, little endian)
//	[N bytes]  JSON header
//	[padding]  zero bytes up to 64-byte alignment
//	[...]      raw tensor data, concatenated in header order
package serialization

import (
	"time"

	"github.com/detkit-ml/detkit/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "DKPT"
	FormatVersion   = 1
	HeaderAlignment = 64 // Align tensor data to 64 bytes
)

// Data type string constants for serialization.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeInt64   = "int64"
	DTypeUint8   = "uint8"
)

// Flags for the .dkpt format.
const (
	FlagHasMetadata   uint32 = 1 << 0 // bit 0: custom metadata included
	FlagHasCheckpoint uint32 = 1 << 1 // bit 1: training checkpoint metadata included
)

// Header represents the JSON header in a .dkpt file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	LibraryVersion string            `json:"library_version"`
	ModelType      string            `json:"model_type"`
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"`
	Metadata       map[string]string `json:"metadata"`
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// CheckpointMeta contains training state information for checkpoints.
type CheckpointMeta struct {
	Epoch int   `json:"epoch"` // Training epoch number
	Iter  int64 `json:"iter"`  // Training iteration number
}

// TensorMeta describes a tensor in the .dkpt file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "head.cls.weight", "ema_head_cls_weight")
	DType  string `json:"dtype"`  // Data type (e.g., "float32")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// dtypeToString converts tensor.DataType to its string representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Int64:
		return DTypeInt64
	case tensor.Uint8:
		return DTypeUint8
	default:
		return "unknown"
	}
}

// stringToDtype converts a string representation to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeInt64:
		return tensor.Int64, true
	case DTypeUint8:
		return tensor.Uint8, true
	default:
		return 0, false
	}
}
