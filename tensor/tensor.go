// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor storage in DetKit.
//
// The package defines the core types for raw tensor buffers:
//   - RawTensor: densely packed tensor storage with typed accessors
//   - Shape, DataType: core type definitions
//   - DType: generic constraint for element types
//
// Example:
//
//	img, _ := tensor.NewRaw(tensor.Shape{480, 640, 3}, tensor.Uint8)
//	img.FillValue(114)
//	pixels := img.AsUint8() // zero-copy view
package tensor

import (
	"github.com/detkit-ml/detkit/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
)

// Shape represents the dimensions of a tensor.
// Images use row-major Shape{height, width, channels}.
type Shape = tensor.Shape

// RawTensor is a densely packed tensor buffer with a shape and data type.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-initialized tensor with the given shape and dtype.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice creates a tensor from a Go slice, copying the data.
// The slice length must match the shape's element count.
//
// Example:
//
//	boxes, _ := tensor.FromSlice([]float32{10, 20, 110, 220}, tensor.Shape{1, 4})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a tensor with every element set to value.
func Full[T DType](shape Shape, value T) (*RawTensor, error) {
	return tensor.Full(shape, value)
}

// Swap exchanges the storage of two tensors of identical shape and dtype
// without copying. Swapping the same pair twice restores both tensors
// bit for bit.
func Swap(a, b *RawTensor) error {
	return tensor.Swap(a, b)
}
