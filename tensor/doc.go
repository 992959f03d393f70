// Copyright 2025 DetKit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides raw tensor storage for DetKit.
//
// # Overview
//
// DetKit's training utilities mutate parameter and image data in place, so
// the tensor type is deliberately simple: a contiguous byte buffer with a
// shape and a data type, plus typed accessor views. There is no device
// abstraction and no lazy evaluation.
//
// # Basic Usage
//
//	import "github.com/detkit-ml/detkit/tensor"
//
//	func main() {
//	    w, _ := tensor.FromSlice([]float32{0.1, 0.2}, tensor.Shape{2})
//	    data := w.AsFloat32() // zero-copy view over the buffer
//	    data[0] = 0.3         // mutates w directly
//	}
//
// # Supported Data Types
//
//   - float32, float64 (floating-point, eligible for averaging and
//     gradient updates)
//   - int32, int64 (signed integers, e.g. class labels)
//   - uint8 (unsigned integers, e.g. image pixels)
//
// # Accessors
//
// AsFloat32, AsFloat64, AsInt32, AsInt64 and AsUint8 return zero-copy
// slices over the underlying buffer. Calling an accessor that does not
// match the tensor's dtype panics: a dtype mismatch in training code is a
// programming error, not a recoverable condition.
//
// # Swapping
//
// Swap exchanges the storage of two shape- and dtype-identical tensors in
// constant time. It backs the averaged-weights swap protocol in the hooks
// package, where a double swap must restore both sides bit for bit.
package tensor
