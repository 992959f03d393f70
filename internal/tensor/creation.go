package tensor

import "fmt"

// FromSlice creates a RawTensor from a Go slice.
//
// The slice length must match the number of elements implied by the shape.
// The data is copied into a freshly allocated buffer.
//
// Example:
//
//	img, err := tensor.FromSlice([]uint8{...}, tensor.Shape{320, 320, 3})
func FromSlice[T DType](data []T, shape Shape) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}

	switch dtype {
	case Float32:
		copy(raw.AsFloat32(), any(data).([]float32))
	case Float64:
		copy(raw.AsFloat64(), any(data).([]float64))
	case Int32:
		copy(raw.AsInt32(), any(data).([]int32))
	case Int64:
		copy(raw.AsInt64(), any(data).([]int64))
	case Uint8:
		copy(raw.AsUint8(), any(data).([]uint8))
	}
	return raw, nil
}

// Full creates a RawTensor filled with a specific value.
//
// Example:
//
//	canvas, err := tensor.Full[uint8](tensor.Shape{640, 640, 3}, 114)
func Full[T DType](shape Shape, value T) (*RawTensor, error) {
	var dummy T
	dtype := inferDataType(dummy)

	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	raw.fill(value)
	return raw, nil
}

func (r *RawTensor) fill(value any) {
	switch r.dtype {
	case Float32:
		v := value.(float32)
		for i, data := 0, r.AsFloat32(); i < len(data); i++ {
			data[i] = v
		}
	case Float64:
		v := value.(float64)
		for i, data := 0, r.AsFloat64(); i < len(data); i++ {
			data[i] = v
		}
	case Int32:
		v := value.(int32)
		for i, data := 0, r.AsInt32(); i < len(data); i++ {
			data[i] = v
		}
	case Int64:
		v := value.(int64)
		for i, data := 0, r.AsInt64(); i < len(data); i++ {
			data[i] = v
		}
	case Uint8:
		v := value.(uint8)
		for i, data := 0, r.AsUint8(); i < len(data); i++ {
			data[i] = v
		}
	}
}

// FillValue fills the tensor in place with a numeric value, converting it to
// the tensor's dtype. This is how pad transforms paint their fill value onto
// canvases whose dtype follows the incoming image.
func (r *RawTensor) FillValue(value float64) {
	switch r.dtype {
	case Float32:
		r.fill(float32(value))
	case Float64:
		r.fill(value)
	case Int32:
		r.fill(int32(value))
	case Int64:
		r.fill(int64(value))
	case Uint8:
		r.fill(uint8(value))
	}
}
