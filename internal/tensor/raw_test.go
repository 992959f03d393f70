package tensor

import (
	"bytes"
	"testing"
)

// RawTensor Tests

func TestNewRawZeroInitialized(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Float32)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	for i, v := range raw.AsFloat32() {
		if v != 0 {
			t.Errorf("element %d = %f, want 0", i, v)
		}
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	if _, err := NewRaw(Shape{3, 0}, Float32); err == nil {
		t.Error("NewRaw with zero dimension should fail")
	}
	if _, err := NewRaw(Shape{-1, 4}, Uint8); err == nil {
		t.Error("NewRaw with negative dimension should fail")
	}
}

func TestRawTensorAsFloat32(t *testing.T) {
	raw, _ := NewRaw(Shape{3, 2}, Float32)
	data := raw.AsFloat32()

	if len(data) != 6 {
		t.Errorf("AsFloat32 length = %d, want 6", len(data))
	}

	// Modify and verify zero-copy
	data[0] = 42
	if raw.AsFloat32()[0] != 42 {
		t.Error("AsFloat32 should return zero-copy slice")
	}
}

func TestRawTensorAsUint8(t *testing.T) {
	raw, _ := NewRaw(Shape{4, 4}, Uint8)
	data := raw.AsUint8()

	if len(data) != 16 {
		t.Errorf("AsUint8 length = %d, want 16", len(data))
	}

	data[0] = 255
	if raw.AsUint8()[0] != 255 {
		t.Error("AsUint8 should return zero-copy slice")
	}
}

func TestRawTensorAccessorPanicsOnWrongDType(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Int64)

	defer func() {
		if recover() == nil {
			t.Error("AsFloat32 on int64 tensor should panic")
		}
	}()
	raw.AsFloat32()
}

func TestRawTensorCloneIsDeep(t *testing.T) {
	orig, _ := FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2})
	clone := orig.Clone()

	clone.AsFloat32()[0] = 99
	if orig.AsFloat32()[0] != 1 {
		t.Error("mutating a clone must not affect the original")
	}
	if !clone.Shape().Equal(orig.Shape()) {
		t.Errorf("clone shape = %v, want %v", clone.Shape(), orig.Shape())
	}
}

func TestRawTensorCopyFrom(t *testing.T) {
	dst, _ := NewRaw(Shape{4}, Float32)
	src, _ := FromSlice([]float32{5, 6, 7, 8}, Shape{4})

	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	if dst.AsFloat32()[3] != 8 {
		t.Errorf("CopyFrom result = %v, want [5 6 7 8]", dst.AsFloat32())
	}

	wrongShape, _ := NewRaw(Shape{2, 2}, Float32)
	if err := dst.CopyFrom(wrongShape); err == nil {
		t.Error("CopyFrom with mismatched shape should fail")
	}

	wrongType, _ := NewRaw(Shape{4}, Int32)
	if err := dst.CopyFrom(wrongType); err == nil {
		t.Error("CopyFrom with mismatched dtype should fail")
	}
}

func TestSwapExchangesBuffers(t *testing.T) {
	a, _ := FromSlice([]float32{1, 2, 3}, Shape{3})
	b, _ := FromSlice([]float32{7, 8, 9}, Shape{3})

	if err := Swap(a, b); err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if a.AsFloat32()[0] != 7 || b.AsFloat32()[0] != 1 {
		t.Errorf("after swap: a=%v b=%v", a.AsFloat32(), b.AsFloat32())
	}
}

func TestSwapTwiceIsBitIdentical(t *testing.T) {
	a, _ := FromSlice([]float32{1.5, -2.25, 3.125}, Shape{3})
	b, _ := FromSlice([]float32{0.1, 0.2, 0.3}, Shape{3})

	aBytes := append([]byte(nil), a.Data()...)
	bBytes := append([]byte(nil), b.Data()...)

	if err := Swap(a, b); err != nil {
		t.Fatalf("first Swap failed: %v", err)
	}
	if err := Swap(a, b); err != nil {
		t.Fatalf("second Swap failed: %v", err)
	}

	if !bytes.Equal(a.Data(), aBytes) {
		t.Error("double swap did not restore a bit-for-bit")
	}
	if !bytes.Equal(b.Data(), bBytes) {
		t.Error("double swap did not restore b bit-for-bit")
	}
}

func TestSwapMismatch(t *testing.T) {
	a, _ := NewRaw(Shape{3}, Float32)
	b, _ := NewRaw(Shape{4}, Float32)
	if err := Swap(a, b); err == nil {
		t.Error("Swap with mismatched shapes should fail")
	}

	c, _ := NewRaw(Shape{3}, Float64)
	if err := Swap(a, c); err == nil {
		t.Error("Swap with mismatched dtypes should fail")
	}
}

func TestFromSliceLengthMismatch(t *testing.T) {
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2}); err == nil {
		t.Error("FromSlice with wrong length should fail")
	}
}

func TestFullAndFillValue(t *testing.T) {
	full, err := Full[uint8](Shape{2, 2, 3}, 114)
	if err != nil {
		t.Fatalf("Full failed: %v", err)
	}
	for i, v := range full.AsUint8() {
		if v != 114 {
			t.Fatalf("element %d = %d, want 114", i, v)
		}
	}

	f, _ := NewRaw(Shape{3}, Float32)
	f.FillValue(2.5)
	if f.AsFloat32()[1] != 2.5 {
		t.Errorf("FillValue float32 = %v, want 2.5", f.AsFloat32())
	}

	u, _ := NewRaw(Shape{3}, Uint8)
	u.FillValue(200)
	if u.AsUint8()[2] != 200 {
		t.Errorf("FillValue uint8 = %v, want 200", u.AsUint8())
	}
}

func TestDataTypeProperties(t *testing.T) {
	tests := []struct {
		dtype    DataType
		size     int
		floating bool
		name     string
	}{
		{Float32, 4, true, "float32"},
		{Float64, 8, true, "float64"},
		{Int32, 4, false, "int32"},
		{Int64, 8, false, "int64"},
		{Uint8, 1, false, "uint8"},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s Size() = %d, want %d", tt.name, got, tt.size)
		}
		if got := tt.dtype.IsFloatingPoint(); got != tt.floating {
			t.Errorf("%s IsFloatingPoint() = %v, want %v", tt.name, got, tt.floating)
		}
		if got := tt.dtype.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}
