// Package tensor provides a dense float64 tensor with reverse-mode
// automatic differentiation and the operators the layer library builds on.
package tensor

import (
	"errors"
	"fmt"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
)

var (
	// ErrInvalidShape reports a shape with no dims or a non-positive dim.
	ErrInvalidShape = errors.New("invalid shape")
	// ErrShapeMismatch reports operands whose shapes do not line up.
	ErrShapeMismatch = errors.New("shape mismatch")
)

type Tensor struct {
	data         []float64
	shape        []int
	strides      []int
	grad         *Tensor
	requiresGrad bool
	node         *node
	parents      []*Tensor
}

type node struct {
	backward func(grad *Tensor, grads map[*Tensor]*Tensor)
}

func New(data []float64, shape ...int) (*Tensor, error) {
	if err := validShape(shape); err != nil {
		return nil, err
	}
	if total := convnd.Product(shape); total != len(data) {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(data), shape)
	}
	return &Tensor{
		data:    append([]float64(nil), data...),
		shape:   append([]int(nil), shape...),
		strides: convnd.Strides(shape),
	}, nil
}

func MustNew(data []float64, shape ...int) *Tensor {
	t, err := New(data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

func Zeros(shape ...int) *Tensor {
	return Full(0, shape...)
}

func Ones(shape ...int) *Tensor {
	return Full(1, shape...)
}

func Full(value float64, shape ...int) *Tensor {
	if err := validShape(shape); err != nil {
		panic(fmt.Errorf("%w: %v", err, shape))
	}
	data := make([]float64, convnd.Product(shape))
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}
	return &Tensor{
		data:    data,
		shape:   append([]int(nil), shape...),
		strides: convnd.Strides(shape),
	}
}

func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}
	return &Tensor{
		data:    append([]float64(nil), t.data...),
		shape:   append([]int(nil), t.shape...),
		strides: append([]int(nil), t.strides...),
	}
}

func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Rank is the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Dim returns the extent of axis i. Negative i counts from the end.
func (t *Tensor) Dim(i int) int {
	if i < 0 {
		i += len(t.shape)
	}
	return t.shape[i]
}

func (t *Tensor) Numel() int {
	return len(t.data)
}

func (t *Tensor) Data() []float64 {
	return append([]float64(nil), t.data...)
}

// At returns the element at the given multi-index.
func (t *Tensor) At(idx ...int) float64 {
	if len(idx) != len(t.shape) {
		panic(fmt.Errorf("%w: index rank %d for shape %v", ErrShapeMismatch, len(idx), t.shape))
	}
	off := 0
	for i, v := range idx {
		off += v * t.strides[i]
	}
	return t.data[off]
}

// SetData overwrites the tensor's underlying values. The provided slice must match Numel().
func (t *Tensor) SetData(values []float64) error {
	if len(values) != len(t.data) {
		return fmt.Errorf("%w: SetData got %d values, want %d", ErrShapeMismatch, len(values), len(t.data))
	}
	copy(t.data, values)
	return nil
}

func (t *Tensor) SetRequiresGrad(v bool) {
	t.requiresGrad = v
}

func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

func (t *Tensor) Grad() *Tensor {
	if t.grad == nil {
		return nil
	}
	return t.grad.Clone()
}

func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

func (t *Tensor) Detach() *Tensor {
	return t.Clone()
}

// SameShape reports whether a and b have identical shapes.
func SameShape(a, b *Tensor) bool {
	return ensureSameShape(a, b) == nil
}

// CopyInto copies the contents of src into dst, ensuring shapes match.
func CopyInto(dst, src *Tensor) error {
	if dst == nil || src == nil {
		return errors.New("CopyInto requires non-nil tensors")
	}
	if err := ensureSameShape(dst, src); err != nil {
		return fmt.Errorf("CopyInto: %w", err)
	}
	copy(dst.data, src.data)
	return nil
}

func validShape(shape []int) error {
	if len(shape) == 0 {
		return fmt.Errorf("%w: shape is required", ErrInvalidShape)
	}
	for _, dim := range shape {
		if dim <= 0 {
			return fmt.Errorf("%w: %v", ErrInvalidShape, shape)
		}
	}
	return nil
}

func ensureSameShape(a, b *Tensor) error {
	if len(a.shape) != len(b.shape) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a.shape, b.shape)
	}
	for i, dim := range a.shape {
		if dim != b.shape[i] {
			return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, a.shape, b.shape)
		}
	}
	return nil
}
