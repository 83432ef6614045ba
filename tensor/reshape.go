package tensor

import (
	"errors"
	"fmt"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
)

// Reshape returns a view of t with a new shape sharing t's storage. One
// dimension may be -1 and is inferred from the element count.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, errors.New("reshape shape required")
	}
	shape = append([]int(nil), shape...)
	total := t.Numel()
	prod := 1
	infer := -1
	for i, dim := range shape {
		if dim == -1 {
			if infer != -1 {
				return nil, errors.New("multiple inferred dimensions")
			}
			infer = i
			continue
		}
		if dim <= 0 {
			return nil, fmt.Errorf("%w: reshape to %v", ErrInvalidShape, shape)
		}
		prod *= dim
	}
	if infer != -1 {
		if total%prod != 0 {
			return nil, fmt.Errorf("cannot infer dimension of %v for %d elements", shape, total)
		}
		shape[infer] = total / prod
		prod = total
	}
	if prod != total {
		return nil, fmt.Errorf("%w: reshape %v to %v", ErrShapeMismatch, t.shape, shape)
	}
	out := &Tensor{
		data:    t.data,
		shape:   shape,
		strides: convnd.Strides(shape),
	}
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		reshaped := grad.Clone()
		reshaped.shape = append([]int(nil), t.shape...)
		reshaped.strides = convnd.Strides(reshaped.shape)
		accumulate(grads, t, reshaped)
	}, t)
	return out, nil
}
