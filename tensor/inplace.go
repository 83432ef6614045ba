package tensor

import "gonum.org/v1/gonum/floats"

// The in-place helpers below bypass autograd and are meant for optimizer
// updates and initialization.

func (t *Tensor) Scale(v float64) {
	floats.Scale(v, t.data)
}

func (t *Tensor) AddScaled(other *Tensor, alpha float64) error {
	if err := ensureSameShape(t, other); err != nil {
		return err
	}
	floats.AddScaled(t.data, alpha, other.data)
	return nil
}

func (t *Tensor) Fill(v float64) {
	for i := range t.data {
		t.data[i] = v
	}
}

// GradNorm returns the L-p norm of the accumulated gradient, or 0 when
// there is none.
func (t *Tensor) GradNorm(p float64) float64 {
	if t.grad == nil {
		return 0
	}
	return floats.Norm(t.grad.data, p)
}

func (t *Tensor) ScaleGrad(v float64) {
	if t.grad != nil {
		floats.Scale(v, t.grad.data)
	}
}
