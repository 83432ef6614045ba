package initializers

import (
	"fmt"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

// Constant fills a tensor with Value, or with Values element for element
// when Values is set.
type Constant struct {
	Value  float64
	Values []float64
}

func (c Constant) Initialize(t *tensor.Tensor) error {
	if c.Values == nil {
		t.Fill(c.Value)
		return nil
	}
	if len(c.Values) == 1 {
		t.Fill(c.Values[0])
		return nil
	}
	if err := t.SetData(c.Values); err != nil {
		return fmt.Errorf("constant initializer: %w", err)
	}
	return nil
}

// Zero fills with 0.
func Zero() Constant { return Constant{} }

// One fills with 1.
func One() Constant { return Constant{Value: 1} }

// Array copies Source into the parameter. Shapes must match.
type Array struct {
	Source *tensor.Tensor
}

func (a Array) Initialize(t *tensor.Tensor) error {
	if err := tensor.CopyInto(t, a.Source); err != nil {
		return fmt.Errorf("array initializer: %w", err)
	}
	return nil
}
