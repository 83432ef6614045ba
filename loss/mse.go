// Package loss holds training objectives.
package loss

import (
	"fmt"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

// MSE is the mean squared error between pred and target.
func MSE(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	diff, err := tensor.Sub(pred, target)
	if err != nil {
		return nil, fmt.Errorf("mse: %w", err)
	}
	return tensor.Mean(tensor.Pow(diff, 2)), nil
}

// SumSquared is half the summed squared error, the objective whose
// gradient with respect to pred is pred - target.
func SumSquared(pred, target *tensor.Tensor) (*tensor.Tensor, error) {
	diff, err := tensor.Sub(pred, target)
	if err != nil {
		return nil, fmt.Errorf("sum squared: %w", err)
	}
	return tensor.MulScalar(tensor.Sum(tensor.Pow(diff, 2)), 0.5), nil
}
