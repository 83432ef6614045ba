// Package optim updates link parameters from their accumulated gradients.
package optim

import "github.com/fumitoshi0524/deconvnd/tensor"

// Optimizer is the surface shared by the optimizers in this package.
type Optimizer interface {
	Step() error
	ZeroGrad()
}

func zeroGrad(params []*tensor.Tensor) {
	for _, p := range params {
		if p != nil {
			p.ZeroGrad()
		}
	}
}
