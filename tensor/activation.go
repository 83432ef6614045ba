package tensor

import "math"

// unary builds an elementwise op whose local derivative is computed from
// the input x and the output y.
func unary(a *Tensor, f func(x float64) float64, df func(x, y float64) float64) *Tensor {
	out := mapUnary(a, f)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		local := Zeros(a.shape...)
		for i, x := range a.data {
			local.data[i] = df(x, out.data[i])
		}
		accumulate(grads, a, hadamard(grad, local))
	}, a)
	return out
}

func Relu(a *Tensor) *Tensor {
	return unary(a,
		func(x float64) float64 { return math.Max(x, 0) },
		func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		})
}

func LeakyRelu(a *Tensor, alpha float64) *Tensor {
	return unary(a,
		func(x float64) float64 {
			if x > 0 {
				return x
			}
			return alpha * x
		},
		func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return alpha
		})
}

func Sigmoid(a *Tensor) *Tensor {
	return unary(a,
		func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
		func(_, y float64) float64 { return y * (1 - y) })
}

func Tanh(a *Tensor) *Tensor {
	return unary(a, math.Tanh, func(_, y float64) float64 { return 1 - y*y })
}
