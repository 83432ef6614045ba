package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/fumitoshi0524/deconvnd/internal/parallel"
)

// elementGrain is the minimum number of elements an elementwise loop
// hands to one goroutine.
const elementGrain = 4096

func Add(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := Zeros(a.shape...)
	floats.AddTo(out.data, a.data, b.data)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, grad)
		}
		if b.requiresGrad {
			accumulate(grads, b, grad)
		}
	}, a, b)
	return out, nil
}

func Sub(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := Zeros(a.shape...)
	floats.SubTo(out.data, a.data, b.data)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, grad)
		}
		if b.requiresGrad {
			neg := grad.Clone()
			floats.Scale(-1, neg.data)
			accumulate(grads, b, neg)
		}
	}, a, b)
	return out, nil
}

func Mul(a, b *Tensor) (*Tensor, error) {
	if err := ensureSameShape(a, b); err != nil {
		return nil, err
	}
	out := hadamard(a, b)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if a.requiresGrad {
			accumulate(grads, a, hadamard(grad, b))
		}
		if b.requiresGrad {
			accumulate(grads, b, hadamard(grad, a))
		}
	}, a, b)
	return out, nil
}

func Pow(a *Tensor, value float64) *Tensor {
	out := mapUnary(a, func(x float64) float64 { return math.Pow(x, value) })
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		local := mapUnary(a, func(x float64) float64 { return value * math.Pow(x, value-1) })
		accumulate(grads, a, hadamard(grad, local))
	}, a)
	return out
}

func Sum(a *Tensor) *Tensor {
	out := MustNew([]float64{floats.Sum(a.data)}, 1)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		accumulate(grads, a, Full(grad.data[0], a.shape...))
	}, a)
	return out
}

func Mean(a *Tensor) *Tensor {
	scale := 1.0 / float64(a.Numel())
	out := MustNew([]float64{floats.Sum(a.data) * scale}, 1)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		accumulate(grads, a, Full(grad.data[0]*scale, a.shape...))
	}, a)
	return out
}

func AddScalar(a *Tensor, value float64) *Tensor {
	out := a.Detach()
	floats.AddConst(value, out.data)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		accumulate(grads, a, grad)
	}, a)
	return out
}

func MulScalar(a *Tensor, value float64) *Tensor {
	out := a.Detach()
	floats.Scale(value, out.data)
	attachGrad(out, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		scaled := grad.Clone()
		floats.Scale(value, scaled.data)
		accumulate(grads, a, scaled)
	}, a)
	return out
}

func hadamard(a, b *Tensor) *Tensor {
	if err := ensureSameShape(a, b); err != nil {
		panic(err)
	}
	out := Zeros(a.shape...)
	floats.MulTo(out.data, a.data, b.data)
	return out
}

// mapUnary applies f elementwise without touching the graph.
func mapUnary(a *Tensor, f func(float64) float64) *Tensor {
	out := Zeros(a.shape...)
	parallel.ForGrain(len(out.data), elementGrain, func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = f(a.data[i])
		}
	})
	return out
}
