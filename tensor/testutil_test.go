package tensor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func randTensor(rng *rand.Rand, shape ...int) *Tensor {
	t := Zeros(shape...)
	for i := range t.data {
		t.data[i] = rng.Float64()*2 - 1
	}
	return t
}

// checkGrad compares the analytic gradient of param, already populated by
// Backward, with central differences of loss.
func checkGrad(t *testing.T, name string, param *Tensor, loss func() float64) {
	t.Helper()
	analytic := param.Grad()
	require.NotNil(t, analytic, "%s has no gradient", name)
	const eps = 1e-6
	numeric := make([]float64, param.Numel())
	for i := range param.data {
		orig := param.data[i]
		param.data[i] = orig + eps
		plus := loss()
		param.data[i] = orig - eps
		minus := loss()
		param.data[i] = orig
		numeric[i] = (plus - minus) / (2 * eps)
	}
	require.True(t, floats.EqualApprox(analytic.data, numeric, 1e-5),
		"%s gradient mismatch:\nanalytic %v\nnumeric  %v", name, analytic.data, numeric)
}

// weightedSum is sum(y * r); it makes every output element carry a
// distinct upstream gradient.
func weightedSum(t *testing.T, y, r *Tensor) *Tensor {
	t.Helper()
	prod, err := Mul(y, r)
	require.NoError(t, err)
	return Sum(prod)
}

func dot(a, b *Tensor) float64 {
	return floats.Dot(a.data, b.data)
}
