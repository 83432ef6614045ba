package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesShape(t *testing.T) {
	_, err := New([]float64{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = New(nil)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = New([]float64{}, 0, 3)
	assert.ErrorIs(t, err, ErrInvalidShape)

	x, err := New([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, x.Shape())
	assert.Equal(t, 2, x.Rank())
	assert.Equal(t, 3, x.Dim(-1))
	assert.Equal(t, 6.0, x.At(1, 2))
	assert.Equal(t, 2.0, x.At(0, 1))
}

func TestNewCopiesInput(t *testing.T) {
	data := []float64{1, 2}
	x := MustNew(data, 2)
	data[0] = 10
	assert.Equal(t, []float64{1, 2}, x.Data())
	x.Data()[1] = 7
	assert.Equal(t, []float64{1, 2}, x.Data())
}

func TestFullAndFill(t *testing.T) {
	x := Full(2.5, 2, 2)
	assert.Equal(t, []float64{2.5, 2.5, 2.5, 2.5}, x.Data())
	x.Fill(-1)
	assert.Equal(t, []float64{-1, -1, -1, -1}, x.Data())
	assert.Equal(t, []float64{1, 1, 1}, Ones(3).Data())
	assert.Panics(t, func() { Zeros(2, 0) })
}

func TestCopyIntoChecksShape(t *testing.T) {
	dst := Zeros(2, 2)
	require.NoError(t, CopyInto(dst, MustNew([]float64{1, 2, 3, 4}, 2, 2)))
	assert.Equal(t, []float64{1, 2, 3, 4}, dst.Data())
	assert.ErrorIs(t, CopyInto(dst, Zeros(4)), ErrShapeMismatch)
	assert.Error(t, CopyInto(nil, dst))
}

func TestDetachDropsGraph(t *testing.T) {
	x := MustNew([]float64{1, 2}, 2)
	x.SetRequiresGrad(true)
	y := MulScalar(x, 3)
	assert.True(t, y.RequiresGrad())
	d := y.Detach()
	assert.False(t, d.RequiresGrad())
	assert.Equal(t, []float64{3, 6}, d.Data())
}

func TestBackwardRequiresGrad(t *testing.T) {
	x := MustNew([]float64{1}, 1)
	assert.ErrorIs(t, x.Backward(), ErrNoGrad)
}

func TestBackwardAccumulatesAcrossCalls(t *testing.T) {
	x := MustNew([]float64{1, 2, 3}, 3)
	x.SetRequiresGrad(true)
	require.NoError(t, Sum(x).Backward())
	require.NoError(t, Sum(x).Backward())
	assert.Equal(t, []float64{2, 2, 2}, x.Grad().Data())
	x.ZeroGrad()
	assert.Nil(t, x.Grad())
}

func TestBackwardWithSeed(t *testing.T) {
	x := MustNew([]float64{1, 2}, 2)
	x.SetRequiresGrad(true)
	y := MulScalar(x, 2)
	require.NoError(t, y.BackwardWith(MustNew([]float64{1, -1}, 2)))
	assert.Equal(t, []float64{2, -2}, x.Grad().Data())
	assert.ErrorIs(t, y.BackwardWith(Zeros(3)), ErrShapeMismatch)
}

func TestElementwiseGradients(t *testing.T) {
	a := MustNew([]float64{0.5, -1.5, 2}, 3)
	b := MustNew([]float64{1.25, 0.75, -0.5}, 3)
	a.SetRequiresGrad(true)
	b.SetRequiresGrad(true)

	build := func() *Tensor {
		sum, err := Add(a, b)
		require.NoError(t, err)
		diff, err := Sub(a, b)
		require.NoError(t, err)
		prod, err := Mul(sum, diff)
		require.NoError(t, err)
		return Mean(AddScalar(Tanh(Pow(prod, 2)), 1))
	}
	require.NoError(t, build().Backward())
	loss := func() float64 { return build().Data()[0] }
	checkGrad(t, "a", a, loss)
	checkGrad(t, "b", b, loss)
}

func TestActivations(t *testing.T) {
	x := MustNew([]float64{-2, -0.5, 0.5, 2}, 4)
	x.SetRequiresGrad(true)

	assert.Equal(t, []float64{0, 0, 0.5, 2}, Relu(x).Data())
	assert.Equal(t, []float64{-0.2, -0.05, 0.5, 2}, LeakyRelu(x, 0.1).Data())
	assert.InDelta(t, 0.5, Sigmoid(MustNew([]float64{0}, 1)).Data()[0], 1e-12)

	build := func() *Tensor {
		s, err := Add(Sigmoid(x), LeakyRelu(x, 0.1))
		require.NoError(t, err)
		return Sum(s)
	}
	require.NoError(t, build().Backward())
	checkGrad(t, "x", x, func() float64 { return build().Data()[0] })
}

func TestReshapeSharesStorageAndRoutesGrad(t *testing.T) {
	x := MustNew([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	x.SetRequiresGrad(true)
	r, err := x.Reshape(3, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, r.Shape())

	require.NoError(t, Sum(MulScalar(r, 2)).Backward())
	grad := x.Grad()
	require.NotNil(t, grad)
	assert.Equal(t, []int{2, 3}, grad.Shape())
	assert.Equal(t, []float64{2, 2, 2, 2, 2, 2}, grad.Data())

	_, err = x.Reshape(4, -1)
	assert.Error(t, err)
	_, err = x.Reshape(-1, -1)
	assert.Error(t, err)
	_, err = x.Reshape(5)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestInPlaceHelpers(t *testing.T) {
	x := MustNew([]float64{1, 2}, 2)
	x.Scale(3)
	assert.Equal(t, []float64{3, 6}, x.Data())
	require.NoError(t, x.AddScaled(MustNew([]float64{1, 1}, 2), -0.5))
	assert.Equal(t, []float64{2.5, 5.5}, x.Data())
	assert.Error(t, x.AddScaled(Zeros(3), 1))
}
