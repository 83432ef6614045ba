package initializers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

func TestGetResolvesSpecs(t *testing.T) {
	init, err := Get(nil)
	require.NoError(t, err)
	assert.Nil(t, init)

	init, err = Get(2.5)
	require.NoError(t, err)
	assert.Equal(t, Constant{Value: 2.5}, init)

	init, err = Get(3)
	require.NoError(t, err)
	assert.Equal(t, Constant{Value: 3}, init)

	init, err = Get(float32(0.5))
	require.NoError(t, err)
	assert.Equal(t, Constant{Value: 0.5}, init)

	init, err = Get(HeNormal{Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, HeNormal{Scale: 2}, init)

	_, err = Get("lecun")
	assert.ErrorIs(t, err, ErrUnsupported)
	var missing *tensor.Tensor
	_, err = Get(missing)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestGetOrFallsBack(t *testing.T) {
	init, err := GetOr(nil, LeCunNormal{})
	require.NoError(t, err)
	assert.Equal(t, LeCunNormal{}, init)

	init, err = GetOr(1.0, LeCunNormal{})
	require.NoError(t, err)
	assert.Equal(t, Constant{Value: 1}, init)

	_, err = GetOr(struct{}{}, LeCunNormal{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestConstantInitializers(t *testing.T) {
	x := tensor.Zeros(2, 2)
	require.NoError(t, One().Initialize(x))
	assert.Equal(t, []float64{1, 1, 1, 1}, x.Data())
	require.NoError(t, Zero().Initialize(x))
	assert.Equal(t, []float64{0, 0, 0, 0}, x.Data())

	init, err := Get([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, init.Initialize(x))
	assert.Equal(t, []float64{1, 2, 3, 4}, x.Data())

	require.NoError(t, Constant{Values: []float64{7}}.Initialize(x))
	assert.Equal(t, []float64{7, 7, 7, 7}, x.Data())

	assert.Error(t, Constant{Values: []float64{1, 2}}.Initialize(x))
}

func TestArrayCopiesTensor(t *testing.T) {
	src := tensor.MustNew([]float64{1, 2, 3}, 3)
	init, err := Get(src)
	require.NoError(t, err)
	src.Fill(0)

	dst := tensor.Zeros(3)
	require.NoError(t, init.Initialize(dst))
	assert.Equal(t, []float64{1, 2, 3}, dst.Data())
	assert.ErrorIs(t, init.Initialize(tensor.Zeros(1, 3)), tensor.ErrShapeMismatch)
}

func TestFuncAdapter(t *testing.T) {
	x := tensor.Zeros(2)
	var f Initializer = Func(func(t *tensor.Tensor) error {
		t.Fill(4)
		return nil
	})
	require.NoError(t, f.Initialize(x))
	assert.Equal(t, []float64{4, 4}, x.Data())
}

func TestGetFans(t *testing.T) {
	fanIn, fanOut, err := GetFans([]int{3, 4, 2, 5})
	require.NoError(t, err)
	assert.Equal(t, 40, fanIn)
	assert.Equal(t, 30, fanOut)

	fanIn, fanOut, err = GetFans([]int{6, 7})
	require.NoError(t, err)
	assert.Equal(t, 7, fanIn)
	assert.Equal(t, 6, fanOut)

	_, _, err = GetFans([]int{5})
	assert.Error(t, err)
	assert.Error(t, LeCunNormal{}.Initialize(tensor.Zeros(5)))
}

func TestNormalInitializersMatchStd(t *testing.T) {
	Seed(7)
	shape := []int{16, 8, 5, 5}
	fanIn, fanOut := 8*25, 16*25
	cases := []struct {
		name string
		init Initializer
		std  float64
	}{
		{"normal", Normal{}, 0.05},
		{"lecun", LeCunNormal{}, math.Sqrt(1 / float64(fanIn))},
		{"lecun scaled", LeCunNormal{Scale: 3}, 3 * math.Sqrt(1/float64(fanIn))},
		{"glorot", GlorotNormal{}, math.Sqrt(2 / float64(fanIn+fanOut))},
		{"he", HeNormal{}, math.Sqrt(2 / float64(fanIn))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := tensor.Zeros(shape...)
			require.NoError(t, tc.init.Initialize(w))
			mean, std := stat.MeanStdDev(w.Data(), nil)
			assert.InDelta(t, 0, mean, 0.1*tc.std)
			assert.InDelta(t, tc.std, std, 0.05*tc.std)
		})
	}
}

func TestUniformInitializersStayInBounds(t *testing.T) {
	Seed(11)
	shape := []int{4, 6, 3}
	fanIn, fanOut := 18, 12
	cases := []struct {
		name  string
		init  Initializer
		limit float64
	}{
		{"uniform", Uniform{Scale: 0.2}, 0.2},
		{"lecun", LeCunUniform{}, math.Sqrt(3 / float64(fanIn))},
		{"glorot", GlorotUniform{}, math.Sqrt(6 / float64(fanIn+fanOut))},
		{"he", HeUniform{Scale: 0.5}, 0.5 * math.Sqrt(6/float64(fanIn))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := tensor.Zeros(shape...)
			require.NoError(t, tc.init.Initialize(w))
			nonZero := 0
			for _, v := range w.Data() {
				assert.LessOrEqual(t, math.Abs(v), tc.limit)
				if v != 0 {
					nonZero++
				}
			}
			assert.Equal(t, w.Numel(), nonZero)
		})
	}
}

func TestSeedMakesDrawsReproducible(t *testing.T) {
	a := tensor.Zeros(3, 4)
	b := tensor.Zeros(3, 4)
	Seed(42)
	require.NoError(t, HeNormal{}.Initialize(a))
	Seed(42)
	require.NoError(t, HeNormal{}.Initialize(b))
	assert.Equal(t, a.Data(), b.Data())

	require.NoError(t, HeNormal{}.Initialize(b))
	assert.NotEqual(t, a.Data(), b.Data())
}

func TestOrthogonalRows(t *testing.T) {
	Seed(3)
	w := tensor.Zeros(3, 2, 2, 2)
	require.NoError(t, Orthogonal{}.Initialize(w))
	m := mat.NewDense(3, 8, w.Data())
	var gram mat.Dense
	gram.Mul(m, m.T())
	assert.True(t, mat.EqualApprox(&gram, eye(3), 1e-9), "W W^T = %v", mat.Formatted(&gram))
}

func TestOrthogonalColumnsWhenTall(t *testing.T) {
	Seed(5)
	w := tensor.Zeros(6, 2, 1)
	require.NoError(t, Orthogonal{Scale: 2}.Initialize(w))
	m := mat.NewDense(6, 2, w.Data())
	var gram mat.Dense
	gram.Mul(m.T(), m)
	want := eye(2)
	want.Scale(4, want)
	assert.True(t, mat.EqualApprox(&gram, want, 1e-9), "W^T W = %v", mat.Formatted(&gram))
}

func TestBilinearKernel(t *testing.T) {
	assert.InDeltaSlice(t, []float64{0.25, 0.75, 0.75, 0.25}, BilinearKernel([]int{4}), 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 1, 0.5}, BilinearKernel([]int{3}), 1e-12)

	k2 := BilinearKernel([]int{2, 2})
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, k2, 1e-12)
}

func TestBilinearFillsChannelDiagonal(t *testing.T) {
	w := tensor.Full(9, 2, 3, 2)
	require.NoError(t, Bilinear{}.Initialize(w))
	assert.Equal(t, []float64{
		0.5, 0.5, 0, 0, 0, 0,
		0, 0, 0.5, 0.5, 0, 0,
	}, w.Data())
	assert.Error(t, Bilinear{}.Initialize(tensor.Zeros(2, 2)))
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
