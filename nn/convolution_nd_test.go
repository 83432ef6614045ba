package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

func TestConvolutionNDMatchesFunction(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c, err := NewConvolutionND(ConvolutionNDConfig{
		NDim: 3, InChannels: 2, OutChannels: 4, KSize: []int{3, 2, 2}, Stride: []int{1, 2, 1}, Pad: []int{1},
		InitialBias: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 3, 2, 2}, c.W().Shape())
	assert.Equal(t, 3, c.NDim())

	x := randTensor(rng, 1, 2, 4, 4, 3)
	y, err := c.Forward(x)
	require.NoError(t, err)
	want, err := tensor.ConvolutionND(x, c.W().Detach(), c.B().Detach(), []int{1, 2, 1}, []int{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 4, 3, 4}, y.Shape())
	assert.InDeltaSlice(t, want.Data(), y.Data(), 1e-12)
}

func TestConvolutionNDStateAndErrors(t *testing.T) {
	c := MustNewConvolutionND(ConvolutionNDConfig{NDim: 1, InChannels: 1, OutChannels: 1, KSize: []int{3}, NoBias: true})
	assert.Nil(t, c.B())
	state := map[string]*tensor.Tensor{}
	c.StateDict("", state)
	assert.Equal(t, []string{"W"}, keys(state))
	require.NoError(t, c.LoadState("", state))
	assert.Error(t, c.LoadState("enc", state))

	_, err := NewConvolutionND(ConvolutionNDConfig{NDim: 2, InChannels: 1, OutChannels: 1, KSize: []int{1, 2, 3}})
	assert.Error(t, err)
	_, err = NewConvolutionND(ConvolutionNDConfig{NDim: 1, InChannels: 1, OutChannels: 1, KSize: []int{3}, InitialW: struct{}{}})
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewConvolutionND(ConvolutionNDConfig{}) })
}
