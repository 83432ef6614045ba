package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumitoshi0524/deconvnd/nn"
)

func TestTrainReducesLoss(t *testing.T) {
	for _, ndim := range []int{1, 2} {
		opts := options{ndim: ndim, size: 8, channels: 1, hidden: 8, batch: 2, epochs: 150, lr: 0.02, seed: 3}
		model, err := buildModel(opts)
		require.NoError(t, err)
		steps := 0
		first, last, err := train(model, opts, func(int, float64) { steps++ })
		require.NoError(t, err)
		assert.Equal(t, opts.epochs, steps)
		assert.Less(t, last, first, "ndim %d", ndim)
	}
}

func TestModelSavesAndReloads(t *testing.T) {
	opts := options{ndim: 3, size: 4, channels: 2, hidden: 3, batch: 1, epochs: 2, lr: 0.01, clip: 1, seed: 1}
	model, err := buildModel(opts)
	require.NoError(t, err)
	_, _, err = train(model, opts, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ae.json")
	require.NoError(t, nn.SaveModule(path, model))

	opts.seed = 99
	other, err := buildModel(opts)
	require.NoError(t, err)
	require.NoError(t, nn.LoadModule(path, other))
	for i, p := range model.Parameters() {
		assert.Equal(t, p.Data(), other.Parameters()[i].Data(), "param %d", i)
	}
}

func TestBuildModelRejectsOddGeometry(t *testing.T) {
	_, err := buildModel(options{ndim: 0, size: 8, channels: 1, hidden: 1})
	assert.Error(t, err)
}
