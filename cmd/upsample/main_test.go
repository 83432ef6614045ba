package main

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageTensorRoundTrip(t *testing.T) {
	img := imaging.New(3, 2, color.NRGBA{R: 10, G: 128, B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 200, G: 0, B: 50, A: 255})

	x := imageToTensor(img)
	assert.Equal(t, []int{1, 3, 2, 3}, x.Shape())
	assert.InDelta(t, 200.0/255, x.At(0, 0, 1, 1), 1e-12)

	back := tensorToImage(x)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestToByteClamps(t *testing.T) {
	assert.Equal(t, uint8(0), toByte(-0.3))
	assert.Equal(t, uint8(255), toByte(1.7))
	assert.Equal(t, uint8(128), toByte(128.0/255))
}

func TestUpsamplerScalesAndPreservesFlatImage(t *testing.T) {
	for _, factor := range []int{2, 3} {
		img := imaging.New(5, 4, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
		up, err := newUpsampler(3, factor)
		require.NoError(t, err)
		y, err := up.Forward(imageToTensor(img))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 4 * factor, 5 * factor}, y.Shape(), "factor %d", factor)

		// interior pixels of a flat image stay flat
		dst := tensorToImage(y)
		c := dst.NRGBAAt(2*factor, 2*factor)
		assert.Equal(t, uint8(100), c.R, "factor %d", factor)
		assert.Equal(t, uint8(100), c.B, "factor %d", factor)
	}
	_, err := newUpsampler(3, 0)
	assert.Error(t, err)
}
