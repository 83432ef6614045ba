package main

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

const channels = 3

// imageToTensor converts img to a (1, 3, H, W) tensor of RGB values in [0, 1].
func imageToTensor(img image.Image) *tensor.Tensor {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()
	plane := w * h
	values := make([]float64, channels*plane)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*nrgba.Stride + x*4
			for c := 0; c < channels; c++ {
				values[c*plane+y*w+x] = float64(nrgba.Pix[off+c]) / 255
			}
		}
	}
	return tensor.MustNew(values, 1, channels, h, w)
}

// tensorToImage is the inverse of imageToTensor. Values are clamped to
// [0, 1] and alpha is opaque.
func tensorToImage(t *tensor.Tensor) *image.NRGBA {
	h, w := t.Dim(2), t.Dim(3)
	plane := w * h
	values := t.Data()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*dst.Stride + x*4
			for c := 0; c < channels; c++ {
				dst.Pix[off+c] = toByte(values[c*plane+y*w+x])
			}
			dst.Pix[off+3] = 255
		}
	}
	return dst
}

func toByte(v float64) uint8 {
	v = math.Round(v * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// meanAbsDiff compares the RGB channels of two equally sized images on a
// [0, 1] scale.
func meanAbsDiff(a, b image.Image) float64 {
	na, nb := imaging.Clone(a), imaging.Clone(b)
	if na.Rect.Dx() != nb.Rect.Dx() || na.Rect.Dy() != nb.Rect.Dy() {
		return math.Inf(1)
	}
	sum, n := 0.0, 0
	for y := 0; y < na.Rect.Dy(); y++ {
		for x := 0; x < na.Rect.Dx(); x++ {
			oa, ob := y*na.Stride+x*4, y*nb.Stride+x*4
			for c := 0; c < channels; c++ {
				sum += math.Abs(float64(na.Pix[oa+c])-float64(nb.Pix[ob+c])) / 255
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
