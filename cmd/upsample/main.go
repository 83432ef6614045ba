package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/disintegration/imaging"

	"github.com/fumitoshi0524/deconvnd/initializers"
	"github.com/fumitoshi0524/deconvnd/nn"
)

func main() {
	in := flag.String("in", "", "input image path")
	out := flag.String("out", "upsampled.png", "output image path")
	factor := flag.Int("factor", 2, "upsampling factor")
	reference := flag.String("reference", "", "optional path for an imaging.Resize result to compare against")
	flag.Parse()

	if *in == "" {
		log.Fatalf("-in is required")
	}
	src, err := imaging.Open(*in)
	if err != nil {
		log.Fatalf("open %s: %v", *in, err)
	}

	x := imageToTensor(src)
	up, err := newUpsampler(x.Dim(1), *factor)
	if err != nil {
		log.Fatalf("build upsampler: %v", err)
	}
	y, err := up.Forward(x)
	if err != nil {
		log.Fatalf("upsample: %v", err)
	}
	dst := tensorToImage(y)
	if err := imaging.Save(dst, *out); err != nil {
		log.Fatalf("save %s: %v", *out, err)
	}
	b := src.Bounds()
	log.Printf("upsampled %dx%d -> %dx%d into %s", b.Dx(), b.Dy(), dst.Bounds().Dx(), dst.Bounds().Dy(), *out)

	if *reference != "" {
		ref := imaging.Resize(src, b.Dx()**factor, b.Dy()**factor, imaging.Linear)
		if err := imaging.Save(ref, *reference); err != nil {
			log.Fatalf("save %s: %v", *reference, err)
		}
		log.Printf("mean abs difference vs imaging.Linear: %.4f", meanAbsDiff(dst, ref))
	}
}

// newUpsampler returns a bias-free Deconvolution2D whose filter is a
// per-channel bilinear kernel, scaling both spatial dims by factor.
func newUpsampler(channels, factor int) (*nn.DeconvolutionND, error) {
	if factor < 1 {
		return nil, fmt.Errorf("factor must be >= 1, got %d", factor)
	}
	return nn.NewDeconvolutionND(nn.DeconvolutionNDConfig{
		NDim:        2,
		InChannels:  channels,
		OutChannels: channels,
		KSize:       []int{2*factor - factor%2},
		Stride:      []int{factor},
		Pad:         []int{factor / 2},
		InitialW:    initializers.Bilinear{},
		NoBias:      true,
	})
}
