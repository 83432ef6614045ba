package main

import (
	"flag"
	"log"

	"github.com/fumitoshi0524/deconvnd/initializers"
	"github.com/fumitoshi0524/deconvnd/loss"
	"github.com/fumitoshi0524/deconvnd/nn"
	"github.com/fumitoshi0524/deconvnd/optim"
	"github.com/fumitoshi0524/deconvnd/tensor"
)

type options struct {
	ndim     int
	size     int
	channels int
	hidden   int
	batch    int
	epochs   int
	lr       float64
	clip     float64
	seed     uint64
	save     string
}

func main() {
	var opts options
	flag.IntVar(&opts.ndim, "ndim", 2, "number of spatial dimensions")
	flag.IntVar(&opts.size, "size", 8, "spatial extent of every dimension (even)")
	flag.IntVar(&opts.channels, "channels", 1, "signal channels")
	flag.IntVar(&opts.hidden, "hidden", 4, "channels of the encoded representation")
	flag.IntVar(&opts.batch, "batch", 4, "number of synthetic signals")
	flag.IntVar(&opts.epochs, "epochs", 200, "training steps")
	flag.Float64Var(&opts.lr, "lr", 0.01, "Adam learning rate")
	flag.Float64Var(&opts.clip, "clip", 0, "max gradient L2 norm, 0 disables clipping")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.StringVar(&opts.save, "save", "", "optional path for the trained state dict")
	flag.Parse()

	model, err := buildModel(opts)
	if err != nil {
		log.Fatalf("build model: %v", err)
	}
	first, last, err := train(model, opts, func(step int, l float64) {
		if step%20 == 0 || step == opts.epochs {
			log.Printf("step %d loss %.6f", step, l)
		}
	})
	if err != nil {
		log.Fatalf("train: %v", err)
	}
	log.Printf("loss %.6f -> %.6f", first, last)

	if opts.save != "" {
		if err := nn.SaveModule(opts.save, model); err != nil {
			log.Fatalf("save: %v", err)
		}
		log.Printf("saved state to %s", opts.save)
	}
}

// buildModel halves every spatial dim with a strided convolution and
// restores it with the matching deconvolution.
func buildModel(opts options) (*nn.Sequential, error) {
	initializers.Seed(opts.seed)
	enc, err := nn.NewConvolutionND(nn.ConvolutionNDConfig{
		NDim:        opts.ndim,
		InChannels:  opts.channels,
		OutChannels: opts.hidden,
		KSize:       []int{4},
		Stride:      []int{2},
		Pad:         []int{1},
	})
	if err != nil {
		return nil, err
	}
	dec, err := nn.NewDeconvolutionND(nn.DeconvolutionNDConfig{
		NDim:        opts.ndim,
		InChannels:  opts.hidden,
		OutChannels: opts.channels,
		KSize:       []int{4},
		Stride:      []int{2},
		Pad:         []int{1},
		OutSize:     repeat(opts.size, opts.ndim),
	})
	if err != nil {
		return nil, err
	}
	return nn.NewSequential(enc, nn.Relu(), dec), nil
}

// syntheticBatch draws a (batch, channels, size...) signal.
func syntheticBatch(opts options) (*tensor.Tensor, error) {
	shape := append([]int{opts.batch, opts.channels}, repeat(opts.size, opts.ndim)...)
	x := tensor.Zeros(shape...)
	if err := (initializers.Normal{Scale: 1}).Initialize(x); err != nil {
		return nil, err
	}
	return x, nil
}

func train(model nn.Module, opts options, report func(step int, loss float64)) (first, last float64, err error) {
	x, err := syntheticBatch(opts)
	if err != nil {
		return 0, 0, err
	}
	opt := optim.NewAdam(model.Parameters(), opts.lr, 0.9, 0.999, 1e-8)
	for step := 1; step <= opts.epochs; step++ {
		opt.ZeroGrad()
		y, err := model.Forward(x)
		if err != nil {
			return 0, 0, err
		}
		l, err := loss.MSE(y, x)
		if err != nil {
			return 0, 0, err
		}
		if err := l.Backward(); err != nil {
			return 0, 0, err
		}
		if opts.clip > 0 {
			optim.ClipGradNorm(model.Parameters(), opts.clip, 2)
		}
		if err := opt.Step(); err != nil {
			return 0, 0, err
		}
		last = l.Data()[0]
		if step == 1 {
			first = last
		}
		if report != nil {
			report(step, last)
		}
	}
	return first, last, nil
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
