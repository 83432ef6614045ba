package nn

import (
	"fmt"

	"github.com/fumitoshi0524/deconvnd/initializers"
	"github.com/fumitoshi0524/deconvnd/internal/convnd"
	"github.com/fumitoshi0524/deconvnd/tensor"
)

// DeconvolutionNDConfig configures a DeconvolutionND link.
//
// KSize, Stride and Pad take either one value, shared by every spatial
// axis, or exactly NDim values. Stride defaults to 1 and Pad to 0.
// OutSize, when set, fixes the spatial output extent; otherwise it is
// derived from the input extent, stride and pad on every call.
//
// InitialW and InitialBias accept anything initializers.Get does. A nil
// InitialW uses LeCunNormal and a nil InitialBias fills the bias with 0.
// NoBias drops the bias vector altogether.
type DeconvolutionNDConfig struct {
	NDim        int
	InChannels  int
	OutChannels int
	KSize       []int
	Stride      []int
	Pad         []int
	OutSize     []int
	InitialW    any
	InitialBias any
	NoBias      bool
}

// DeconvolutionND is an N-dimensional transposed convolution link. It
// owns the filter W, shaped (in_channels, out_channels, k1..kN), and an
// optional bias b of length out_channels, and forwards its input to
// tensor.DeconvolutionND.
type DeconvolutionND struct {
	ndim        int
	inChannels  int
	outChannels int
	ksize       []int
	stride      []int
	pad         []int
	outsize     []int
	weight      *tensor.Tensor
	bias        *tensor.Tensor
}

func NewDeconvolutionND(cfg DeconvolutionNDConfig) (*DeconvolutionND, error) {
	geo, err := newConvGeometry("DeconvolutionND", cfg.NDim, cfg.InChannels, cfg.OutChannels, cfg.KSize, cfg.Stride, cfg.Pad)
	if err != nil {
		return nil, err
	}
	if cfg.OutSize != nil {
		if len(cfg.OutSize) != cfg.NDim {
			return nil, fmt.Errorf("DeconvolutionND: outsize %v for %d spatial dims", cfg.OutSize, cfg.NDim)
		}
		for _, o := range cfg.OutSize {
			if o <= 0 {
				return nil, fmt.Errorf("DeconvolutionND: outsize must be positive, got %v", cfg.OutSize)
			}
		}
	}

	wShape := append([]int{cfg.InChannels, cfg.OutChannels}, geo.ksize...)
	weight, err := newParam(wShape, cfg.InitialW, initializers.LeCunNormal{})
	if err != nil {
		return nil, fmt.Errorf("DeconvolutionND W: %w", err)
	}
	var bias *tensor.Tensor
	if !cfg.NoBias {
		bias, err = newParam([]int{cfg.OutChannels}, cfg.InitialBias, initializers.Zero())
		if err != nil {
			return nil, fmt.Errorf("DeconvolutionND b: %w", err)
		}
	}

	return &DeconvolutionND{
		ndim:        cfg.NDim,
		inChannels:  cfg.InChannels,
		outChannels: cfg.OutChannels,
		ksize:       geo.ksize,
		stride:      geo.stride,
		pad:         geo.pad,
		outsize:     append([]int(nil), cfg.OutSize...),
		weight:      weight,
		bias:        bias,
	}, nil
}

// MustNewDeconvolutionND is NewDeconvolutionND that panics on error.
func MustNewDeconvolutionND(cfg DeconvolutionNDConfig) *DeconvolutionND {
	d, err := NewDeconvolutionND(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *DeconvolutionND) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.DeconvolutionND(x, d.weight, d.bias, d.stride, d.pad, d.outsize)
}

// OutShape returns the spatial extent Forward produces for an input with
// spatial extent in.
func (d *DeconvolutionND) OutShape(in []int) ([]int, error) {
	return tensor.DeconvOutShape(in, d.ksize, d.stride, d.pad, d.outsize)
}

func (d *DeconvolutionND) W() *tensor.Tensor { return d.weight }

// B returns the bias, or nil when the link was built with NoBias.
func (d *DeconvolutionND) B() *tensor.Tensor { return d.bias }

func (d *DeconvolutionND) NDim() int        { return d.ndim }
func (d *DeconvolutionND) InChannels() int  { return d.inChannels }
func (d *DeconvolutionND) OutChannels() int { return d.outChannels }
func (d *DeconvolutionND) KSize() []int     { return append([]int(nil), d.ksize...) }
func (d *DeconvolutionND) Stride() []int    { return append([]int(nil), d.stride...) }
func (d *DeconvolutionND) Pad() []int       { return append([]int(nil), d.pad...) }

// OutSize returns the fixed output extent, or nil when it is derived.
func (d *DeconvolutionND) OutSize() []int {
	if len(d.outsize) == 0 {
		return nil
	}
	return append([]int(nil), d.outsize...)
}

func (d *DeconvolutionND) NamedParams() []Param {
	params := []Param{{Name: "W", Tensor: d.weight}}
	if d.bias != nil {
		params = append(params, Param{Name: "b", Tensor: d.bias})
	}
	return params
}

func (d *DeconvolutionND) Parameters() []*tensor.Tensor {
	return tensorsOf(d.NamedParams())
}

func (d *DeconvolutionND) ZeroGrad() {
	zeroGradParams(d.NamedParams())
}

func (d *DeconvolutionND) StateDict(prefix string, state map[string]*tensor.Tensor) {
	paramsState(prefix, d.NamedParams(), state)
}

func (d *DeconvolutionND) LoadState(prefix string, state map[string]*tensor.Tensor) error {
	return loadParamsState("DeconvolutionND", prefix, d.NamedParams(), state)
}

// NewDeconvolution1D builds a one-dimensional DeconvolutionND with
// default initializers. It panics on invalid sizes.
func NewDeconvolution1D(inChannels, outChannels, ksize, stride, pad int, withBias bool) *DeconvolutionND {
	return newDeconvolutionFixed(1, inChannels, outChannels, ksize, stride, pad, withBias)
}

// NewDeconvolution2D builds a two-dimensional DeconvolutionND with square
// kernel, stride and pad.
func NewDeconvolution2D(inChannels, outChannels, ksize, stride, pad int, withBias bool) *DeconvolutionND {
	return newDeconvolutionFixed(2, inChannels, outChannels, ksize, stride, pad, withBias)
}

// NewDeconvolution3D builds a three-dimensional DeconvolutionND with cubic
// kernel, stride and pad.
func NewDeconvolution3D(inChannels, outChannels, ksize, stride, pad int, withBias bool) *DeconvolutionND {
	return newDeconvolutionFixed(3, inChannels, outChannels, ksize, stride, pad, withBias)
}

func newDeconvolutionFixed(ndim, inChannels, outChannels, ksize, stride, pad int, withBias bool) *DeconvolutionND {
	if stride <= 0 {
		stride = 1
	}
	return MustNewDeconvolutionND(DeconvolutionNDConfig{
		NDim:        ndim,
		InChannels:  inChannels,
		OutChannels: outChannels,
		KSize:       []int{ksize},
		Stride:      []int{stride},
		Pad:         []int{pad},
		NoBias:      !withBias,
	})
}

// convGeometry is the validated kernel, stride and pad of a convolution
// link, each expanded to one value per spatial axis.
type convGeometry struct {
	ksize  []int
	stride []int
	pad    []int
}

func newConvGeometry(op string, ndim, inChannels, outChannels int, ksize, stride, pad []int) (convGeometry, error) {
	var geo convGeometry
	if ndim <= 0 {
		return geo, fmt.Errorf("%s: ndim must be positive, got %d", op, ndim)
	}
	if inChannels <= 0 || outChannels <= 0 {
		return geo, fmt.Errorf("%s: channel counts must be positive, got in=%d out=%d", op, inChannels, outChannels)
	}
	if len(stride) == 0 {
		stride = []int{1}
	}
	if len(pad) == 0 {
		pad = []int{0}
	}
	var err error
	if geo.ksize, err = convnd.AsTuple(ksize, ndim); err != nil {
		return geo, fmt.Errorf("%s: ksize: %w", op, err)
	}
	if geo.stride, err = convnd.AsTuple(stride, ndim); err != nil {
		return geo, fmt.Errorf("%s: stride: %w", op, err)
	}
	if geo.pad, err = convnd.AsTuple(pad, ndim); err != nil {
		return geo, fmt.Errorf("%s: pad: %w", op, err)
	}
	for i := 0; i < ndim; i++ {
		if geo.ksize[i] <= 0 {
			return geo, fmt.Errorf("%s: ksize must be positive, got %v", op, geo.ksize)
		}
		if geo.stride[i] <= 0 {
			return geo, fmt.Errorf("%s: stride must be positive, got %v", op, geo.stride)
		}
		if geo.pad[i] < 0 {
			return geo, fmt.Errorf("%s: pad must be non-negative, got %v", op, geo.pad)
		}
	}
	return geo, nil
}

// newParam allocates a parameter of the given shape, fills it from spec
// (or fallback when spec is nil) and marks it as requiring grad.
func newParam(shape []int, spec any, fallback initializers.Initializer) (*tensor.Tensor, error) {
	init, err := initializers.GetOr(spec, fallback)
	if err != nil {
		return nil, err
	}
	p := tensor.Zeros(shape...)
	if err := init.Initialize(p); err != nil {
		return nil, err
	}
	p.SetRequiresGrad(true)
	return p, nil
}
